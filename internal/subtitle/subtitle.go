// Package subtitle writes alignments out as standalone subtitle files
// (SRT, WebVTT and styled ASS) next to, or instead of, a burned render.
package subtitle

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/style"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing subtitles
type Writer interface {
	Write(w io.Writer, seq *alignment.Sequence) error
}

// NewWriter returns the writer for format. s styles the VTT cue
// placement and the ASS script; it may be nil for SRT.
func NewWriter(format Format, s *style.Style) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{Style: s}, nil
	case FormatASS:
		if s == nil {
			return nil, fmt.Errorf("ass output needs a style")
		}
		return &ASSWriter{
			Title: "subburn",
			Style: s,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatSRT, FormatVTT, FormatASS:
		return f, nil
	case "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want srt, vtt or ass)", s)
	}
}

// subtitle format based on file extension, SRT when unknown
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatSRT
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
