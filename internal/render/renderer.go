// Package render burns subtitles into video, either per decoded frame or
// as a single ffmpeg filter graph.
package render

import (
	"context"
	"errors"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

// ErrUnsupported is returned by Supports when a renderer cannot express
// a style.
var ErrUnsupported = errors.New("style not supported by renderer")

// Renderer is a strategy that renders a whole video file.
type Renderer interface {
	Name() style.Renderer
	// Supports reports whether the renderer can reproduce s faithfully.
	Supports(s *style.Style) error
	Render(ctx context.Context, job Job) (*Output, error)
}

// Job is one file-to-file render.
type Job struct {
	VideoPath  string
	OutputPath string
	Alignment  *alignment.Sequence
	Style      *style.Style
	// used when the source frame rate can't be probed
	FPS    float64
	Encode video.EncodeOptions
}

type Output struct {
	Path   string
	Frames int   // frames rendered, 0 when unknown
	Size   int64 // bytes
	// ffmpeg diagnostics
	Stderr string
}
