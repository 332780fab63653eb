package alignment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// supported alignment file formats
type Format string

const (
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
)

func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported alignment format: %q", ext)
	}
}

// Load reads an alignment file, picking the parser by extension.
func Load(path string) (*Sequence, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignment file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Read(file, format)
}

func Read(r io.Reader, format Format) (*Sequence, error) {
	var (
		entries []Entry
		err     error
	)
	switch format {
	case FormatJSON:
		entries, err = parseJSON(r)
	case FormatSRT:
		entries, err = parseSRT(r)
	case FormatVTT:
		entries, err = parseVTT(r)
	case FormatASS:
		entries, err = parseASS(r)
	default:
		return nil, fmt.Errorf("unsupported alignment format: %q", format)
	}
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// word record as emitted by whisper style aligners
type jsonRecord struct {
	Value *string  `json:"value"`
	Text  *string  `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// accepts a bare array or an object with a "words" or "segments" array
func parseJSON(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading alignment JSON: %w", err)
	}

	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped struct {
			Words    []jsonRecord `json:"words"`
			Segments []jsonRecord `json:"segments"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("failed to decode alignment JSON: %w", err)
		}
		records = wrapped.Words
		if len(records) == 0 {
			records = wrapped.Segments
		}
	}

	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		if rec.Start == nil || rec.End == nil {
			return nil, fmt.Errorf("record %d: start and end are required", i)
		}
		var text string
		switch {
		case rec.Value != nil:
			text = *rec.Value
		case rec.Text != nil:
			text = *rec.Text
		default:
			return nil, fmt.Errorf("record %d: missing value/text", i)
		}
		entries = append(entries, Entry{Start: *rec.Start, End: *rec.End, Text: text})
	}
	return entries, nil
}
