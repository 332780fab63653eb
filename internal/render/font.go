package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	defaultFontOnce sync.Once
	defaultFont     *opentype.Font
	defaultFontErr  error
)

// LoadFont parses the font at path, or the embedded Go Regular font when
// path is empty. Parsed fonts are safe to share; faces are not.
func LoadFont(path string) (*opentype.Font, error) {
	if path == "" {
		defaultFontOnce.Do(func() {
			defaultFont, defaultFontErr = opentype.Parse(goregular.TTF)
		})
		return defaultFont, defaultFontErr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size int) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// writeDefaultFont stores the embedded font in dir for tools that need a
// font file on disk. The caller removes the returned file.
func writeDefaultFont(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "subburn-font-*.ttf")
	if err != nil {
		return "", fmt.Errorf("failed to create font file: %w", err)
	}
	if _, err := f.Write(goregular.TTF); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write font file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write font file: %w", err)
	}
	return f.Name(), nil
}
