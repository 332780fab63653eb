package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// ToNRGBA returns img as a tightly packed NRGBA image at the origin,
// copying only when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok &&
		n.Rect.Min == (image.Point{}) && n.Stride == n.Rect.Dx()*4 {
		return n
	}
	return imaging.Clone(img)
}

// LoadFrames decodes every frame of a video into memory.
func LoadFrames(ctx context.Context, info *Info) ([]image.Image, error) {
	reader, err := OpenFrameReader(ctx, info)
	if err != nil {
		return nil, err
	}

	var frames []image.Image
	for {
		frame := reader.NewFrame()
		err := reader.Next(frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		frames = append(frames, frame)
	}

	if err := reader.Close(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames decoded from %s", info.Path)
	}
	return frames, nil
}

// WriteFrames encodes an in-memory frame sequence into out.
func WriteFrames(
	ctx context.Context,
	frames []image.Image,
	out string,
	fps float64,
	audioFrom string,
	opts EncodeOptions,
) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	b := frames[0].Bounds()

	writer, err := OpenFrameWriter(ctx, out, b.Dx(), b.Dy(), fps, audioFrom, opts)
	if err != nil {
		return err
	}

	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			_ = writer.Close()
			return err
		}
		if err := writer.Write(ToNRGBA(frame)); err != nil {
			_ = writer.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return writer.Close()
}

var frameExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

// ReadFrameDir loads the images in dir ordered by file name.
func ReadFrameDir(dir string) ([]image.Image, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}
	sort.Strings(names)

	frames := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load frame %s: %w", name, err)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// WriteFrameDir saves frames as numbered PNG files and returns their paths.
func WriteFrameDir(dir string, frames []image.Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, len(frames))
	for i, frame := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i))
		if err := imaging.Save(frame, path); err != nil {
			return nil, fmt.Errorf("failed to save frame %d: %w", i, err)
		}
		paths[i] = path
	}
	return paths, nil
}
