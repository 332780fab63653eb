package processor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/render"
	"github.com/mgpai22/subburn/internal/style"
)

type fakeRenderer struct {
	name        style.Renderer
	unsupported bool
	err         error
	calls       []render.Job
}

func (f *fakeRenderer) Name() style.Renderer { return f.name }

func (f *fakeRenderer) Supports(s *style.Style) error {
	if f.unsupported {
		return fmt.Errorf("%w: fake", render.ErrUnsupported)
	}
	return nil
}

func (f *fakeRenderer) Render(ctx context.Context, job render.Job) (*render.Output, error) {
	f.calls = append(f.calls, job)
	if f.err != nil {
		return nil, f.err
	}
	if err := os.WriteFile(job.OutputPath, []byte("video"), 0644); err != nil {
		return nil, err
	}
	return &render.Output{Path: job.OutputPath, Frames: 10, Size: 5}, nil
}

func buildStyle(t *testing.T, mutate func(*style.Config)) *style.Style {
	t.Helper()
	cfg := style.DefaultConfig()
	cfg.FontSize = 24
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func mustSequence(t *testing.T, entries ...alignment.Entry) *alignment.Sequence {
	t.Helper()
	seq, err := alignment.New(entries)
	if err != nil {
		t.Fatalf("alignment.New: %v", err)
	}
	return seq
}

// frames with a distinct solid color each
func makeFrames(n, w, h int) []image.Image {
	frames := make([]image.Image, n)
	for i := range frames {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		c := color.NRGBA{uint8(i * 3), uint8(255 - i*3), 64, 255}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
		frames[i] = img
	}
	return frames
}

func samePixels(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			r1, g1, b1, a1 := a.At(x, y).RGBA()
			r2, g2, b2, a2 := b.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}
