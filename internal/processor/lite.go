package processor

import (
	"context"
	"image"
	"sync"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/metrics"
	"github.com/mgpai22/subburn/internal/render"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/workers"
)

const maxLiteWorkers = 32

// Lite renders subtitles onto frames already held in memory.
type Lite struct {
	// 0 picks a count from the available CPUs
	Workers int
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

func NewLite(logger *logging.Logger, m *metrics.Metrics) *Lite {
	return &Lite{Logger: logger, Metrics: m}
}

// Run returns a new frame for every input frame, in input order, with
// frame i rendered at t = i/fps. Any malformed frame fails the whole
// batch; no partial output is returned.
func (l *Lite) Run(
	ctx context.Context,
	frames []image.Image,
	seq *alignment.Sequence,
	s *style.Style,
	fps float64,
) ([]image.Image, error) {
	const op = "lite"

	if seq == nil || s == nil {
		return nil, errs.Configuration(op, "alignment and style are required")
	}
	if !(fps > 0) {
		return nil, errs.Configuration(op, "fps must be positive, got %v", fps)
	}
	if len(frames) == 0 {
		return nil, errs.Configuration(op, "no frames to render")
	}
	if err := checkFrames(frames); err != nil {
		return nil, err
	}

	font, err := render.LoadFont(s.FontPath)
	if err != nil {
		return nil, errs.Render("load font", err)
	}

	count := l.Workers
	if count <= 0 {
		count = workers.ForCPU(maxLiteWorkers)
	}
	count = min(count, len(frames))

	if l.Logger != nil {
		l.Logger.Debugw("Rendering frames in memory",
			"frames", len(frames),
			"workers", count,
			"fps", fps,
		)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		out      = make([]image.Image, len(frames))
		indices  = make(chan int)
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	// faces aren't safe for concurrent use, one renderer per worker
	renderers := make([]*render.FrameRenderer, count)
	for w := range renderers {
		if renderers[w], err = render.NewFrameRenderer(s, font); err != nil {
			return nil, err
		}
	}

	for _, renderer := range renderers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				t := float64(i) / fps
				rendered, err := renderer.RenderFrame(frames[i], seq.ActiveAt(t), t)
				if err != nil {
					fail(err)
					return
				}
				out[i] = rendered
			}
		}()
	}

feed:
	for i := range frames {
		select {
		case <-ctx.Done():
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.Metrics.AddFrames(len(frames))
	return out, nil
}

// every frame must be non-empty and match the first frame's size
func checkFrames(frames []image.Image) error {
	var size image.Point
	for i, f := range frames {
		if f == nil {
			return errs.Renderf("lite", "frame %d is nil", i)
		}
		b := f.Bounds()
		if b.Empty() {
			return errs.Renderf("lite", "frame %d is empty", i)
		}
		if i == 0 {
			size = b.Size()
			continue
		}
		if b.Size() != size {
			return errs.Renderf("lite", "frame %d is %dx%d, expected %dx%d", i, b.Dx(), b.Dy(), size.X, size.Y)
		}
	}
	return nil
}
