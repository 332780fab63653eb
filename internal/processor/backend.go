package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/metrics"
	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/render"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

const (
	DefaultOutputRoot = "output"
	outputSubdir      = "subburn"
	timestampLayout   = "20060102-150405"
)

// Backend renders straight from a video file on disk to a new file.
type Backend struct {
	// generated output paths live in <OutputRoot>/subburn
	OutputRoot string
	Encode     video.EncodeOptions
	// renderer strategies by tag
	Command render.Renderer
	Frames  render.Renderer
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	// clock for generated output names
	Now func() time.Time
}

func NewBackend(logger *logging.Logger, m *metrics.Metrics) *Backend {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Backend{
		OutputRoot: DefaultOutputRoot,
		Encode:     video.DefaultEncodeOptions(),
		Command:    render.NewCommandRenderer(logger),
		Frames:     render.NewFrameStrategy(logger),
		Logger:     logger,
		Metrics:    m,
		Now:        time.Now,
	}
}

// Run renders videoPath with seq and s into outputPath, or a generated
// path when outputPath is empty. A missing video path, or an output that
// is the video itself, is a configuration error. Render and IO failures come back as an unsuccessful Result.
func (b *Backend) Run(
	ctx context.Context,
	videoPath string,
	seq *alignment.Sequence,
	s *style.Style,
	outputPath string,
) (Result, error) {
	return b.run(ctx, videoPath, seq, s, outputPath, 0)
}

func (b *Backend) run(
	ctx context.Context,
	videoPath string,
	seq *alignment.Sequence,
	s *style.Style,
	outputPath string,
	fps float64,
) (Result, error) {
	const op = "backend"

	if strings.TrimSpace(videoPath) == "" {
		return Result{}, errs.Configuration(op, "backend mode requires a video path")
	}
	if seq == nil || s == nil {
		return Result{}, errs.Configuration(op, "alignment and style are required")
	}
	if outputPath != "" && video.SameFile(videoPath, outputPath) {
		return Result{}, errs.Configuration(op, "output %s is the input video", outputPath)
	}

	logger := b.logger()
	start := time.Now()

	renderer, s := b.strategy(s)
	res := Result{Mode: mode.Backend, Renderer: renderer.Name()}

	out, err := b.resolveOutput(videoPath, outputPath)
	if err != nil {
		res.Message = err.Error()
		return res, nil
	}

	lock := flock.New(out + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		res.Message = errs.IO(op, fmt.Errorf("lock output: %w", err)).Error()
		return res, nil
	}
	if !locked {
		res.Message = fmt.Sprintf("%s is being written by another process", out)
		return res, nil
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	logger.Infow("Rendering video",
		"input", videoPath,
		"output", out,
		"renderer", renderer.Name(),
		"entries", seq.Len(),
	)

	rendered, err := renderer.Render(ctx, render.Job{
		VideoPath:  videoPath,
		OutputPath: out,
		Alignment:  seq,
		Style:      s,
		FPS:        fps,
		Encode:     b.Encode,
	})
	res.Elapsed = time.Since(start)
	if err != nil {
		logger.Errorw("Render failed", "renderer", renderer.Name(), "error", err)
		res.Message = describe(err)
		return res, nil
	}

	b.Metrics.AddFrames(rendered.Frames)
	b.Metrics.SetOutputBytes(rendered.Size)

	res.Success = true
	res.OutputPath = rendered.Path
	res.Frames = rendered.Frames
	res.Size = rendered.Size
	res.Message = fmt.Sprintf("rendered %s (%s) in %s",
		rendered.Path,
		humanize.Bytes(uint64(rendered.Size)),
		res.Elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// strategy picks the renderer named by s, falling back to the frame
// renderer when the requested one can't express the style.
func (b *Backend) strategy(s *style.Style) (render.Renderer, *style.Style) {
	requested := b.Command
	if s.Renderer == style.RendererPillow {
		requested = b.Frames
	}

	err := requested.Supports(s)
	if err == nil {
		return requested, s
	}

	b.logger().Warnw("Renderer cannot express style, using frame renderer",
		"requested", requested.Name(),
		"reason", err,
	)
	b.Metrics.Fallback(string(requested.Name()), string(b.Frames.Name()))
	return b.Frames, s.With(b.Frames.Name())
}

// resolveOutput returns the output path, creating its directory
func (b *Backend) resolveOutput(videoPath, outputPath string) (string, error) {
	const op = "output path"

	if outputPath == "" {
		outputPath = b.generateName(OutputDir(b.OutputRoot), videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", errs.IO(op, err)
	}
	return outputPath, nil
}

func (b *Backend) generateName(dir, videoPath string) string {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return GeneratePath(dir, videoPath, ".mp4", now())
}

// GeneratePath returns <dir>/<stem>_subtitled_<timestamp><ext> for
// source, adding a numeric suffix while the name is taken. ext may be
// empty for directories.
func GeneratePath(dir, source, ext string, now time.Time) string {
	source = strings.TrimRight(source, `/\`)
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base := fmt.Sprintf("%s_subtitled_%s", stem, now.Format(timestampLayout))

	path := filepath.Join(dir, base+ext)
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return path
}

// OutputDir is where generated outputs go under root.
func OutputDir(root string) string {
	if root == "" {
		root = DefaultOutputRoot
	}
	return filepath.Join(root, outputSubdir)
}

func (b *Backend) logger() *logging.Logger {
	if b.Logger == nil {
		return logging.NewNop()
	}
	return b.Logger
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "render cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "render timed out"
	default:
		return err.Error()
	}
}
