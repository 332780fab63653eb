package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

// FrameStrategy renders a video file frame by frame: ffmpeg decodes raw
// frames into a FrameRenderer and a second ffmpeg encodes the result,
// copying the source audio.
type FrameStrategy struct {
	Logger *logging.Logger
}

func NewFrameStrategy(logger *logging.Logger) *FrameStrategy {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FrameStrategy{Logger: logger}
}

func (s *FrameStrategy) Name() style.Renderer {
	return style.RendererPillow
}

// every style can be drawn per frame
func (s *FrameStrategy) Supports(*style.Style) error {
	return nil
}

func (s *FrameStrategy) Render(ctx context.Context, job Job) (out *Output, err error) {
	const op = "frame render"

	if video.SameFile(job.VideoPath, job.OutputPath) {
		return nil, errs.Configuration(op, "output %s is the input video", job.OutputPath)
	}

	info, err := video.Probe(ctx, job.VideoPath)
	if err != nil {
		return nil, errs.Render(op, err)
	}
	fps := info.FrameRate
	if fps <= 0 {
		fps = job.FPS
	}
	if fps <= 0 {
		return nil, errs.Renderf(op, "unknown frame rate for %s", job.VideoPath)
	}

	renderer, err := NewFrameRenderer(job.Style, nil)
	if err != nil {
		return nil, err
	}

	// cancelling kills both ffmpeg processes on early return
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader, err := video.OpenFrameReader(ctx, info)
	if err != nil {
		return nil, errs.Render(op, err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = errs.Render(op, cerr)
		}
	}()

	audioFrom := ""
	if info.HasAudio() {
		audioFrom = job.VideoPath
	}
	partial, err := video.NewPartialFile(job.OutputPath)
	if err != nil {
		return nil, errs.IO(op, err)
	}
	defer partial.Discard()

	writer, err := video.OpenFrameWriter(ctx, partial.Path, info.Width, info.Height, fps, audioFrom, job.Encode)
	if err != nil {
		return nil, errs.Render(op, err)
	}
	defer func() {
		if err != nil {
			cancel()
			_ = writer.Close()
		}
	}()

	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debugw("Streaming frames",
		"input", job.VideoPath,
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"fps", fps,
		"audio", info.HasAudio(),
	)

	buf := reader.NewFrame()
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := reader.Next(buf); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errs.Render(op, err)
		}

		t := float64(frames) / fps
		active := job.Alignment.ActiveAt(t)
		frame := buf
		if len(active) > 0 {
			if frame, err = renderer.RenderFrame(buf, active, t); err != nil {
				return nil, err
			}
		}
		if err := writer.Write(frame); err != nil {
			return nil, errs.Render(op, err)
		}
		frames++
	}

	if frames == 0 {
		return nil, errs.Renderf(op, "no frames decoded from %s", job.VideoPath)
	}
	if err := writer.Close(); err != nil {
		return nil, errs.Render(op, err)
	}

	stat, err := os.Stat(partial.Path)
	if err != nil {
		return nil, errs.IO(op, err)
	}
	if stat.Size() == 0 {
		return nil, errs.Renderf(op, "encoder produced an empty file")
	}
	if err := partial.Commit(); err != nil {
		return nil, errs.IO(op, err)
	}

	return &Output{Path: job.OutputPath, Frames: frames, Size: stat.Size()}, nil
}
