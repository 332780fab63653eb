// Package processor turns a render request into a result, choosing
// between in-memory (lite) and file-streaming (backend) processing.
package processor

import (
	"context"
	"image"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

// Request is what the host hands over for one invocation.
type Request struct {
	// decoded frames, required for lite mode unless VideoPath is set
	Frames []image.Image
	// source file, required for backend mode
	VideoPath string
	// empty generates a timestamped path under the output root
	OutputPath string
	FPS        float64
	Alignment  *alignment.Sequence
	Style      *style.Style
	// empty uses the style's processing mode
	Mode mode.Mode
}

// Job is a validated request with its processing mode resolved.
type Job struct {
	ID         string
	Mode       mode.Mode
	Requested  mode.Mode
	Frames     []image.Image
	VideoPath  string
	Info       *video.Info // set when the source was probed
	OutputPath string
	FPS        float64
	Duration   float64 // seconds
	Alignment  *alignment.Sequence
	Style      *style.Style
	Created    time.Time
}

// Prober reads stream information from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*video.Info, error)
}

type ProbeFunc func(ctx context.Context, path string) (*video.Info, error)

func (f ProbeFunc) Probe(ctx context.Context, path string) (*video.Info, error) {
	return f(ctx, path)
}

// DefaultProber probes with ffprobe.
var DefaultProber Prober = ProbeFunc(video.Probe)

// NewJob validates req and selects the processing mode. Every
// configuration problem is reported here, before any rendering starts.
// prober is only used when the duration can't be derived from frames.
func NewJob(ctx context.Context, req Request, prober Prober) (*Job, error) {
	const op = "job"

	if req.Alignment == nil {
		return nil, errs.Configuration(op, "alignment is required")
	}
	if req.Style == nil {
		return nil, errs.Configuration(op, "style is required")
	}

	requested := req.Mode
	if requested == "" {
		requested = req.Style.ProcessingMode
	}
	requested, err := mode.Parse(string(requested))
	if err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}

	fps := req.FPS
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps < 0 {
		return nil, errs.Configuration(op, "fps must be a positive number, got %v", req.FPS)
	}

	videoPath := strings.TrimSpace(req.VideoPath)
	outputPath := strings.TrimSpace(req.OutputPath)
	if videoPath != "" && outputPath != "" && video.SameFile(videoPath, outputPath) {
		return nil, errs.Configuration(op, "output %s is the input video", outputPath)
	}

	job := &Job{
		ID:         uuid.NewString(),
		Requested:  requested,
		Frames:     req.Frames,
		VideoPath:  videoPath,
		OutputPath: outputPath,
		Alignment:  req.Alignment,
		Style:      req.Style,
		Created:    time.Now(),
	}

	switch {
	case len(req.Frames) > 0:
		if fps == 0 {
			return nil, errs.Configuration(op, "fps is required with in-memory frames")
		}
		job.Duration = float64(len(req.Frames)) / fps
	case videoPath != "":
		if requested == mode.Backend && fps > 0 {
			// the backend probes the file itself
			break
		}
		if prober == nil {
			prober = DefaultProber
		}
		info, err := prober.Probe(ctx, videoPath)
		if err != nil {
			return nil, errs.IO(op, err)
		}
		job.Info = info
		job.Duration = info.Duration
		if fps == 0 {
			fps = info.FrameRate
		}
	default:
		return nil, errs.Configuration(op, "either frames or a video path is required")
	}

	if fps <= 0 {
		return nil, errs.Configuration(op, "fps is required and could not be probed")
	}
	job.FPS = fps

	job.Mode = mode.Select(job.Duration, requested)
	if job.Mode == mode.Backend && videoPath == "" {
		return nil, errs.Configuration(op, "backend mode requires a video path")
	}
	return job, nil
}
