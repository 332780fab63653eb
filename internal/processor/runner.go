package processor

import (
	"context"
	"image"
	"time"

	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/metrics"
	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

// Runner dispatches a job to the processor its mode selects.
type Runner struct {
	Backend *Backend
	Lite    *Lite
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	// decodes a whole video for lite jobs without frames
	LoadFrames func(ctx context.Context, info *video.Info) ([]image.Image, error)
}

func NewRunner(logger *logging.Logger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		Backend:    NewBackend(logger, m),
		Lite:       NewLite(logger, m),
		Logger:     logger,
		Metrics:    m,
		LoadFrames: video.LoadFrames,
	}
}

// Run executes job once and always returns a Result; failures are
// reported through Success and Message. There are no retries.
func (r *Runner) Run(ctx context.Context, job *Job) Result {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With("job_id", job.ID)

	logger.Infow("Mode selected",
		"mode", job.Mode,
		"requested", job.Requested,
		"duration", job.Duration,
		"fps", job.FPS,
	)

	start := time.Now()
	var res Result
	switch job.Mode {
	case mode.Backend:
		res = r.runBackend(ctx, job)
	default:
		res = r.runLite(ctx, job, logger)
	}
	res.JobID = job.ID
	res.Mode = job.Mode
	res.Elapsed = time.Since(start)

	r.Metrics.ObserveJob(string(res.Mode), string(res.Renderer), res.Success, res.Elapsed)
	if res.Success {
		logger.Infow("Job finished", "elapsed", res.Elapsed, "message", res.Message)
	} else {
		logger.Warnw("Job failed", "elapsed", res.Elapsed, "message", res.Message)
	}
	return res
}

func (r *Runner) runBackend(ctx context.Context, job *Job) Result {
	backend := r.Backend
	if backend == nil {
		backend = NewBackend(r.Logger, r.Metrics)
	}
	res, err := backend.run(ctx, job.VideoPath, job.Alignment, job.Style, job.OutputPath, job.FPS)
	if err != nil {
		res = failure(err.Error())
		res.Renderer = job.Style.Renderer
	}
	return res
}

func (r *Runner) runLite(ctx context.Context, job *Job, logger *logging.Logger) Result {
	res := Result{Renderer: style.RendererPillow}

	frames := job.Frames
	if len(frames) == 0 {
		info := job.Info
		if info == nil {
			res.Message = "lite mode needs frames or a probed video"
			return res
		}
		load := r.LoadFrames
		if load == nil {
			load = video.LoadFrames
		}
		logger.Infow("Decoding video into memory", "input", info.Path)
		var err error
		if frames, err = load(ctx, info); err != nil {
			res.Message = err.Error()
			return res
		}
	}

	lite := r.Lite
	if lite == nil {
		lite = NewLite(r.Logger, r.Metrics)
	}
	out, err := lite.Run(ctx, frames, job.Alignment, job.Style, job.FPS)
	if err != nil {
		res.Message = describe(err)
		return res
	}

	res.Success = true
	res.OutputFrames = out
	res.Frames = len(out)
	res.Message = "rendered frames in memory"
	return res
}
