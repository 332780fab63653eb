package processor

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/metrics"
	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

func TestRunnerLiteWithFrames(t *testing.T) {
	seq := mustSequence(t, alignment.Entry{Start: 0, End: 1, Text: "hi"})
	job, err := NewJob(context.Background(), Request{
		Frames:    makeFrames(5, 64, 48),
		FPS:       30,
		Alignment: seq,
		Style:     buildStyle(t, nil),
	}, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	r := NewRunner(logging.NewNop(), metrics.New())
	res := r.Run(context.Background(), job)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.JobID != job.ID || res.Mode != mode.Lite || res.Renderer != style.RendererPillow {
		t.Errorf("result = %+v", res)
	}
	if len(res.OutputFrames) != 5 || res.OutputPath != "" {
		t.Errorf("frames = %d, path = %q", len(res.OutputFrames), res.OutputPath)
	}
}

func TestRunnerLiteDecodesProbedVideo(t *testing.T) {
	info := &video.Info{Path: "clip.mp4", Duration: 0.1, FrameRate: 30, Width: 32, Height: 32}
	job := &Job{
		ID:        "job",
		Mode:      mode.Lite,
		Info:      info,
		VideoPath: info.Path,
		FPS:       30,
		Alignment: mustSequence(t),
		Style:     buildStyle(t, nil),
	}

	var loaded *video.Info
	r := NewRunner(nil, nil)
	r.LoadFrames = func(ctx context.Context, in *video.Info) ([]image.Image, error) {
		loaded = in
		return makeFrames(3, 32, 32), nil
	}

	res := r.Run(context.Background(), job)
	if !res.Success || len(res.OutputFrames) != 3 {
		t.Fatalf("result = %+v", res)
	}
	if loaded != info {
		t.Error("frames should be decoded from the probed source")
	}
}

func TestRunnerLiteFailureIsAResult(t *testing.T) {
	r := NewRunner(nil, nil)
	r.LoadFrames = func(ctx context.Context, in *video.Info) ([]image.Image, error) {
		return nil, errors.New("decode failed")
	}
	job := &Job{
		ID:        "job",
		Mode:      mode.Lite,
		Info:      &video.Info{Path: "clip.mp4"},
		FPS:       30,
		Alignment: mustSequence(t),
		Style:     buildStyle(t, nil),
	}

	res := r.Run(context.Background(), job)
	if res.Success || res.Message != "decode failed" || res.OutputFrames != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestRunnerBackend(t *testing.T) {
	b, command, _ := newTestBackend(t)
	r := NewRunner(logging.NewNop(), nil)
	r.Backend = b

	job, err := NewJob(context.Background(), Request{
		VideoPath: "/videos/talk.mp4",
		Mode:      mode.Backend,
		FPS:       25,
		Alignment: mustSequence(t, alignment.Entry{Start: 0, End: 2, Text: "hi"}),
		Style:     buildStyle(t, nil),
	}, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	res := r.Run(context.Background(), job)
	if !res.Success || res.Mode != mode.Backend || res.OutputPath == "" {
		t.Fatalf("result = %+v", res)
	}
	if res.OutputFrames != nil {
		t.Error("backend results carry no frames")
	}
	if len(command.calls) != 1 || command.calls[0].FPS != 25 {
		t.Errorf("command calls = %+v", command.calls)
	}
}
