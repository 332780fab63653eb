package processor

import (
	"image"
	"time"

	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/style"
)

// Result is returned to the host once per invocation. On success
// OutputPath is set in backend mode and OutputFrames in lite mode.
type Result struct {
	JobID        string
	Mode         mode.Mode
	Renderer     style.Renderer
	OutputPath   string
	OutputFrames []image.Image
	Success      bool
	Message      string
	Frames       int
	Size         int64
	Elapsed      time.Duration
}

func failure(msg string) Result {
	return Result{Success: false, Message: msg}
}
