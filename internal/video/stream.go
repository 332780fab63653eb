package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subburn/internal/ffmpeg"
)

const stderrTailSize = 4 << 10

// DecodeArgs returns ffmpeg arguments that write path's video as raw
// RGBA frames to stdout.
func DecodeArgs(path string) []string {
	return ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
			"an":      "",
			"sn":      "",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()
}

// EncodeArgs returns ffmpeg arguments that encode raw RGBA frames read
// from stdin into out. When audioFrom is set its first audio stream is
// copied into the output unchanged.
func EncodeArgs(
	out string,
	width, height int,
	fps float64,
	audioFrom string,
	opts EncodeOptions,
) []string {
	opts = opts.WithDefaults()

	frames := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": strconv.FormatFloat(fps, 'f', -1, 64),
	})
	streams := []*ffmpeg.Stream{frames}

	kwargs := ffmpeg.KwArgs{
		"c:v":     opts.Codec,
		"crf":     opts.CRF,
		"preset":  opts.Preset,
		"pix_fmt": "yuv420p",
	}
	// yuv420p needs even dimensions
	if width%2 != 0 || height%2 != 0 {
		kwargs["vf"] = "pad=ceil(iw/2)*2:ceil(ih/2)*2"
	}
	if audioFrom != "" {
		streams = append(streams, ffmpeg.Input(audioFrom).Audio())
		kwargs["c:a"] = "copy"
	}

	return ffmpeg.Output(streams, out, kwargs).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// FrameReader streams decoded frames of a video file without holding
// more than one frame in memory.
type FrameReader struct {
	width, height int
	cmd           *exec.Cmd
	stdout        io.ReadCloser
	stderr        *tailBuffer
	frames        int
	done          bool
}

func OpenFrameReader(ctx context.Context, info *Info) (*FrameReader, error) {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, DecodeArgs(info.Path)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open decoder pipe: %w", err)
	}
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start decoder: %w", err)
	}

	return &FrameReader{
		width:  info.Width,
		height: info.Height,
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// NewFrame allocates a frame buffer sized for Next.
func (r *FrameReader) NewFrame() *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
}

// Next decodes the next frame into dst. It returns io.EOF after the
// last frame.
func (r *FrameReader) Next(dst *image.NRGBA) error {
	if r.done {
		return io.EOF
	}
	if err := checkFrame(dst, r.width, r.height); err != nil {
		return err
	}

	n, err := io.ReadFull(r.stdout, dst.Pix[:r.width*r.height*4])
	switch {
	case err == io.EOF:
		r.done = true
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("truncated frame %d: got %d bytes", r.frames, n)
	case err != nil:
		return fmt.Errorf("failed to read frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames is the number of frames decoded so far.
func (r *FrameReader) Frames() int {
	return r.frames
}

// Close stops the decoder. A decoder failure is reported only if the
// stream was read to the end.
func (r *FrameReader) Close() error {
	if !r.done && r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.stdout.Close()
	err := r.cmd.Wait()
	if r.done && err != nil {
		return fmt.Errorf("decoder failed: %w: %s", err, r.stderr.String())
	}
	return nil
}

// FrameWriter encodes frames into a video file through an ffmpeg pipe.
type FrameWriter struct {
	width, height int
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	stderr        *tailBuffer
	closed        bool
}

func OpenFrameWriter(
	ctx context.Context,
	out string,
	width, height int,
	fps float64,
	audioFrom string,
	opts EncodeOptions,
) (*FrameWriter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %v", fps)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	args := EncodeArgs(out, width, height, fps, audioFrom, opts)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open encoder pipe: %w", err)
	}
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	return &FrameWriter{
		width:  width,
		height: height,
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
	}, nil
}

func (w *FrameWriter) Write(frame *image.NRGBA) error {
	if err := checkFrame(frame, w.width, w.height); err != nil {
		return err
	}
	if _, err := w.stdin.Write(frame.Pix[:w.width*w.height*4]); err != nil {
		return fmt.Errorf("encoder write failed: %w: %s", err, w.stderr.String())
	}
	return nil
}

// Close flushes the encoder and waits for it to finish writing the file.
func (w *FrameWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("encoder failed: %w: %s", err, w.stderr.String())
	}
	return nil
}

// frames must be tightly packed at the origin to go through the pipes
func checkFrame(img *image.NRGBA, width, height int) error {
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	b := img.Bounds()
	if b.Min != (image.Point{}) || b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("frame is %v, want %dx%d", b, width, height)
	}
	if img.Stride != width*4 {
		return fmt.Errorf("frame stride %d, want %d", img.Stride, width*4)
	}
	return nil
}

// keeps the last max bytes written, for ffmpeg diagnostics
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
