package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subburn/internal/errs"
	ffmpegbin "github.com/mgpai22/subburn/internal/ffmpeg"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

// graphs longer than this go through -filter_script instead of argv
const maxInlineFilter = 64 << 10

// CommandRenderer burns subtitles in a single ffmpeg run using one
// drawtext filter per entry.
type CommandRenderer struct {
	// empty resolves ffmpeg through the usual lookup
	FFmpegPath string
	// directory for temporary font and filter files, empty for os.TempDir
	TempDir string
	Logger  *logging.Logger
}

func NewCommandRenderer(logger *logging.Logger) *CommandRenderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CommandRenderer{Logger: logger}
}

func (c *CommandRenderer) log() *logging.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func (c *CommandRenderer) Name() style.Renderer {
	return style.RendererFFmpeg
}

// zoom would need per-frame font sizes, which drawtext can't animate
func (c *CommandRenderer) Supports(s *style.Style) error {
	if s.Animation == style.AnimationZoom {
		return fmt.Errorf("%w: ffmpeg renderer cannot animate %s", ErrUnsupported, s.Animation)
	}
	return nil
}

// commandFiles are the temporary files backing one ffmpeg invocation
type commandFiles struct {
	paths []string
}

func (f *commandFiles) cleanup() {
	for _, p := range f.paths {
		_ = os.Remove(p)
	}
	f.paths = nil
}

// BuildArgs returns the ffmpeg arguments for job and the temporary files
// they reference. cleanup must be called once the arguments are no
// longer needed.
func (c *CommandRenderer) BuildArgs(job Job) (args []string, cleanup func(), err error) {
	files := &commandFiles{}
	defer func() {
		if err != nil {
			files.cleanup()
		}
	}()

	fontFile := job.Style.FontPath
	if fontFile == "" {
		if fontFile, err = writeDefaultFont(c.TempDir); err != nil {
			return nil, nil, errs.IO("ffmpeg render", err)
		}
		files.paths = append(files.paths, fontFile)
	} else if _, err = os.Stat(fontFile); err != nil {
		return nil, nil, errs.Render("load font", err)
	}

	enc := job.Encode.WithDefaults()
	kwargs := ffmpeg.KwArgs{
		"c:v":    enc.Codec,
		"crf":    enc.CRF,
		"preset": enc.Preset,
		"c:a":    "copy",
	}

	if job.Alignment.Len() > 0 {
		graph := FilterGraph(job.Alignment, job.Style, fontFile)
		if len(graph) > maxInlineFilter {
			script, werr := writeFilterScript(c.TempDir, graph)
			if werr != nil {
				return nil, nil, errs.IO("ffmpeg render", werr)
			}
			files.paths = append(files.paths, script)
			kwargs["filter_script:v"] = script
		} else {
			kwargs["vf"] = graph
		}
	}

	args = ffmpeg.Input(job.VideoPath).
		Output(job.OutputPath, kwargs).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
	return args, files.cleanup, nil
}

func writeFilterScript(dir, graph string) (string, error) {
	f, err := os.CreateTemp(dir, "subburn-filter-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create filter script: %w", err)
	}
	if _, err := f.WriteString(graph); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write filter script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write filter script: %w", err)
	}
	return f.Name(), nil
}

// Render runs ffmpeg once over the whole file. Success requires a zero
// exit status and a non-empty output file. An existing output is only
// replaced on success.
func (c *CommandRenderer) Render(ctx context.Context, job Job) (*Output, error) {
	const op = "ffmpeg render"

	if err := c.Supports(job.Style); err != nil {
		return nil, errs.Render(op, err)
	}
	if _, err := os.Stat(job.VideoPath); err != nil {
		return nil, errs.IO(op, err)
	}
	if video.SameFile(job.VideoPath, job.OutputPath) {
		return nil, errs.Configuration(op, "output %s is the input video", job.OutputPath)
	}

	ffmpegPath := c.FFmpegPath
	if ffmpegPath == "" {
		var err error
		if ffmpegPath, err = ffmpegbin.FFmpegPath(); err != nil {
			return nil, errs.Render(op, err)
		}
	}

	partial, err := video.NewPartialFile(job.OutputPath)
	if err != nil {
		return nil, errs.IO(op, err)
	}
	defer partial.Discard()

	staged := job
	staged.OutputPath = partial.Path
	args, cleanup, err := c.BuildArgs(staged)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	c.log().Debugw("Running ffmpeg",
		"entries", job.Alignment.Len(),
		"args", len(args),
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Render(op, fmt.Errorf("ffmpeg failed: %w: %s", err, lastLines(stderr.String(), 20)))
	}

	stat, err := os.Stat(partial.Path)
	if err != nil {
		return nil, errs.IO(op, err)
	}
	if stat.Size() == 0 {
		return nil, errs.Renderf(op, "ffmpeg produced an empty file: %s", lastLines(stderr.String(), 20))
	}
	if err := partial.Commit(); err != nil {
		return nil, errs.IO(op, err)
	}

	return &Output{
		Path:   job.OutputPath,
		Size:   stat.Size(),
		Stderr: stderr.String(),
	}, nil
}

func lastLines(s string, n int) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}
