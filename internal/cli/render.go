package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/config"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/metrics"
	"github.com/mgpai22/subburn/internal/processor"
	"github.com/mgpai22/subburn/internal/render"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

type renderOptions struct {
	style       styleFlags
	alignment   string
	framesDir   string
	mode        string
	fps         float64
	codec       string
	crf         int
	preset      string
	workers     int
	outputDir   string
	dryRun      bool
	metricsFile string
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [video_file]",
		Short: "Burn subtitles into a video or a directory of frames",
		Long: `Render the entries of an alignment file (JSON, SRT, VTT or ASS) onto a video.

Videos shorter than two minutes are decoded and rendered in memory; longer ones
are streamed from disk. --mode forces either path. A directory of image frames
can be rendered instead of a video with --frames-dir and --fps; the rendered
frames are written as numbered PNG files.

Examples:
  subburn render talk.mp4 --alignment words.json
  subburn render clip.mp4 -a clip.srt --animation fade --position top_center
  subburn render long.mkv -a long.vtt --mode backend -o out/long_subs.mp4
  subburn render --frames-dir frames/ --fps 30 -a words.json
  subburn render talk.mp4 -a words.json --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, ctx, &opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.alignment, "alignment", "a", "", "Alignment file (json, srt, vtt, ass)")
	flags.StringVar(&opts.framesDir, "frames-dir", "", "Render a directory of image frames instead of a video")
	flags.StringVarP(&opts.mode, "mode", "m", "", "Processing mode (auto, lite, backend)")
	flags.Float64Var(&opts.fps, "fps", 0, "Frame rate (required with --frames-dir, probed for videos)")
	flags.StringVar(&opts.codec, "codec", "", "Video codec for the output")
	flags.IntVar(&opts.crf, "crf", 0, "Constant rate factor for the output")
	flags.StringVar(&opts.preset, "preset", "", "Encoder preset for the output")
	flags.IntVar(&opts.workers, "workers", 0, "Frame render workers (0 = one per CPU)")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Root directory for generated output names")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the render plan and ffmpeg command without running it")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the render")
	addStyleFlags(cmd, &opts.style)
	_ = cmd.MarkFlagRequired("alignment")

	return cmd
}

// settings layers the command line flags over the loaded config
func (o *renderOptions) settings(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	o.style.apply(cmd, &cfg.Style)

	changed := cmd.Flags().Changed
	if changed("codec") {
		cfg.Encode.Codec = o.codec
	}
	if changed("crf") {
		cfg.Encode.CRF = o.crf
	}
	if changed("preset") {
		cfg.Encode.Preset = o.preset
	}
	if changed("workers") {
		cfg.Processing.Workers = o.workers
	}
	if changed("output-dir") {
		dir, err := config.ExpandPath(o.outputDir)
		if err != nil {
			return nil, err
		}
		cfg.Paths.OutputDir = dir
	}
	if changed("mode") {
		cfg.Style.ProcessingMode = o.mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runRender(cmd *cobra.Command, ctx *commandContext, opts *renderOptions, args []string) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := opts.settings(cmd, base)
	if err != nil {
		return err
	}
	s, err := cfg.BuildStyle()
	if err != nil {
		return err
	}

	var videoPath string
	if len(args) == 1 {
		videoPath = args[0]
	}
	if (videoPath == "") == (opts.framesDir == "") {
		return errs.Configuration("render", "give either a video file or --frames-dir")
	}
	if videoPath != "" {
		if _, err := os.Stat(videoPath); err != nil {
			return errs.IO("render", err)
		}
		if !video.IsVideoFile(videoPath) {
			return errs.Configuration("render", "unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
		}
	}

	seq, err := alignment.Load(opts.alignment)
	if err != nil {
		return errs.Configuration("alignment", "%v", err)
	}

	logger := ctx.log()
	if opts.dryRun {
		return printDryRun(cmd, cfg, s, seq, videoPath, ctx.outputFlag)
	}

	req := processor.Request{
		VideoPath:  videoPath,
		OutputPath: ctx.outputFlag,
		FPS:        opts.fps,
		Alignment:  seq,
		Style:      s,
		Mode:       s.ProcessingMode,
	}
	if opts.framesDir != "" {
		logger.Infow("Loading frames", "dir", opts.framesDir)
		if req.Frames, err = video.ReadFrameDir(opts.framesDir); err != nil {
			return errs.IO("render", err)
		}
	}

	job, err := processor.NewJob(cmd.Context(), req, processor.DefaultProber)
	if err != nil {
		return err
	}

	m := metrics.New()
	runner := processor.NewRunner(logger, m)
	runner.Backend.OutputRoot = cfg.Paths.OutputDir
	runner.Backend.Encode = cfg.EncodeOptions()
	runner.Lite.Workers = cfg.Processing.Workers

	res := runner.Run(cmd.Context(), job)

	saved := res.OutputPath
	if res.Success && res.OutputFrames != nil {
		source := videoPath
		if source == "" {
			source = opts.framesDir
		}
		saved, err = saveLiteOutput(cmd.Context(), job, res.OutputFrames, source, cfg)
		if err != nil {
			res.Success = false
			res.Message = err.Error()
		}
	}

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warnw("Failed to write metrics", "path", opts.metricsFile, "error", err)
		}
	}

	if !res.Success {
		return fmt.Errorf("render failed: %s", res.Message)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res, saved))
	return nil
}

// lite results are frames; write them where the user expects a file
func saveLiteOutput(
	ctx context.Context,
	job *processor.Job,
	frames []image.Image,
	source string,
	cfg *config.Config,
) (string, error) {
	out := job.OutputPath
	dir := processor.OutputDir(cfg.Paths.OutputDir)

	if job.VideoPath == "" {
		if out == "" {
			out = processor.GeneratePath(dir, source, "", time.Now())
		}
		if _, err := video.WriteFrameDir(out, frames); err != nil {
			return "", errs.IO("save frames", err)
		}
		return out, nil
	}

	if out == "" {
		out = processor.GeneratePath(dir, source, ".mp4", time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", errs.IO("save video", err)
	}

	partial, err := video.NewPartialFile(out)
	if err != nil {
		return "", errs.IO("save video", err)
	}
	defer partial.Discard()

	var audioFrom string
	if job.Info != nil && job.Info.HasAudio() {
		audioFrom = job.VideoPath
	}
	if err := video.WriteFrames(ctx, frames, partial.Path, job.FPS, audioFrom, cfg.EncodeOptions()); err != nil {
		return "", errs.Render("save video", err)
	}
	if err := partial.Commit(); err != nil {
		return "", errs.IO("save video", err)
	}
	return out, nil
}

func renderSummary(res processor.Result, saved string) string {
	pairs := [][2]string{
		{"Job", res.JobID},
		{"Mode", res.Mode.String()},
		{"Renderer", string(res.Renderer)},
		{"Output", saved},
	}
	if n := max(res.Frames, len(res.OutputFrames)); n > 0 {
		pairs = append(pairs, [2]string{"Frames", humanize.Comma(int64(n))})
	}
	if res.Size > 0 {
		pairs = append(pairs, [2]string{"Size", humanize.Bytes(uint64(res.Size))})
	}
	pairs = append(pairs, [2]string{"Elapsed", res.Elapsed.Round(time.Millisecond).String()})
	return renderPairs(pairs)
}

func printDryRun(
	cmd *cobra.Command,
	cfg *config.Config,
	s *style.Style,
	seq *alignment.Sequence,
	videoPath string,
	output string,
) error {
	if videoPath == "" {
		return errs.Configuration("dry run", "a dry run needs a video file")
	}
	out := cmd.OutOrStdout()

	enc := cfg.EncodeOptions().WithDefaults()
	pairs := [][2]string{
		{"Input", videoPath},
		{"Entries", strconv.Itoa(seq.Len())},
		{"Mode", s.ProcessingMode.String()},
		{"Renderer", string(s.Renderer)},
		{"Animation", string(s.Animation)},
		{"Position", describePosition(s)},
		{"Encode", fmt.Sprintf("%s crf=%d preset=%s", enc.Codec, enc.CRF, enc.Preset)},
	}

	renderer := render.NewCommandRenderer(nil)
	if s.Renderer == style.RendererFFmpeg {
		if err := renderer.Supports(s); err != nil {
			pairs = append(pairs, [2]string{"Fallback", string(style.RendererPillow) + ": " + err.Error()})
			s = s.With(style.RendererPillow)
		}
	}
	fmt.Fprintln(out, renderPairs(pairs))

	if s.Renderer != style.RendererFFmpeg {
		fmt.Fprintln(out, "Frames are rendered in-process; no single ffmpeg command to show.")
		return nil
	}

	if output == "" {
		output = processor.GeneratePath(processor.OutputDir(cfg.Paths.OutputDir), videoPath, ".mp4", time.Now())
	}
	args, cleanup, err := renderer.BuildArgs(render.Job{
		VideoPath:  videoPath,
		OutputPath: output,
		Alignment:  seq,
		Style:      s,
		Encode:     enc,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(out, "ffmpeg "+shellJoin(args))
	return nil
}

func describePosition(s *style.Style) string {
	if s.Preset == style.PresetCustom {
		return fmt.Sprintf("custom (%d, %d)", s.X, s.Y)
	}
	return string(s.Preset)
}

// quotes arguments that a POSIX shell would split or expand
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\$`;&|<>()[]{}*?!#~,=") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
