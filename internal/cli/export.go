package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/subtitle"
	"github.com/mgpai22/subburn/internal/video"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		group     bool
		videoPath string
		width     int
		height    int
		styles    styleFlags
	)

	cmd := &cobra.Command{
		Use:   "export [alignment_file]",
		Short: "Write an alignment as a subtitle file",
		Long: `Convert an alignment into an SRT, WebVTT or ASS subtitle file.

ASS output carries the configured style, position and animation, so players
that support it show the same subtitles a render would burn in. --group merges
word level entries into readable cues first.

Examples:
  subburn export words.json -f srt --group
  subburn export words.json -f ass --animation fade --video talk.mp4
  subburn export talk.vtt -f ass -o talk.ass`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			f, err := subtitle.ParseFormat(format)
			if err != nil {
				return errs.Configuration("export", "%v", err)
			}
			// -o talk.vtt implies the format
			if !cmd.Flags().Changed("format") && ctx.outputFlag != "" {
				f = subtitle.FormatFromPath(ctx.outputFlag)
			}

			sc := cfg.Style
			styles.apply(cmd, &sc)
			settings := *cfg
			settings.Style = sc
			s, err := settings.BuildStyle()
			if err != nil {
				return err
			}

			seq, err := alignment.Load(args[0])
			if err != nil {
				return errs.Configuration("alignment", "%v", err)
			}
			if group {
				if seq, err = subtitle.NewGrouper().Group(seq); err != nil {
					return err
				}
			}

			writer, err := subtitle.NewWriter(f, s)
			if err != nil {
				return errs.Configuration("export", "%v", err)
			}
			if ass, ok := writer.(*subtitle.ASSWriter); ok {
				ass.Width, ass.Height = width, height
				if videoPath != "" {
					info, err := video.Probe(cmd.Context(), videoPath)
					if err != nil {
						return errs.IO("export", err)
					}
					ass.Width, ass.Height = info.Width, info.Height
				}
			}

			outputPath := ctx.outputFlag
			if outputPath == "" {
				outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + f.Extension()
			}
			if filepath.Clean(outputPath) == filepath.Clean(args[0]) {
				return errs.Configuration("export", "refusing to overwrite the input %s", args[0])
			}

			ctx.log().Infow("Exporting subtitles",
				"input", args[0],
				"output", outputPath,
				"format", f,
				"entries", seq.Len(),
			)
			if err := subtitle.WriteFile(outputPath, seq, writer); err != nil {
				return err
			}

			absOutput, _ := filepath.Abs(outputPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s (%d entries)\n", absOutput, seq.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	cmd.Flags().BoolVar(&group, "group", false, "Merge word level entries into cues")
	cmd.Flags().StringVar(&videoPath, "video", "", "Take the ASS script resolution from this video")
	cmd.Flags().IntVar(&width, "width", 0, "ASS script width (default 1920)")
	cmd.Flags().IntVar(&height, "height", 0, "ASS script height (default 1080)")
	addStyleFlags(cmd, &styles)
	return cmd
}
