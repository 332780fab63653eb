package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/mode"
	"github.com/mgpai22/subburn/internal/video"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		videoPath string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "inspect [alignment_file]",
		Short: "Show the entries of an alignment file and the suggested mode",
		Long: `Print the entries of an alignment file as a table, followed by a summary
with the processing mode auto selection would pick. With --video the mode is
chosen from the probed video duration, otherwise from the last entry's end.

Examples:
  subburn inspect words.json
  subburn inspect talk.srt --video talk.mp4 --limit 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := alignment.Load(args[0])
			if err != nil {
				return errs.Configuration("alignment", "%v", err)
			}

			duration := seq.Duration()
			source := "alignment"
			if videoPath != "" {
				info, err := video.Probe(cmd.Context(), videoPath)
				if err != nil {
					return errs.IO("inspect", err)
				}
				duration = info.Duration
				source = "video"
			}
			ctx.log().Debugw("Inspecting alignment", "path", args[0], "entries", seq.Len())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, entriesTable(seq, limit))
			fmt.Fprintln(out, renderPairs(inspectSummary(seq, duration, source)))
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Video to take the duration from")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to print (0 for all)")
	return cmd
}

func entriesTable(seq *alignment.Sequence, limit int) string {
	n := seq.Len()
	if limit > 0 && limit < n {
		n = limit
	}

	rows := make([][]string, 0, n+1)
	for i := range n {
		e := seq.At(i)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seconds(e.Start),
			seconds(e.End),
			seconds(e.Length()),
			e.Text,
		})
	}
	if n < seq.Len() {
		rows = append(rows, []string{"", "", "", "", fmt.Sprintf("... %d more", seq.Len()-n)})
	}

	return renderTable(
		[]string{"#", "Start", "End", "Length", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func inspectSummary(seq *alignment.Sequence, duration float64, source string) [][2]string {
	return [][2]string{
		{"Entries", strconv.Itoa(seq.Len())},
		{"Overlapping", strconv.Itoa(countOverlaps(seq))},
		{"Duration", fmt.Sprintf("%s (%s)", seconds(duration), source)},
		{"Suggested mode", mode.Select(duration, mode.Auto).String()},
	}
}

// entries that start before an earlier entry has ended
func countOverlaps(seq *alignment.Sequence) int {
	var (
		count  int
		maxEnd float64
	)
	for i := range seq.Len() {
		e := seq.At(i)
		if i > 0 && e.Start < maxEnd {
			count++
		}
		maxEnd = max(maxEnd, e.End)
	}
	return count
}

func seconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
