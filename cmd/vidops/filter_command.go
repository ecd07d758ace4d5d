package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidops/internal/clipfilter"
)

func newFilterClipsCommand(ctx *commandContext) *cobra.Command {
	var (
		padStartFlag float64
		padEndFlag   float64
		todoFlag     string
		presentFlag  string
	)

	cmd := &cobra.Command{
		Use:   "filter-clips TSV CLIPS_DIR",
		Short: "Drop clip rows whose spans were already cut",
		Long: "Filter-clips compares each row of a clip TSV against the clip files " +
			"in CLIPS_DIR and splits the rows into a todo list and an already-present " +
			"list. Matching tolerates the 2-decimal rounding in clip filenames.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			todoPath := todoFlag
			if todoPath == "" {
				todoPath = derivedOutputPath(args[0], ".todo.tsv")
			}
			presentPath := presentFlag
			if presentPath == "" {
				presentPath = derivedOutputPath(args[0], ".present.tsv")
			}

			opts := clipfilter.Options{PadStart: padStartFlag, PadEnd: padEndFlag}
			result, err := clipfilter.Filter(args[0], args[1], opts, todoPath, presentPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rows already present: %d\n", result.Removed)
			fmt.Fprintf(out, "Rows to download: %d\n", result.Kept)
			fmt.Fprintf(out, "Todo list written to %s\n", todoPath)
			fmt.Fprintf(out, "Present list written to %s\n", presentPath)
			return nil
		},
	}

	cmd.Flags().Float64Var(&padStartFlag, "pad-start", 0, "Seconds subtracted from each row's start before matching")
	cmd.Flags().Float64Var(&padEndFlag, "pad-end", 0, "Seconds added to each row's end before matching")
	cmd.Flags().StringVar(&todoFlag, "out-todo", "", "Filtered TSV destination (default: <tsv>.todo.tsv)")
	cmd.Flags().StringVar(&presentFlag, "out-present", "", "Already-present TSV destination (default: <tsv>.present.tsv)")

	return cmd
}

// derivedOutputPath swaps a .tsv extension for suffix, or appends it.
func derivedOutputPath(tsvPath, suffix string) string {
	if strings.HasSuffix(tsvPath, ".tsv") {
		return strings.TrimSuffix(tsvPath, ".tsv") + suffix
	}
	return tsvPath + suffix
}
