package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidops/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var thresholdFlag float64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize transcript quality across the generated directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			summary, err := report.Scan(cfg.GeneratedPath(), thresholdFlag, logger)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeReportJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			if len(summary.Files) == 0 {
				fmt.Fprintln(out, "No word tables found")
				return nil
			}

			rows := make([][]string, 0, len(summary.Files))
			for _, file := range summary.Files {
				rows = append(rows, []string{
					file.MediaFile,
					fmt.Sprintf("%d", file.Segments),
					fmt.Sprintf("%d", file.Words),
					fmt.Sprintf("%.3f", file.AvgConfidence),
					fmt.Sprintf("%.3f", file.MinConfidence),
					fmt.Sprintf("%d", file.LowConfidence),
					fmt.Sprintf("%d", file.Retried),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Media File", "Segments", "Words", "Avg Conf", "Min Conf", "Low", "Retried"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "%d files, %d segments, %d words, %d low-confidence segments\n",
				len(summary.Files), summary.Segments, summary.Words, summary.LowConfidence)
			return nil
		},
	}

	cmd.Flags().Float64Var(&thresholdFlag, "threshold", report.DefaultLowConfidence,
		"Confidence at or below which a segment counts as low quality")

	return cmd
}

func writeReportJSON(cmd *cobra.Command, summary *report.Summary) error {
	type jsonFile struct {
		MediaFile     string  `json:"media_file"`
		Segments      int     `json:"segments"`
		Words         int     `json:"words"`
		AvgConfidence float64 `json:"avg_confidence"`
		MinConfidence float64 `json:"min_confidence"`
		MaxConfidence float64 `json:"max_confidence"`
		LowConfidence int     `json:"low_confidence"`
		Retried       int     `json:"retried"`
	}
	files := make([]jsonFile, 0, len(summary.Files))
	for _, file := range summary.Files {
		files = append(files, jsonFile{
			MediaFile:     file.MediaFile,
			Segments:      file.Segments,
			Words:         file.Words,
			AvgConfidence: file.AvgConfidence,
			MinConfidence: file.MinConfidence,
			MaxConfidence: file.MaxConfidence,
			LowConfidence: file.LowConfidence,
			Retried:       file.Retried,
		})
	}
	return writeJSON(cmd, map[string]any{
		"files":          files,
		"segments":       summary.Segments,
		"words":          summary.Words,
		"low_confidence": summary.LowConfidence,
	})
}
