package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidops/internal/catalog"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show VIDEO_ID",
		Short: "Display the catalogued assets for one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg.CatalogPath())
			if err != nil {
				return err
			}
			defer store.Close()

			assets, err := store.GetByVideoID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeShowJSON(cmd, args[0], assets)
			}

			out := cmd.OutOrStdout()
			if len(assets) == 0 {
				fmt.Fprintf(out, "No catalogued assets for %s; run `vidops export` to refresh the catalog\n", args[0])
				return nil
			}

			rows := make([][]string, 0, len(assets))
			for _, asset := range assets {
				rows = append(rows, []string{
					asset.MediaFile,
					asset.Source,
					asset.Language,
					fmt.Sprintf("%d", asset.SegmentCount),
					fmt.Sprintf("%d", asset.WordCount),
					fmt.Sprintf("%.3f", asset.AvgConfidence),
					fmt.Sprintf("%.1fs", asset.DurationSeconds),
					fmt.Sprintf("%d", asset.RetriedSegments),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Media File", "Source", "Lang", "Segments", "Words", "Avg Conf", "Duration", "Retried"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	return cmd
}

func writeShowJSON(cmd *cobra.Command, videoID string, assets []catalog.Asset) error {
	type jsonAsset struct {
		MediaFile       string  `json:"media_file"`
		WordTable       string  `json:"word_table,omitempty"`
		VTTFile         string  `json:"vtt_file,omitempty"`
		Source          string  `json:"source"`
		Language        string  `json:"language,omitempty"`
		Segments        int     `json:"segments"`
		Words           int     `json:"words"`
		AvgConfidence   float64 `json:"avg_confidence"`
		DurationSeconds float64 `json:"duration_seconds"`
		Retried         int     `json:"retried_segments"`
	}
	items := make([]jsonAsset, 0, len(assets))
	for _, asset := range assets {
		items = append(items, jsonAsset{
			MediaFile:       asset.MediaFile,
			WordTable:       asset.WordTable,
			VTTFile:         asset.VTTFile,
			Source:          asset.Source,
			Language:        asset.Language,
			Segments:        asset.SegmentCount,
			Words:           asset.WordCount,
			AvgConfidence:   asset.AvgConfidence,
			DurationSeconds: asset.DurationSeconds,
			Retried:         asset.RetriedSegments,
		})
	}
	return writeJSON(cmd, map[string]any{
		"video_id": videoID,
		"assets":   items,
	})
}
