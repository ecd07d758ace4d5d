package main

import (
	"github.com/spf13/cobra"

	"vidops/internal/hits"
)

func newHitsCommand(ctx *commandContext) *cobra.Command {
	var padFlag float64

	cmd := &cobra.Command{
		Use:   "hits WORD",
		Short: "Find exact word occurrences across the project's word tables",
		Long: "Hits walks the project tree for word tables, matches WORD exactly " +
			"(case-insensitive), and prints a clip-pipeline TSV with padded time " +
			"bounds, provenance URL, and source media name.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			searcher := hits.NewSearcher(cfg.Paths.ProjectRoot, logger)
			found, err := searcher.Find(args[0], padFlag)
			if err != nil {
				return err
			}
			return hits.WriteTSV(cmd.OutOrStdout(), found)
		},
	}

	cmd.Flags().Float64Var(&padFlag, "pad", hits.DefaultPad, "Seconds of padding around each hit")

	return cmd
}
