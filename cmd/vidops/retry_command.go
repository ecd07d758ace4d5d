package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vidops/internal/retry"
	"vidops/internal/whisper"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRunFlag  bool
		workersFlag int
	)

	cmd := &cobra.Command{
		Use:   "retry MANIFEST [MANIFEST...]",
		Short: "Re-transcribe the segments listed in retry manifests",
		Long: "Retry re-extracts the audio for each flagged segment, runs the " +
			"configured transcriber over it, and patches the corrected text and " +
			"confidence into the project's VTT files and word tables. Fully " +
			"handled manifests are renamed with a .processed suffix.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			workers := cfg.Retry.Workers
			if cmd.Flags().Changed("workers") {
				workers = workersFlag
			}

			service := whisper.NewService(whisper.Config{
				Command:  cfg.Retry.Transcriber,
				Model:    cfg.Retry.Model,
				Language: cfg.Retry.Language,
			}, cfg.FFmpegBinary())

			worker := retry.NewWorker(service, retry.Options{
				ProjectRoot:  cfg.Paths.ProjectRoot,
				GeneratedDir: cfg.GeneratedPath(),
				Workers:      workers,
				DryRun:       dryRunFlag,
				LockPath:     filepath.Join(cfg.Paths.LogDir, "retry.lock"),
				ShowProgress: shouldColorize(os.Stderr),
			}, logger)

			summary, err := worker.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Retried %d of %d segments across %d media files (%d skipped, %d failed)\n",
				summary.Retried, summary.Segments, summary.MediaFiles, summary.Skipped, summary.Failed)
			for _, path := range summary.Processed {
				fmt.Fprintf(out, "Processed manifest: %s\n", path)
			}
			if dryRunFlag {
				fmt.Fprintln(out, "Dry run: no files were modified")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report what would be retried without touching any files")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent re-transcriptions per media file (default from config)")

	return cmd
}
