package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"vidops/internal/dates"
	"vidops/internal/mediaid"
)

func newDatesCommand(ctx *commandContext) *cobra.Command {
	datesCmd := &cobra.Command{
		Use:   "dates",
		Short: "Reconcile stream dates between pulled media and an archive cache",
	}

	datesCmd.AddCommand(newDatesCompareCommand(ctx))
	datesCmd.AddCommand(newDatesMissingCommand(ctx))
	datesCmd.AddCommand(newDatesDownloadListCommand(ctx))

	return datesCmd
}

func newDatesCompareCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "compare CACHE",
		Short: "Compare pulled dates against an archive title cache",
		Long: "Compare extracts the stream date from every pulled opus filename and " +
			"from every title in the archive cache (a JSON map of video id to title), " +
			"then reports which dates exist on only one side.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pullDates, err := dates.ScanPullDir(cfg.PullPath())
			if err != nil {
				return err
			}
			cache, err := dates.ReadTitleCache(args[0])
			if err != nil {
				return err
			}
			archiveDates := cache.Dates()
			comparison := dates.Compare(pullDates, archiveDates)

			outputPath := outputFlag
			if outputPath == "" {
				outputPath = filepath.Join(cfg.Paths.ProjectRoot, "date_comparison.txt")
			}
			if err := dates.WriteComparison(outputPath, comparison); err != nil {
				return fmt.Errorf("write comparison: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pull dates: %d, archive dates: %d\n", len(pullDates), len(archiveDates))
			fmt.Fprintf(out, "In both: %d, only in pull: %d, only in archive: %d\n",
				len(comparison.Both), len(comparison.PullOnly), len(comparison.ArchiveOnly))
			fmt.Fprintf(out, "Comparison written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Comparison report destination (default: <project root>/date_comparison.txt)")

	return cmd
}

func newDatesMissingCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "missing DATES_FILE",
		Short: "List wanted dates with no pulled media",
		Long: "Missing reads one YYYY-MM-DD date per line from DATES_FILE and writes " +
			"the dates for which the pull directory holds no opus file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			requested, err := dates.ReadDates(args[0])
			if err != nil {
				return err
			}
			pullDates, err := dates.ScanPullDir(cfg.PullPath())
			if err != nil {
				return err
			}
			missing := dates.Missing(requested, pullDates)

			outputPath := outputFlag
			if outputPath == "" {
				outputPath = filepath.Join(cfg.Paths.ProjectRoot, "missing_dates.txt")
			}
			if err := mediaid.WriteLines(outputPath, missing); err != nil {
				return fmt.Errorf("write missing dates: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Requested: %d, found: %d, missing: %d\n",
				len(requested), len(requested)-len(missing), len(missing))
			fmt.Fprintf(out, "Missing dates written to %s\n", outputPath)

			if len(missing) > 0 {
				limit := len(missing)
				if limit > 10 {
					limit = 10
				}
				fmt.Fprintln(out, "Missing dates (first 10):")
				for _, date := range missing[:limit] {
					fmt.Fprintf(out, "  %s\n", date)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Missing-date list destination (default: <project root>/missing_dates.txt)")

	return cmd
}

func newDatesDownloadListCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "download-list MISSING_FILE CACHE",
		Short: "Turn missing dates into watch URLs via the archive cache",
		Long: "Download-list matches each missing date against the archive title " +
			"cache and writes one watch URL per matched date, ready to feed a puller.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			missing, err := dates.ReadDates(args[0])
			if err != nil {
				return err
			}
			cache, err := dates.ReadTitleCache(args[1])
			if err != nil {
				return err
			}
			urls, unmatched := cache.DownloadURLs(missing)

			outputPath := outputFlag
			if outputPath == "" {
				outputPath = filepath.Join(cfg.Paths.ProjectRoot, "download_list.txt")
			}
			if err := mediaid.WriteLines(outputPath, urls); err != nil {
				return fmt.Errorf("write download list: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Matched %d of %d missing dates (%d not in cache)\n",
				len(urls), len(missing), unmatched)
			fmt.Fprintf(out, "Download list written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "URL list destination (default: <project root>/download_list.txt)")

	return cmd
}
