package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidops/internal/catalog"
	"vidops/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools, project directories, and disk space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("External Tools", colorize))
			failures := 0
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				kind := statusOK
				message := status.Command
				if !status.Available {
					message = status.Detail
					if status.Optional {
						kind = statusWarn
					} else {
						kind = statusError
						failures++
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			fmt.Fprintln(out, renderSectionHeader("Project Directories", colorize))
			for _, dir := range []struct {
				label string
				path  string
			}{
				{"Project root", cfg.Paths.ProjectRoot},
				{"Generated", cfg.GeneratedPath()},
				{"Pull", cfg.PullPath()},
				{"Logs", cfg.Paths.LogDir},
			} {
				if err := deps.CheckDirectory(dir.path); err != nil {
					fmt.Fprintln(out, renderStatusLine(dir.label, statusError, err.Error(), colorize))
					failures++
					continue
				}
				fmt.Fprintln(out, renderStatusLine(dir.label, statusOK, dir.path, colorize))
			}

			fmt.Fprintln(out, renderSectionHeader("Storage", colorize))
			if space, err := deps.CheckDiskSpace(cfg.Paths.ProjectRoot); err != nil {
				fmt.Fprintln(out, renderStatusLine("Disk space", statusWarn, err.Error(), colorize))
			} else {
				kind := statusOK
				if space.FreeGiB() < 1.0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Disk space", kind,
					fmt.Sprintf("%.1f GiB free", space.FreeGiB()), colorize))
			}

			if store, err := catalog.Open(cfg.CatalogPath()); err != nil {
				fmt.Fprintln(out, renderStatusLine("Catalog", statusWarn, err.Error(), colorize))
			} else {
				count, countErr := store.Count(cmd.Context())
				_ = store.Close()
				if countErr != nil {
					fmt.Fprintln(out, renderStatusLine("Catalog", statusWarn, countErr.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Catalog", statusOK,
						fmt.Sprintf("%d assets in %s", count, store.Path()), colorize))
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d status checks failed", failures)
			}
			return nil
		},
	}
}
