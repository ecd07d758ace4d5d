package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidops/internal/catalog"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		rescanFlag bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Scan pulled media into the catalog and export it as TSV",
		Long: "Export rebuilds the SQLite catalog from the pull and generated " +
			"directories, then writes the catalog as a TSV work list. Use " +
			"--scan=false to export the stored catalog as-is.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg.CatalogPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if rescanFlag {
				scanner := catalog.NewScanner(store, logger)
				result, err := scanner.Scan(cmd.Context(), cfg.PullPath(), cfg.GeneratedPath())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Catalogued %d of %d media files\n", result.Catalogued, result.MediaFiles)
			}

			assets, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(assets) == 0 {
				fmt.Fprintln(out, "Catalog is empty; nothing to export")
				return nil
			}

			written, err := catalog.Export(outputFlag, assets)
			if err != nil {
				return fmt.Errorf("export catalog: %w", err)
			}
			fmt.Fprintf(out, "Exported %d assets to %s\n", written, outputFlag)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "catalog.tsv", "TSV destination")
	cmd.Flags().BoolVar(&rescanFlag, "scan", true, "Rescan the pull directory before exporting")

	return cmd
}
