package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidops/internal/mediaid"
)

func newMapIDsCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		extFlag    []string
	)

	cmd := &cobra.Command{
		Use:   "map-ids ID_FILE",
		Short: "Map video identifiers to pulled media files",
		Long: "Map-ids reads one identifier per line from ID_FILE, resolves each " +
			"against the media files in the pull directory, and writes the matched " +
			"file paths to the output list. Missing identifiers are reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			extensions := make([]string, 0, len(extFlag))
			for _, ext := range extFlag {
				ext = strings.TrimSpace(ext)
				if ext == "" {
					continue
				}
				if !strings.HasPrefix(ext, ".") {
					ext = "." + ext
				}
				extensions = append(extensions, ext)
			}
			if len(extensions) == 0 {
				extensions = []string{".opus"}
			}

			index, err := mediaid.BuildIndex(cfg.PullPath(), extensions)
			if err != nil {
				return err
			}

			ids, err := mediaid.ReadIDs(args[0])
			if err != nil {
				return err
			}
			result := index.Resolve(ids)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d media files\n", len(index))
			fmt.Fprintf(out, "Found: %d, missing: %d\n", len(result.Found), len(result.Missing))

			if outputFlag != "" && len(result.Found) > 0 {
				if err := mediaid.WriteLines(outputFlag, result.Found); err != nil {
					return fmt.Errorf("write output list: %w", err)
				}
				fmt.Fprintf(out, "Output written to %s\n", outputFlag)
			}

			if len(result.Missing) > 0 {
				limit := len(result.Missing)
				if limit > 10 {
					limit = 10
				}
				fmt.Fprintln(out, "Missing identifiers (first 10):")
				for _, id := range result.Missing[:limit] {
					fmt.Fprintf(out, "  %s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "File to write the matched media paths to")
	cmd.Flags().StringSliceVar(&extFlag, "ext", nil, "Media extensions to index (default .opus)")

	return cmd
}
