package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidops/internal/hallucination"
	"vidops/internal/logging"
	"vidops/internal/manifest"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag      string
		thresholdsFlag  string
		maxWindowFlag   float64
		projectRootFlag string
	)

	cmd := &cobra.Command{
		Use:   "detect MANIFEST [MANIFEST...]",
		Short: "Scan word tables for repeated-phrase hallucinations",
		Long: "Detect reads the media files named by one or more source manifests, " +
			"scans their word tables for suspicious phrase repetition, and writes " +
			"the flagged segments to a retry manifest. No manifest is written when " +
			"nothing is flagged.",
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

			spec := thresholdsFlag
			if spec == "" {
				spec = cfg.Detector.Thresholds
			}
			thresholds, err := hallucination.ParseThresholds(spec)
			if err != nil {
				return fmt.Errorf("parse thresholds: %w", err)
			}

			maxWindow := maxWindowFlag
			if !cmd.Flags().Changed("max-window") {
				maxWindow = cfg.Detector.MaxWindowSeconds
			}
			if maxWindow <= 0 {
				return fmt.Errorf("max window must be positive, got %g", maxWindow)
			}

			generatedDir := cfg.GeneratedPath()
			if projectRootFlag != "" {
				generatedDir = cfg.GeneratedPathUnder(projectRootFlag)
			}

			detector := hallucination.NewDetector(thresholds, maxWindow, logger)
			scanner := hallucination.NewScanner(detector, generatedDir, logger)
			result, err := scanner.Scan(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %d media files (%d word tables missing)\n",
				result.MediaFiles, result.TablesMissing)

			if len(result.Flagged) == 0 {
				fmt.Fprintln(out, "No suspicious segments found")
				return nil
			}

			outputPath := outputFlag
			if outputPath == "" {
				outputPath = manifest.DefaultOutputPath(args)
			}
			written, err := manifest.Write(outputPath, result.Flagged)
			if err != nil {
				// A failed manifest write never fails a completed scan.
				logger.Warn("failed to write retry manifest",
					logging.Args(logging.String("path", outputPath), logging.Error(err))...)
				fmt.Fprintf(out, "Flagged %d segments; retry manifest could not be written to %s\n",
					len(result.Flagged), outputPath)
				return nil
			}
			fmt.Fprintf(out, "Flagged %d segments; retry manifest written to %s\n", written, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Retry manifest destination (default: next to the first source manifest)")
	cmd.Flags().StringVar(&thresholdsFlag, "thresholds", "", "Repeat-count rules as length:count pairs, e.g. 1:10,2:4,3:4")
	cmd.Flags().Float64Var(&maxWindowFlag, "max-window", 0, "Widest time span in seconds a repeat cluster may cover")
	cmd.Flags().StringVar(&projectRootFlag, "project-root", "", "Resolve the generated directory under this root instead of the configured one")

	return cmd
}
