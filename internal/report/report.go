// Package report computes transcript quality metrics from the word tables
// in a project's generated directory.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidops/internal/logging"
	"vidops/internal/words"
)

// DefaultLowConfidence is the segment confidence below which a segment
// counts as low quality.
const DefaultLowConfidence = -1.0

// FileReport summarizes one word table.
type FileReport struct {
	MediaFile     string
	Segments      int
	Words         int
	AvgConfidence float64
	MinConfidence float64
	MaxConfidence float64
	// LowConfidence counts segments at or below the threshold.
	LowConfidence int
	// Retried counts segments with at least one re-transcribed word.
	Retried int
}

// Summary aggregates the per-file reports.
type Summary struct {
	Files    []FileReport
	Segments int
	Words    int
	// LowConfidence is the total across files.
	LowConfidence int
}

// Scan reads every word table under generatedDir and returns reports sorted
// worst-first by average confidence. Unreadable tables are logged and
// skipped.
func Scan(generatedDir string, threshold float64, logger *slog.Logger) (*Summary, error) {
	logger = logging.NewComponentLogger(logger, "report")

	entries, err := os.ReadDir(generatedDir)
	if err != nil {
		return nil, fmt.Errorf("read generated dir: %w", err)
	}

	summary := &Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), words.TableSuffix) {
			continue
		}
		path := filepath.Join(generatedDir, entry.Name())
		records, err := words.ReadTable(path)
		if err != nil {
			logger.Warn("skipping unreadable word table",
				logging.Args(logging.String("path", path), logging.Error(err))...)
			continue
		}

		mediaFile := strings.TrimSuffix(entry.Name(), words.TableSuffix)
		report := buildFileReport(mediaFile, records, threshold)
		summary.Files = append(summary.Files, report)
		summary.Segments += report.Segments
		summary.Words += report.Words
		summary.LowConfidence += report.LowConfidence
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		if summary.Files[i].AvgConfidence != summary.Files[j].AvgConfidence {
			return summary.Files[i].AvgConfidence < summary.Files[j].AvgConfidence
		}
		return summary.Files[i].MediaFile < summary.Files[j].MediaFile
	})
	return summary, nil
}

func buildFileReport(mediaFile string, records []words.Record, threshold float64) FileReport {
	report := FileReport{MediaFile: mediaFile, Words: len(records)}

	retried := make(map[int]bool)
	for _, rec := range records {
		if rec.Retried {
			retried[rec.Segment] = true
		}
	}
	report.Retried = len(retried)

	segments := words.BuildSegments(records)
	report.Segments = len(segments)
	if len(segments) == 0 {
		return report
	}

	report.MinConfidence = segments[0].Confidence
	report.MaxConfidence = segments[0].Confidence
	var sum float64
	for _, seg := range segments {
		sum += seg.Confidence
		if seg.Confidence < report.MinConfidence {
			report.MinConfidence = seg.Confidence
		}
		if seg.Confidence > report.MaxConfidence {
			report.MaxConfidence = seg.Confidence
		}
		if seg.Confidence <= threshold {
			report.LowConfidence++
		}
	}
	report.AvgConfidence = sum / float64(len(segments))
	return report
}
