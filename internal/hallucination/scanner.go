package hallucination

import (
	"errors"
	"log/slog"
	"os"
	"sort"

	"vidops/internal/logging"
	"vidops/internal/manifest"
	"vidops/internal/words"
)

// ErrNoMediaFiles indicates that none of the supplied source manifests
// yielded a media file, so there was nothing to scan.
var ErrNoMediaFiles = errors.New("no media_file entries found in source manifests")

// Scanner drives a detector across the media files named by source
// manifests, locating each file's word table by convention under the
// generated-data directory.
type Scanner struct {
	detector     *Detector
	generatedDir string
	logger       *slog.Logger
}

// NewScanner builds a scanner over the given generated-data directory.
func NewScanner(detector *Detector, generatedDir string, logger *slog.Logger) *Scanner {
	return &Scanner{
		detector:     detector,
		generatedDir: generatedDir,
		logger:       logging.NewComponentLogger(logger, "detector"),
	}
}

// Result summarizes one scan invocation.
type Result struct {
	// MediaFiles is the number of distinct media files the manifests named.
	MediaFiles int
	// TablesMissing counts media files whose word table could not be read.
	TablesMissing int
	// Flagged holds the deduplicated suspicious segment occurrences.
	Flagged []manifest.Row
}

// Scan reads the source manifests, scans each referenced media file's word
// table, and returns the deduplicated flagged set. Unreadable manifests and
// word tables are logged and skipped; Scan fails only when no manifest
// yields any media file.
func (s *Scanner) Scan(manifestPaths []string) (*Result, error) {
	seen := map[string]struct{}{}
	var mediaFiles []string
	for _, path := range manifestPaths {
		files, err := manifest.ReadMediaFiles(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("source manifest not found", logging.Args(logging.String("path", path))...)
			} else {
				s.logger.Warn("skipping unreadable source manifest",
					logging.Args(logging.String("path", path), logging.Error(err))...)
			}
			continue
		}
		for _, mf := range files {
			if _, ok := seen[mf]; ok {
				continue
			}
			seen[mf] = struct{}{}
			mediaFiles = append(mediaFiles, mf)
		}
	}
	if len(mediaFiles) == 0 {
		return nil, ErrNoMediaFiles
	}
	sort.Strings(mediaFiles)

	result := &Result{MediaFiles: len(mediaFiles)}
	var flagged []manifest.Row
	for _, mediaFile := range mediaFiles {
		tablePath := words.TablePath(s.generatedDir, mediaFile)
		s.logger.Debug("scanning word table",
			logging.Args(
				logging.String(logging.FieldMediaFile, mediaFile),
				logging.String("table", tablePath),
			)...)

		records, err := words.ReadTable(tablePath)
		if err != nil {
			result.TablesMissing++
			if os.IsNotExist(err) {
				s.logger.Warn("word table not found", logging.Args(logging.String("table", tablePath))...)
			} else {
				s.logger.Warn("skipping unreadable word table",
					logging.Args(logging.String("table", tablePath), logging.Error(err))...)
			}
			continue
		}

		segments := words.BuildSegments(records)
		flagged = append(flagged, s.detector.Detect(mediaFile, segments)...)
	}

	result.Flagged = manifest.Dedup(flagged)
	return result, nil
}
