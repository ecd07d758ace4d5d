package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"vidops/internal/logging"
	"vidops/internal/textutil"
	"vidops/internal/vtt"
	"vidops/internal/words"
)

var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".m4a":  true,
	".mp3":  true,
	".opus": true,
	".wav":  true,
}

// Scanner walks the pull directory and catalogs every media file together
// with the transcript artifacts found beside it in the generated directory.
type Scanner struct {
	store  *Store
	logger *slog.Logger
}

// NewScanner builds a Scanner writing to store.
func NewScanner(store *Store, logger *slog.Logger) *Scanner {
	return &Scanner{store: store, logger: logging.NewComponentLogger(logger, "catalog")}
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	MediaFiles int
	Catalogued int
	Skipped    int
}

// Scan catalogs every media file under pullDir. Files whose artifacts cannot
// be read are catalogued without transcript stats rather than dropped.
func (s *Scanner) Scan(ctx context.Context, pullDir, generatedDir string) (*ScanResult, error) {
	result := &ScanResult{}
	err := filepath.WalkDir(pullDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !mediaExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		result.MediaFiles++

		asset := s.buildAsset(path, generatedDir)
		if err := s.store.Upsert(ctx, asset); err != nil {
			s.logger.Warn("failed to catalog media file",
				logging.Args(logging.String(logging.FieldMediaFile, path), logging.Error(err))...)
			result.Skipped++
			return nil
		}
		result.Catalogued++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pullDir, err)
	}
	s.logger.Info("catalog scan complete",
		logging.Args(
			logging.Int("media_files", result.MediaFiles),
			logging.Int("catalogued", result.Catalogued),
			logging.Int("skipped", result.Skipped),
		)...)
	return result, nil
}

// buildAsset assembles the catalog row for one media file. A language-tagged
// VTT (clip.en.vtt) marks platform captions; a plain VTT or a word table
// marks a local transcription.
func (s *Scanner) buildAsset(mediaPath, generatedDir string) Asset {
	name := filepath.Base(mediaPath)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	videoID := textutil.VideoIDPrefix(base)
	if videoID == "" {
		videoID = base
	}

	asset := Asset{
		VideoID:   videoID,
		MediaFile: mediaPath,
		Source:    SourceWhisper,
		ScannedAt: time.Now().UTC(),
	}

	if vttPath, tag := findVTT(generatedDir, base); vttPath != "" {
		asset.VTTFile = vttPath
		if tag != "" {
			asset.Source = SourceCaptions
			asset.Language = tag
		}
		duration, err := vttDuration(vttPath)
		if err != nil {
			s.logger.Warn("unreadable vtt",
				logging.Args(logging.String("path", vttPath), logging.Error(err))...)
		} else {
			asset.DurationSeconds = duration
		}
	}

	tablePath := words.TablePath(generatedDir, name)
	if _, err := os.Stat(tablePath); err == nil {
		asset.WordTable = tablePath
		s.attachTableStats(&asset, tablePath)
	}
	return asset
}

func (s *Scanner) attachTableStats(asset *Asset, tablePath string) {
	records, err := words.ReadTable(tablePath)
	if err != nil {
		s.logger.Warn("unreadable word table",
			logging.Args(logging.String("path", tablePath), logging.Error(err))...)
		return
	}
	asset.WordCount = len(records)
	retried := make(map[int]bool)
	for _, rec := range records {
		if rec.Retried {
			retried[rec.Segment] = true
		}
	}
	asset.RetriedSegments = len(retried)

	segments := words.BuildSegments(records)
	asset.SegmentCount = len(segments)
	if len(segments) > 0 {
		var sum float64
		for _, seg := range segments {
			sum += seg.Confidence
		}
		asset.AvgConfidence = sum / float64(len(segments))
	}
}

// vttDuration returns the end of the last cue in seconds, 0 when the file
// has no cues.
func vttDuration(path string) (float64, error) {
	cues, err := vtt.Parse(path)
	if err != nil {
		return 0, err
	}
	if len(cues) == 0 {
		return 0, nil
	}
	return vtt.TimestampSeconds(cues[len(cues)-1].EndRaw)
}

// findVTT looks for base.vtt or base.<tag>.vtt in dir. The tag is returned
// only when it parses as a BCP 47 language tag.
func findVTT(dir, base string) (path, tag string) {
	plain := filepath.Join(dir, base+".vtt")
	if _, err := os.Stat(plain); err == nil {
		return plain, ""
	}

	matches, err := filepath.Glob(filepath.Join(dir, base+".*.vtt"))
	if err != nil || len(matches) == 0 {
		return "", ""
	}
	for _, match := range matches {
		rest := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(match), base+"."), ".vtt")
		if rest == "" {
			continue
		}
		if parsed, err := language.Parse(rest); err == nil {
			return match, parsed.String()
		}
	}
	return matches[0], ""
}
