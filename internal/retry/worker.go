package retry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"vidops/internal/logging"
	"vidops/internal/manifest"
	"vidops/internal/whisper"
)

// Transcriber re-transcribes audio spans via external tools.
type Transcriber interface {
	ExtractSegment(ctx context.Context, source string, start, duration float64, dest string) error
	Transcribe(ctx context.Context, audioPath string) (whisper.Result, error)
}

// Options configures a worker run.
type Options struct {
	// ProjectRoot anchors relative media_file paths from the manifests.
	ProjectRoot string
	// GeneratedDir holds the VTT and word-table artifacts to patch.
	GeneratedDir string
	// Workers bounds concurrent segment re-transcription per media file.
	Workers int
	// DryRun re-transcribes nothing and patches nothing.
	DryRun bool
	// LockPath guards against two workers patching the same project.
	LockPath string
	// ShowProgress renders a progress bar over segments.
	ShowProgress bool
}

// Worker processes retry manifests: re-transcribe each flagged segment and
// patch the transcript artifacts with the new text and confidence.
type Worker struct {
	transcriber Transcriber
	opts        Options
	logger      *slog.Logger
}

// NewWorker builds a retry worker.
func NewWorker(transcriber Transcriber, opts Options, logger *slog.Logger) *Worker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Worker{
		transcriber: transcriber,
		opts:        opts,
		logger:      logging.NewComponentLogger(logger, "retry"),
	}
}

// Summary reports what one run accomplished.
type Summary struct {
	Manifests  int
	Segments   int
	MediaFiles int
	Retried    int
	Skipped    int
	Failed     int
	// Processed lists manifests renamed to *.processed.
	Processed []string
}

// outcome pairs a manifest row with its re-transcription result.
type outcome struct {
	row        manifest.Row
	newText    string
	confidence float64
}

// Run executes the batch. Per-segment and per-file failures are logged and
// counted, never fatal; Run fails only on lock contention or when no
// manifest yields a segment.
func (w *Worker) Run(ctx context.Context, manifestPaths []string) (*Summary, error) {
	if w.opts.LockPath != "" {
		lock := flock.New(w.opts.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire retry lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("another retry worker holds %s", w.opts.LockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	runID := uuid.NewString()
	logger := w.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("starting batch retry",
		logging.Args(
			logging.Int("manifests", len(manifestPaths)),
			logging.Int("workers", w.opts.Workers),
			logging.Bool("dry_run", w.opts.DryRun),
		)...)

	// manifestRows remembers which manifest contributed which media files
	// so only fully handled manifests get renamed.
	manifestRows := make(map[string][]manifest.Row)
	var all []manifest.Row
	for _, path := range manifestPaths {
		rows, err := manifest.Read(path)
		if err != nil {
			logger.Warn("skipping unreadable manifest",
				logging.Args(logging.String("path", path), logging.Error(err))...)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		manifestRows[path] = rows
		all = append(all, rows...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no segments found in retry manifests")
	}

	summary := &Summary{Manifests: len(manifestRows), Segments: len(all)}

	grouped := make(map[string][]manifest.Row)
	for _, row := range all {
		grouped[row.MediaFile] = append(grouped[row.MediaFile], row)
	}
	summary.MediaFiles = len(grouped)

	mediaFiles := make([]string, 0, len(grouped))
	for mf := range grouped {
		mediaFiles = append(mediaFiles, mf)
	}
	sort.Strings(mediaFiles)

	var bar *progressbar.ProgressBar
	if w.opts.ShowProgress {
		bar = progressbar.Default(int64(len(all)), "retrying segments")
	}

	succeeded := make(map[string]bool, len(grouped))
	for _, mediaFile := range mediaFiles {
		rows := grouped[mediaFile]
		mediaPath := mediaFile
		if !filepath.IsAbs(mediaPath) {
			mediaPath = filepath.Join(w.opts.ProjectRoot, mediaFile)
		}
		if _, err := os.Stat(mediaPath); err != nil {
			logger.Warn("media file not found",
				logging.Args(logging.String(logging.FieldMediaFile, mediaFile))...)
			summary.Failed += len(rows)
			advance(bar, len(rows))
			continue
		}

		outcomes, skipped := w.processMediaFile(ctx, logger, mediaPath, rows, bar)
		summary.Skipped += skipped
		summary.Failed += len(rows) - skipped - len(outcomes)

		if len(outcomes) == 0 {
			// Nothing re-transcribed; still counts as handled when every
			// row was a deliberate skip.
			succeeded[mediaFile] = skipped == len(rows)
			continue
		}

		if w.opts.DryRun {
			logger.Info("dry run: skipping artifact patch",
				logging.Args(
					logging.String(logging.FieldMediaFile, mediaFile),
					logging.Int("segments", len(outcomes)),
				)...)
			summary.Retried += len(outcomes)
			succeeded[mediaFile] = true
			continue
		}

		if err := w.patchArtifacts(logger, mediaPath, outcomes); err != nil {
			logger.Warn("failed to patch transcript artifacts",
				logging.Args(
					logging.String(logging.FieldMediaFile, mediaFile),
					logging.Error(err),
				)...)
			summary.Failed += len(outcomes)
			continue
		}
		summary.Retried += len(outcomes)
		succeeded[mediaFile] = true
	}

	if !w.opts.DryRun {
		summary.Processed = w.markProcessed(logger, manifestRows, succeeded)
	}

	logger.Info("batch retry complete",
		logging.Args(
			logging.Int("retried", summary.Retried),
			logging.Int("skipped", summary.Skipped),
			logging.Int("failed", summary.Failed),
		)...)
	return summary, nil
}

// processMediaFile re-transcribes one media file's segments with a bounded
// worker pool. The returned outcomes are sorted by segment index; patching
// happens later under a single writer.
func (w *Worker) processMediaFile(ctx context.Context, logger *slog.Logger, mediaPath string, rows []manifest.Row, bar *progressbar.ProgressBar) ([]outcome, int) {
	tempDir, err := os.MkdirTemp("", "vidops-retry-")
	if err != nil {
		logger.Warn("create temp dir", logging.Args(logging.Error(err))...)
		advance(bar, len(rows))
		return nil, 0
	}
	defer os.RemoveAll(tempDir)

	var (
		mu       sync.Mutex
		outcomes []outcome
		skipped  int
	)

	sem := make(chan struct{}, w.opts.Workers)
	var wg sync.WaitGroup
	for _, row := range rows {
		if row.EndTime <= row.StartTime {
			logger.Warn("skipping zero-duration segment",
				logging.Args(
					logging.Int("segment_idx", row.SegmentIdx),
					logging.Float64("start", row.StartTime),
				)...)
			skipped++
			advance(bar, 1)
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(row manifest.Row) {
			defer wg.Done()
			defer func() { <-sem }()
			defer advance(bar, 1)

			result, ok := w.retrySegment(ctx, logger, mediaPath, tempDir, row)
			if !ok {
				return
			}
			mu.Lock()
			outcomes = append(outcomes, result)
			mu.Unlock()
		}(row)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].row.SegmentIdx < outcomes[j].row.SegmentIdx })
	return outcomes, skipped
}

func (w *Worker) retrySegment(ctx context.Context, logger *slog.Logger, mediaPath, tempDir string, row manifest.Row) (outcome, bool) {
	duration := row.EndTime - row.StartTime
	if w.opts.DryRun {
		logger.Info("dry run: would re-transcribe segment",
			logging.Args(
				logging.Int("segment_idx", row.SegmentIdx),
				logging.Float64("start", row.StartTime),
				logging.Float64("duration", duration),
			)...)
		return outcome{row: row}, true
	}

	audioFile := filepath.Join(tempDir, fmt.Sprintf("seg_%d.opus", row.SegmentIdx))
	if err := w.transcriber.ExtractSegment(ctx, mediaPath, row.StartTime, duration, audioFile); err != nil {
		logger.Warn("audio extraction failed",
			logging.Args(logging.Int("segment_idx", row.SegmentIdx), logging.Error(err))...)
		return outcome{}, false
	}
	defer os.Remove(audioFile)

	result, err := w.transcriber.Transcribe(ctx, audioFile)
	if err != nil {
		logger.Warn("re-transcription failed",
			logging.Args(logging.Int("segment_idx", row.SegmentIdx), logging.Error(err))...)
		return outcome{}, false
	}

	logger.Debug("segment re-transcribed",
		logging.Args(
			logging.Int("segment_idx", row.SegmentIdx),
			logging.Float64("old_confidence", row.Confidence),
			logging.Float64("new_confidence", result.Confidence),
		)...)
	return outcome{row: row, newText: result.Text, confidence: result.Confidence}, true
}

// markProcessed renames fully handled manifests to *.processed so repeated
// runs do not chase the same segments.
func (w *Worker) markProcessed(logger *slog.Logger, manifestRows map[string][]manifest.Row, succeeded map[string]bool) []string {
	var processed []string
	paths := make([]string, 0, len(manifestRows))
	for path := range manifestRows {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		done := true
		for _, row := range manifestRows[path] {
			if !succeeded[row.MediaFile] {
				done = false
				break
			}
		}
		if !done {
			continue
		}
		target := path + manifest.ProcessedSuffix
		if err := os.Rename(path, target); err != nil {
			logger.Warn("failed to mark manifest processed",
				logging.Args(logging.String("path", path), logging.Error(err))...)
			continue
		}
		processed = append(processed, target)
		logger.Info("marked manifest processed", logging.Args(logging.String("path", target))...)
	}
	return processed
}

func advance(bar *progressbar.ProgressBar, n int) {
	if bar != nil {
		_ = bar.Add(n)
	}
}
