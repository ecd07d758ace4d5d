package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var exportColumns = []string{
	"video_id",
	"media_file",
	"source",
	"language",
	"segments",
	"words",
	"avg_confidence",
	"duration_seconds",
	"retried_segments",
	"word_table",
	"vtt_file",
	"scanned_at",
}

// Export writes assets to a TSV file and returns the row count. No file is
// created for an empty catalog.
func Export(path string, assets []Asset) (int, error) {
	if len(assets) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("ensure export dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, strings.Join(exportColumns, "\t"))
	for _, asset := range assets {
		fields := []string{
			asset.VideoID,
			asset.MediaFile,
			asset.Source,
			asset.Language,
			strconv.Itoa(asset.SegmentCount),
			strconv.Itoa(asset.WordCount),
			strconv.FormatFloat(asset.AvgConfidence, 'f', 4, 64),
			strconv.FormatFloat(asset.DurationSeconds, 'f', 3, 64),
			strconv.Itoa(asset.RetriedSegments),
			asset.WordTable,
			asset.VTTFile,
			asset.ScannedAt.UTC().Format(time.RFC3339),
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("write export %s: %w", path, err)
	}
	return len(assets), file.Close()
}
