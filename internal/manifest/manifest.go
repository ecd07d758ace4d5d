package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vidops/internal/textutil"
)

// DefaultOutputName is the retry manifest the detector writes next to its
// first source manifest when no explicit output path is given.
const DefaultOutputName = "dupe_hallu.retry_manifest.tsv"

// ProcessedSuffix marks a retry manifest the batch worker has completed.
const ProcessedSuffix = ".processed"

// Row is one flagged segment in a retry manifest. The columns form a closed
// loop: the detector writes them and the retry worker reads them back.
type Row struct {
	MediaFile  string
	SegmentIdx int
	StartTime  float64
	EndTime    float64
	Confidence float64
	// ZeroLength records that the measured span was degenerate and the
	// written end time was synthesized as start + 1s.
	ZeroLength bool
	Text       string
}

// Key identifies a physical segment occurrence for deduplication.
type Key struct {
	MediaFile  string
	SegmentIdx int
	StartTime  float64
	EndTime    float64
}

// DedupKey returns the row's deduplication identity.
func (r Row) DedupKey() Key {
	return Key{MediaFile: r.MediaFile, SegmentIdx: r.SegmentIdx, StartTime: r.StartTime, EndTime: r.EndTime}
}

var header = []string{"media_file", "segment_idx", "start_time", "end_time", "confidence", "zero_length", "text"}

// Dedup drops rows whose (media_file, segment_idx, start_time, end_time)
// tuple was already seen, preserving first-seen order.
func Dedup(rows []Row) []Row {
	seen := make(map[Key]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		key := row.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// Write deduplicates rows and writes the retry manifest, creating parent
// directories and replacing any existing file. When no rows survive, no
// file is written at all: the absent artifact is the "nothing to retry"
// signal, distinct from an empty one. Returns the number of rows written.
func Write(path string, rows []Row) (int, error) {
	rows = Dedup(rows)
	if len(rows) == 0 {
		return 0, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create manifest directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create manifest %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		start := row.StartTime
		end := row.EndTime
		zeroLength := 0
		if end <= start {
			zeroLength = 1
			// One-second fudge so downstream audio extraction gets a
			// non-degenerate interval; the flag records the synthesis.
			end = start + 1.0
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.3f\t%d\t%s\n",
			row.MediaFile,
			row.SegmentIdx,
			start,
			end,
			row.Confidence,
			zeroLength,
			textutil.CollapseTSVText(row.Text),
		)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("write manifest %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close manifest %s: %w", path, err)
	}
	return len(rows), nil
}

// Read parses a retry manifest. The header must name at least the columns
// the retry worker consumes; zero_length is advisory and optional. Rows
// that fail to parse are skipped.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, nil
	}

	idx := headerIndex(scanner.Text())
	for _, name := range []string{"media_file", "segment_idx", "start_time", "end_time", "confidence", "text"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("manifest %s missing required column %q", path, name)
		}
	}
	zeroIdx, hasZero := idx["zero_length"]

	var rows []Row
	for scanner.Scan() {
		parts := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
		if len(parts) <= maxIndex(idx) {
			continue
		}

		segIdx, err := strconv.Atoi(strings.TrimSpace(parts[idx["segment_idx"]]))
		if err != nil {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["start_time"]]), 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["end_time"]]), 64)
		if err != nil {
			continue
		}
		confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["confidence"]]), 64)
		if err != nil {
			continue
		}

		row := Row{
			MediaFile:  strings.TrimSpace(parts[idx["media_file"]]),
			SegmentIdx: segIdx,
			StartTime:  start,
			EndTime:    end,
			Confidence: confidence,
			Text:       parts[idx["text"]],
		}
		if row.MediaFile == "" {
			continue
		}
		if hasZero && zeroIdx < len(parts) {
			row.ZeroLength = strings.TrimSpace(parts[zeroIdx]) == "1"
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return rows, nil
}

// ReadMediaFiles extracts the distinct media_file values from a source
// manifest, in order of first appearance. Only the media_file column is
// required; everything else is ignored.
func ReadMediaFiles(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, nil
	}

	idx := headerIndex(scanner.Text())
	col, ok := idx["media_file"]
	if !ok {
		return nil, fmt.Errorf("manifest %s missing required column %q", path, "media_file")
	}

	seen := map[string]struct{}{}
	var files []string
	for scanner.Scan() {
		parts := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
		if col >= len(parts) {
			continue
		}
		mf := strings.TrimSpace(parts[col])
		if mf == "" {
			continue
		}
		if _, ok := seen[mf]; ok {
			continue
		}
		seen[mf] = struct{}{}
		files = append(files, mf)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return files, nil
}

// DefaultOutputPath derives the detector output location from the first
// source manifest's directory.
func DefaultOutputPath(sourceManifests []string) string {
	dir := "."
	if len(sourceManifests) > 0 {
		dir = filepath.Dir(sourceManifests[0])
	}
	return filepath.Join(dir, DefaultOutputName)
}

func headerIndex(line string) map[string]int {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	idx := make(map[string]int, len(fields))
	for i, name := range fields {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func maxIndex(idx map[string]int) int {
	max := 0
	for name, i := range idx {
		if name == "zero_length" {
			continue
		}
		if i > max {
			max = i
		}
	}
	return max
}
