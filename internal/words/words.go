package words

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultConfidence is assigned when a segment carries no usable confidence
// scores. Deliberately low so downstream tooling treats it as suspect.
const DefaultConfidence = -0.5

// TableSuffix is the derived word-table extension for a media file.
const TableSuffix = ".words.tsv"

// Record is one parsed row of a per-video word table.
type Record struct {
	Segment    int
	Word       string
	Start      float64
	End        float64
	Confidence float64
	Retried    bool
}

// Segment aggregates the qualifying words of one transcribed utterance.
type Segment struct {
	ID    int
	Words []string
	Start float64
	End   float64
	// Confidence is the arithmetic mean of word confidences, or
	// DefaultConfidence when no word carried one.
	Confidence float64
}

// Text reconstructs the segment's phrase in its original casing.
func (s Segment) Text() string {
	return strings.Join(s.Words, " ")
}

// TablePath locates the word table derived from a media file: same base
// name with TableSuffix, under the generated-data directory.
func TablePath(generatedDir, mediaFile string) string {
	base := filepath.Base(mediaFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(generatedDir, base+TableSuffix)
}

var requiredColumns = []string{"start", "end", "word", "seg", "confidence", "retried"}

// ReadTable parses a word table. The header must contain the required
// columns (any order, extra columns ignored). Rows with too few fields or
// unparsable numerics are skipped silently; that is expected noise in
// timed-word exports.
func ReadTable(path string) ([]Record, error) {
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

	header := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("word table %s missing required column %q", path, name)
		}
	}

	var records []Record
	for scanner.Scan() {
		parts := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
		if len(parts) < len(header) {
			continue
		}

		seg, err := strconv.Atoi(strings.TrimSpace(parts[idx["seg"]]))
		if err != nil {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["start"]]), 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["end"]]), 64)
		if err != nil {
			continue
		}
		confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[idx["confidence"]]), 64)
		if err != nil {
			continue
		}

		records = append(records, Record{
			Segment:    seg,
			Word:       strings.TrimSpace(parts[idx["word"]]),
			Start:      start,
			End:        end,
			Confidence: confidence,
			Retried:    strings.TrimSpace(parts[idx["retried"]]) == "1",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word table %s: %w", path, err)
	}
	return records, nil
}

// BuildSegments groups records by segment ID. Retried rows and rows with
// empty words are excluded per row; a segment left with no qualifying words
// is dropped entirely. Start is the minimum start, End the maximum end,
// Confidence the mean.
func BuildSegments(records []Record) []Segment {
	type group struct {
		words  []string
		starts []float64
		ends   []float64
		confs  []float64
	}

	groups := make(map[int]*group)
	for _, rec := range records {
		if rec.Retried {
			continue
		}
		if rec.Word == "" {
			continue
		}
		g := groups[rec.Segment]
		if g == nil {
			g = &group{}
			groups[rec.Segment] = g
		}
		g.words = append(g.words, rec.Word)
		g.starts = append(g.starts, rec.Start)
		g.ends = append(g.ends, rec.End)
		g.confs = append(g.confs, rec.Confidence)
	}

	segments := make([]Segment, 0, len(groups))
	for id, g := range groups {
		seg := Segment{ID: id, Words: g.words}

		seg.Start = g.starts[0]
		for _, v := range g.starts[1:] {
			if v < seg.Start {
				seg.Start = v
			}
		}

		// End may come out before Start when the source data is bad;
		// the manifest writer flags that as zero_length rather than
		// correcting it here.
		seg.End = g.ends[0]
		for _, v := range g.ends[1:] {
			if v > seg.End {
				seg.End = v
			}
		}

		if len(g.confs) == 0 {
			seg.Confidence = DefaultConfidence
		} else {
			var sum float64
			for _, v := range g.confs {
				sum += v
			}
			seg.Confidence = sum / float64(len(g.confs))
		}

		segments = append(segments, seg)
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].ID < segments[j].ID })
	return segments
}
