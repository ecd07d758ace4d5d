// Package hits searches word tables for exact word matches and emits
// padded clip spans with provenance, ready for a clip-cutting pipeline.
package hits

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vidops/internal/logging"
	"vidops/internal/words"
)

// DefaultPad is the padding in seconds added around each hit.
const DefaultPad = 0.20

// mediaExtensions is the sibling-media probe order.
var mediaExtensions = []string{".mp4", ".mkv", ".webm", ".mp3", ".wav", ".m4a", ".opus", ".mov", ".avi"}

// Hit is one word occurrence with padded bounds.
type Hit struct {
	URL         string
	Start       float64
	End         float64
	Label       string
	SourceMedia string
}

// Searcher walks a project tree for word tables.
type Searcher struct {
	root   string
	logger *slog.Logger
}

// NewSearcher builds a Searcher rooted at root.
func NewSearcher(root string, logger *slog.Logger) *Searcher {
	return &Searcher{root: root, logger: logging.NewComponentLogger(logger, "hits")}
}

// Find returns every occurrence of word in the project's word tables. The
// match is exact and case-insensitive. Tables without a sibling media file
// are skipped; hit bounds are padded by pad seconds with start clamped to
// zero.
func (s *Searcher) Find(word string, pad float64) ([]Hit, error) {
	needle := strings.TrimSpace(word)
	if needle == "" {
		return nil, fmt.Errorf("search word is empty")
	}

	var hits []Hit
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), words.TableSuffix) {
			return nil
		}

		media := siblingMedia(path)
		if media == "" {
			return nil
		}
		url := provenanceURL(path)

		found, err := scanTable(path, needle, pad, url, filepath.Base(media))
		if err != nil {
			s.logger.Warn("skipping unreadable word table",
				logging.Args(logging.String("path", path), logging.Error(err))...)
			return nil
		}
		hits = append(hits, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return hits, nil
}

// siblingMedia returns the media file next to a word table, probing known
// extensions in order.
func siblingMedia(tablePath string) string {
	stem := strings.TrimSuffix(tablePath, words.TableSuffix)
	for _, ext := range mediaExtensions {
		candidate := stem + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// provenanceURL reads the source url from the table's sibling .src.json, if
// one exists. Any read or parse failure yields an empty url.
func provenanceURL(tablePath string) string {
	srcPath := strings.TrimSuffix(tablePath, words.TableSuffix) + ".src.json"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return ""
	}
	var src struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &src); err != nil {
		return ""
	}
	return src.URL
}

// scanTable matches needle against the word column. Only start, end, and
// word columns are required so caption-derived tables work too.
func scanTable(path, needle string, pad float64, url, mediaName string) ([]Hit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		hits     []Hit
		startCol = -1
		endCol   = -1
		wordCol  = -1
		header   bool
	)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if !header {
			header = true
			for i, name := range fields {
				switch strings.TrimSpace(name) {
				case "start":
					startCol = i
				case "end":
					endCol = i
				case "word":
					wordCol = i
				}
			}
			if startCol < 0 || endCol < 0 || wordCol < 0 {
				return nil, fmt.Errorf("word table %s missing start, end, or word column", path)
			}
			continue
		}
		if len(fields) <= startCol || len(fields) <= endCol || len(fields) <= wordCol {
			continue
		}

		w := strings.TrimSpace(fields[wordCol])
		if !strings.EqualFold(w, needle) {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(fields[startCol]), 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(fields[endCol]), 64)
		if err != nil {
			continue
		}

		hits = append(hits, Hit{
			URL:         url,
			Start:       max(0, start-pad),
			End:         end + pad,
			Label:       w,
			SourceMedia: mediaName,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// WriteTSV renders hits with the pipeline's header. The header is written
// even when there are no hits.
func WriteTSV(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "url\tstart\tend\tlabel\tsource_caption")
	for _, hit := range hits {
		fmt.Fprintf(bw, "%s\t%.3f\t%.3f\t%s\t%s\n", hit.URL, hit.Start, hit.End, hit.Label, hit.SourceMedia)
	}
	return bw.Flush()
}
