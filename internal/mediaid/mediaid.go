// Package mediaid maps video identifiers to the media files pulled for
// them, for feeding transcription work lists.
package mediaid

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidops/internal/textutil"
)

// Index maps a video identifier to the media file pulled for it. When two
// files share an identifier the last one scanned wins.
type Index map[string]string

// BuildIndex scans dir (non-recursive) for files with the given extensions
// and indexes them by the identifier prefix of their name. Files without an
// identifier prefix are ignored.
func BuildIndex(dir string, extensions []string) (Index, error) {
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read media dir: %w", err)
	}

	index := make(Index)
	for _, entry := range entries {
		if entry.IsDir() || !wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		id := textutil.VideoIDPrefix(entry.Name())
		if id == "" {
			continue
		}
		index[id] = filepath.Join(dir, entry.Name())
	}
	return index, nil
}

// Result splits a lookup batch into resolved paths and missing identifiers,
// both in input order.
type Result struct {
	Found   []string
	Missing []string
}

// Resolve looks up each identifier. Blank identifiers are skipped.
func (idx Index) Resolve(ids []string) Result {
	var result Result
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if path, ok := idx[id]; ok {
			result.Found = append(result.Found, path)
		} else {
			result.Missing = append(result.Missing, id)
		}
	}
	return result
}

// IDs returns the indexed identifiers, sorted.
func (idx Index) IDs() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadIDs reads one identifier per line, skipping blanks.
func ReadIDs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read id list %s: %w", path, err)
	}
	return ids, nil
}

// WriteLines writes one value per line.
func WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
