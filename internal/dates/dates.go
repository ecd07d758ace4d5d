// Package dates reconciles stream dates between pulled media filenames and
// an archive metadata cache, to find which streams still need pulling. Both
// sources carry the date inside a human title ("HasanAbi February 11, 2022
// ..."); everything here normalizes to YYYY-MM-DD before comparing.
package dates

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

var monthNames = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// FromTitle extracts the first "Month D, YYYY" date embedded in a title or
// filename, normalized to YYYY-MM-DD. ok is false when the text carries no
// valid date.
func FromTitle(s string) (string, bool) {
	fields := strings.Fields(s)
	for i := 0; i+2 < len(fields); i++ {
		month, ok := monthNames[strings.ToLower(fields[i])]
		if !ok {
			continue
		}
		day := strings.TrimSuffix(fields[i+1], ",")
		year := strings.Trim(fields[i+2], ".,;:")
		if len(day) == 0 || len(day) > 2 || len(year) != 4 {
			continue
		}
		parsed, err := time.Parse("2006 January 2", fmt.Sprintf("%s %s %s", year, month, day))
		if err != nil {
			continue
		}
		// Reject normalized overflow like February 31.
		if parsed.Month() != month {
			continue
		}
		return parsed.Format("2006-01-02"), true
	}
	return "", false
}

// ScanPullDir collects the distinct dates named by the opus files in dir,
// sorted ascending. Files without a recognizable date are ignored.
func ScanPullDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pull dir: %w", err)
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".opus") {
			continue
		}
		if date, ok := FromTitle(entry.Name()); ok {
			seen[date] = true
		}
	}
	return sortedKeys(seen), nil
}

// TitleCache maps video identifiers to the titles fetched for them. The
// archive pipeline persists it as a JSON object.
type TitleCache map[string]string

// ReadTitleCache loads a JSON title cache.
func ReadTitleCache(path string) (TitleCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache TitleCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parse title cache %s: %w", path, err)
	}
	return cache, nil
}

// Dates returns the distinct dates named by the cached titles, sorted.
func (c TitleCache) Dates() []string {
	seen := make(map[string]bool)
	for _, title := range c {
		if date, ok := FromTitle(title); ok {
			seen[date] = true
		}
	}
	return sortedKeys(seen)
}

// DownloadURLs maps each wanted date to a watch URL via the cached titles.
// When several videos share a date the lowest video id wins, so repeated
// runs produce the same list. Dates absent from the cache are counted in
// unmatched.
func (c TitleCache) DownloadURLs(wanted []string) (urls []string, unmatched int) {
	byDate := make(map[string]string)
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		date, ok := FromTitle(c[id])
		if !ok {
			continue
		}
		if _, taken := byDate[date]; !taken {
			byDate[date] = id
		}
	}

	for _, date := range wanted {
		id, ok := byDate[date]
		if !ok {
			unmatched++
			continue
		}
		urls = append(urls, watchURLPrefix+id)
	}
	return urls, unmatched
}

// Comparison splits two date sets into their difference and intersection.
type Comparison struct {
	PullOnly    []string
	ArchiveOnly []string
	Both        []string
}

// Compare buckets every date by which source carries it.
func Compare(pull, archive []string) Comparison {
	pullSet := make(map[string]bool, len(pull))
	for _, date := range pull {
		pullSet[date] = true
	}
	archiveSet := make(map[string]bool, len(archive))
	for _, date := range archive {
		archiveSet[date] = true
	}

	var cmp Comparison
	for date := range pullSet {
		if archiveSet[date] {
			cmp.Both = append(cmp.Both, date)
		} else {
			cmp.PullOnly = append(cmp.PullOnly, date)
		}
	}
	for date := range archiveSet {
		if !pullSet[date] {
			cmp.ArchiveOnly = append(cmp.ArchiveOnly, date)
		}
	}
	sort.Strings(cmp.PullOnly)
	sort.Strings(cmp.ArchiveOnly)
	sort.Strings(cmp.Both)
	return cmp
}

// WriteComparison renders the three buckets as a sectioned text report.
func WriteComparison(path string, cmp Comparison) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}
	var b strings.Builder
	writeSection := func(title string, values []string) {
		b.WriteString(title)
		b.WriteString(":\n")
		for _, v := range values {
			b.WriteString(v)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	writeSection("DATES ONLY IN PULL", cmp.PullOnly)
	writeSection("DATES ONLY IN ARCHIVE", cmp.ArchiveOnly)
	writeSection("DATES IN BOTH", cmp.Both)
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Missing returns the requested dates with no pulled counterpart, sorted.
func Missing(requested, have []string) []string {
	haveSet := make(map[string]bool, len(have))
	for _, date := range have {
		haveSet[date] = true
	}
	var missing []string
	for _, date := range requested {
		if !haveSet[date] {
			missing = append(missing, date)
		}
	}
	sort.Strings(missing)
	return missing
}

// ReadDates reads one YYYY-MM-DD date per line. Blank and malformed lines
// are skipped.
func ReadDates(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var dates []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", line); err != nil {
			continue
		}
		dates = append(dates, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dates %s: %w", path, err)
	}
	return dates, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
