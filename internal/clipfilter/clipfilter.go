// Package clipfilter drops clip-TSV rows whose spans were already cut into
// files on disk. Clip filenames carry 2-decimal timestamps while TSV rows
// keep full precision, so matching tolerates one cent of rounding drift in
// either direction.
package clipfilter

import (
	"bufio"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// clipNamePattern matches cut clip files: <11-char id>_<label>_<start>-<end>.<ext>.
var clipNamePattern = regexp.MustCompile(`^([A-Za-z0-9_-]{11})_.*_(\d+\.\d{2,3})-(\d+\.\d{2,3})\.[A-Za-z0-9]+$`)

var videoIDPattern = regexp.MustCompile(`[A-Za-z0-9_-]{11}`)

// clipKey identifies a cut span by video id and 2-decimal bounds.
type clipKey struct {
	id    string
	start string
	end   string
}

// VideoIDFromURL pulls the video identifier out of a watch URL. It handles
// youtube.com?v= and youtu.be/ forms and falls back to the first 11-char
// id-shaped run. Returns "" when nothing looks like an id.
func VideoIDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := parsed.Hostname()
		switch {
		case strings.HasSuffix(host, "youtube.com"):
			if vid := parsed.Query().Get("v"); vid != "" {
				return vid
			}
		case strings.HasSuffix(host, "youtu.be"):
			segments := strings.Split(parsed.Path, "/")
			if vid := segments[len(segments)-1]; vid != "" {
				return vid
			}
		}
	}
	return videoIDPattern.FindString(raw)
}

// scanClips indexes the cut clips in dir by (id, start, end). A missing
// directory yields an empty index.
func scanClips(dir string) (map[clipKey]string, error) {
	existing := make(map[clipKey]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return existing, nil
		}
		return nil, fmt.Errorf("read clips dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := clipNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		start, err1 := strconv.ParseFloat(m[2], 64)
		end, err2 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		key := clipKey{id: m[1], start: quantize(start, math.Round), end: quantize(end, math.Round)}
		existing[key] = entry.Name()
	}
	return existing, nil
}

// Options pads TSV spans before matching, mirroring the padding the cutter
// applied when the clips were made.
type Options struct {
	PadStart float64
	PadEnd   float64
}

// Result counts one filter pass.
type Result struct {
	Total   int
	Kept    int
	Removed int
}

// Filter reads the clip TSV, writes rows with no cut clip to todoPath and
// matched rows (with the span that matched) to presentPath. Rows whose URL
// or bounds cannot be parsed are kept rather than guessed about.
func Filter(tsvPath, clipsDir string, opts Options, todoPath, presentPath string) (Result, error) {
	var result Result

	existing, err := scanClips(clipsDir)
	if err != nil {
		return result, err
	}

	file, err := os.Open(tsvPath)
	if err != nil {
		return result, err
	}
	defer file.Close()

	todo, err := createOutput(todoPath)
	if err != nil {
		return result, err
	}
	defer todo.Close()
	present, err := createOutput(presentPath)
	if err != nil {
		return result, err
	}
	defer present.Close()

	todoW := bufio.NewWriter(todo)
	presentW := bufio.NewWriter(present)
	fmt.Fprintln(presentW, "url\tstart\tend\tid\tpad_start\tpad_end\tmatched_start\tmatched_end")

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			fmt.Fprintln(todoW, line)
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || strings.TrimSpace(line) == "" {
			continue
		}
		result.Total++

		id := VideoIDFromURL(fields[0])
		start, err1 := strconv.ParseFloat(fields[1], 64)
		end, err2 := strconv.ParseFloat(fields[2], 64)
		if id == "" || err1 != nil || err2 != nil {
			fmt.Fprintln(todoW, line)
			result.Kept++
			continue
		}

		startAdj := start - opts.PadStart
		if startAdj < 0 {
			startAdj = 0
		}
		endAdj := end + opts.PadEnd

		matched, found := lookup(existing, id, startAdj, endAdj)
		if !found {
			fmt.Fprintln(todoW, line)
			result.Kept++
			continue
		}
		fmt.Fprintf(presentW, "%s\t%s\t%s\t%s\t%.3f\t%.3f\t%s\t%s\n",
			fields[0], fields[1], fields[2], id, startAdj, endAdj, matched.start, matched.end)
		result.Removed++
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read clip tsv %s: %w", tsvPath, err)
	}

	if err := todoW.Flush(); err != nil {
		return result, fmt.Errorf("write %s: %w", todoPath, err)
	}
	if err := presentW.Flush(); err != nil {
		return result, fmt.Errorf("write %s: %w", presentPath, err)
	}
	if err := todo.Close(); err != nil {
		return result, err
	}
	return result, present.Close()
}

// lookup tries every 2-decimal rounding of the padded bounds against the
// clip index.
func lookup(existing map[clipKey]string, id string, start, end float64) (clipKey, bool) {
	for _, s := range roundings(start) {
		for _, e := range roundings(end) {
			key := clipKey{id: id, start: s, end: e}
			if _, ok := existing[key]; ok {
				return key, true
			}
		}
	}
	return clipKey{}, false
}

func roundings(v float64) []string {
	unique := make([]string, 0, 3)
	for _, round := range []func(float64) float64{math.Round, math.Floor, math.Ceil} {
		s := quantize(v, round)
		seen := false
		for _, u := range unique {
			if u == s {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, s)
		}
	}
	return unique
}

func quantize(v float64, round func(float64) float64) string {
	return strconv.FormatFloat(round(v*100)/100, 'f', 2, 64)
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return file, nil
}
