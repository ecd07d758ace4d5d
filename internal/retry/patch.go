package retry

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vidops/internal/fileutil"
	"vidops/internal/logging"
	"vidops/internal/vtt"
	"vidops/internal/words"
)

// backupSuffix is appended to artifact paths before the first patch, so
// clip.vtt is preserved as clip.vtt.bak.
const backupSuffix = ".bak"

// patchArtifacts writes the re-transcribed text and confidence back into the
// media file's VTT and word table. Both files get a one-time backup before
// the first patch.
func (w *Worker) patchArtifacts(logger *slog.Logger, mediaPath string, outcomes []outcome) error {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	vttPath := filepath.Join(w.opts.GeneratedDir, base+".vtt")
	tablePath := filepath.Join(w.opts.GeneratedDir, base+words.TableSuffix)

	patched, err := patchVTT(vttPath, outcomes)
	if err != nil {
		logger.Warn("vtt patch failed",
			logging.Args(logging.String("path", vttPath), logging.Error(err))...)
	} else if patched > 0 {
		logger.Info("patched vtt cues",
			logging.Args(logging.String("path", vttPath), logging.Int("cues", patched))...)
	}

	updated, err := updateWordTable(tablePath, outcomes)
	if err != nil {
		return fmt.Errorf("update word table: %w", err)
	}
	logger.Info("updated word table rows",
		logging.Args(logging.String("path", tablePath), logging.Int("rows", updated))...)
	return nil
}

// patchVTT replaces cue text and confidence for each outcome's segment
// index. Cues are addressed positionally, matching the order the word table
// assigns segment ids.
func patchVTT(path string, outcomes []outcome) (int, error) {
	cues, err := vtt.Parse(path)
	if err != nil {
		return 0, err
	}

	byIdx := make(map[int]outcome, len(outcomes))
	for _, o := range outcomes {
		byIdx[o.row.SegmentIdx] = o
	}

	patched := 0
	for i := range cues {
		o, ok := byIdx[i]
		if !ok {
			continue
		}
		cues[i].Text = o.newText
		conf := o.confidence
		cues[i].Confidence = &conf
		patched++
	}
	if patched == 0 {
		return 0, nil
	}

	if _, _, err := fileutil.BackupOnce(path, backupSuffix); err != nil {
		return 0, fmt.Errorf("backup vtt: %w", err)
	}
	if err := vtt.Write(path, cues); err != nil {
		return 0, err
	}
	return patched, nil
}

// updateWordTable rewrites confidence and the retried marker for every row
// belonging to a re-transcribed segment. Lines are edited in place so
// columns this tool does not understand survive untouched.
func updateWordTable(path string, outcomes []outcome) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	byIdx := make(map[int]outcome, len(outcomes))
	for _, o := range outcomes {
		byIdx[o.row.SegmentIdx] = o
	}

	var (
		lines   []string
		scanner = bufio.NewScanner(file)
		header  []string
		segCol  = -1
		confCol = -1
		retCol  = -1
		updated int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if header == nil {
			header = strings.Split(line, "\t")
			for i, name := range header {
				switch strings.TrimSpace(name) {
				case "seg":
					segCol = i
				case "confidence":
					confCol = i
				case "retried":
					retCol = i
				}
			}
			if segCol < 0 || confCol < 0 {
				file.Close()
				return 0, fmt.Errorf("word table %s missing seg or confidence column", path)
			}
			if retCol < 0 {
				header = append(header, "retried")
				retCol = len(header) - 1
				line = strings.Join(header, "\t")
			}
			lines = append(lines, line)
			continue
		}

		fields := strings.Split(line, "\t")
		if segCol < len(fields) {
			if seg, err := strconv.Atoi(strings.TrimSpace(fields[segCol])); err == nil {
				if o, ok := byIdx[seg]; ok {
					for len(fields) <= retCol {
						fields = append(fields, "")
					}
					fields[confCol] = strconv.FormatFloat(o.confidence, 'f', 4, 64)
					fields[retCol] = "1"
					line = strings.Join(fields, "\t")
					updated++
				}
			}
		}
		lines = append(lines, line)
	}
	closeErr := file.Close()
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if closeErr != nil {
		return 0, closeErr
	}
	if updated == 0 {
		return 0, nil
	}

	if _, _, err := fileutil.BackupOnce(path, backupSuffix); err != nil {
		return 0, fmt.Errorf("backup word table: %w", err)
	}
	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return 0, err
	}
	return updated, nil
}
