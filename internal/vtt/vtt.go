// Package vtt parses and writes the WebVTT transcript files produced by the
// transcription pipeline. Cues may be preceded by "NOTE Confidence:" lines
// carrying the engine's average log-probability for the cue.
package vtt

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Cue is one subtitle cue. StartRaw and EndRaw keep the source timestamp
// strings verbatim so patching a file never reformats untouched cues.
type Cue struct {
	StartRaw string
	EndRaw   string
	Text     string
	// Confidence is the value of a preceding "NOTE Confidence:" line, or
	// nil when the cue carried none.
	Confidence *float64
}

// Parse reads a VTT file into cues. Confidence NOTE lines are attached to
// the cue that follows them.
func Parse(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vtt %s: %w", path, err)
	}

	var cues []Cue
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		var confidence *float64
		if strings.HasPrefix(line, "NOTE Confidence:") {
			raw := strings.TrimSpace(strings.TrimPrefix(line, "NOTE Confidence:"))
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				confidence = &value
			}
			i++
			if i >= len(lines) {
				break
			}
			line = strings.TrimSpace(lines[i])
			// A blank line may separate the NOTE from its cue.
			for line == "" && i+1 < len(lines) {
				i++
				line = strings.TrimSpace(lines[i])
			}
		}

		if !strings.Contains(line, "-->") {
			continue
		}
		start, end, _ := strings.Cut(line, "-->")

		var text []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			text = append(text, strings.TrimRight(lines[i], "\r"))
		}

		cues = append(cues, Cue{
			StartRaw:   strings.TrimSpace(start),
			EndRaw:     strings.TrimSpace(end),
			Text:       strings.Join(text, "\n"),
			Confidence: confidence,
		})
	}
	return cues, nil
}

// Write renders cues back to a VTT file, emitting a confidence NOTE before
// each cue that has one.
func Write(path string, cues []Cue) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vtt %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprint(w, "WEBVTT\n\n")
	for _, cue := range cues {
		if cue.Confidence != nil {
			fmt.Fprintf(w, "NOTE Confidence: %.3f\n\n", *cue.Confidence)
		}
		fmt.Fprintf(w, "%s --> %s\n%s\n\n", cue.StartRaw, cue.EndRaw, cue.Text)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write vtt %s: %w", path, err)
	}
	return file.Close()
}

// TimestampSeconds converts an "HH:MM:SS.mmm" (or SRT "HH:MM:SS,mmm")
// timestamp to seconds.
func TimestampSeconds(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: expected HH:MM:SS.mmm", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad hours", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad minutes", value)
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad seconds", value)
	}
	return float64(h)*3600 + float64(m)*60 + s, nil
}
