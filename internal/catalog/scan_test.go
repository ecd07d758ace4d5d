package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidops/internal/logging"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanCatalogsMediaWithArtifacts(t *testing.T) {
	pull := t.TempDir()
	gen := t.TempDir()

	table := "start\tend\tword\tseg\tconfidence\tretried\n" +
		"0.0\t1.0\thello\t0\t-0.2\t0\n" +
		"1.0\t2.0\tworld\t0\t-0.4\t0\n" +
		"2.0\t3.0\tagain\t1\t-5.1\t1\n" +
		"2.5\t3.5\tagain\t1\t-0.6\t0\n"
	writeFile(t, filepath.Join(pull, "dQw4w9WgXcQ__clip.mp4"), "video")
	writeFile(t, filepath.Join(gen, "dQw4w9WgXcQ__clip.words.tsv"), table)
	clipVTT := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:02.000\nhello world\n\n" +
		"00:00:02.000 --> 00:00:03.500\nagain\n\n"
	writeFile(t, filepath.Join(gen, "dQw4w9WgXcQ__clip.vtt"), clipVTT)

	writeFile(t, filepath.Join(pull, "nested", "eYq7WapuDLU__talk.webm"), "video")
	writeFile(t, filepath.Join(gen, "eYq7WapuDLU__talk.en.vtt"), "WEBVTT\n")

	writeFile(t, filepath.Join(pull, "notes.txt"), "not media")

	store := openTestStore(t)
	scanner := NewScanner(store, logging.NewNop())
	result, err := scanner.Scan(context.Background(), pull, gen)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.MediaFiles != 2 || result.Catalogued != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v", result)
	}

	assets, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}

	clip := assets[0]
	if clip.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("video id = %q", clip.VideoID)
	}
	if clip.Source != SourceWhisper {
		t.Errorf("source = %q, want whisper for a plain vtt", clip.Source)
	}
	if clip.WordCount != 4 || clip.SegmentCount != 2 {
		t.Errorf("counts = %d words / %d segments", clip.WordCount, clip.SegmentCount)
	}
	if clip.RetriedSegments != 1 {
		t.Errorf("retried segments = %d, want 1", clip.RetriedSegments)
	}
	// Segment 0 averages -0.3, segment 1 is -0.6; across segments -0.45.
	if clip.AvgConfidence > -0.44 || clip.AvgConfidence < -0.46 {
		t.Errorf("avg confidence = %f", clip.AvgConfidence)
	}
	if clip.DurationSeconds < 3.499 || clip.DurationSeconds > 3.501 {
		t.Errorf("duration = %f, want end of last cue", clip.DurationSeconds)
	}

	talk := assets[1]
	if talk.Source != SourceCaptions || talk.Language != "en" {
		t.Errorf("caption asset = source %q language %q", talk.Source, talk.Language)
	}
	if talk.WordTable != "" {
		t.Errorf("caption asset should have no word table, got %q", talk.WordTable)
	}
}

func TestScanIgnoresInvalidLanguageTags(t *testing.T) {
	pull := t.TempDir()
	gen := t.TempDir()
	writeFile(t, filepath.Join(pull, "abcdefghijk__x.mp4"), "video")
	writeFile(t, filepath.Join(gen, "abcdefghijk__x.!!.vtt"), "WEBVTT\n")

	store := openTestStore(t)
	scanner := NewScanner(store, logging.NewNop())
	if _, err := scanner.Scan(context.Background(), pull, gen); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	assets, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if assets[0].Language != "" {
		t.Errorf("language = %q, want empty for an unparsable tag", assets[0].Language)
	}
}

func TestExportWritesTSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.tsv")

	n, err := Export(path, nil)
	if err != nil {
		t.Fatalf("Export empty: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file expected for an empty catalog")
	}

	assets := []Asset{{
		VideoID:       "dQw4w9WgXcQ",
		MediaFile:     "/pull/dQw4w9WgXcQ__clip.mp4",
		Source:        SourceWhisper,
		SegmentCount:  2,
		WordCount:     3,
		AvgConfidence: -0.45,
	}}
	n, err = Export(path, assets)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "video_id\tmedia_file\t") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "\t-0.4500\t") {
		t.Errorf("row = %q", lines[1])
	}
}
