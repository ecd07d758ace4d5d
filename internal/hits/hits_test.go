package hits

import (
	"bytes"
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

const hitsTable = "start\tend\tword\tseg\tconfidence\tretried\n" +
	"0.10\t0.50\tHello\t0\t-0.2\t0\n" +
	"0.50\t0.90\tworld\t0\t-0.3\t0\n" +
	"4.00\t4.40\thello\t1\t-0.4\t0\n"

func TestFindMatchesCaseInsensitiveWithPadding(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clip.words.tsv"), hitsTable)
	writeFile(t, filepath.Join(root, "clip.mp4"), "video")
	writeFile(t, filepath.Join(root, "clip.src.json"), `{"url":"https://example.com/watch?v=abc"}`)

	searcher := NewSearcher(root, logging.NewNop())
	found, err := searcher.Find("hello", DefaultPad)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d hits, want 2", len(found))
	}

	first := found[0]
	if first.URL != "https://example.com/watch?v=abc" {
		t.Errorf("url = %q", first.URL)
	}
	// Start is clamped at zero; 0.10 - 0.20 would go negative.
	if first.Start != 0 {
		t.Errorf("start = %f, want 0", first.Start)
	}
	if diff := first.End - 0.70; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("end = %f, want 0.70", first.End)
	}
	// The label keeps the table's original casing.
	if first.Label != "Hello" {
		t.Errorf("label = %q", first.Label)
	}
	if first.SourceMedia != "clip.mp4" {
		t.Errorf("source media = %q", first.SourceMedia)
	}
}

func TestFindSkipsTablesWithoutSiblingMedia(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "orphan.words.tsv"), hitsTable)

	searcher := NewSearcher(root, logging.NewNop())
	found, err := searcher.Find("hello", DefaultPad)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("got %d hits from a table with no media, want 0", len(found))
	}
}

func TestFindWalksNestedDirsAndToleratesCaptionTables(t *testing.T) {
	root := t.TempDir()
	// Caption tables carry only the three core columns.
	writeFile(t, filepath.Join(root, "captions", "talk.words.tsv"),
		"start\tend\tword\n2.00\t2.50\tready\n")
	writeFile(t, filepath.Join(root, "captions", "talk.opus"), "audio")

	searcher := NewSearcher(root, logging.NewNop())
	found, err := searcher.Find("READY", 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d hits, want 1", len(found))
	}
	if found[0].URL != "" {
		t.Errorf("url = %q, want empty without src.json", found[0].URL)
	}
	if found[0].Start != 2.00 || found[0].End != 2.50 {
		t.Errorf("bounds = %f..%f", found[0].Start, found[0].End)
	}
}

func TestFindRejectsEmptyWord(t *testing.T) {
	searcher := NewSearcher(t.TempDir(), logging.NewNop())
	if _, err := searcher.Find("   ", DefaultPad); err == nil {
		t.Fatal("expected error for empty search word")
	}
}

func TestWriteTSVAlwaysEmitsHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, nil); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	if buf.String() != "url\tstart\tend\tlabel\tsource_caption\n" {
		t.Fatalf("output = %q", buf.String())
	}

	buf.Reset()
	err := WriteTSV(&buf, []Hit{{URL: "u", Start: 1.25, End: 2, Label: "hey", SourceMedia: "clip.mp4"}})
	if err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "u\t1.250\t2.000\they\tclip.mp4" {
		t.Fatalf("row = %q", lines[1])
	}
}
