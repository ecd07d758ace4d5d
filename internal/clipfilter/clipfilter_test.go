package clipfilter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVideoIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"raw text with dQw4w9WgXcQ inside", "dQw4w9WgXcQ"},
		{"short", ""},
	}
	for _, tc := range cases {
		if got := VideoIDFromURL(tc.url); got != tc.want {
			t.Errorf("VideoIDFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func writeClipTSV(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "clips.tsv")
	content := "url\tstart\tend\tlabel\tsource_caption\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFilterRemovesExistingSpans(t *testing.T) {
	dir := t.TempDir()
	clips := filepath.Join(dir, "clips")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"dQw4w9WgXcQ_ready_10.50-12.00.mp4",
		"eYq7WapuDLU_other_3.00-4.25.mp4",
		"ignored.txt",
	} {
		if err := os.WriteFile(filepath.Join(clips, name), []byte("clip"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tsv := writeClipTSV(t, dir,
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ\t10.5\t12.0\tready\tready ready",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ\t20.0\t21.0\tready\tstill wanted",
		"not a url\t1.0\t2.0\tx\tkept as-is",
	)
	todoPath := filepath.Join(dir, "todo.tsv")
	presentPath := filepath.Join(dir, "present.tsv")

	result, err := Filter(tsv, clips, Options{}, todoPath, presentPath)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if result.Total != 3 || result.Removed != 1 || result.Kept != 2 {
		t.Fatalf("result = %+v", result)
	}

	todo, err := os.ReadFile(todoPath)
	if err != nil {
		t.Fatal(err)
	}
	todoText := string(todo)
	if !strings.HasPrefix(todoText, "url\tstart\tend\tlabel\tsource_caption\n") {
		t.Errorf("todo header missing: %q", todoText)
	}
	if strings.Contains(todoText, "10.5\t12.0") {
		t.Error("matched row should not be in todo output")
	}
	if !strings.Contains(todoText, "still wanted") || !strings.Contains(todoText, "kept as-is") {
		t.Errorf("todo output lost rows:\n%s", todoText)
	}

	present, err := os.ReadFile(presentPath)
	if err != nil {
		t.Fatal(err)
	}
	presentText := string(present)
	if !strings.Contains(presentText, "dQw4w9WgXcQ\t10.000\t12.000\t10.50\t12.00") {
		t.Errorf("present output = %q", presentText)
	}
}

func TestFilterPadsBeforeMatching(t *testing.T) {
	dir := t.TempDir()
	clips := filepath.Join(dir, "clips")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(clips, "dQw4w9WgXcQ_w_10.30-12.20.mp4"), []byte("clip"), 0o644); err != nil {
		t.Fatal(err)
	}

	tsv := writeClipTSV(t, dir, "https://youtu.be/dQw4w9WgXcQ\t10.5\t12.0\tw\tpadded span")
	result, err := Filter(tsv, clips, Options{PadStart: 0.2, PadEnd: 0.2},
		filepath.Join(dir, "todo.tsv"), filepath.Join(dir, "present.tsv"))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if result.Removed != 1 || result.Kept != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestFilterToleratesRoundingDrift(t *testing.T) {
	dir := t.TempDir()
	clips := filepath.Join(dir, "clips")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(clips, "dQw4w9WgXcQ_w_10.50-12.01.mp4"), []byte("clip"), 0o644); err != nil {
		t.Fatal(err)
	}

	// End 12.004 rounds to 12.00 but ceils to 12.01, which is how the
	// cutter named the file.
	tsv := writeClipTSV(t, dir, "https://youtu.be/dQw4w9WgXcQ\t10.501\t12.004\tw\tdrifted")
	result, err := Filter(tsv, clips, Options{},
		filepath.Join(dir, "todo.tsv"), filepath.Join(dir, "present.tsv"))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("result = %+v, want the drifted span matched", result)
	}
}

func TestFilterWithMissingClipsDirKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	tsv := writeClipTSV(t, dir, "https://youtu.be/dQw4w9WgXcQ\t1.0\t2.0\tw\tx")

	result, err := Filter(tsv, filepath.Join(dir, "nope"), Options{},
		filepath.Join(dir, "todo.tsv"), filepath.Join(dir, "present.tsv"))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if result.Kept != 1 || result.Removed != 0 {
		t.Fatalf("result = %+v", result)
	}
}
