package retry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidops/internal/manifest"
)

func TestUpdateWordTableAddsRetriedColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.words.tsv")
	data := "start\tend\tword\tseg\tconfidence\n" +
		"5.0\t6.0\tready\t0\t-6.2\n" +
		"10.0\t11.0\tfine\t1\t-0.3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	outcomes := []outcome{{
		row:        manifest.Row{SegmentIdx: 0},
		newText:    "we are ready",
		confidence: -0.25,
	}}
	updated, err := updateWordTable(path, outcomes)
	if err != nil {
		t.Fatalf("updateWordTable: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if !strings.HasSuffix(lines[0], "\tretried") {
		t.Errorf("header missing retried column: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "\t-0.2500\t1") {
		t.Errorf("seg 0 row not patched: %q", lines[1])
	}
	if strings.HasSuffix(lines[2], "\t1") {
		t.Errorf("seg 1 row should not be marked retried: %q", lines[2])
	}
}

func TestUpdateWordTableRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.words.tsv")
	if err := os.WriteFile(path, []byte("start\tend\tword\n1\t2\thi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := updateWordTable(path, []outcome{{row: manifest.Row{SegmentIdx: 0}}}); err == nil {
		t.Fatal("expected error for table without seg and confidence columns")
	}
}

func TestPatchVTTBackupHappensOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.vtt")
	if err := os.WriteFile(path, []byte(testVTT), 0o644); err != nil {
		t.Fatal(err)
	}

	first := []outcome{{row: manifest.Row{SegmentIdx: 0}, newText: "first pass", confidence: -0.1}}
	if _, err := patchVTT(path, first); err != nil {
		t.Fatalf("patchVTT: %v", err)
	}
	second := []outcome{{row: manifest.Row{SegmentIdx: 2}, newText: "second pass", confidence: -0.2}}
	if _, err := patchVTT(path, second); err != nil {
		t.Fatalf("patchVTT: %v", err)
	}

	backup, err := os.ReadFile(path + backupSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != testVTT {
		t.Error("backup should preserve the original file from before the first patch")
	}
	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(current), "first pass") || !strings.Contains(string(current), "second pass") {
		t.Errorf("both patches should be present:\n%s", current)
	}
}

func TestPatchVTTNoMatchingCueLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.vtt")
	if err := os.WriteFile(path, []byte(testVTT), 0o644); err != nil {
		t.Fatal(err)
	}

	patched, err := patchVTT(path, []outcome{{row: manifest.Row{SegmentIdx: 99}, newText: "x"}})
	if err != nil {
		t.Fatalf("patchVTT: %v", err)
	}
	if patched != 0 {
		t.Fatalf("patched = %d, want 0", patched)
	}
	if _, err := os.Stat(path + backupSuffix); !os.IsNotExist(err) {
		t.Errorf("no backup expected, stat err = %v", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != testVTT {
		t.Error("file should be unmodified")
	}
}
