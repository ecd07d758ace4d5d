package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// MustMkdirAll creates each directory, failing the test on error.
func MustMkdirAll(t testing.TB, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WordTable writes a well-formed word table for mediaFile into generatedDir
// and returns its path. Rows are raw TSV lines without the header.
func WordTable(t testing.TB, generatedDir, mediaFile string, rows ...string) string {
	t.Helper()
	base := filepath.Base(mediaFile)
	base = base[:len(base)-len(filepath.Ext(base))]
	path := filepath.Join(generatedDir, base+".words.tsv")
	data := "start\tend\tword\tseg\tconfidence\tretried\n"
	for _, row := range rows {
		data += row + "\n"
	}
	WriteFile(t, path, data)
	return path
}
