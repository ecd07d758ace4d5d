package main

import (
	"os"
	"path/filepath"
	"testing"

	"vidops/internal/testsupport"
)

func writeTitleCache(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "archive_cache.json")
	cache := `{
  "aaaaaaaaaaa": "HasanAbi March 1, 2023 - main",
  "bbbbbbbbbbb": "HasanAbi March 3, 2023 - main"
}`
	testsupport.WriteFile(t, path, cache)
	return path
}

func TestDatesCompareWritesReport(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t,
		filepath.Join(env.cfg.Paths.PullDir, "ccccccccccc__HasanAbi March 1, 2023 - vod.opus"), "audio")
	testsupport.WriteFile(t,
		filepath.Join(env.cfg.Paths.PullDir, "ddddddddddd__HasanAbi March 2, 2023 - vod.opus"), "audio")
	cachePath := writeTitleCache(t, t.TempDir())

	reportPath := filepath.Join(t.TempDir(), "comparison.txt")
	out, _, err := runCLI(t, []string{"dates", "compare", cachePath, "--output", reportPath}, env.configPath)
	if err != nil {
		t.Fatalf("dates compare: %v", err)
	}
	requireContains(t, out, "Pull dates: 2, archive dates: 2")
	requireContains(t, out, "In both: 1, only in pull: 1, only in archive: 1")

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected comparison report: %v", err)
	}
	requireContains(t, string(data), "DATES ONLY IN ARCHIVE:\n2023-03-03")
	requireContains(t, string(data), "DATES IN BOTH:\n2023-03-01")
}

func TestDatesMissingWritesList(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t,
		filepath.Join(env.cfg.Paths.PullDir, "ccccccccccc__HasanAbi March 1, 2023 - vod.opus"), "audio")

	datesPath := filepath.Join(t.TempDir(), "wanted.txt")
	testsupport.WriteFile(t, datesPath, "2023-03-01\n2023-03-03\n")

	outputPath := filepath.Join(t.TempDir(), "missing.txt")
	out, _, err := runCLI(t, []string{"dates", "missing", datesPath, "--output", outputPath}, env.configPath)
	if err != nil {
		t.Fatalf("dates missing: %v", err)
	}
	requireContains(t, out, "Requested: 2, found: 1, missing: 1")
	requireContains(t, out, "2023-03-03")

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("expected missing list: %v", err)
	}
	if string(data) != "2023-03-03\n" {
		t.Fatalf("missing list = %q", data)
	}
}

func TestDatesDownloadListWritesURLs(t *testing.T) {
	env := setupCLITestEnv(t)

	dir := t.TempDir()
	cachePath := writeTitleCache(t, dir)
	missingPath := filepath.Join(dir, "missing.txt")
	testsupport.WriteFile(t, missingPath, "2023-03-03\n2023-03-09\n")

	outputPath := filepath.Join(dir, "downloads.txt")
	out, _, err := runCLI(t,
		[]string{"dates", "download-list", missingPath, cachePath, "--output", outputPath}, env.configPath)
	if err != nil {
		t.Fatalf("dates download-list: %v", err)
	}
	requireContains(t, out, "Matched 1 of 2 missing dates (1 not in cache)")

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("expected download list: %v", err)
	}
	if string(data) != "https://www.youtube.com/watch?v=bbbbbbbbbbb\n" {
		t.Fatalf("download list = %q", data)
	}
}
