package dates

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFromTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
		ok    bool
	}{
		{"HasanAbi February 11, 2022 – Ukraine coverage", "2022-02-11", true},
		{"dQw4w9WgXcQ__HasanAbi January 5, 2024 - VOD.opus", "2024-01-05", true},
		{"HasanAbi December 25 2023", "2023-12-25", true},
		{"no date in here", "", false},
		{"HasanAbi February 31, 2022 – impossible", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := FromTitle(tc.title)
		if got != tc.want || ok != tc.ok {
			t.Errorf("FromTitle(%q) = %q, %v; want %q, %v", tc.title, got, ok, tc.want, tc.ok)
		}
	}
}

func TestScanPullDirCollectsDistinctDates(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"aaaaaaaaaaa__HasanAbi March 1, 2023 - morning.opus",
		"bbbbbbbbbbb__HasanAbi March 1, 2023 - rerun.opus",
		"ccccccccccc__HasanAbi March 2, 2023 - evening.opus",
		"ddddddddddd__no date.opus",
		"not-opus March 3, 2023.mp4",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ScanPullDir(dir)
	if err != nil {
		t.Fatalf("ScanPullDir: %v", err)
	}
	want := []string{"2023-03-01", "2023-03-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}

func TestCompareBucketsDates(t *testing.T) {
	cmp := Compare(
		[]string{"2023-01-01", "2023-01-02"},
		[]string{"2023-01-02", "2023-01-03"},
	)
	if !reflect.DeepEqual(cmp.PullOnly, []string{"2023-01-01"}) {
		t.Errorf("pull only = %v", cmp.PullOnly)
	}
	if !reflect.DeepEqual(cmp.ArchiveOnly, []string{"2023-01-03"}) {
		t.Errorf("archive only = %v", cmp.ArchiveOnly)
	}
	if !reflect.DeepEqual(cmp.Both, []string{"2023-01-02"}) {
		t.Errorf("both = %v", cmp.Both)
	}
}

func TestWriteComparisonSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "comparison.txt")
	cmp := Comparison{PullOnly: []string{"2023-01-01"}, Both: []string{"2023-01-02"}}
	if err := WriteComparison(path, cmp); err != nil {
		t.Fatalf("WriteComparison: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"DATES ONLY IN PULL:\n2023-01-01\n", "DATES ONLY IN ARCHIVE:\n\n", "DATES IN BOTH:\n2023-01-02\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestMissing(t *testing.T) {
	got := Missing(
		[]string{"2023-01-03", "2023-01-01", "2023-01-02"},
		[]string{"2023-01-02"},
	)
	want := []string{"2023-01-01", "2023-01-03"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

func TestReadDatesSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.txt")
	content := "2023-01-01\n\nnot a date\n2023-13-01\n2023-01-02\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadDates(path)
	if err != nil {
		t.Fatalf("ReadDates: %v", err)
	}
	want := []string{"2023-01-01", "2023-01-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}

func TestDownloadURLsPrefersLowestID(t *testing.T) {
	cache := TitleCache{
		"zzzzzzzzzzz": "HasanAbi April 1, 2023 - late restream",
		"aaaaaaaaaaa": "HasanAbi April 1, 2023 - main stream",
		"bbbbbbbbbbb": "HasanAbi April 2, 2023",
		"ccccccccccc": "untitled",
	}

	urls, unmatched := cache.DownloadURLs([]string{"2023-04-01", "2023-04-02", "2023-04-03"})
	want := []string{
		"https://www.youtube.com/watch?v=aaaaaaaaaaa",
		"https://www.youtube.com/watch?v=bbbbbbbbbbb",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	if unmatched != 1 {
		t.Fatalf("unmatched = %d, want 1", unmatched)
	}
}

func TestReadTitleCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"aaaaaaaaaaa": "HasanAbi May 5, 2023"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cache, err := ReadTitleCache(path)
	if err != nil {
		t.Fatalf("ReadTitleCache: %v", err)
	}
	if !reflect.DeepEqual(cache.Dates(), []string{"2023-05-05"}) {
		t.Fatalf("dates = %v", cache.Dates())
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTitleCache(path); err == nil {
		t.Fatal("expected error for malformed cache")
	}
}
