package listing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanCountMatchesCountDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", ".hidden"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}
	entries, _, err := Scan(dir, Options{ShowHidden: false, StatDepth: StatFull})
	if err != nil {
		t.Fatal(err)
	}
	n, err := CountDir(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("expected scan count %d to equal count_dir %d", len(entries), n)
	}
	if n != 2 {
		t.Fatalf("expected 2 non-hidden entries, got %d", n)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	entries, stats, err := Scan(dir, Options{StatDepth: StatFull})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 || stats.Total != 0 {
		t.Fatalf("expected empty scan, got %d entries", len(entries))
	}
}

func TestScanOpendirFailureReturnsError(t *testing.T) {
	_, _, err := Scan(filepath.Join(t.TempDir(), "missing"), Options{StatDepth: StatFull})
	if err == nil {
		t.Fatal("expected error for nonexistent directory")
	}
}

func TestVersionSortNumericOrdering(t *testing.T) {
	names := []string{"file10.txt", "file2.txt", "file1.txt"}
	entries := make([]*Entry, len(names))
	for i, n := range names {
		entries[i] = &Entry{Name: n}
	}
	Sort(entries, SortVersion, false, false)
	got := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	want := []string{"file1.txt", "file2.txt", "file10.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("version sort mismatch: got %v want %v", got, want)
		}
	}
}

func TestDirsFirstPreservesKeyWithinGroup(t *testing.T) {
	entries := []*Entry{
		{Name: "zfile", IsDir: false},
		{Name: "bdir", IsDir: true},
		{Name: "afile", IsDir: false},
		{Name: "adir", IsDir: true},
	}
	Sort(entries, SortName, false, true)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Name
	}
	want := []string{"adir", "bdir", "afile", "zfile"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dirs-first sort mismatch: got %v want %v", got, want)
		}
	}
}

func TestBuildVerticalColumnMajorMath(t *testing.T) {
	entries := make([]*Entry, 10)
	for i := range entries {
		entries[i] = &Entry{Name: "f", DisplayName: "f", DisplayLen: 1}
	}
	grid := BuildVertical(entries, 12) // longest=1 -> cols = 12/2 = 6
	if grid.Cols != 6 {
		t.Fatalf("expected 6 columns, got %d", grid.Cols)
	}
	wantRows := (10 + 6 - 1) / 6
	if grid.RowsN != wantRows {
		t.Fatalf("expected %d rows, got %d", wantRows, grid.RowsN)
	}
}

func TestTrimUnicodeRestoresOriginalName(t *testing.T) {
	e := &Entry{Name: "a-very-long-filename.txt"}
	ApplyTrim(e, 10, true)
	if !e.Trimmed {
		t.Fatal("expected name to be trimmed")
	}
	if e.Name != "a-very-long-filename.txt" {
		t.Fatal("expected original Name to survive trimming")
	}
}

func TestTrimNoopWhenWithinWidth(t *testing.T) {
	e := &Entry{Name: "short"}
	ApplyTrim(e, 80, true)
	if e.Trimmed {
		t.Fatal("expected no trim for a short name")
	}
	if e.DisplayName != "short" {
		t.Fatalf("expected display name unchanged, got %q", e.DisplayName)
	}
}
