package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddUntagRoundTrip(t *testing.T) {
	root := t.TempDir()
	tagsDir := filepath.Join(root, "tags")
	g := New(tagsDir)

	file := filepath.Join(root, "secret.txt")
	os.WriteFile(file, []byte("x"), 0644)

	if err := g.Add([]string{file}, "secret"); err != nil {
		t.Fatal(err)
	}
	files, err := g.Files("secret")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != file {
		t.Fatalf("expected [%s], got %v", file, files)
	}

	if err := g.Untag([]string{file}, "secret"); err != nil {
		t.Fatal(err)
	}
	files, err = g.Files("secret")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("expected tag directory to persist empty, got %v", files)
	}
	if !g.Exists("secret") {
		t.Fatal("expected tag directory to persist after untagging its only member")
	}
}

func TestRejectsSlashOrNulInTagName(t *testing.T) {
	g := New(t.TempDir())
	if err := g.Add([]string{"/etc/hosts"}, "a/b"); err == nil {
		t.Fatal("expected tag name with slash to be rejected")
	}
	if err := g.Add([]string{"/etc/hosts"}, "a\x00b"); err == nil {
		t.Fatal("expected tag name with NUL to be rejected")
	}
}

func TestMergeMovesEntriesAndRemovesSource(t *testing.T) {
	root := t.TempDir()
	g := New(filepath.Join(root, "tags"))
	f1 := filepath.Join(root, "f1.txt")
	f2 := filepath.Join(root, "f2.txt")
	os.WriteFile(f1, []byte("1"), 0644)
	os.WriteFile(f2, []byte("2"), 0644)
	g.Add([]string{f1}, "src")
	g.Add([]string{f2}, "dst")

	if err := g.Merge("src", "dst"); err != nil {
		t.Fatal(err)
	}
	files, err := g.Files("dst")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files in dst after merge, got %d", len(files))
	}
	if g.Exists("src") {
		t.Fatal("expected src tag directory removed after merge")
	}
}

func TestListCountsFiles(t *testing.T) {
	root := t.TempDir()
	g := New(filepath.Join(root, "tags"))
	f := filepath.Join(root, "f.txt")
	os.WriteFile(f, []byte("1"), 0644)
	g.Add([]string{f}, "t1")

	counts, err := g.List()
	if err != nil {
		t.Fatal(err)
	}
	if counts["t1"] != 1 {
		t.Fatalf("expected t1 count 1, got %d", counts["t1"])
	}
}
