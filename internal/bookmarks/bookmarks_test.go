package bookmarks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "bookmarks.clifm")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLookupByShortcutNameAndIndex(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "[d]docs:/home/u/docs\nwork:/home/u/work\n/tmp\n")
	l, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := l.Lookup("d"); !ok || p != "/home/u/docs" {
		t.Fatalf("shortcut lookup failed: %q %v", p, ok)
	}
	if p, ok := l.Lookup("work"); !ok || p != "/home/u/work" {
		t.Fatalf("name lookup failed: %q %v", p, ok)
	}
	if p, ok := l.Lookup("3"); !ok || p != "/tmp" {
		t.Fatalf("index lookup failed: %q %v", p, ok)
	}
}

func TestSaveReloadFixedPoint(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "[d]docs:/home/u/docs\n")
	l, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.All()) != 1 || reloaded.All()[0].Path != "/home/u/docs" {
		t.Fatalf("expected fixed point reload, got %v", reloaded.All())
	}
}

func TestHasNameSuppressesExpansionCollision(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "docs:/home/u/docs\n")
	l, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if !l.HasName("docs") {
		t.Fatal("expected HasName to find docs")
	}
	if l.HasName("missing") {
		t.Fatal("expected HasName to report false for unknown name")
	}
}
