package selection

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	box := New(filepath.Join(dir, "selbox.clifm"))
	if err := box.Add(f); err != nil {
		t.Fatal(err)
	}
	if err := box.Add(f); err != nil {
		t.Fatal(err)
	}
	if box.Size() != 1 {
		t.Fatalf("expected size 1 after duplicate add, got %d", box.Size())
	}
}

func TestSelDeselRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.txt")
	os.WriteFile(f, []byte("x"), 0644)
	box := New(filepath.Join(dir, "selbox.clifm"))
	box.Add(f)
	box.Remove(f)
	if box.Contains(f) {
		t.Fatal("expected selection set to be empty after sel; desel")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("x"), 0644)
	os.WriteFile(b, []byte("y"), 0644)

	selfile := filepath.Join(dir, "selbox.clifm")
	box := New(selfile)
	box.Add(a)
	box.Add(b)
	if err := box.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(selfile)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", loaded.Size())
	}
	if !loaded.Contains(a) || !loaded.Contains(b) {
		t.Fatal("reloaded box missing an entry")
	}
}

func TestLoadDropsStaleEntries(t *testing.T) {
	dir := t.TempDir()
	selfile := filepath.Join(dir, "selbox.clifm")
	gone := filepath.Join(dir, "gone.txt")
	os.WriteFile(selfile, []byte(gone+"\n"), 0644)

	loaded, err := Load(selfile)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 0 {
		t.Fatalf("expected stale entry to be dropped, got size %d", loaded.Size())
	}
}
