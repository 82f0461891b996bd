package trash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveAndRestoreRoundTrip(t *testing.T) {
	dataHome := t.TempDir()
	workDir := t.TempDir()
	c, err := Open(dataHome)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	src := filepath.Join(workDir, "doomed.txt")
	if err := os.WriteFile(src, []byte("bye"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := c.Move(src); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected original path to be gone after Move")
	}

	items, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].OriginalPath != src {
		t.Fatalf("got %+v", items)
	}

	restored, err := c.Restore(items[0].Name)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != src {
		t.Fatalf("got %q want %q", restored, src)
	}
	if data, err := os.ReadFile(src); err != nil || string(data) != "bye" {
		t.Fatalf("restored content mismatch: %v %q", err, data)
	}
}

func TestMoveCollisionGetsSuffixed(t *testing.T) {
	dataHome := t.TempDir()
	workDir := t.TempDir()
	c, err := Open(dataHome)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 2; i++ {
		sub := filepath.Join(workDir, "r", string(rune('a'+i)))
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		src := filepath.Join(sub, "dup.txt")
		if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := c.Move(src); err != nil {
			t.Fatalf("Move %d: %v", i, err)
		}
	}

	items, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 trashed items, got %d", len(items))
	}
	if items[0].Name == items[1].Name {
		t.Fatal("expected distinct basenames after collision suffixing")
	}
}

func TestEmptyRemovesEverything(t *testing.T) {
	dataHome := t.TempDir()
	workDir := t.TempDir()
	c, err := Open(dataHome)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	src := filepath.Join(workDir, "gone.txt")
	os.WriteFile(src, []byte("x"), 0644)
	if err := c.Move(src); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := c.Empty(); err != nil {
		t.Fatalf("Empty: %v", err)
	}
	items, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty trash, got %d items", len(items))
	}
}
