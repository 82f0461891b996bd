package workspace

import "testing"

func TestHistoryBackForth(t *testing.T) {
	var h History
	h.Append("/a")
	h.Append("/b")
	h.Append("/c")

	got, ok := h.Back()
	if !ok || got != "/b" {
		t.Fatalf("expected back to /b, got %q ok=%v", got, ok)
	}
	got, ok = h.Back()
	if !ok || got != "/a" {
		t.Fatalf("expected back to /a, got %q ok=%v", got, ok)
	}
	got, ok = h.Forth()
	if !ok || got != "/b" {
		t.Fatalf("expected forth to /b, got %q ok=%v", got, ok)
	}
}

func TestHistoryTruncatesOnNewCDAfterBack(t *testing.T) {
	var h History
	h.Append("/a")
	h.Append("/b")
	h.Append("/c")
	h.Back()
	h.Append("/d")
	if len(h.paths) != 3 {
		t.Fatalf("expected truncated history length 3, got %d: %v", len(h.paths), h.paths)
	}
	if _, ok := h.Forth(); ok {
		t.Fatal("expected no forth entry after truncation")
	}
}

func TestCDThenBackReturnsToPreviousPath(t *testing.T) {
	v := NewVector("/start")
	v.Visit("/other")
	_, slot := v.Current()
	prev, ok := slot.Hist.Back()
	if !ok || prev != "/start" {
		t.Fatalf("expected back to /start, got %q ok=%v", prev, ok)
	}
}

func TestSwitchInheritsPreviousPathWhenEmpty(t *testing.T) {
	v := NewVector("/start")
	path, err := v.Switch(2, false)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/start" {
		t.Fatalf("expected workspace 2 to inherit /start, got %q", path)
	}
	idx, slot := v.Current()
	if idx != 1 || slot.Path != "/start" {
		t.Fatalf("expected current workspace index 1 with path /start, got idx=%d path=%q", idx, slot.Path)
	}
}

func TestSwitchOutOfRange(t *testing.T) {
	v := NewVector("/start")
	if _, err := v.Switch(9, false); err == nil {
		t.Fatal("expected out-of-range workspace switch to fail")
	}
}
