package autocmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchFirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Pattern: "*.go", Settings: map[string]string{"hidden-files": "false"}},
		{Pattern: "*", Settings: map[string]string{"hidden-files": "true"}},
	}
	r, ok := Match(rules, "/proj/main.go")
	if !ok {
		t.Fatal("expected a match")
	}
	if r.Settings["hidden-files"] != "false" {
		t.Fatalf("expected first matching rule to win, got %v", r.Settings)
	}
}

func TestMatchNoRuleMatches(t *testing.T) {
	rules := []Rule{{Pattern: "*.go"}}
	if _, ok := Match(rules, "/proj/main.py"); ok {
		t.Fatal("expected no match")
	}
}

func TestEntryHookDetection(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, EntryHook), []byte("echo hi\n"), 0644)
	path, ok := CheckEntryHook(dir)
	if !ok || path == "" {
		t.Fatal("expected entry hook to be detected")
	}
	if _, ok := CheckExitHook(dir); ok {
		t.Fatal("expected no exit hook present")
	}
}
