package expand

import (
	"os"
	"testing"

	"cfm/internal/selection"
	"cfm/internal/tags"
)

func knownCommands(names ...string) map[string]bool {
	m := make(map[string]bool)
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestLineELNOutOfRangeErrors(t *testing.T) {
	ctx := &Context{
		Entries:       []string{"a", "b"},
		EntryIsDir:    []bool{false, false},
		KnownCommands: knownCommands("o"),
	}
	_, err := Line("o 5", ctx)
	if err == nil {
		t.Fatal("expected an ELN out-of-range error")
	}
}

func TestLineRangeExpansionBoundary(t *testing.T) {
	ctx := &Context{
		Entries:       []string{"one", "two", "three", "four"},
		EntryIsDir:    []bool{false, false, false, true},
		KnownCommands: knownCommands("p"),
	}
	cmds, err := Line("p 2-4", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected one command, got %d", len(cmds))
	}
	want := []string{"p", "two", "three", "four/"}
	got := cmds[0].Argv
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestLineRangeSingleBoundary(t *testing.T) {
	ctx := &Context{
		Entries:       []string{"only"},
		EntryIsDir:    []bool{false},
		KnownCommands: knownCommands("o"),
	}
	cmds, err := Line("o 1-1", ctx)
	if _, ok := err.(*ExpansionError); !ok {
		t.Fatalf("expected *ExpansionError for the degenerate range 1-1, got %v", err)
	}
	if cmds != nil {
		t.Fatalf("expected no commands on error, got %v", cmds)
	}
}

func TestLineTagExpression(t *testing.T) {
	dir := t.TempDir()
	graph := tags.New(dir)
	if err := graph.Add([]string{"/tmp/secret-a", "/tmp/secret-b"}, "secret"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx := &Context{
		KnownCommands: knownCommands("t"),
		Tags:          graph,
	}
	cmds, err := Line("t t:secret", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds[0].Argv) != 3 {
		t.Fatalf("expected command plus 2 files, got %v", cmds[0].Argv)
	}
}

func TestLineSelExpansion(t *testing.T) {
	dir := t.TempDir()
	target := dir + "/alpha beta"
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	box := selection.New(dir + "/selbox")
	if err := box.Add(target); err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx := &Context{
		KnownCommands: knownCommands("c"),
		Selection:     box,
	}
	cmds, err := Line("c sel", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds[0].Argv) != 2 || cmds[0].Argv[1] != target {
		t.Fatalf("got %v", cmds[0].Argv)
	}
}

func TestLineUnclosedQuoteIsQuoteMismatch(t *testing.T) {
	ctx := &Context{KnownCommands: knownCommands("o")}
	_, err := Line(`o "unterminated`, ctx)
	if _, ok := err.(*QuoteMismatchError); !ok {
		t.Fatalf("expected QuoteMismatchError, got %v (%T)", err, err)
	}
}

func TestLineNeverProducesEmptyTokens(t *testing.T) {
	ctx := &Context{
		Entries:       []string{"f1"},
		EntryIsDir:    []bool{false},
		KnownCommands: knownCommands("o"),
	}
	cmds, err := Line("o f1", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range cmds {
		for _, tok := range c.Argv {
			if tok == "" {
				t.Fatal("expansion produced an empty token")
			}
		}
	}
}

func TestLineShellEscapeSemicolonPrefix(t *testing.T) {
	ctx := &Context{KnownCommands: knownCommands("o")}
	cmds, err := Line("; ls -la", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmds[0].Kind != KindShell || cmds[0].RawLine != " ls -la" {
		t.Fatalf("got %+v", cmds[0])
	}
}

func TestLineChainedInternalCommandsSplit(t *testing.T) {
	ctx := &Context{
		Entries:       []string{"f1"},
		EntryIsDir:    []bool{false},
		KnownCommands: knownCommands("o", "q"),
	}
	cmds, err := Line("o f1; q", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
}

func TestLineVariableAssignment(t *testing.T) {
	ctx := &Context{}
	cmds, err := Line("FOO=bar", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmds[0].Kind != KindAssign || cmds[0].AssignName != "FOO" || cmds[0].AssignVal != "bar" {
		t.Fatalf("got %+v", cmds[0])
	}
}

