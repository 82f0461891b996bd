package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"cfm/internal/bookmarks"
	"cfm/internal/core"
	"cfm/internal/expand"
	"cfm/internal/jumper"
	"cfm/internal/selection"
	"cfm/internal/tags"
	"cfm/internal/workspace"
)

func newTestDispatcher(t *testing.T, cwd string) *Dispatcher {
	t.Helper()
	sess := core.NewSession("test", false)
	box := selection.New(filepath.Join(cwd, "selbox"))
	bm, err := bookmarks.Load(filepath.Join(cwd, "bookmarks.clifm"))
	if err != nil {
		t.Fatalf("bookmarks.Load: %v", err)
	}
	jdb := jumper.New(filepath.Join(cwd, "jump.clifm"))
	return &Dispatcher{
		Session:    sess,
		Workspaces: workspace.NewVector(cwd),
		Jumper:     jdb,
		Selection:  box,
		Bookmarks:  bm,
		Tags:       tags.New(filepath.Join(cwd, "tags")),
		CWD:        cwd,
	}
}

func TestDoCdNavigatesAndRecordsHistory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "child")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	d := newTestDispatcher(t, root)

	if _, err := d.doCd([]string{"child"}); err != nil {
		t.Fatalf("doCd: %v", err)
	}
	if d.CWD != sub {
		t.Fatalf("got CWD %q want %q", d.CWD, sub)
	}

	if _, err := d.doBack(nil); err != nil {
		t.Fatalf("doBack: %v", err)
	}
	if d.CWD != root {
		t.Fatalf("after back, got CWD %q want %q", d.CWD, root)
	}
}

func TestDoSelectAndDeselect(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "f.txt")
	os.WriteFile(target, []byte("x"), 0644)
	d := newTestDispatcher(t, root)

	if _, err := d.doSelect([]string{"f.txt"}); err != nil {
		t.Fatalf("doSelect: %v", err)
	}
	if d.Selection.Size() != 1 {
		t.Fatalf("expected 1 selected, got %d", d.Selection.Size())
	}
	if _, err := d.doDeselect(nil); err != nil {
		t.Fatalf("doDeselect: %v", err)
	}
	if d.Selection.Size() != 0 {
		t.Fatalf("expected empty selection after desel *, got %d", d.Selection.Size())
	}
}

func TestExecuteRoutesKnownCommand(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "child")
	os.Mkdir(sub, 0755)
	d := newTestDispatcher(t, root)

	stop := d.Execute(expand.Command{Kind: expand.KindArgv, Argv: []string{"cd", "child"}})
	if stop {
		t.Fatal("cd should not stop the REPL")
	}
	if d.CWD != sub {
		t.Fatalf("got CWD %q want %q", d.CWD, sub)
	}
}

func TestExecuteQuitStops(t *testing.T) {
	root := t.TempDir()
	d := newTestDispatcher(t, root)
	stop := d.Execute(expand.Command{Kind: expand.KindArgv, Argv: []string{"q"}})
	if !stop {
		t.Fatal("q should stop the REPL")
	}
}

func TestRunShellRefusesSelfReinvocation(t *testing.T) {
	root := t.TempDir()
	d := newTestDispatcher(t, root)
	d.runShell("cfm --version", false)
	errs := d.Session.PendingMessages("error")
	if len(errs) != 1 {
		t.Fatalf("expected one recorded error, got %d: %v", len(errs), errs)
	}
}

func TestAutoCDOnBareDirectoryToken(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "child")
	os.Mkdir(sub, 0755)
	d := newTestDispatcher(t, root)

	handled := d.autoCDOrOpen("child", nil)
	if !handled {
		t.Fatal("expected auto-cd to handle a bare directory token")
	}
	if d.CWD != sub {
		t.Fatalf("got CWD %q want %q", d.CWD, sub)
	}
}
