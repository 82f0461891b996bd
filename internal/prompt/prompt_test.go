package prompt

import "testing"

func TestExpandBasenameAndWorkspace(t *testing.T) {
	s := State{CWD: "/home/u/proj", Basename: "proj", Workspace: 2, LastExit: 0}
	got := Expand(`\W:\S:\z `, s, nil)
	want := "proj:2:0 "
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExpandAbbreviatesHome(t *testing.T) {
	s := State{CWD: "/home/u/proj", Home: "/home/u"}
	got := Expand(`\w`, s, nil)
	if got != "~/proj" {
		t.Fatalf("expected ~/proj, got %q", got)
	}
}

func TestExpandPassesNonPrintingGroupThrough(t *testing.T) {
	s := State{}
	input := "\\[\x1b[32m\\]ok"
	got := Expand(input, s, nil)
	if got != "\x1b[32mok" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandRootSigil(t *testing.T) {
	got := Expand(`\$`, State{User: "root"}, nil)
	if got != "#" {
		t.Fatalf("expected # for root, got %q", got)
	}
	got = Expand(`\$`, State{User: "alice"}, nil)
	if got != "$" {
		t.Fatalf("expected $ for non-root, got %q", got)
	}
}
