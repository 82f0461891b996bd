package opener

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "mimelist.clifm")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMatchByNameAndMIME(t *testing.T) {
	dir := t.TempDir()
	file := writeRules(t, dir, "N:.*\\.txt$=nano; vim\nX:^image/=feh\n!X:^image/=viewnior\n")
	tbl, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	apps := tbl.Match("/tmp/a.txt", "a.txt", "text/plain", false)
	if len(apps) != 2 || apps[0] != "nano" || apps[1] != "vim" {
		t.Fatalf("expected [nano vim], got %v", apps)
	}
}

func TestGUIOnlyRuleFiltered(t *testing.T) {
	dir := t.TempDir()
	file := writeRules(t, dir, "X:^image/=feh\n!X:^image/=viewnior\n")
	tbl, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	gui := tbl.Match("/tmp/a.png", "a.png", "image/png", true)
	nongui := tbl.Match("/tmp/a.png", "a.png", "image/png", false)
	if len(gui) != 1 || gui[0] != "feh" {
		t.Fatalf("expected [feh] in GUI mode, got %v", gui)
	}
	if len(nongui) != 1 || nongui[0] != "viewnior" {
		t.Fatalf("expected [viewnior] in non-GUI mode, got %v", nongui)
	}
}

func TestResolvePicksFirstAvailable(t *testing.T) {
	app, ok := Resolve([]string{"definitely-not-a-real-binary-xyz", "sh"})
	if !ok || app != "sh" {
		t.Fatalf("expected fallback to sh, got %q ok=%v", app, ok)
	}
}

func TestResolveArchiverLiteral(t *testing.T) {
	app, ok := Resolve([]string{"ad"})
	if !ok || app != "ad" {
		t.Fatalf("expected literal ad to resolve, got %q ok=%v", app, ok)
	}
}

func TestIsArchiveMIME(t *testing.T) {
	cases := map[string]bool{
		"application/zip":        false,
		"application/x-archive":  true,
		"application/x-compressed-tar": true,
		"application/x-iso9660-image":  false,
	}
	for mime, want := range cases {
		if got := IsArchiveMIME(mime); got != want {
			t.Errorf("IsArchiveMIME(%q) = %v, want %v", mime, got, want)
		}
	}
}

func TestExpandAppDefaultsToAppendedPlaceholder(t *testing.T) {
	e := ExpandApp("feh", "/tmp/a.png")
	if len(e.Argv) != 2 || e.Argv[1] != "/tmp/a.png" {
		t.Fatalf("expected placeholder appended, got %v", e.Argv)
	}
}

func TestExpandAppSubstitutesPlaceholderAndFlags(t *testing.T) {
	e := ExpandApp("feh %f &", "/tmp/a.png")
	if !e.Background {
		t.Fatal("expected background flag set")
	}
	if len(e.Argv) != 2 || e.Argv[1] != "/tmp/a.png" {
		t.Fatalf("expected [feh /tmp/a.png], got %v", e.Argv)
	}
}
