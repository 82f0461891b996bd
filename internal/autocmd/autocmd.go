// Package autocmd implements per-directory setting overrides and
// filesystem-change notification (§4.11).
package autocmd

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"cfm/internal/config"
)

// Rule is one autocmd entry: pattern, partial option overrides, optional
// command.
type Rule struct {
	Pattern  string
	Settings map[string]string
	Cmd      string
}

// FromRC converts the config package's parsed autocmd lines into Rules.
func FromRC(lines []config.AutocmdLine) []Rule {
	out := make([]Rule, len(lines))
	for i, l := range lines {
		out[i] = Rule{Pattern: l.Glob, Settings: l.Settings, Cmd: l.Cmd}
	}
	return out
}

// Revert records the options an autocmd changed, so they can be restored
// on leaving the directory.
type Revert struct {
	Settings map[string]string
}

// Match finds the first rule (top to bottom) whose glob matches path.
func Match(rules []Rule, path string) (Rule, bool) {
	base := filepath.Base(path)
	for _, r := range rules {
		if ok, _ := doublestar.Match(r.Pattern, base); ok {
			return r, true
		}
		if ok, _ := doublestar.Match(r.Pattern, path); ok {
			return r, true
		}
	}
	return Rule{}, false
}

// HookNames are the two per-directory hook files checked on CWD change:
// .cfm.in is run on entering a directory and .cfm.out on leaving it.
const (
	EntryHook = ".cfm.in"
	ExitHook  = ".cfm.out"
)

// CheckEntryHook reports whether dir carries an entry hook file, run once
// on entering the directory. Hook discovery happens before autocmd
// matching, per the documented (if underspecified) ordering.
func CheckEntryHook(dir string) (string, bool) {
	path := filepath.Join(dir, EntryHook)
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return path, true
	}
	return "", false
}

// CheckExitHook reports whether the directory being left carries an exit
// hook file.
func CheckExitHook(dir string) (string, bool) {
	path := filepath.Join(dir, ExitHook)
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return path, true
	}
	return "", false
}
