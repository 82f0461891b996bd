// Package opener implements MIME/extension-based application dispatch
// (§4.9). The rule file format is bespoke to this project (not an ini
// grammar goconfigparser could parse), so it is read with a plain line
// scanner.
package opener

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// Rule is one parsed opener rule-file line.
type Rule struct {
	GUIOnly    bool
	NonGUIOnly bool
	ByName     bool // true: right-hand side compares to basename; false: to MIME
	Pattern    *regexp.Regexp
	Apps       []string
}

// Table is the parsed rule file plus a small MIME-type cache keyed by
// (path, mtime), ported from the reference engine's mime.c caching scheme
// to avoid re-invoking `file` on every redraw of an unchanged directory.
type Table struct {
	Rules []Rule
	cache map[cacheKey]string
}

type cacheKey struct {
	path  string
	mtime int64
}

// Load parses an opener rule file: lines of
// "[X|!X|]:[N:NAME-REGEX|MIME-REGEX]=APP[; APP...]".
func Load(file string) (*Table, error) {
	t := &Table{cache: make(map[cacheKey]string)}
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := parseRule(line)
		if err != nil {
			continue // malformed line: skip, not fatal
		}
		t.Rules = append(t.Rules, rule)
	}
	return t, scanner.Err()
}

func parseRule(line string) (Rule, error) {
	r := Rule{}
	rest := line

	if strings.HasPrefix(rest, "X:") {
		r.GUIOnly = true
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "!X:") {
		r.NonGUIOnly = true
		rest = rest[3:]
	}

	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return r, fmt.Errorf("opener: malformed rule %q", line)
	}
	lhs, rhs := rest[:eq], rest[eq+1:]

	if strings.HasPrefix(lhs, "N:") {
		r.ByName = true
		lhs = strings.TrimPrefix(lhs, "N:")
	}
	pat, err := regexp.Compile(lhs)
	if err != nil {
		return r, err
	}
	r.Pattern = pat

	for _, app := range strings.Split(rhs, ";") {
		app = strings.TrimSpace(app)
		if app != "" {
			r.Apps = append(r.Apps, app)
		}
	}
	if len(r.Apps) == 0 {
		return r, fmt.Errorf("opener: no applications in rule %q", line)
	}
	return r, nil
}

// MIMEType resolves path's MIME type, consulting the (path, mtime) cache
// before shelling out to `file -b --mime-type`.
func (t *Table) MIMEType(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := cacheKey{path: path, mtime: st.ModTime().UnixNano()}
	if v, ok := t.cache[key]; ok {
		return v, nil
	}
	out, err := exec.Command("file", "-b", "--mime-type", path).Output()
	if err != nil {
		return "", fmt.Errorf("opener: file(1): %w", err)
	}
	mime := strings.TrimSpace(string(out))
	t.cache[key] = mime
	return mime, nil
}

// ErrNoHandler is returned when no rule matches and the file is not an
// archive (§4.9 Fallback).
var ErrNoHandler = fmt.Errorf("opener: no handler for file")

// Match finds every application that matches path, walking the rule file
// in order. gui selects whether GUI-only/non-GUI-only rules apply.
func (t *Table) Match(path, basename, mime string, gui bool) []string {
	var apps []string
	for _, r := range t.Rules {
		if r.GUIOnly && !gui {
			continue
		}
		if r.NonGUIOnly && gui {
			continue
		}
		target := mime
		if r.ByName {
			target = basename
		}
		if r.Pattern.MatchString(target) {
			apps = append(apps, r.Apps...)
		}
	}
	return apps
}

// Resolve picks the first matching application whose executable resolves
// on PATH (or is an absolute, executable path). "ad" always resolves,
// selecting the built-in archiver hook.
func Resolve(apps []string) (string, bool) {
	for _, app := range apps {
		name := strings.Fields(app)[0]
		if name == "ad" {
			return app, true
		}
		if strings.HasPrefix(name, "/") {
			if st, err := os.Stat(name); err == nil && st.Mode()&0111 != 0 {
				return app, true
			}
			continue
		}
		if _, err := exec.LookPath(name); err == nil {
			return app, true
		}
	}
	return "", false
}

// IsArchiveMIME reports whether a MIME/magic string looks like an archive,
// used for the opener's fallback to the built-in archiver.
func IsArchiveMIME(mime string) bool {
	lower := strings.ToLower(mime)
	return strings.Contains(lower, "archive") ||
		strings.Contains(lower, "compressed") ||
		strings.Contains(lower, "iso 9660") ||
		strings.Contains(lower, "iso-9660")
}

// ExpandApp substitutes %f (file placeholder, appended if absent), $VAR
// (environment expansion), and reports the background (&) and
// discard-stderr/stdout (!E/!O) flags.
type ExpandedApp struct {
	Argv          []string
	Background    bool
	DiscardStderr bool
	DiscardStdout bool
}

func ExpandApp(app, file string) ExpandedApp {
	fields := strings.Fields(app)
	var out ExpandedApp
	hasPlaceholder := false
	for _, f := range fields {
		switch f {
		case "&":
			out.Background = true
			continue
		case "!E":
			out.DiscardStderr = true
			continue
		case "!O":
			out.DiscardStdout = true
			continue
		}
		expanded := os.ExpandEnv(f)
		if strings.Contains(expanded, "%f") {
			hasPlaceholder = true
			expanded = strings.ReplaceAll(expanded, "%f", file)
		}
		out.Argv = append(out.Argv, expanded)
	}
	if !hasPlaceholder {
		out.Argv = append(out.Argv, file)
	}
	return out
}
