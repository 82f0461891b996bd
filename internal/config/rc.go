package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mvo5/goconfigparser"

	"cfm/internal/core"
)

// mainSection is the synthetic ini section wrapped around cfm's sectionless
// KEY=VALUE grammar so goconfigparser (which requires a section header) can
// parse it without hand-rolling a line splitter.
const mainSection = "main"

// RC holds the parsed profile configuration plus the multi-line constructs
// (alias/promptcmd/autocmd) the ini parser doesn't model.
type RC struct {
	Options map[string]string

	Aliases     map[string]string
	PromptCmds  []string
	Autocmds    []AutocmdLine
}

// AutocmdLine is one parsed "autocmd GLOB OPT1=VAL,OPT2=VAL,!CMD" line.
type AutocmdLine struct {
	Glob     string
	Settings map[string]string
	Cmd      string
}

// Defaults returns the built-in option values written into a freshly
// created clifmrc (mirrors the reference implementation's first-run
// bootstrap in init.c).
func Defaults() map[string]string {
	return map[string]string{
		"hidden-files":          "false",
		"long-view":             "false",
		"dirs-first":            "true",
		"pager":                 "false",
		"unicode":               "true",
		"autocd":                "true",
		"auto-open":             "true",
		"sort":                  "name",
		"sort-reverse":          "false",
		"max-name-len":          "20",
		"max-jump-total-rank":   "100000",
		"min-jump-rank":         "10",
		"purge-jumpdb":          "false",
		"share-selbox":          "false",
		"light-mode":            "false",
		"secure-cmds":           "false",
		"desktop-notifications": "false",
		"private-ws-settings":   "false",
	}
}

// Load parses file if present, synthesizing a [main] header; a missing
// file is created with Defaults and the reference engine's commented
// first-run template. Any value that fails validation defaults and is
// logged, per the ConfigCorrupt error class — the session continues.
func Load(session *core.Session, file string) (*RC, error) {
	rc := &RC{Options: Defaults(), Aliases: map[string]string{}}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		if err := writeDefaultRC(file); err != nil {
			return nil, err
		}
		return rc, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var plain strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "alias "):
			name, value, ok := parseAlias(trimmed)
			if ok {
				rc.Aliases[name] = value
			}
		case strings.HasPrefix(trimmed, "promptcmd "):
			rc.PromptCmds = append(rc.PromptCmds, strings.TrimPrefix(trimmed, "promptcmd "))
		case strings.HasPrefix(trimmed, "autocmd "):
			if ac, ok := parseAutocmd(trimmed); ok {
				rc.Autocmds = append(rc.Autocmds, ac)
			}
		default:
			plain.WriteString(line)
			plain.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	cfg := goconfigparser.New()
	synthesized := "[" + mainSection + "]\n" + plain.String()
	if err := cfg.Read(strings.NewReader(synthesized)); err != nil {
		if session != nil {
			session.Notice("warning", "config: %s: %v, using defaults", file, err)
		}
		return rc, nil
	}
	for key := range cfg.Conf[mainSection] {
		val, _ := cfg.Get(mainSection, key)
		if !validOption(key, val) {
			if session != nil {
				session.Notice("warning", "config: %s: bad value %q for %q, using default", file, val, key)
			}
			continue
		}
		rc.Options[key] = val
	}
	return rc, nil
}

// validOption rejects obviously malformed values for the handful of keys
// whose type we know (bool/int), leaving the caller's default in place —
// the ConfigCorrupt policy from §7.
func validOption(key, val string) bool {
	switch key {
	case "hidden-files", "long-view", "dirs-first", "pager", "unicode", "autocd",
		"auto-open", "sort-reverse", "purge-jumpdb", "share-selbox", "light-mode",
		"secure-cmds", "desktop-notifications", "private-ws-settings":
		_, err := strconv.ParseBool(val)
		return err == nil
	case "max-name-len", "max-jump-total-rank", "min-jump-rank":
		_, err := strconv.Atoi(val)
		return err == nil
	}
	return true
}

func parseAlias(line string) (name, value string, ok bool) {
	rest := strings.TrimPrefix(line, "alias ")
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(rest[:eq])
	value = strings.Trim(strings.TrimSpace(rest[eq+1:]), "'\"")
	return name, value, name != ""
}

func parseAutocmd(line string) (AutocmdLine, bool) {
	rest := strings.TrimPrefix(line, "autocmd ")
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return AutocmdLine{}, false
	}
	ac := AutocmdLine{Glob: fields[0], Settings: map[string]string{}}
	for _, part := range strings.Split(fields[1], ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "!") {
			ac.Cmd = strings.TrimPrefix(part, "!")
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 {
			ac.Settings[kv[0]] = kv[1]
		}
	}
	return ac, true
}

func (rc *RC) Bool(key string, fallback bool) bool {
	v, ok := rc.Options[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func (rc *RC) Int(key string, fallback int) int {
	v, ok := rc.Options[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (rc *RC) String(key, fallback string) string {
	v, ok := rc.Options[key]
	if !ok || v == "" {
		return fallback
	}
	return v
}

func writeDefaultRC(file string) error {
	var sb strings.Builder
	sb.WriteString("# cfm configuration file\n")
	sb.WriteString("# Lines starting with '#' and blank lines are ignored.\n\n")
	defaults := Defaults()
	for _, key := range []string{
		"hidden-files", "long-view", "dirs-first", "pager", "unicode", "autocd",
		"auto-open", "sort", "sort-reverse", "max-name-len", "max-jump-total-rank",
		"min-jump-rank", "purge-jumpdb", "share-selbox", "light-mode", "secure-cmds",
		"desktop-notifications", "private-ws-settings",
	} {
		fmt.Fprintf(&sb, "%s=%s\n", key, defaults[key])
	}
	sb.WriteString("\n# alias ll='l -l'\n# promptcmd echo hi\n")
	return os.WriteFile(file, []byte(sb.String()), 0644)
}
