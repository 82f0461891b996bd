package expand

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// globExpand implements step 8: glob/brace/tilde expansion against the
// filesystem, in the teacher's shelled-out style but done natively via
// doublestar rather than invoking a subshell. Tokens that match nothing
// pass through unchanged, matching ordinary shell "nullglob off" behavior.
func globExpand(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		out = append(out, globOne(tok)...)
	}
	return out
}

func globOne(tok string) []string {
	if tok == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return []string{home}
		}
		return []string{tok}
	}
	if strings.HasPrefix(tok, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return []string{filepath.Join(home, tok[2:])}
		}
		return []string{tok}
	}

	if !hasGlobMeta(tok) {
		return []string{tok}
	}

	dir := filepath.Dir(tok)
	pattern := tok
	base := "."
	if dir != "." {
		base = dir
		rel, err := filepath.Rel(dir, tok)
		if err == nil {
			pattern = rel
		}
	}

	fsys := os.DirFS(base)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil || len(matches) == 0 {
		return []string{tok}
	}
	sort.Strings(matches)
	out := make([]string, len(matches))
	for i, m := range matches {
		if base == "." {
			out[i] = m
		} else {
			out[i] = filepath.Join(base, m)
		}
	}
	return out
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// regexAgainstCWD implements step 10: for internal commands, any token
// that is a valid ERE and matches one or more CWD entry names is replaced
// by those matches (deduplicated, listing order), the way the reference
// engine's "r:PATTERN"-free bare-regex matching works for commands like
// "s" or "t". Tokens with no CWD match, or that aren't valid regexes, are
// left untouched.
func regexAgainstCWD(tokens []string, ctx *Context) []string {
	if len(ctx.Entries) == 0 {
		return tokens
	}
	var out []string
	for i, tok := range tokens {
		if i == 0 {
			out = append(out, tok)
			continue
		}
		if !looksLikeRegex(tok) {
			out = append(out, tok)
			continue
		}
		re, err := regexp.Compile(tok)
		if err != nil {
			out = append(out, tok)
			continue
		}
		seen := make(map[string]bool)
		var matches []string
		for _, name := range ctx.Entries {
			if re.MatchString(name) && !seen[name] {
				seen[name] = true
				matches = append(matches, name)
			}
		}
		if len(matches) == 0 {
			out = append(out, tok)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// looksLikeRegex excludes plain paths and already-resolved tokens so a
// literal filename isn't needlessly recompiled as a pattern.
func looksLikeRegex(tok string) bool {
	if tok == "" || strings.Contains(tok, "/") {
		return false
	}
	return strings.ContainsAny(tok, `.*+?[]{}()|^$\`)
}
