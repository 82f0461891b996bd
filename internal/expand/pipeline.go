// Package expand implements the input expansion pipeline (§4.2): one input
// line becomes one or more dispatchable argument vectors, through the
// ten-plus ordered passes the spec describes.
package expand

import (
	"fmt"
	"regexp"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"cfm/internal/bookmarks"
	"cfm/internal/selection"
	"cfm/internal/tags"
)

// Context is everything the pipeline needs from session state, passed in
// by the dispatcher rather than imported as package globals.
type Context struct {
	CWD        string
	Entries    []string // CWD entry names in listing (ELN) order
	EntryIsDir []bool

	Selection *selection.Box
	Bookmarks *bookmarks.List
	Tags      *tags.Graph

	UserVars map[string]string
	PinnedDir string

	// KnownCommands is the set of internal command names, used for the
	// fused-parameter split (step 1), the shell-escape heuristic (step
	// 2), and the chained-command internal-dispatch check (step 3).
	KnownCommands map[string]bool

	// InVirtualDir is true when the session is inside the stdin virtual
	// directory (step 7k): each symlink token resolves to its target.
	InVirtualDir bool

	StdinDir string
}

// Kind tags what a Command is so the dispatcher doesn't need to re-inspect
// Argv.
type Kind int

const (
	KindArgv Kind = iota
	KindShell
	KindAssign
)

// Command is one fully expanded, dispatchable unit.
type Command struct {
	Kind       Kind
	Argv       []string // non-empty for KindArgv
	RawLine    string   // the verbatim line for KindShell
	AssignName string   // for KindAssign
	AssignVal  string
	Background bool
}

// ExpansionError is returned for bad or out-of-range ELNs, undefined
// variables, invalid or out-of-bounds ranges, unknown or empty tags,
// unknown users, an empty selection, a missing pinned directory, and empty
// tokens (§4.2, §7). Unclosed quotes yield QuoteMismatchError instead, and
// a token that does not compile as a regex passes through unchanged. It
// carries the offending token so the caller can point at it.
type ExpansionError struct {
	Token string
	Msg   string
}

func (e *ExpansionError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %q", e.Msg, e.Token)
	}
	return e.Msg
}

// QuoteMismatchError is returned when a quote or command-substitution
// delimiter is left unclosed.
type QuoteMismatchError struct{ Line string }

func (e *QuoteMismatchError) Error() string {
	return fmt.Sprintf("unclosed quote or substitution in: %s", e.Line)
}

// Line expands a full input line into one or more Commands. Expansion is
// transactional: on any error the returned slice is nil and no partial
// vector is handed back (§7 policy).
func Line(line string, ctx *Context) ([]Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	// Step 2: shell escape.
	if strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, ":") || looksLikeShellFunction(trimmed) {
		return []Command{{Kind: KindShell, RawLine: strings.TrimPrefix(strings.TrimPrefix(trimmed, ";"), ":")}}, nil
	}

	// Step 1: fused-parameter split, applied once to the whole line before
	// chain-splitting. Only the line's first space-separated word is
	// examined, so later chained segments are not fused and "p3;p4" is
	// left as it is.
	trimmed = fuseSplit(trimmed, ctx)

	// Step 3: chained-command / conditional split.
	segments, hasInternal := splitChained(trimmed)
	if len(segments) > 1 && hasInternal(ctx) {
		var out []Command
		for _, seg := range segments {
			cmds, err := lineOne(seg, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, cmds...)
		}
		return out, nil
	}

	return lineOne(trimmed, ctx)
}

// lineOne expands a single (non-chained) command line through steps 4-10.
func lineOne(line string, ctx *Context) ([]Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	// Step 4: variable assignment.
	if name, val, ok := parseAssignment(line); ok {
		return []Command{{Kind: KindAssign, AssignName: name, AssignVal: val}}, nil
	}

	// Step 5: tokenise (protecting $(...) / `...` spans first so shlex
	// doesn't split their contents on internal whitespace).
	protectedLine, substitutions := protectSubstitutions(line)
	if substitutions == nil {
		return nil, &QuoteMismatchError{Line: line}
	}
	tokens, err := shlex.Split(protectedLine, true)
	if err != nil {
		return nil, &QuoteMismatchError{Line: line}
	}
	tokens = restoreSubstitutions(tokens, substitutions)

	// Step 6: background marker.
	background := false
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if last == "&" {
			tokens = tokens[:len(tokens)-1]
			background = true
		} else if strings.HasSuffix(last, "&") && last != "&&" {
			tokens[len(tokens)-1] = strings.TrimSuffix(last, "&")
			background = true
		}
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	isInternal := ctx.KnownCommands != nil && ctx.KnownCommands[tokens[0]]

	// Step 7: builtin expansions, over every token.
	tokens, err = builtinExpand(tokens, ctx)
	if err != nil {
		return nil, err
	}

	// Step 8: glob/brace/tilde, skipped for selection-consuming commands
	// (the "sel" token has already been expanded in step 7g and should
	// not be re-globbed).
	if tokens[0] != "s" && tokens[0] != "sel" {
		tokens = globExpand(tokens)
	}

	// Step 9: command substitution (already captured inline during
	// protectSubstitutions/restoreSubstitutions for $(...) and `...`
	// spans; nothing further to do here but keep the step numbered for
	// fidelity to the spec's pipeline ordering).

	// Step 10: regex-against-CWD, internal commands only.
	if isInternal {
		tokens = regexAgainstCWD(tokens, ctx)
	}

	for _, t := range tokens {
		if t == "" {
			return nil, &ExpansionError{Msg: "empty token produced by expansion"}
		}
	}

	return []Command{{Kind: KindArgv, Argv: tokens, Background: background}}, nil
}

func looksLikeShellFunction(line string) bool {
	return functionDefRe.MatchString(line)
}

var functionDefRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*\(\)\s*\{`)
