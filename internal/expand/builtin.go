package expand

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// builtinExpand runs step 7's thirteen sub-passes (a-m) over every token
// in order except the command word (tokens[0]), which is passed through
// unchanged by all of them.
func builtinExpand(tokens []string, ctx *Context) ([]string, error) {
	var out []string
	for idx, tok := range tokens {
		if idx == 0 {
			out = append(out, tok)
			continue
		}
		expanded, err := expandToken(tok, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func expandToken(tok string, ctx *Context) ([]string, error) {
	// a) file:// normalization.
	if strings.HasPrefix(tok, "file://") {
		tok = strings.TrimPrefix(tok, "file://")
	}

	// b) "." / ".." are left to the OS; nothing to rewrite here beyond
	// realpath resolution, which the caller performs at cd/open time.

	// c) "...N" fastback: N levels of ".." joined by "/".
	if m := fastbackRe.FindStringSubmatch(tok); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			n = 1
		}
		segs := make([]string, n)
		for i := range segs {
			segs[i] = ".."
		}
		return []string{strings.Join(segs, "/")}, nil
	}

	// d) pinned-dir placeholder.
	if tok == "," {
		if ctx.PinnedDir == "" {
			return nil, &ExpansionError{Token: tok, Msg: "no pinned directory"}
		}
		return []string{ctx.PinnedDir}, nil
	}

	// e) bookmark-name expansion: a bare name matching a bookmark and not
	// colliding with a CWD entry of the same name.
	if ctx.Bookmarks != nil && !ctx.hasEntryNamed(tok) {
		if path, ok := ctx.Bookmarks.Lookup(tok); ok {
			return []string{path}, nil
		}
	}

	// f) range expansion: "N-M" where both sides are ELNs.
	if path, ok, err := expandRange(tok, ctx); err != nil {
		return nil, err
	} else if ok {
		return path, nil
	}

	// g) "sel"/"s" keyword -> every selected path, shell-escaped then
	// re-split so each becomes its own argv token.
	if tok == "sel" || tok == "s" {
		if ctx.Selection == nil || ctx.Selection.Size() == 0 {
			return nil, &ExpansionError{Token: tok, Msg: "selection is empty"}
		}
		paths := ctx.Selection.Paths()
		quoted := make([]string, len(paths))
		for i, p := range paths {
			quoted[i] = shellquote.Join(p)
		}
		joined := strings.Join(quoted, " ")
		split, err := shellquote.Split(joined)
		if err != nil {
			return nil, &ExpansionError{Token: tok, Msg: "failed to expand sel"}
		}
		return split, nil
	}

	// h) ELN expansion: a bare positive integer indexes into the current
	// listing; directories get a trailing slash.
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 {
		if n > len(ctx.Entries) {
			return nil, &ExpansionError{Token: tok, Msg: "ELN out of range"}
		}
		name := ctx.Entries[n-1]
		if n-1 < len(ctx.EntryIsDir) && ctx.EntryIsDir[n-1] {
			name += "/"
		}
		return []string{name}, nil
	}

	// i) user variable: "$name" defined via a prior assignment.
	if strings.HasPrefix(tok, "$") && len(tok) > 1 && !strings.HasPrefix(tok, "$(") {
		name := strings.TrimPrefix(tok, "$")
		if ctx.UserVars != nil {
			if v, ok := ctx.UserVars[name]; ok {
				return []string{v}, nil
			}
		}
		// j) environment variable fallback.
		if v, ok := os.LookupEnv(name); ok {
			return []string{v}, nil
		}
		return nil, &ExpansionError{Token: tok, Msg: "undefined variable"}
	}

	// k) stdin virtual-dir symlink resolution: inside the virtual
	// directory every bare name resolves to its symlink target.
	if ctx.InVirtualDir && ctx.StdinDir != "" && !strings.Contains(tok, "/") {
		target := filepath.Join(ctx.StdinDir, tok)
		if resolved, err := os.Readlink(target); err == nil {
			return []string{resolved}, nil
		}
	}

	// l) t:TAG expansion.
	if strings.HasPrefix(tok, "t:") && ctx.Tags != nil {
		tag := strings.TrimPrefix(tok, "t:")
		files, err := ctx.Tags.Files(tag)
		if err != nil {
			return nil, &ExpansionError{Token: tok, Msg: "unknown tag"}
		}
		if len(files) == 0 {
			return nil, &ExpansionError{Token: tok, Msg: "tag has no files"}
		}
		return files, nil
	}

	// m) ~user expansion (bare "~" is left to globExpand/tilde handling).
	if strings.HasPrefix(tok, "~") && len(tok) > 1 && tok[1] != '/' {
		name := strings.SplitN(tok[1:], "/", 2)
		u, err := user.Lookup(name[0])
		if err != nil {
			return nil, &ExpansionError{Token: tok, Msg: "unknown user"}
		}
		if len(name) == 2 {
			return []string{filepath.Join(u.HomeDir, name[1])}, nil
		}
		return []string{u.HomeDir}, nil
	}

	return []string{tok}, nil
}

var fastbackRe = regexp.MustCompile(`^\.\.\.([0-9]+)$`)

func (ctx *Context) hasEntryNamed(name string) bool {
	for _, e := range ctx.Entries {
		if e == name {
			return true
		}
	}
	return false
}

// expandRange handles "N-M" where N and M are 1-based ELNs into ctx.Entries.
func expandRange(tok string, ctx *Context) ([]string, bool, error) {
	dash := strings.IndexByte(tok, '-')
	if dash <= 0 || dash == len(tok)-1 {
		return nil, false, nil
	}
	loStr, hiStr := tok[:dash], tok[dash+1:]
	lo, err1 := strconv.Atoi(loStr)
	hi, err2 := strconv.Atoi(hiStr)
	if err1 != nil || err2 != nil || lo < 1 || hi < 1 {
		return nil, false, nil
	}
	if lo >= hi {
		return nil, true, &ExpansionError{Token: tok, Msg: "invalid range"}
	}
	if hi > len(ctx.Entries) {
		return nil, true, &ExpansionError{Token: tok, Msg: "range out of bounds"}
	}
	var out []string
	for i := lo; i <= hi; i++ {
		name := ctx.Entries[i-1]
		if i-1 < len(ctx.EntryIsDir) && ctx.EntryIsDir[i-1] {
			name += "/"
		}
		out = append(out, name)
	}
	return out, true, nil
}
