// Package dispatch implements the command table (§4.3): routing an
// expanded argument vector to an internal handler, or to the shell when
// the first token names neither. Handlers are lowercase do* methods
// collected in commandTable; SetCore's OneCmdHook reaches them through
// Execute, so kommandant's own Do<Name> reflection lookup is not used.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	kommandant "gitlab.com/ianbruene/kommandant"

	"cfm/internal/autocmd"
	"cfm/internal/bookmarks"
	"cfm/internal/colors"
	"cfm/internal/config"
	"cfm/internal/core"
	"cfm/internal/expand"
	"cfm/internal/jumper"
	"cfm/internal/listing"
	"cfm/internal/opener"
	"cfm/internal/pager"
	"cfm/internal/selection"
	"cfm/internal/tags"
	"cfm/internal/trash"
	"cfm/internal/workspace"
)

// Refresher is the set of things the dispatcher needs to redraw the
// listing after an operation changes the current directory's contents. It
// is satisfied by the REPL driver in main.go; kept as an interface here so
// this package doesn't need to import it.
type Refresher interface {
	Refresh()
}

// Dispatcher owns every subsystem handle a command needs and carries the
// do* handlers of the command table. One Dispatcher exists per running
// process, matching Reposurgeon's own single-instance pattern.
type Dispatcher struct {
	cmd *kommandant.Kmdt

	Session    *core.Session
	RC         *config.RC
	Paths      *config.Paths
	Workspaces *workspace.Vector
	Jumper     *jumper.DB
	Selection  *selection.Box
	Bookmarks  *bookmarks.List
	Tags       *tags.Graph
	Opener     *opener.Table
	Colors     *colors.Table
	Pager      *pager.Pager
	Trash      *trash.Can
	Autocmds   []autocmd.Rule

	CWD     string
	Entries []*listing.Entry

	UserVars map[string]string
	CDPath   []string

	autocmdRevert *autocmd.Revert

	Refresh Refresher
}

// EnterStartDirectory applies the autocmd/hook machinery for the
// directory the process started in, matching the "every CWD change"
// contract for the one transition that isn't a navigation command.
func (d *Dispatcher) EnterStartDirectory() {
	d.applyAutocmdFor(d.CWD)
	if path, ok := autocmd.CheckEntryHook(d.CWD); ok {
		d.runShell(path, false)
	}
}

// onCWDChange runs the hook-file and autocmd machinery (§4.11) whenever a
// navigation command lands on a new directory: the outgoing directory's
// exit hook, any pending option revert, the matching autocmd's settings
// and command, then the incoming directory's entry hook.
func (d *Dispatcher) onCWDChange(oldCWD, newCWD string) {
	if oldCWD == newCWD {
		return
	}
	if path, ok := autocmd.CheckExitHook(oldCWD); ok {
		d.runShell(path, false)
	}
	d.applyAutocmdFor(newCWD)
	if path, ok := autocmd.CheckEntryHook(newCWD); ok {
		d.runShell(path, false)
	}
}

// applyAutocmdFor reverts the previous autocmd's option overrides (if
// any) and applies whichever rule matches dir, recording what it changed
// so the next transition can revert it in turn.
func (d *Dispatcher) applyAutocmdFor(dir string) {
	if d.autocmdRevert != nil {
		for k, v := range d.autocmdRevert.Settings {
			d.RC.Options[k] = v
		}
		d.autocmdRevert = nil
	}
	rule, ok := autocmd.Match(d.Autocmds, dir)
	if !ok {
		return
	}
	prior := map[string]string{}
	for k := range rule.Settings {
		prior[k] = d.RC.Options[k]
	}
	d.autocmdRevert = &autocmd.Revert{Settings: prior}
	for k, v := range rule.Settings {
		d.RC.Options[k] = v
	}
	if rule.Cmd != "" {
		d.runShell(rule.Cmd, false)
	}
}

// SetCore is kommandant's housekeeping hook (mirrors Reposurgeon.SetCore).
// Unlike the reference engine, raw lines here must pass through the
// expansion pipeline (§4.2) before routing, so OneCmdHook bypasses
// kommandant's own Do<Name> reflection entirely and drives expand.Line
// followed by Dispatcher.Execute directly; the hook still gives us
// kommandant's panic recovery around every line the REPL reads.
func (d *Dispatcher) SetCore(k *kommandant.Kmdt) {
	d.cmd = k
	k.OneCmdHook = func(ctx context.Context, line string) (stop bool) {
		defer func(stop *bool) {
			if e := core.Catch(core.ClassCommand, recover()); e != nil {
				d.Session.Croak("%s", e.Message)
				*stop = false
			}
		}(&stop)
		if strings.TrimSpace(line) == "" {
			return false
		}
		known := KnownCommands()
		cmds, err := expand.Line(line, d.ExpandContext(known))
		if err != nil {
			d.Session.Croak("%s", err.Error())
			return false
		}
		for _, cmd := range cmds {
			if d.Execute(cmd) {
				return true
			}
		}
		return false
	}
}

// ExpandContext builds the expand.Context the pipeline needs from current
// dispatcher state, refreshed before every prompt read.
func (d *Dispatcher) ExpandContext(known map[string]bool) *expand.Context {
	names := make([]string, len(d.Entries))
	dirs := make([]bool, len(d.Entries))
	for i, e := range d.Entries {
		names[i] = e.Name
		dirs[i] = e.IsDir
	}
	return &expand.Context{
		CWD:           d.CWD,
		Entries:       names,
		EntryIsDir:    dirs,
		Selection:     d.Selection,
		Bookmarks:     d.Bookmarks,
		Tags:          d.Tags,
		UserVars:      d.UserVars,
		KnownCommands: known,
	}
}

// KnownCommands is the internal command name set used by the expansion
// pipeline's fused-split, shell-escape, and chained-split heuristics (§4.2
// steps 1-3), kept in sync with the Execute switch below.
func KnownCommands() map[string]bool {
	names := []string{
		"cd", "o", "open", "b", "f", "bm", "bookmark",
		"s", "sel", "ds", "desel",
		"t", "trash", "u", "untrash",
		"br", "c", "m", "r", "l", "md",
		"tag", "j", "pf", "ws",
		"mm", "mime", "ac", "ad", "ow",
		"pr", "pp", "mp", "net",
		"st", "pg", "cs", "ext",
		"log", "msg", "alias", "history",
		"pin", "unpin", "mf", "opener",
		"q", "Q", "bd",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Execute runs one already-expanded Command and reports whether the REPL
// should stop (the "q"/"Q" family).
func (d *Dispatcher) Execute(c expand.Command) (stop bool) {
	switch c.Kind {
	case expand.KindAssign:
		if d.UserVars == nil {
			d.UserVars = map[string]string{}
		}
		d.UserVars[c.AssignName] = c.AssignVal
		return false
	case expand.KindShell:
		d.runShell(c.RawLine, c.Background)
		return false
	}

	if len(c.Argv) == 0 {
		return false
	}
	name, args := c.Argv[0], c.Argv[1:]

	handler, ok := d.commandTable()[name]
	if !ok {
		if d.autoCDOrOpen(name, args) {
			return false
		}
		d.runShell(c.RawLine, c.Background)
		return false
	}
	stop, err := handler(args)
	if err != nil {
		d.Session.Croak("%s", err.Error())
	}
	if err == nil && needsDeselectAfter(name) {
		d.Selection.Clear()
		d.Selection.Save()
	}
	if needsRefreshAfter(name) && d.Refresh != nil {
		d.Refresh.Refresh()
	}
	return stop
}

// commandTable is the flat, frequency-ordered command table (§4.3),
// mapping every spoken form (both short and long) to its handler.
func (d *Dispatcher) commandTable() map[string]func([]string) (bool, error) {
	return map[string]func([]string) (bool, error){
		"cd": d.doCd,
		"b":  d.doBack,
		"f":  d.doForth,
		"bd": d.doBackDir,

		"o": d.doOpen, "open": d.doOpen,

		"bm": d.doBookmark, "bookmark": d.doBookmark,

		"s": d.doSelect, "sel": d.doSelect,
		"ds": d.doDeselect, "desel": d.doDeselect,

		"t": d.doTrash, "trash": d.doTrash,
		"u": d.doUntrash, "untrash": d.doUntrash,

		"br": d.doBulkRename,
		"c":  d.doCopy,
		"m":  d.doMove,
		"r":  d.doRemove,
		"l":  d.doLink,
		"md": d.doMkdir,

		"tag": d.doTag,
		"j":   d.doJump,
		"pf":  d.doProfile,
		"ws":  d.doWorkspace,

		"mm": d.doMime, "mime": d.doMime,
		"ac": d.doArchive, "ad": d.doArchive,
		"ow": d.doOpenWith,

		"pr": d.doProperties, "pp": d.doProperties,
		"mp":  d.doMountpoints,
		"net": d.doNet,

		"st":  d.doSort,
		"pg":  d.doPagerToggle,
		"cs":  d.doColorscheme,
		"ext": d.doExternalToggle,

		"log":     d.doLog,
		"msg":     d.doMessage,
		"alias":   d.doAlias,
		"history": d.doHistory,

		"pin": d.doPin, "unpin": d.doUnpin,
		"mf":     d.doMaxFiles,
		"opener": d.doOpenerEdit,

		"q": d.doQuit, "Q": d.doQuit,
	}
}

// needsDeselectAfter reports whether a successful run of name clears the
// selection box (§4.6). The box is cleared after every successful run of
// these commands, whether or not their arguments came from the selection.
func needsDeselectAfter(name string) bool {
	switch name {
	case "c", "m", "r", "l", "t", "trash", "ad", "ac", "tag":
		return true
	}
	return false
}

// needsRefreshAfter reports whether name can have changed the current
// directory's contents and therefore needs a listing rebuild.
func needsRefreshAfter(name string) bool {
	switch name {
	case "cd", "b", "f", "bd", "c", "m", "r", "l", "md", "br",
		"t", "trash", "u", "untrash", "ws", "ad", "ac":
		return true
	}
	return false
}

// autoCDOrOpen implements the auto-cd/auto-open fallback (§4.3): a bare
// first token naming a directory cd's into it; naming a regular file
// dispatches to "o" if auto-open is enabled.
func (d *Dispatcher) autoCDOrOpen(name string, args []string) bool {
	if len(args) > 0 {
		return false
	}
	target := name
	if !filepath.IsAbs(target) {
		target = filepath.Join(d.CWD, target)
	}
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if d.RC == nil || d.RC.Bool("autocd", true) {
			_, err := d.doCd([]string{name})
			if err != nil {
				d.Session.Croak("%s", err.Error())
			}
			if d.Refresh != nil {
				d.Refresh.Refresh()
			}
			return true
		}
		return false
	}
	if d.RC == nil || d.RC.Bool("auto-open", true) {
		_, err := d.doOpen([]string{name})
		if err != nil {
			d.Session.Croak("%s", err.Error())
		}
		return true
	}
	return false
}

// selfInvocationRe rejects a shell command that re-enters this binary
// (§5's "reject nested self-invocation" boundary) by name, with or without
// a path prefix.
var selfInvocationRe = regexp.MustCompile(`(^|/)cfm(\s|$)`)

// killTargetsSelfRe flags kill/pkill/killall invocations that target this
// process's own pid or name.
var killTargetsSelfRe = regexp.MustCompile(`^\s*(kill|pkill|killall)\b`)

var secureTokenRe = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)

// runShell executes line via /bin/sh, applying the security checks §5
// requires of the shell fallback: refuse self-re-invocation, refuse a
// kill/pkill/killall that targets our own pid or binary name, and (when
// secure-cmds is enabled) reject any token outside a conservative
// allow-list of characters.
func (d *Dispatcher) runShell(line string, background bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		d.Session.LastExit = exitNullCommand
		return
	}
	if selfInvocationRe.MatchString(trimmed) {
		d.Session.Croak("refusing to re-invoke cfm from the shell fallback")
		return
	}
	if killTargetsSelfRe.MatchString(trimmed) {
		pid := fmt.Sprintf("%d", os.Getpid())
		if strings.Contains(trimmed, pid) || strings.Contains(trimmed, "cfm") {
			d.Session.Croak("refusing to signal this process from the shell fallback")
			return
		}
	}
	if d.RC != nil && d.RC.Bool("secure-cmds", false) {
		for _, tok := range strings.Fields(trimmed) {
			if !secureTokenRe.MatchString(tok) {
				d.Session.Croak("secure-cmds: rejecting token %q", tok)
				return
			}
		}
	}

	cmd := exec.Command("/bin/sh", "-c", trimmed)
	cmd.Dir = d.CWD
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if background {
		if err := cmd.Start(); err != nil {
			d.Session.LastExit = exitForkFailure
			d.Session.Croak("%s", err.Error())
		}
		return
	}
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if code := exitErr.ExitCode(); code >= 0 {
				d.Session.LastExit = code
			} else {
				d.Session.LastExit = exitAbnormalChild
			}
		} else {
			d.Session.LastExit = exitForkFailure
		}
		d.Session.Notice("error", "%s", err.Error())
	} else {
		d.Session.LastExit = 0
	}
}

// Exit codes the shell fallback can report beyond a propagated child status
// (§6).
const (
	exitNullCommand   = 79
	exitForkFailure   = 81
	exitAbnormalChild = 82
)
