package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cfm/internal/bookmarks"
	"cfm/internal/workspace"
)

// doCd implements "cd [TARGET]" (§4.4): resolve against CDPATH, chdir, and
// record the visit in both the current workspace's history and the
// jumper database.
func (d *Dispatcher) doCd(args []string) (bool, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	resolved, err := workspace.CD(d.CWD, target, d.CDPath)
	if err != nil {
		return false, err
	}
	if err := os.Chdir(resolved); err != nil {
		return false, fmt.Errorf("cd: %w", err)
	}
	old := d.CWD
	d.CWD = resolved
	d.Workspaces.Visit(resolved)
	if d.Jumper != nil {
		d.Jumper.Visit(resolved, time.Now())
	}
	d.onCWDChange(old, resolved)
	return false, nil
}

// doBack implements "b": move the current workspace's history cursor
// toward the start.
func (d *Dispatcher) doBack(args []string) (bool, error) {
	path, ok := d.currentHistory().Back()
	if !ok {
		return false, fmt.Errorf("b: no previous directory")
	}
	return false, d.chdirNoHistory(path)
}

// doForth implements "f": move the history cursor toward the end.
func (d *Dispatcher) doForth(args []string) (bool, error) {
	path, ok := d.currentHistory().Forth()
	if !ok {
		return false, fmt.Errorf("f: no next directory")
	}
	return false, d.chdirNoHistory(path)
}

// doBackDir implements "bd NAME": jump to the nearest ancestor segment
// matching name.
func (d *Dispatcher) doBackDir(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("bd: missing NAME argument")
	}
	target, err := workspace.BackDir(d.CWD, args[0])
	if err != nil {
		return false, err
	}
	if err := os.Chdir(target); err != nil {
		return false, err
	}
	old := d.CWD
	d.CWD = target
	d.Workspaces.Visit(target)
	d.onCWDChange(old, target)
	return false, nil
}

func (d *Dispatcher) currentHistory() *workspace.History {
	_, slot := d.Workspaces.Current()
	return &slot.Hist
}

func (d *Dispatcher) chdirNoHistory(path string) error {
	if err := os.Chdir(path); err != nil {
		return err
	}
	old := d.CWD
	d.CWD = path
	d.onCWDChange(old, path)
	return nil
}

// doBookmark implements "bm" (add/remove/goto/list/edit), §4.8.
func (d *Dispatcher) doBookmark(args []string) (bool, error) {
	if len(args) == 0 {
		for i, bm := range d.Bookmarks.All() {
			fmt.Printf("%d %s %s -> %s\n", i+1, bm.Shortcut, bm.Name, bm.Path)
		}
		return false, nil
	}
	switch args[0] {
	case "a", "add":
		if len(args) < 2 {
			return false, fmt.Errorf("bm add: missing PATH")
		}
		path, err := filepath.Abs(args[1])
		if err != nil {
			return false, err
		}
		name := filepath.Base(path)
		if len(args) >= 3 {
			name = args[2]
		}
		return false, d.Bookmarks.Add(bookmarks.Bookmark{Name: name, Path: path})
	case "e", "edit":
		return false, d.Bookmarks.Edit("")
	default:
		path, ok := d.Bookmarks.Lookup(args[0])
		if !ok {
			return false, fmt.Errorf("bm: %s: no such bookmark", args[0])
		}
		return d.doCd([]string{path})
	}
}

// doJump implements "j [QUERY...]" (§4.5): query the frecency index and
// cd to the best match, or list the database with "j l". There is no
// separate "jl" command.
func (d *Dispatcher) doJump(args []string) (bool, error) {
	if len(args) == 1 && args[0] == "l" {
		for _, r := range d.Jumper.List(time.Now()) {
			fmt.Printf("%-6d %s\n", r.Visits, r.Path)
		}
		return false, nil
	}
	rec := d.Jumper.Query(args, time.Now(), d.isBookmarked, d.isPinned, d.inWorkspace)
	if rec == nil {
		return false, fmt.Errorf("j: no match for %v", args)
	}
	return d.doCd([]string{rec.Path})
}

func (d *Dispatcher) isBookmarked(path string) bool {
	for _, bm := range d.Bookmarks.All() {
		if bm.Path == path {
			return true
		}
	}
	return false
}

func (d *Dispatcher) isPinned(path string) bool {
	return d.Jumper != nil && d.Jumper.IsPinned(path)
}

func (d *Dispatcher) inWorkspace(path string) bool {
	for i := 1; i <= 8; i++ {
		if slot, err := d.Workspaces.Slot(i); err == nil && slot.Path == path {
			return true
		}
	}
	return false
}

// doPin implements "pin PATH".
func (d *Dispatcher) doPin(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("pin: missing PATH")
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return false, err
	}
	d.Jumper.Pin(abs)
	return false, nil
}

// doUnpin implements "unpin".
func (d *Dispatcher) doUnpin(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("unpin: missing PATH")
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return false, err
	}
	d.Jumper.Unpin(abs)
	return false, nil
}

// doWorkspace implements "ws N": switch to workspace N, cd'ing into its
// stored path. With private-ws-settings on, the leaving workspace's display
// options are snapshotted onto its slot, and the entering workspace's prior
// snapshot (if it has one) is restored into the live RC.
func (d *Dispatcher) doWorkspace(args []string) (bool, error) {
	if len(args) == 0 {
		idx, _ := d.Workspaces.Current()
		fmt.Printf("current workspace: %d\n", idx+1)
		return false, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return false, fmt.Errorf("ws: %s: not a workspace number", args[0])
	}
	private := d.RC != nil && d.RC.Bool("private-ws-settings", false)

	if _, curSlot := d.Workspaces.Current(); private || curSlot.Private {
		d.snapshotWsOptions(curSlot)
		curSlot.Private = true
	}
	targetWasPrivate := false
	if slot, err := d.Workspaces.Slot(n); err == nil {
		targetWasPrivate = slot.Private
	}

	path, err := d.Workspaces.Switch(n, private)
	if err != nil {
		return false, err
	}

	if slot, err := d.Workspaces.Slot(n); err == nil {
		if private {
			slot.Private = true
		}
		if targetWasPrivate {
			d.restoreWsOptions(slot)
		}
	}

	return false, d.chdirNoHistory(path)
}

// snapshotWsOptions copies the live RC display options onto slot.Opts.
func (d *Dispatcher) snapshotWsOptions(slot *workspace.Slot) {
	if d.RC == nil {
		return
	}
	slot.Opts = workspace.Options{
		SortKey:     d.RC.String("sort", "name"),
		ShowHidden:  d.RC.Bool("hidden-files", false),
		LongView:    d.RC.Bool("long-view", false),
		MaxNameLen:  d.RC.Int("max-name-len", 20),
		Pager:       d.RC.Bool("pager", false),
		SortReverse: d.RC.Bool("sort-reverse", false),
		ColorScheme: d.RC.String("color-scheme", "default"),
	}
}

// restoreWsOptions writes slot.Opts back into the live RC.
func (d *Dispatcher) restoreWsOptions(slot *workspace.Slot) {
	if d.RC == nil {
		return
	}
	o := slot.Opts
	d.RC.Options["sort"] = o.SortKey
	d.RC.Options["hidden-files"] = strconv.FormatBool(o.ShowHidden)
	d.RC.Options["long-view"] = strconv.FormatBool(o.LongView)
	d.RC.Options["max-name-len"] = strconv.Itoa(o.MaxNameLen)
	d.RC.Options["pager"] = strconv.FormatBool(o.Pager)
	d.RC.Options["sort-reverse"] = strconv.FormatBool(o.SortReverse)
	d.RC.Options["color-scheme"] = o.ColorScheme
}
