package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	shutil "github.com/termie/go-shutil"
)

// doSelect implements "s"/"sel ARGS...": each argument (already ELN/range/
// tag/regex-expanded by the pipeline) is added to the selection box.
func (d *Dispatcher) doSelect(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("sel: missing arguments")
	}
	for _, a := range args {
		abs := a
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(d.CWD, a)
		}
		if err := d.Selection.Add(strings.TrimSuffix(abs, "/")); err != nil {
			return false, err
		}
	}
	return false, d.Selection.Save()
}

// doDeselect implements "ds"/"desel ARGS..." (bare call clears everything).
func (d *Dispatcher) doDeselect(args []string) (bool, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "*") {
		d.Selection.Clear()
		return false, d.Selection.Save()
	}
	for _, a := range args {
		abs := a
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(d.CWD, a)
		}
		d.Selection.Remove(strings.TrimSuffix(abs, "/"))
	}
	return false, d.Selection.Save()
}

// targetsOrSelection returns args if non-empty, else the current
// selection's paths — the wrappers below all accept either form.
func (d *Dispatcher) targetsOrSelection(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return d.Selection.Paths()
}

// doTrash implements "t"/"trash FILES..." (defaults to the selection).
func (d *Dispatcher) doTrash(args []string) (bool, error) {
	targets := d.targetsOrSelection(args)
	if len(targets) == 0 {
		return false, fmt.Errorf("trash: nothing to trash")
	}
	if d.Trash == nil {
		return false, fmt.Errorf("trash: trash can not initialized")
	}
	for _, t := range targets {
		if err := d.Trash.Move(d.abs(t)); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doUntrash implements "u"/"untrash [NAME...]" (bare call lists trashed
// items).
func (d *Dispatcher) doUntrash(args []string) (bool, error) {
	if d.Trash == nil {
		return false, fmt.Errorf("untrash: trash can not initialized")
	}
	if len(args) == 0 {
		items, err := d.Trash.List()
		if err != nil {
			return false, err
		}
		for _, it := range items {
			fmt.Printf("%s -> %s\n", it.Name, it.OriginalPath)
		}
		return false, nil
	}
	for _, name := range args {
		if _, err := d.Trash.Restore(name); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doCopy implements "c SRC... DEST" ("cp" with safe flags: no clobber),
// defaulting SRC to the current selection when only a DEST is given.
func (d *Dispatcher) doCopy(args []string) (bool, error) {
	srcs, dest, err := splitSrcsDest(d, args)
	if err != nil {
		return false, err
	}
	for _, src := range srcs {
		target := destFor(src, dest)
		target, err := noClobber(target)
		if err != nil {
			return false, err
		}
		if fi, statErr := os.Stat(src); statErr == nil && fi.IsDir() {
			if err := shutil.CopyTree(src, target, nil); err != nil {
				return false, err
			}
		} else {
			if err := shutil.Copy(src, target, false); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// doMove implements "m SRC... DEST" ("mv" with safe flags).
func (d *Dispatcher) doMove(args []string) (bool, error) {
	srcs, dest, err := splitSrcsDest(d, args)
	if err != nil {
		return false, err
	}
	for _, src := range srcs {
		target := destFor(src, dest)
		target, err := noClobber(target)
		if err != nil {
			return false, err
		}
		if err := os.Rename(src, target); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doRemove implements "r FILES..." ("rm", defaulting to selection).
func (d *Dispatcher) doRemove(args []string) (bool, error) {
	targets := d.targetsOrSelection(args)
	if len(targets) == 0 {
		return false, fmt.Errorf("r: nothing to remove")
	}
	for _, t := range targets {
		if err := os.RemoveAll(d.abs(t)); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doLink implements "l SRC DEST" ("ln -s").
func (d *Dispatcher) doLink(args []string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("l: usage: l SRC DEST")
	}
	return false, os.Symlink(d.abs(args[0]), d.abs(args[1]))
}

// doMkdir implements "md DIRS..." ("mkdir -p").
func (d *Dispatcher) doMkdir(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("md: missing DIR argument")
	}
	for _, dir := range args {
		if err := os.MkdirAll(d.abs(dir), 0755); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doBulkRename implements "br FILES..." (defaulting to selection): opens
// the file list in $EDITOR, one name per line, and applies the renames on
// save, the same interaction the reference engine's own bulk-rename uses.
func (d *Dispatcher) doBulkRename(args []string) (bool, error) {
	targets := d.targetsOrSelection(args)
	if len(targets) == 0 {
		return false, fmt.Errorf("br: nothing to rename")
	}
	tmp, err := os.CreateTemp("", "cfm-br-*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	abss := make([]string, len(targets))
	for i, t := range targets {
		abss[i] = d.abs(t)
		fmt.Fprintln(tmp, filepath.Base(abss[i]))
	}
	tmp.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, tmp.Name())
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return false, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(abss) {
		return false, fmt.Errorf("br: line count changed, aborting rename")
	}
	for i, newName := range lines {
		newName = strings.TrimSpace(newName)
		if newName == filepath.Base(abss[i]) || newName == "" {
			continue
		}
		dest := filepath.Join(filepath.Dir(abss[i]), newName)
		if _, err := noClobberCheck(dest); err != nil {
			return false, err
		}
		if err := os.Rename(abss[i], dest); err != nil {
			return false, err
		}
	}
	return false, nil
}

// doTag implements "tag add|untag|del|rename|merge|ls [...]" (§4.7).
func (d *Dispatcher) doTag(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("tag: missing subcommand")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		files, tag, err := splitFilesTag(rest)
		if err != nil {
			return false, err
		}
		return false, d.Tags.Add(d.absAll(files), tag)
	case "untag":
		files, tag, err := splitFilesTag(rest)
		if err != nil {
			return false, err
		}
		return false, d.Tags.Untag(d.absAll(files), tag)
	case "del":
		if len(rest) == 0 {
			return false, fmt.Errorf("tag del: missing TAG")
		}
		return false, d.Tags.Delete(strings.TrimPrefix(rest[0], ":"))
	case "rename":
		if len(rest) != 2 {
			return false, fmt.Errorf("tag rename: usage: tag rename OLD NEW")
		}
		return false, d.Tags.Rename(strings.TrimPrefix(rest[0], ":"), strings.TrimPrefix(rest[1], ":"))
	case "merge":
		if len(rest) != 2 {
			return false, fmt.Errorf("tag merge: usage: tag merge SRC DST")
		}
		return false, d.Tags.Merge(strings.TrimPrefix(rest[0], ":"), strings.TrimPrefix(rest[1], ":"))
	case "ls":
		if len(rest) == 0 {
			list, err := d.Tags.List()
			if err != nil {
				return false, err
			}
			for name, n := range list {
				fmt.Printf("%s (%d)\n", name, n)
			}
			return false, nil
		}
		files, err := d.Tags.Files(strings.TrimPrefix(rest[0], ":"))
		if err != nil {
			return false, err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return false, nil
	default:
		return false, fmt.Errorf("tag: unknown subcommand %q", sub)
	}
}

func splitFilesTag(args []string) (files []string, tag string, err error) {
	if len(args) < 2 {
		return nil, "", fmt.Errorf("tag: usage: tag add|untag FILE... :TAG")
	}
	last := args[len(args)-1]
	if !strings.HasPrefix(last, ":") {
		return nil, "", fmt.Errorf("tag: expected a :TAG argument")
	}
	return args[:len(args)-1], strings.TrimPrefix(last, ":"), nil
}

func (d *Dispatcher) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.CWD, p)
}

func (d *Dispatcher) absAll(ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = d.abs(p)
	}
	return out
}

func splitSrcsDest(d *Dispatcher, args []string) (srcs []string, dest string, err error) {
	if len(args) == 0 {
		return nil, "", fmt.Errorf("missing SRC/DEST arguments")
	}
	if len(args) == 1 {
		sel := d.Selection.Paths()
		if len(sel) == 0 {
			return nil, "", fmt.Errorf("no selection to use as SRC")
		}
		return sel, d.abs(args[0]), nil
	}
	abss := d.absAll(args)
	return abss[:len(abss)-1], abss[len(abss)-1], nil
}

func destFor(src, dest string) string {
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		return filepath.Join(dest, filepath.Base(src))
	}
	return dest
}

// noClobber appends a numeric suffix (stem_N.ext) to target if it already
// exists, renaming automatically where the reference engine would prompt,
// rather than failing the whole operation.
func noClobber(target string) (string, error) {
	if _, err := os.Lstat(target); os.IsNotExist(err) {
		return target, nil
	}
	dir, base := filepath.Dir(target), filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
}

func noClobberCheck(target string) (string, error) {
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("br: %s: target already exists", target)
	}
	return target, nil
}
