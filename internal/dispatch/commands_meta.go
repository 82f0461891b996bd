package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"cfm/internal/config"
	"cfm/internal/listing"
	"cfm/internal/opener"
)

// doOpen implements "o"/"open FILE [APP]" (§4.9): resolve a handler via
// the opener table (or honor an explicit APP override) and exec it.
func (d *Dispatcher) doOpen(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("open: missing FILE argument")
	}
	target := d.abs(args[0])
	if len(args) >= 2 {
		return false, d.launch(args[1], target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return d.doCd([]string{args[0]})
	}

	mime, err := d.Opener.MIMEType(target)
	if err != nil {
		return false, err
	}
	gui := os.Getenv("DISPLAY") != ""
	apps := d.Opener.Match(target, filepath.Base(target), mime, gui)
	app, ok := opener.Resolve(apps)
	if !ok {
		if opener.IsArchiveMIME(mime) {
			return false, d.runArchiver("x", target)
		}
		return false, fmt.Errorf("open: %s: %w", target, opener.ErrNoHandler)
	}
	return false, d.launch(app, target)
}

// doOpenWith implements "ow FILE APP".
func (d *Dispatcher) doOpenWith(args []string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("ow: usage: ow FILE APP")
	}
	return false, d.launch(args[1], d.abs(args[0]))
}

func (d *Dispatcher) launch(app, file string) error {
	expanded := opener.ExpandApp(app, file)
	if len(expanded.Argv) == 0 {
		return fmt.Errorf("open: empty application command")
	}
	cmd := exec.Command(expanded.Argv[0], expanded.Argv[1:]...)
	cmd.Dir = d.CWD
	cmd.Stdin = os.Stdin
	if !expanded.DiscardStdout {
		cmd.Stdout = os.Stdout
	}
	if !expanded.DiscardStderr {
		cmd.Stderr = os.Stderr
	}
	if expanded.Background {
		return cmd.Start()
	}
	return cmd.Run()
}

// doMime implements "mm"/"mime FILE" (report the matched MIME type and
// candidate applications without launching anything).
func (d *Dispatcher) doMime(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("mime: missing FILE argument")
	}
	target := d.abs(args[0])
	mime, err := d.Opener.MIMEType(target)
	if err != nil {
		return false, err
	}
	gui := os.Getenv("DISPLAY") != ""
	apps := d.Opener.Match(target, filepath.Base(target), mime, gui)
	fmt.Printf("%s: %s\n", target, mime)
	for _, a := range apps {
		fmt.Println("  " + a)
	}
	return false, nil
}

// doOpenerEdit implements "opener" (open the rule file in $EDITOR).
func (d *Dispatcher) doOpenerEdit(args []string) (bool, error) {
	if d.Paths == nil {
		return false, fmt.Errorf("opener: paths not resolved")
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, d.Paths.MimeList)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return false, cmd.Run()
}

// doArchive implements "ac"/"ad FILES... [DEST]": shells out to the
// archiver wrapper, out of this package's scope per the spec's external-
// collaborator boundary. "ad" with a single archive extracts it; with
// multiple regular files it creates one, mirroring the reference engine's
// own dual-purpose command.
func (d *Dispatcher) doArchive(args []string) (bool, error) {
	targets := d.targetsOrSelection(args)
	if len(targets) == 0 {
		return false, fmt.Errorf("ad: nothing to archive")
	}
	if len(targets) == 1 {
		mime, err := d.Opener.MIMEType(d.abs(targets[0]))
		if err == nil && opener.IsArchiveMIME(mime) {
			return false, d.runArchiver("x", d.abs(targets[0]))
		}
	}
	return false, d.runArchiver("a", d.absAll(targets)...)
}

// runArchiver shells out to 7z/atool, whichever resolves first on PATH —
// the archiver wrapper itself is out of scope (§1 Non-goals).
func (d *Dispatcher) runArchiver(mode string, args ...string) error {
	var bin, modeFlag string
	if _, err := exec.LookPath("atool"); err == nil {
		bin = "atool"
		if mode == "x" {
			modeFlag = "-x"
		} else {
			modeFlag = "-a"
		}
	} else if _, err := exec.LookPath("7z"); err == nil {
		bin = "7z"
		if mode == "x" {
			modeFlag = "x"
		} else {
			modeFlag = "a"
		}
	} else {
		return fmt.Errorf("ad: no archiver (atool, 7z) found on PATH")
	}
	cmdArgs := append([]string{modeFlag}, args...)
	cmd := exec.Command(bin, cmdArgs...)
	cmd.Dir = d.CWD
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}

// doProperties implements "pr"/"pp FILE...": prints stat-style properties
// for each target (defaulting to the selection).
func (d *Dispatcher) doProperties(args []string) (bool, error) {
	targets := d.targetsOrSelection(args)
	if len(targets) == 0 {
		return false, fmt.Errorf("pr: nothing to show")
	}
	for _, t := range targets {
		full := d.abs(t)
		info, err := os.Lstat(full)
		if err != nil {
			return false, err
		}
		fmt.Printf("%s\t%s\t%d bytes\t%s\n", full, info.Mode(), info.Size(), info.ModTime())
	}
	return false, nil
}

// doMountpoints implements "mp": the remotes/mount table is out of scope
// (§1 Non-goals); this surfaces the kernel's own view via mount(8) the way
// the reference engine falls back to it when no remote-mount backend is
// configured.
func (d *Dispatcher) doMountpoints(args []string) (bool, error) {
	out, err := exec.Command("mount").Output()
	if err != nil {
		return false, fmt.Errorf("mp: %w", err)
	}
	fmt.Print(string(out))
	return false, nil
}

// doNet implements "net": remote filesystem mounts are an external
// collaborator (§1 Non-goals); list configured hosts from .netrc-style
// storage is left to that collaborator, so this reports it isn't wired up.
func (d *Dispatcher) doNet(args []string) (bool, error) {
	return false, fmt.Errorf("net: no remotes backend configured")
}

// doSort implements "st [KEY] [rev]".
func (d *Dispatcher) doSort(args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Println(d.RC.String("sort", "name"))
		return false, nil
	}
	if _, ok := listing.ParseSortKey(args[0]); !ok {
		return false, fmt.Errorf("st: %s: unknown sort key", args[0])
	}
	d.RC.Options["sort"] = args[0]
	if len(args) > 1 && args[1] == "rev" {
		cur := d.RC.Bool("sort-reverse", false)
		d.RC.Options["sort-reverse"] = strconv.FormatBool(!cur)
	}
	return false, nil
}

// doPagerToggle implements "pg [on|off]".
func (d *Dispatcher) doPagerToggle(args []string) (bool, error) {
	return false, toggleOption(d.RC, "pager", args)
}

// doExternalToggle implements "ext [on|off]": it records the external-cmds
// option. runShell does not read that option, so the shell fallback runs
// whatever its value.
func (d *Dispatcher) doExternalToggle(args []string) (bool, error) {
	return false, toggleOption(d.RC, "external-cmds", args)
}

// toggleOption sets key to an explicit on/off argument, or flips its
// current boolean value when called bare.
func toggleOption(rc *config.RC, key string, args []string) error {
	if len(args) == 0 {
		rc.Options[key] = strconv.FormatBool(!rc.Bool(key, false))
		return nil
	}
	switch args[0] {
	case "on":
		rc.Options[key] = "true"
	case "off":
		rc.Options[key] = "false"
	default:
		return fmt.Errorf("%s: expected on/off, got %q", key, args[0])
	}
	return nil
}

// doColorscheme implements "cs [NAME]".
func (d *Dispatcher) doColorscheme(args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Println(d.RC.String("color-scheme", "default"))
		return false, nil
	}
	d.RC.Options["color-scheme"] = args[0]
	return false, nil
}

// doLog implements "log [clear]".
func (d *Dispatcher) doLog(args []string) (bool, error) {
	if len(args) == 1 && args[0] == "clear" {
		if d.Paths != nil {
			return false, os.Truncate(d.Paths.Log, 0)
		}
		return false, nil
	}
	if d.Paths == nil {
		return false, nil
	}
	data, err := os.ReadFile(d.Paths.Log)
	if err != nil {
		return false, err
	}
	fmt.Print(string(data))
	return false, nil
}

// doMessage implements "msg": replay pending session notices.
func (d *Dispatcher) doMessage(args []string) (bool, error) {
	for _, class := range []string{"error", "warning", "notice"} {
		for _, m := range d.Session.PendingMessages(class) {
			fmt.Printf("[%s] %s\n", class, m)
		}
	}
	return false, nil
}

// doAlias implements "alias [NAME]" (bare call lists all aliases).
func (d *Dispatcher) doAlias(args []string) (bool, error) {
	if len(args) == 0 {
		for name, val := range d.RC.Aliases {
			fmt.Printf("%s='%s'\n", name, val)
		}
		return false, nil
	}
	val, ok := d.RC.Aliases[args[0]]
	if !ok {
		return false, fmt.Errorf("alias: %s: not defined", args[0])
	}
	fmt.Printf("%s='%s'\n", args[0], val)
	return false, nil
}

// doHistory implements "history [clear]".
func (d *Dispatcher) doHistory(args []string) (bool, error) {
	if d.Paths == nil {
		return false, nil
	}
	if len(args) == 1 && args[0] == "clear" {
		return false, os.Truncate(d.Paths.History, 0)
	}
	data, err := os.ReadFile(d.Paths.History)
	if err != nil {
		return false, err
	}
	for i, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Printf("%d  %s\n", i+1, line)
	}
	return false, nil
}

// doMaxFiles implements "mf [N|unset]".
func (d *Dispatcher) doMaxFiles(args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Println(d.RC.String("max-files", "unset"))
		return false, nil
	}
	if args[0] == "unset" {
		delete(d.RC.Options, "max-files")
		return false, nil
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return false, fmt.Errorf("mf: %s: not a number", args[0])
	}
	d.RC.Options["max-files"] = args[0]
	return false, nil
}

// doProfile implements "pf [ls|list|add NAME|del NAME|set NAME]"
// (profiles.c's profile_function dispatch). Profiles can be listed,
// created, and deleted live; switching the *running* session's profile
// still requires a restart, since every profile-scoped subsystem (paths,
// RC, bookmarks, jumper, selection, tags) is wired up once at startup.
func (d *Dispatcher) doProfile(args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Println("current profile:", d.Session.Profile)
		return false, nil
	}
	switch args[0] {
	case "ls", "list":
		names, err := config.ListProfiles()
		if err != nil {
			return false, err
		}
		if len(names) == 0 {
			fmt.Println("no profiles found")
			return false, nil
		}
		for _, n := range names {
			mark := " "
			if n == d.Session.Profile {
				mark = "*"
			}
			fmt.Printf("%s%s\n", mark, n)
		}
		return false, nil
	case "add":
		if len(args) < 2 {
			return false, fmt.Errorf("pf add: missing NAME")
		}
		return false, config.AddProfile(args[1])
	case "del":
		if len(args) < 2 {
			return false, fmt.Errorf("pf del: missing NAME")
		}
		if args[1] == d.Session.Profile {
			return false, fmt.Errorf("pf del: %s: cannot delete the active profile", args[1])
		}
		return false, config.DeleteProfile(args[1])
	case "set":
		if len(args) < 2 {
			return false, fmt.Errorf("pf set: missing NAME")
		}
		exists, err := config.ProfileExists(args[1])
		if err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("pf set: %s: no such profile", args[1])
		}
		return false, fmt.Errorf("pf set: switching profiles requires restarting cfm -P %s", args[1])
	default:
		return false, fmt.Errorf("pf: unknown subcommand %q", args[0])
	}
}

// doQuit implements "q"/"Q": save the selection box, if there is one, to
// its file and stop the REPL.
func (d *Dispatcher) doQuit(args []string) (bool, error) {
	if d.Selection != nil {
		d.Selection.Save()
	}
	return true, nil
}
