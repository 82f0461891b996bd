// Command cfm is an interactive terminal file manager: a single foreground
// REPL loop driving the expansion pipeline, the command dispatcher, and the
// listing engine (§1 Overview).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/xo/terminfo"
	kommandant "gitlab.com/ianbruene/kommandant"
	"golang.org/x/term"

	"cfm/internal/autocmd"
	"cfm/internal/bookmarks"
	"cfm/internal/colors"
	"cfm/internal/config"
	"cfm/internal/core"
	"cfm/internal/dispatch"
	"cfm/internal/expand"
	"cfm/internal/jumper"
	"cfm/internal/listing"
	"cfm/internal/opener"
	"cfm/internal/pager"
	"cfm/internal/prompt"
	"cfm/internal/selection"
	"cfm/internal/tags"
	"cfm/internal/trash"
	"cfm/internal/workspace"
)

// Exit codes (§6); 79/81/82 are reported by the shell fallback directly
// (internal/dispatch) and surface here only via Session.LastExit.
const (
	exitOK       = 0
	exitGeneric  = 1
	exitArgument = 2
)

// options mirrors the flag surface of §6's CLI table. Short and long forms
// are paired the way clifm itself pairs on/off toggles (-a/-A, -l/-L, ...).
type options struct {
	HiddenOn      bool   `short:"a" description:"show hidden files"`
	HiddenOff     bool   `short:"A" description:"hide hidden files"`
	LongOn        bool   `short:"l" long:"long-view" description:"enable long view"`
	LongOff       bool   `short:"L" description:"disable long view"`
	DirsFirstOn   bool   `short:"f" description:"list directories first"`
	DirsFirstOff  bool   `short:"F" description:"do not list directories first"`
	PagerOn       bool   `short:"g" description:"enable the pager"`
	PagerOff      bool   `short:"G" description:"disable the pager"`
	StartPath     string `short:"p" long:"path" description:"starting directory" value-name:"PATH"`
	Profile       string `short:"P" long:"profile" description:"profile name" default:"default" value-name:"PROFILE"`
	ConfigFile    string `short:"c" long:"config-file" description:"alternate config file" value-name:"FILE"`
	KeybindsFile  string `short:"k" long:"keybinds-file" description:"alternate keybindings file" value-name:"FILE"`
	BookmarksFile string `short:"b" long:"bookmarks-file" description:"alternate bookmarks file" value-name:"FILE"`
	Workspace     int    `short:"w" long:"workspace" description:"starting workspace (1-8)" default:"1" value-name:"N"`
	SortMethod    string `short:"z" long:"sort" description:"sort method" value-name:"METHOD"`
	Stealth       bool   `short:"S" long:"stealth-mode" description:"run without touching persisted state"`
	Open          string `long:"open" description:"open FILE and exit" value-name:"FILE"`
	Preview       string `long:"preview" description:"preview FILE and exit" value-name:"FILE"`
	ListAndQuit   bool   `long:"list-and-quit" description:"print the starting listing and exit"`
	SecureEnv     bool   `long:"secure-env" description:"sanitize the environment before launching"`
	SecureEnvFull bool   `long:"secure-env-full" description:"sanitize the environment more aggressively"`
	SecureCmds    bool   `long:"secure-cmds" description:"restrict the shell fallback to a safe token set"`
	DataDir       string `long:"data-dir" description:"override the data directory" value-name:"DIR"`

	Args struct {
		Dir string `positional-arg-name:"DIR"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "cfm"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return exitArgument
	}

	if opts.SecureEnv || opts.SecureEnvFull {
		sanitizeEnv(opts.SecureEnvFull)
	}

	startDir := opts.Args.Dir
	if startDir == "" {
		startDir = opts.StartPath
	}
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cfm:", err)
			return exitGeneric
		}
		startDir = wd
	}
	startDir, err := filepath.Abs(startDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cfm:", err)
		return exitGeneric
	}
	if err := os.Chdir(startDir); err != nil {
		fmt.Fprintln(os.Stderr, "cfm:", err)
		return exitGeneric
	}

	session := core.NewSession(opts.Profile, term.IsTerminal(0))
	session.InstallSignalHandling()

	var paths *config.Paths
	if !opts.Stealth {
		paths, err = config.Resolve(opts.Profile, opts.DataDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cfm:", err)
			return exitGeneric
		}
	}

	if paths != nil && opts.KeybindsFile != "" {
		paths.Keybindings = opts.KeybindsFile
	}

	rcFile := ""
	if paths != nil {
		rcFile = paths.ClifmRC
	}
	if opts.ConfigFile != "" {
		rcFile = opts.ConfigFile
	}
	rc := &config.RC{Options: config.Defaults(), Aliases: map[string]string{}}
	if rcFile != "" {
		loaded, err := config.Load(session, rcFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cfm:", err)
			return exitGeneric
		}
		rc = loaded
	}
	applyFlagOverrides(rc, opts)

	logFile := "/dev/null"
	if paths != nil {
		logFile = paths.Log
	}
	if lf, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		session.SetLogWriter(lf)
		defer lf.Close()
	}

	bookmarksFile := opts.BookmarksFile
	if bookmarksFile == "" && paths != nil {
		bookmarksFile = paths.Bookmarks
	}
	var bm *bookmarks.List
	if bookmarksFile != "" {
		bm, err = bookmarks.Load(bookmarksFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cfm:", err)
			return exitGeneric
		}
	} else {
		bm, _ = bookmarks.Load(filepath.Join(os.TempDir(), "cfm-scratch-bookmarks.clifm"))
	}

	jumperFile := filepath.Join(os.TempDir(), "cfm-scratch-jump.clifm")
	if paths != nil {
		jumperFile = filepath.Join(paths.ProfileDir, "jump.clifm")
	}
	jdb, err := jumper.Load(jumperFile, false)
	if err != nil {
		jdb = jumper.New(jumperFile)
	}

	selboxFile := filepath.Join(os.TempDir(), "cfm-scratch-selbox.clifm")
	if paths != nil {
		selboxFile = paths.SelBox
	}
	box, err := selection.Load(selboxFile)
	if err != nil {
		box = selection.New(selboxFile)
	}

	tagsDir := filepath.Join(os.TempDir(), "cfm-scratch-tags")
	if paths != nil {
		tagsDir = paths.TagsDir
	}
	tagGraph := tags.New(tagsDir)

	openerFile := ""
	if paths != nil {
		openerFile = paths.MimeList
	}
	openerTable, err := opener.Load(openerFile)
	if err != nil {
		openerTable, _ = opener.Load("")
	}

	colorTable := colors.Default()

	var trashCan *trash.Can
	if dataHome := trashDataHome(); dataHome != "" {
		trashCan, _ = trash.Open(dataHome)
	}

	rules := autocmd.FromRC(rc.Autocmds)

	ti, err := terminfo.LoadFromEnv()
	if err != nil {
		ti = &terminfo.Terminfo{}
	}

	pg := pager.New(os.Stdout, ti, termRows())

	d := &dispatch.Dispatcher{
		Session:    session,
		RC:         rc,
		Paths:      paths,
		Workspaces: workspace.NewVector(startDir),
		Jumper:     jdb,
		Selection:  box,
		Bookmarks:  bm,
		Tags:       tagGraph,
		Opener:     openerTable,
		Colors:     colorTable,
		Pager:      pg,
		Trash:      trashCan,
		Autocmds:   rules,
		CWD:        startDir,
		UserVars:   map[string]string{},
	}
	if opts.Workspace >= 1 && opts.Workspace <= 8 {
		if path, err := d.Workspaces.Switch(opts.Workspace, false); err == nil {
			d.CWD = path
		}
	}
	if opts.SortMethod != "" {
		rc.Options["sort"] = opts.SortMethod
	}
	if opts.SecureCmds {
		rc.Options["secure-cmds"] = "true"
	}

	d.EnterStartDirectory()

	refresher := &replRefresher{d: d, opts: &opts}
	d.Refresh = refresher
	refresher.refreshListing()

	if opts.Open != "" {
		d.Execute(expand.Command{Kind: expand.KindArgv, Argv: []string{"o", opts.Open}})
		return exitOK
	}
	if opts.Preview != "" {
		d.Execute(expand.Command{Kind: expand.KindArgv, Argv: []string{"mm", opts.Preview}})
		return exitOK
	}
	if opts.ListAndQuit {
		refresher.printListing()
		return exitOK
	}

	interpreter := kommandant.NewKommandant(d)
	interpreter.EnableReadline(term.IsTerminal(0))

	ctx := context.Background()
	interpreter.PreLoop(ctx)
	interpreter.CmdLoop(ctx, "")
	interpreter.PostLoop(ctx)

	if !opts.Stealth {
		box.Save()
		jdb.Save()
	}

	if session.LastExit == 0 {
		return exitOK
	}
	return session.LastExit
}

// replRefresher rebuilds the directory listing after an operation that
// changed the current directory's contents, then renders the prompt —
// the loop's last leg (§1 control flow).
type replRefresher struct {
	d    *dispatch.Dispatcher
	opts *options
}

func (r *replRefresher) Refresh() {
	r.refreshListing()
	r.renderPrompt()
}

func (r *replRefresher) refreshListing() {
	hidden := r.d.RC.Bool("hidden-files", false)
	if r.opts.HiddenOn {
		hidden = true
	}
	if r.opts.HiddenOff {
		hidden = false
	}
	depth := listing.StatFull
	if r.d.RC.Bool("light-mode", false) {
		depth = listing.StatLight
	}
	entries, _, err := listing.Scan(r.d.CWD, listing.Options{
		ShowHidden: hidden,
		Unicode:    r.d.RC.Bool("unicode", true),
		StatDepth:  depth,
	})
	if err != nil {
		r.d.Session.Croak("%s", err.Error())
		return
	}
	key, _ := listing.ParseSortKey(r.d.RC.String("sort", "name"))
	dirsFirst := r.d.RC.Bool("dirs-first", true)
	if r.opts.DirsFirstOn {
		dirsFirst = true
	}
	if r.opts.DirsFirstOff {
		dirsFirst = false
	}
	listing.Sort(entries, key, r.d.RC.Bool("sort-reverse", false), dirsFirst)
	r.d.Entries = entries
}

func (r *replRefresher) printListing() {
	for i, e := range r.d.Entries {
		fmt.Printf("%3d %s\n", i+1, r.d.Colors.RenderEntry(e))
	}
}

func (r *replRefresher) renderPrompt() {
	idx, _ := r.d.Workspaces.Current()
	st := prompt.NewState(r.d.CWD, idx+1, r.d.Session.LastExit)
	st.HasSel = r.d.Selection.Size() > 0
	tmpl := r.d.RC.String("prompt", `\u@\h \w\n\$ `)
	prompt.RunPromptCommands(r.d.RC.PromptCmds)
	fmt.Print(prompt.Expand(tmpl, st, nil))
	prompt.SetTitle(st.Basename)
}

// applyFlagOverrides folds the on/off CLI toggles into the loaded RC before
// the first listing, the way the reference engine's flag-then-config
// layering works.
func applyFlagOverrides(rc *config.RC, opts options) {
	switch {
	case opts.HiddenOn:
		rc.Options["hidden-files"] = "true"
	case opts.HiddenOff:
		rc.Options["hidden-files"] = "false"
	}
	switch {
	case opts.LongOn:
		rc.Options["long-view"] = "true"
	case opts.LongOff:
		rc.Options["long-view"] = "false"
	}
	switch {
	case opts.DirsFirstOn:
		rc.Options["dirs-first"] = "true"
	case opts.DirsFirstOff:
		rc.Options["dirs-first"] = "false"
	}
	switch {
	case opts.PagerOn:
		rc.Options["pager"] = "true"
	case opts.PagerOff:
		rc.Options["pager"] = "false"
	}
}

// trashDataHome resolves $XDG_DATA_HOME (falling back to ~/.local/share),
// the root the FreeDesktop trash spec nests Trash/ under.
func trashDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share")
}

// termRows reports the terminal height for the pager, defaulting to 24
// when stdout isn't a terminal.
func termRows() int {
	if !term.IsTerminal(1) {
		return 24
	}
	_, rows, err := term.GetSize(1)
	if err != nil || rows <= 0 {
		return 24
	}
	return rows
}

// sanitizeEnv strips environment variables that could influence a shelled-
// out command's behavior in unexpected ways (§5's secure-env boundary).
// Full mode additionally drops PATH, forcing callers to use absolute paths.
func sanitizeEnv(full bool) {
	keep := map[string]bool{
		"HOME": true, "USER": true, "LANG": true, "TERM": true,
		"PATH": true, "SHELL": true, "XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true,
	}
	if full {
		delete(keep, "PATH")
	}
	for _, kv := range os.Environ() {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		if !keep[name] {
			os.Unsetenv(name)
		}
	}
}
