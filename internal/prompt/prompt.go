// Package prompt implements the prompt renderer (§4.10): escape-code
// expansion, prompt-command execution, and title updates.
package prompt

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xo/terminfo"
	fqme "gitlab.com/esr/fqme"
)

// State carries everything the escape-code expander needs to read.
type State struct {
	User     string
	FullName string
	Host     string
	CWD        string
	Home       string
	Basename   string
	Workspace  int
	LastExit   int
	ReadOnly   bool
	HasError   bool
	HasWarning bool
	HasNotice  bool
	HasSel     bool
	HasTrash   bool
}

// NewState fills in User/Host/Home from the environment, the way the
// reference engine's own prompt builder does.
func NewState(cwd string, workspace, lastExit int) State {
	s := State{CWD: cwd, Basename: filepath.Base(cwd), Workspace: workspace, LastExit: lastExit}
	if u, err := user.Current(); err == nil {
		s.User = u.Username
	}
	if name, _, err := fqme.WhoAmI(); err == nil && name != "" {
		s.FullName = name
	}
	if h, err := os.Hostname(); err == nil {
		s.Host = h
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.Home = home
	}
	return s
}

// abbreviateHome replaces a leading $HOME with "~" (the \w escape).
func (s State) abbreviateHome() string {
	if s.Home != "" && strings.HasPrefix(s.CWD, s.Home) {
		return "~" + strings.TrimPrefix(s.CWD, s.Home)
	}
	return s.CWD
}

// Expand renders template against state. Escapes recognized: \u \N \h \w \W
// \S \$ \z \l \[...\] \A, plus notification sigils appended at the end. The
// contents of a \[...\] group (e.g. raw ANSI color codes) are copied
// through verbatim with the \[ and \] delimiters dropped; an unclosed group
// is copied as is. ti is not read.
func Expand(tmpl string, s State, ti *terminfo.Terminfo) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] != '\\' || i+1 >= len(tmpl) {
			out.WriteByte(tmpl[i])
			i++
			continue
		}
		switch tmpl[i+1] {
		case 'u':
			out.WriteString(s.User)
			i += 2
		case 'N':
			if s.FullName != "" {
				out.WriteString(s.FullName)
			} else {
				out.WriteString(s.User)
			}
			i += 2
		case 'h':
			out.WriteString(s.Host)
			i += 2
		case 'w':
			out.WriteString(s.abbreviateHome())
			i += 2
		case 'W':
			out.WriteString(s.Basename)
			i += 2
		case 'S':
			out.WriteString(strconv.Itoa(s.Workspace))
			i += 2
		case '$':
			if s.User == "root" {
				out.WriteByte('#')
			} else {
				out.WriteByte('$')
			}
			i += 2
		case 'z':
			out.WriteString(strconv.Itoa(s.LastExit))
			i += 2
		case 'l':
			if s.ReadOnly {
				out.WriteString("RO")
			}
			i += 2
		case 'A':
			out.WriteString(time.Now().Format("15:04"))
			i += 2
		case '[':
			end := strings.Index(tmpl[i:], `\]`)
			if end < 0 {
				out.WriteString(tmpl[i:])
				i = len(tmpl)
				break
			}
			out.WriteString(tmpl[i+2 : i+end])
			i += end + 2
		default:
			out.WriteByte(tmpl[i])
			out.WriteByte(tmpl[i+1])
			i += 2
		}
	}
	out.WriteString(notificationSigils(s))
	return out.String()
}

func notificationSigils(s State) string {
	var sb strings.Builder
	if s.HasError {
		sb.WriteString("!")
	}
	if s.HasWarning {
		sb.WriteString("w")
	}
	if s.HasNotice {
		sb.WriteString("n")
	}
	if s.HasSel {
		sb.WriteString("*")
	}
	if s.HasTrash {
		sb.WriteString("T")
	}
	return sb.String()
}

// RunPromptCommands executes every configured prompt-command line via the
// shell with logging suppressed ("no_log set", per §4.10), before the
// template itself is expanded.
func RunPromptCommands(cmds []string) {
	for _, c := range cmds {
		cmd := exec.Command("/bin/sh", "-c", c)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		_ = cmd.Run()
	}
}

// SetTitle emits the terminal title-setting escape sequence (OSC 0/2).
func SetTitle(title string) {
	fmt.Fprintf(os.Stdout, "\x1b]0;%s\x07", title)
}
