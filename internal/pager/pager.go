// Package pager implements the listing pager (§4.1 Pager, §9 "coroutine-like
// control flow"): after every N rendered rows, pause and read one key. It is
// modeled as an explicit cursor rather than the goroutine/channel pattern
// the reference engine's own pager uses, since cfm's loop is single-threaded
// cooperative and the pager must be able to yield control back to its
// caller between rows without a second goroutine.
package pager

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/xo/terminfo"
	"golang.org/x/term"
)

// Action is what the caller should do after RenderRow returns.
type Action int

const (
	// Continue means keep rendering rows without pausing.
	Continue Action = iota
	// AwaitKey means the page is full; read one key before continuing.
	AwaitKey
	// Abort means the user asked to quit the pager (disables it for the
	// rest of the session, per spec).
	Abort
)

// Key is the single-key pager command read during AwaitKey.
type Key int

const (
	KeyAdvanceLine Key = iota // Enter
	KeyAdvancePage            // space
	KeyHelp                   // ?
	KeyQuit                   // q
	KeyRepaint                // any other key: repaint current position
)

// Pager tracks progress through a multi-row render.
type Pager struct {
	out       io.Writer
	ti        *terminfo.Terminfo
	pageRows  int
	rowsShown int
	disabled  bool
}

// New builds a Pager that pauses every pageRows rows (the terminal height,
// typically minus one for the prompt line).
func New(out io.Writer, ti *terminfo.Terminfo, pageRows int) *Pager {
	if pageRows < 1 {
		pageRows = 1
	}
	return &Pager{out: out, ti: ti, pageRows: pageRows}
}

// RenderRow writes one row and reports what the caller should do next.
func (p *Pager) RenderRow(line string) Action {
	if p.disabled {
		fmt.Fprintln(p.out, line)
		return Continue
	}
	fmt.Fprintln(p.out, line)
	p.rowsShown++
	if p.rowsShown >= p.pageRows {
		return AwaitKey
	}
	return Continue
}

// PromptKey shows the "-- Press a key --" banner (reverse video via
// terminfo, matching the reference engine's internal pager) and reads one
// key from in, resetting the row counter for the next page.
func (p *Pager) PromptKey(in *os.File) Key {
	if p.ti != nil {
		p.ti.Fprintf(p.out, terminfo.EnterReverseMode)
	}
	fmt.Fprint(p.out, "-- Press Enter for next line, space for next page, q to quit --")
	if p.ti != nil {
		p.ti.Fprintf(p.out, terminfo.ExitAttributeMode)
	}

	key := readKey(in)

	if p.ti != nil {
		p.ti.Fprintf(p.out, terminfo.CursorUp)
		p.ti.Fprintf(p.out, terminfo.ClrEol)
	}

	switch key {
	case '\r', '\n':
		p.rowsShown = p.pageRows - 1 // advance exactly one line next call
		return KeyAdvanceLine
	case ' ':
		p.rowsShown = 0
		return KeyAdvancePage
	case '?':
		return KeyHelp
	case 'q':
		p.disabled = true
		return KeyQuit
	default:
		p.rowsShown = 0
		return KeyRepaint
	}
}

func readKey(in *os.File) byte {
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		// Not a terminal (e.g. piped output in tests): fall back to
		// line-buffered read so callers still get a deterministic key.
		r := bufio.NewReader(in)
		b, _ := r.ReadByte()
		return b
	}
	defer term.Restore(int(in.Fd()), oldState)
	buf := make([]byte, 1)
	in.Read(buf)
	return buf[0]
}

// Disabled reports whether the user has quit the pager for this session.
func (p *Pager) Disabled() bool {
	return p.disabled
}

// Reset clears the row counter, used when a fresh listing begins.
func (p *Pager) Reset() {
	p.rowsShown = 0
}
