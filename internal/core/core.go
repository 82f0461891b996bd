// Package core defines the session-wide state and the small set of
// process-wide helpers (logging, exception classes, signal handling) that
// every other package in cfm depends on.
package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Log bit masks, ordered loosest to tightest. Mirrors the bitmask-gated
// logging idiom used throughout the engine this is built on.
const (
	LogERROR uint = 1 << iota
	LogWARN
	LogNOTICE
	LogSHELL
	LogCOMMANDS
	LogVERBOSE
)

// Session owns every subsystem's state for one running process. Handlers
// take a *Session rather than reaching for package-level globals, aside
// from the small bootstrap-time logging/abort state in this package that
// must exist before a Session can be constructed.
type Session struct {
	Profile     string
	DataDir     string
	ConfigDir   string
	Stealth     bool
	Interactive bool

	LogMask uint
	logFP   io.Writer
	logMu   sync.Mutex

	abortMu sync.Mutex
	abort   bool

	// Messages accumulates user-visible notices/errors across the main
	// loop and the signal-handling goroutine; concurrent-map gives it
	// safe cross-goroutine appends without a session-wide lock.
	Messages cmap.ConcurrentMap[string, []string]

	Signals chan os.Signal

	LastExit int
}

// NewSession allocates a Session with its bootstrap-time fields initialized.
// Subsystems (workspaces, jumper, selection, ...) are attached by their own
// constructors once config has been resolved.
func NewSession(profile string, interactive bool) *Session {
	s := &Session{
		Profile:     profile,
		Interactive: interactive,
		LogMask:     (LogWARN << 1) - 1,
		Messages:    cmap.New[[]string](),
		Signals:     make(chan os.Signal, 1),
	}
	s.logFP = os.Stderr
	return s
}

// SetLogWriter redirects session logging, typically to the profile's
// log.clifm once the config/path resolver has located it.
func (s *Session) SetLogWriter(w io.Writer) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.logFP = w
}

// LogEnabled reports whether the given bit is set in the session's log mask.
func (s *Session) LogEnabled(bit uint) bool {
	return s.LogMask&bit != 0
}

// Logit appends a timestamped line to the session log. It never touches the
// terminal; use Croak or Notice for anything the user should see.
func (s *Session) Logit(format string, args ...interface{}) {
	if s.Stealth {
		return
	}
	content := fmt.Sprintf(format, args...)
	leader := "cfm"
	if _, ok := s.logFP.(*os.File); ok {
		leader = time.Now().Format(time.RFC3339)
	}
	s.logMu.Lock()
	defer s.logMu.Unlock()
	fmt.Fprintf(s.logFP, "%s: %s\n", leader, content)
}

// Croak prints a user-visible error to stderr and records it in the
// session's message list; it does not abort the REPL (unlike the engine
// this is modeled on, cfm has no script-abort mode to toggle).
func (s *Session) Croak(format string, args ...interface{}) {
	content := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, "cfm: "+content)
	s.appendMessage("error", content)
	s.Logit("%s", content)
}

// Notice records a non-error, user-visible message (warning/notice-class),
// shown at the next prompt re-entry rather than interleaved with listing
// output.
func (s *Session) Notice(class, format string, args ...interface{}) {
	content := fmt.Sprintf(format, args...)
	s.appendMessage(class, content)
}

func (s *Session) appendMessage(class, content string) {
	existing, _ := s.Messages.Get(class)
	s.Messages.Set(class, append(existing, content))
}

// PendingMessages drains and clears the message list for a class, used by
// the prompt renderer's notification sigils.
func (s *Session) PendingMessages(class string) []string {
	msgs, ok := s.Messages.Get(class)
	if !ok {
		return nil
	}
	s.Messages.Remove(class)
	return msgs
}

// GetAbort reports whether the session has been asked to abort the current
// foreground operation (set by SIGINT/SIGQUIT delivery).
func (s *Session) GetAbort() bool {
	s.abortMu.Lock()
	defer s.abortMu.Unlock()
	return s.abort
}

// SetAbort sets or clears the abort flag.
func (s *Session) SetAbort(v bool) {
	s.abortMu.Lock()
	defer s.abortMu.Unlock()
	s.abort = v
}

// InstallSignalHandling ignores SIGINT/SIGQUIT/SIGTSTP in this process (per
// §5, the controlling process ignores them; children reset to default
// before exec) and instead latches the session abort flag so a running
// foreground command can observe and unwind cleanly. This goroutine is the
// one legitimate background task in an otherwise single-threaded
// cooperative loop.
func (s *Session) InstallSignalHandling() {
	signal.Notify(s.Signals, os.Interrupt, syscall.SIGQUIT, syscall.SIGTSTP)
	go func() {
		for range s.Signals {
			s.SetAbort(true)
			s.Notice("warning", "interrupted")
		}
	}()
}

// Exception classes recognized by Catch.
const (
	ClassCommand = "command"
)

// Exception is the payload thrown by Throw and recovered by Catch. Reserved
// for dispatch.SetCore's per-line panic isolation around command handlers;
// the expansion pipeline and the config loader use ordinary Go error
// returns throughout instead, since both are plain linear call chains with
// no recursion deep enough to make threading an error return awkward.
type Exception struct {
	Class   string
	Message string
}

func (e *Exception) Error() string { return e.Message }

// Throw builds an *Exception for panic(). The caller panics with the
// returned value; Throw itself never panics, so callers can choose whether
// to panic immediately or attach more context first.
func Throw(class, format string, args ...interface{}) *Exception {
	return &Exception{Class: class, Message: fmt.Sprintf(format, args...)}
}

// Catch recovers x if it is an *Exception of the given class, returning nil
// when x is nil (so the caller's `if err := core.Catch(...); err != nil` reads
// naturally). An *Exception of a different class, or any non-Exception
// panic value, is re-panicked: only the expected class is ever swallowed
// here.
func Catch(accept string, x interface{}) *Exception {
	if x == nil {
		return nil
	}
	if e, ok := x.(*Exception); ok {
		if e.Class == accept {
			return e
		}
		log.Printf("cfm: exception class %q seen while awaiting %q", e.Class, accept)
	}
	panic(x)
}
