package listing

import (
	"os"
	"path/filepath"
	"regexp"
	"syscall"

	"github.com/mattn/go-runewidth"
)

// StatDepth selects how much per-entry stat work the scan performs.
type StatDepth int

const (
	// StatFull performs a full lstat/stat on every entry.
	StatFull StatDepth = iota
	// StatCheap pulls only d_type from readdir plus an lstat for the
	// fields that need it.
	StatCheap
	// StatLight skips type classification entirely.
	StatLight
)

// Options controls a single Scan call.
type Options struct {
	ShowHidden bool
	Filter     *regexp.Regexp
	FilterInvert bool
	Unicode    bool
	StatDepth  StatDepth
	OnlyDirs   bool
	MaxNameLen int
}

// Stats accumulates per-scan counters (§4.1 Failure semantics: "an unstat
// statistic").
type Stats struct {
	Total  int
	Unstat int
}

// Scan reads dir and returns one Entry per visible, non-skipped child.
// opendir failure aborts and returns an error; per-entry stat failures are
// recorded in Stats.Unstat and the entry is kept with type "unknown".
func Scan(dir string, opts Options) ([]*Entry, Stats, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, err
	}

	var out []*Entry
	var stats Stats
	for _, de := range dirEntries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		if !opts.ShowHidden && len(name) > 0 && name[0] == '.' {
			continue
		}
		if opts.Filter != nil {
			matched := opts.Filter.MatchString(name)
			if matched == opts.FilterInvert {
				continue
			}
		}
		stats.Total++

		e := &Entry{Name: name, ChildCount: -1}
		full := filepath.Join(dir, name)

		if opts.StatDepth == StatLight {
			out = append(out, finalizeEntry(e, opts))
			continue
		}

		info, lerr := os.Lstat(full)
		if lerr != nil {
			stats.Unstat++
			e.StatFailed = true
			out = append(out, finalizeEntry(e, opts))
			continue
		}
		populateFromLstat(e, full, info, opts.StatDepth)

		if opts.OnlyDirs && !e.IsDir {
			stats.Total--
			continue
		}
		out = append(out, finalizeEntry(e, opts))
	}
	return out, stats, nil
}

func populateFromLstat(e *Entry, full string, info os.FileInfo, depth StatDepth) {
	e.Mode = info.Mode()
	e.Size = info.Size()
	e.Time = info.ModTime()
	e.TimeKind = TimeMtime
	e.IsDir = info.IsDir()
	e.IsSymlink = info.Mode()&os.ModeSymlink != 0

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		e.Dev = uint64(st.Dev)
		e.Inode = st.Ino
		e.Nlink = uint64(st.Nlink)
		e.UID = st.Uid
		e.GID = st.Gid
	}

	if depth == StatCheap {
		return
	}

	if e.IsSymlink {
		target, err := os.Readlink(full)
		if err != nil {
			e.BrokenLink = true
		} else {
			e.LinkTarget = target
			if tinfo, serr := os.Stat(full); serr != nil {
				e.BrokenLink = true
			} else {
				e.IsDir = tinfo.IsDir()
			}
		}
	}

	e.Exec = info.Mode()&0111 != 0
	e.Readable = info.Mode()&0444 != 0

	if e.IsDir {
		children, err := os.ReadDir(full)
		if err == nil {
			e.ChildCount = len(children)
		}
	}
}

func finalizeEntry(e *Entry, opts Options) *Entry {
	e.DisplayName = e.Name
	if !opts.Unicode {
		rs := []rune(e.Name)
		for i, r := range rs {
			if r < 32 || r == 127 {
				rs[i] = '^'
			}
		}
		e.DisplayName = string(rs)
	}
	e.DisplayLen = displayWidth(e.Name, opts.Unicode)
	classify(e)
	return e
}

func displayWidth(s string, unicode bool) int {
	if unicode {
		return runewidth.StringWidth(s)
	}
	n := 0
	for _, r := range s {
		if r < 32 || r == 127 {
			n++ // substituted with '^'
		} else {
			n++
		}
	}
	return n
}

// CountDir returns the number of non-hidden entries in dir (used by the
// §8 invariant: "dir.filesn equals the count reported by count_dir").
func CountDir(dir string, showHidden bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		if !showHidden && name[0] == '.' {
			continue
		}
		n++
	}
	return n, nil
}
