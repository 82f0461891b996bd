// Package listing implements the directory listing engine: scanning,
// classification, sorting, and column/long-view layout (§4.1).
package listing

import (
	"os"
	"time"

	"cfm/internal/selection"
)

// ColorClass is the color-precedence bucket an entry falls into (§4.1 step
// 4). Precedence is the order of the cases in classify, not the order in
// which the constants are declared.
type ColorClass int

const (
	ColorRegular ColorClass = iota
	ColorMultiHardlink
	ColorEmptyRegular
	ColorExecutable
	ColorCapability
	ColorSUIDSGID
	ColorEmptyDir
	ColorDirOtherWritable
	ColorDirSticky
	ColorDir
	ColorSymlinkToDir
	ColorBrokenSymlink
	ColorExtension
)

// TimeKind selects which of the four on-disk timestamps an entry's Time
// field holds, per the active sort/display key.
type TimeKind int

const (
	TimeMtime TimeKind = iota
	TimeAtime
	TimeBtime
	TimeCtime
)

// Entry is one file-entry listing element (§3 File entry). Entries are
// rebuilt on every refresh, never updated in place.
type Entry struct {
	Name        string
	DisplayName string // possibly trimmed, Unicode-aware
	Trimmed     bool
	DisplayLen  int

	IsDir     bool
	IsSymlink bool
	LinkTarget string
	BrokenLink bool

	Mode      os.FileMode
	Dev       uint64
	Inode     uint64
	Nlink     uint64
	UID       uint32
	GID       uint32
	Size      int64
	Time      time.Time
	TimeKind  TimeKind

	ColorClass   ColorClass
	ExtColorKey  string
	IconRef      string

	Exec       bool
	Readable   bool
	ChildCount int // populated for directories, -1 if unknown
	Selected   bool
	PadWidth   int

	StatFailed bool
}

// Ident returns the (dev, ino, nlink) triple used to cross-reference the
// selection box without a path comparison.
func (e *Entry) Ident() selection.Ident {
	return selection.Ident{Dev: e.Dev, Ino: e.Inode, Nlink: e.Nlink}
}
