// Package selection implements the cross-operation selection box: a
// persistent, ordered set of absolute paths referenceable by the literal
// token "sel" during expansion. The ordered set itself is the same
// linkedhashset type the reference engine's own selectionSet is built on.
package selection

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// Ident identifies a file independent of its path, used to mark listing
// entries as selected without re-stat'ing every path in the box on every
// redraw.
type Ident struct {
	Dev   uint64
	Ino   uint64
	Nlink uint64
}

// Box is the persistent selection set.
type Box struct {
	paths *orderedset.Set
	ids   map[Ident]bool
	file  string
}

// New returns an empty selection box that Save persists to file.
func New(file string) *Box {
	return &Box{paths: orderedset.New(), ids: make(map[Ident]bool), file: file}
}

// Load populates the box from its persistence file. Entries whose
// fstatat-equivalent fails are silently dropped, per spec.
func Load(file string) (*Box, error) {
	b := New(file)
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var st syscall.Stat_t
		if err := syscall.Stat(line, &st); err != nil {
			continue
		}
		b.addNoSave(line, st)
	}
	return b, scanner.Err()
}

func identOf(st syscall.Stat_t) Ident {
	return Ident{Dev: uint64(st.Dev), Ino: st.Ino, Nlink: uint64(st.Nlink)}
}

func (b *Box) addNoSave(path string, st syscall.Stat_t) {
	if b.paths.Contains(path) {
		return
	}
	b.paths.Add(path)
	b.ids[identOf(st)] = true
}

// Add inserts path into the selection set, a no-op if already present.
// It does not persist the box; callers call Save.
func (b *Box) Add(path string) error {
	if b.paths.Contains(path) {
		return nil
	}
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return fmt.Errorf("selection: stat %s: %w", path, err)
	}
	b.addNoSave(path, st)
	return nil
}

// Remove deletes path from the set if present.
func (b *Box) Remove(path string) bool {
	if !b.paths.Contains(path) {
		return false
	}
	var st syscall.Stat_t
	if syscall.Stat(path, &st) == nil {
		delete(b.ids, identOf(st))
	}
	b.paths.Remove(path)
	return true
}

// Clear empties the box (desel-all / desel *).
func (b *Box) Clear() {
	b.paths.Clear()
	b.ids = make(map[Ident]bool)
}

// Contains reports whether path is currently selected.
func (b *Box) Contains(path string) bool {
	return b.paths.Contains(path)
}

// ContainsIdent reports whether a listing entry's (dev, ino, nlink) matches
// a selected path, used to derive the listing entry's selection flag
// without a path comparison.
func (b *Box) ContainsIdent(id Ident) bool {
	return b.ids[id]
}

// Paths returns the selection set in insertion order.
func (b *Box) Paths() []string {
	vals := b.paths.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.(string)
	}
	return out
}

// Size reports the number of selected paths.
func (b *Box) Size() int {
	return b.paths.Size()
}

// Save rewrites the persistence file in full (no advisory locking is
// attempted — concurrent instances under the same profile are a user
// error, per §5).
func (b *Box) Save() error {
	if b.file == "" {
		return nil
	}
	var sb strings.Builder
	for _, p := range b.Paths() {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return os.WriteFile(b.file, []byte(sb.String()), 0644)
}
