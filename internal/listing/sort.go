package listing

import (
	"sort"
	"strconv"
	"strings"
)

// SortKey identifies the field entries are ordered by (§4.1 step 5).
type SortKey int

const (
	SortName SortKey = iota
	SortSize
	SortAtime
	SortBtime
	SortCtime
	SortMtime
	SortVersion
	SortExtension
	SortInode
	SortOwner
	SortGroup
	SortNone
)

// Sort orders entries in place by key, optionally reversed, optionally
// placing all directories before non-directories while preserving key
// order within each group.
func Sort(entries []*Entry, key SortKey, reverse, dirsFirst bool) {
	if key == SortNone {
		return
	}
	less := lessFuncFor(key)
	sort.SliceStable(entries, func(i, j int) bool {
		if dirsFirst && entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		if reverse {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

func lessFuncFor(key SortKey) func(a, b *Entry) bool {
	switch key {
	case SortSize:
		return func(a, b *Entry) bool { return a.Size < b.Size }
	case SortAtime, SortBtime, SortCtime, SortMtime:
		return func(a, b *Entry) bool { return a.Time.Before(b.Time) }
	case SortVersion:
		return func(a, b *Entry) bool { return versionLess(a.Name, b.Name) }
	case SortExtension:
		return func(a, b *Entry) bool {
			ea, eb := extensionOf(a.Name), extensionOf(b.Name)
			if ea != eb {
				return ea < eb
			}
			return a.Name < b.Name
		}
	case SortInode:
		return func(a, b *Entry) bool { return a.Inode < b.Inode }
	case SortOwner:
		return func(a, b *Entry) bool { return a.UID < b.UID }
	case SortGroup:
		return func(a, b *Entry) bool { return a.GID < b.GID }
	default: // SortName
		return func(a, b *Entry) bool { return a.Name < b.Name }
	}
}

// versionLess implements a lexical-then-numeric comparator: runs of digits
// are parsed as integers (leading zeros break ties by the longer, more
// zero-padded run sorting first), everything else compares byte-wise.
func versionLess(a, b string) bool {
	ia, ib := 0, 0
	for ia < len(a) && ib < len(b) {
		ca, cb := a[ia], b[ib]
		if isDigit(ca) && isDigit(cb) {
			sa, ea := ia, ia
			for ea < len(a) && isDigit(a[ea]) {
				ea++
			}
			sb, eb := ib, ib
			for eb < len(b) && isDigit(b[eb]) {
				eb++
			}
			na, _ := strconv.ParseUint(a[sa:ea], 10, 64)
			nb, _ := strconv.ParseUint(b[sb:eb], 10, 64)
			if na != nb {
				return na < nb
			}
			// Equal numeric value: the run with more leading zeros
			// (i.e. longer digit run) sorts first.
			if (ea - sa) != (eb - sb) {
				return (ea - sa) > (eb - sb)
			}
			ia, ib = ea, eb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		ia++
		ib++
	}
	return len(a)-ia < len(b)-ib
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParseSortKey maps a config/CLI sort-method name to a SortKey, per the
// -z/st command vocabulary.
func ParseSortKey(name string) (SortKey, bool) {
	switch strings.ToLower(name) {
	case "name":
		return SortName, true
	case "size":
		return SortSize, true
	case "atime":
		return SortAtime, true
	case "btime":
		return SortBtime, true
	case "ctime":
		return SortCtime, true
	case "mtime":
		return SortMtime, true
	case "version":
		return SortVersion, true
	case "extension", "ext":
		return SortExtension, true
	case "inode":
		return SortInode, true
	case "owner":
		return SortOwner, true
	case "group":
		return SortGroup, true
	case "none":
		return SortNone, true
	}
	return SortName, false
}
