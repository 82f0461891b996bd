package listing

import (
	"fmt"
	"strings"
)

// Layout selects the columnar rendering mode (§4.1 step 6).
type Layout int

const (
	LayoutVertical Layout = iota
	LayoutHorizontal
	LayoutLong
)

// Grid is a rendered non-long-view screen: rows of already-padded cell
// text, plus the geometry used to build it (for tests and the pager).
type Grid struct {
	Rows    []string
	Cols    int
	RowsN   int
	Longest int
}

// Longest returns the widest DisplayLen among entries, with the +1 padding
// spec'd for column separation built in by the caller.
func Longest(entries []*Entry) int {
	longest := 0
	for _, e := range entries {
		if e.DisplayLen > longest {
			longest = e.DisplayLen
		}
	}
	return longest
}

// BuildVertical lays out entries ls-style: values flow down each column,
// then right. rows = ceil(n/cols), cols = floor(termCols/(longest+1)).
func BuildVertical(entries []*Entry, termCols int) Grid {
	n := len(entries)
	if n == 0 {
		return Grid{}
	}
	longest := Longest(entries)
	cols := termCols / (longest + 1)
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	lines := make([]string, rows)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			idx := col*rows + row
			if idx >= n {
				continue
			}
			e := entries[idx]
			lines[row] += padCell(e.DisplayName, e.DisplayLen, longest, col == cols-1)
		}
	}
	return Grid{Rows: lines, Cols: cols, RowsN: rows, Longest: longest}
}

// BuildHorizontal lays out entries row-major: values flow left to right,
// then down.
func BuildHorizontal(entries []*Entry, termCols int) Grid {
	n := len(entries)
	if n == 0 {
		return Grid{}
	}
	longest := Longest(entries)
	cols := termCols / (longest + 1)
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	lines := make([]string, 0, rows)
	var cur strings.Builder
	count := 0
	for i, e := range entries {
		lastInRow := count == cols-1 || i == n-1
		cur.WriteString(padCell(e.DisplayName, e.DisplayLen, longest, lastInRow))
		count++
		if lastInRow {
			lines = append(lines, cur.String())
			cur.Reset()
			count = 0
		}
	}
	return Grid{Rows: lines, Cols: cols, RowsN: rows, Longest: longest}
}

// padCell pads name out to width+1 columns using its precomputed
// Unicode-display width (nameWidth), not a rune count, so wide/CJK names
// align the same way Longest() measured them.
func padCell(name string, nameWidth, width int, last bool) string {
	if last {
		return name
	}
	pad := width - nameWidth + 1
	if pad < 1 {
		pad = 1
	}
	return name + strings.Repeat(" ", pad)
}

// LongLine renders one long-view row (§4.1 step 7): ELN, selection marker,
// permission string, optional ids, one timestamp, size, then the
// (possibly trimmed) name. propsWidth is the fixed width reserved for
// everything before the name.
type LongOptions struct {
	ShowIDs    bool
	NumericPerms bool
	HumanSize  bool
}

func LongLine(eln int, e *Entry, opts LongOptions) (line string, propsWidth int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4d", eln)
	if e.Selected {
		sb.WriteString("*")
	} else {
		sb.WriteString(" ")
	}
	if opts.NumericPerms {
		fmt.Fprintf(&sb, "%04o ", e.Mode.Perm())
	} else {
		fmt.Fprintf(&sb, "%-10s ", e.Mode.String())
	}
	if opts.ShowIDs {
		fmt.Fprintf(&sb, "%d:%d ", e.UID, e.GID)
	}
	sb.WriteString(e.Time.Format("Jan _2 15:04") + " ")
	if opts.HumanSize {
		fmt.Fprintf(&sb, "%8s ", humanSize(e.Size))
	} else {
		fmt.Fprintf(&sb, "%8d ", e.Size)
	}
	propsWidth = sb.Len()
	sb.WriteString(e.DisplayName)
	return sb.String(), propsWidth
}

func humanSize(n int64) string {
	units := []string{"B", "K", "M", "G", "T", "P"}
	f := float64(n)
	i := 0
	for f >= 1024 && i < len(units)-1 {
		f /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%.1f%s", f, units[i])
}
