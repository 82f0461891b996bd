package listing

import "github.com/mattn/go-runewidth"

// TrimSentinel is appended to a trimmed name, rendered in a distinct "trim"
// color by the caller.
const TrimSentinel = "~"

// Trim truncates name to maxWidth columns, Unicode-aware when unicode is
// true; otherwise byte-wise. The original name always survives on Entry —
// the caller renders from the returned slice rather than mutating Name in
// place (the spec's REDESIGN FLAGS note calls the original's restore-trick
// an optimization; a display-slice is the cleaner reimplementation).
func Trim(name string, maxWidth int, unicode bool) (display string, trimmed bool) {
	width := displayWidth(name, unicode)
	if width <= maxWidth || maxWidth <= 0 {
		return name, false
	}
	if !unicode {
		if maxWidth <= len(TrimSentinel) {
			return TrimSentinel, true
		}
		return name[:maxWidth-len(TrimSentinel)] + TrimSentinel, true
	}

	budget := maxWidth - runewidth.StringWidth(TrimSentinel)
	if budget <= 0 {
		return TrimSentinel, true
	}
	w := 0
	cut := len(name)
	for i, r := range name {
		rw := runewidth.RuneWidth(r)
		if w+rw > budget {
			cut = i
			break
		}
		w += rw
	}
	return name[:cut] + TrimSentinel, true
}

// ApplyTrim sets Entry.DisplayName/DisplayLen/Trimmed from Trim, called
// after column width is known (step after Longest is computed but before
// layout, when MaxNameLen caps below the natural longest).
func ApplyTrim(e *Entry, maxWidth int, unicode bool) {
	display, trimmed := Trim(e.Name, maxWidth, unicode)
	e.DisplayName = display
	e.Trimmed = trimmed
	e.DisplayLen = displayWidth(display, unicode)
}
