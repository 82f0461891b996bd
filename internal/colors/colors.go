// Package colors renders the listing's color table against the detected
// terminal color profile.
package colors

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"cfm/internal/listing"
)

// Table maps each color class (plus per-extension overrides) to a
// termenv-renderable style. Default builds the built-in class table and
// LoadExtensions merges per-extension overrides; no color-scheme file is
// read. NO_COLOR / CLIFM_NO_COLOR disable it entirely (§6 env vars).
type Table struct {
	profile    termenv.Profile
	enabled    bool
	byClass    map[listing.ColorClass]string
	byExt      map[string]string
	trimColor  string
}

// Default returns a built-in color table resembling the reference engine's
// shipped default scheme, gated on whether stdout is a terminal and on the
// NO_COLOR/CLIFM_NO_COLOR environment variables.
func Default() *Table {
	enabled := isatty.IsTerminal(os.Stdout.Fd()) &&
		os.Getenv("NO_COLOR") == "" &&
		os.Getenv("CLIFM_NO_COLOR") == ""

	return &Table{
		profile: termenv.ColorProfile(),
		enabled: enabled,
		byClass: map[listing.ColorClass]string{
			listing.ColorRegular:          "",
			listing.ColorDir:              "#268bd2",
			listing.ColorDirSticky:        "#2aa198",
			listing.ColorDirOtherWritable: "#2aa198",
			listing.ColorEmptyDir:         "#586e75",
			listing.ColorSymlinkToDir:     "#6c71c4",
			listing.ColorBrokenSymlink:    "#dc322f",
			listing.ColorExecutable:       "#859900",
			listing.ColorSUIDSGID:         "#cb4b16",
			listing.ColorCapability:       "#b58900",
			listing.ColorEmptyRegular:     "#839496",
			listing.ColorMultiHardlink:    "#d33682",
		},
		byExt:     map[string]string{},
		trimColor: "#b58900",
	}
}

// LoadExtensions merges per-extension color overrides, as parsed from a
// color-scheme file's "*.ext=color" lines.
func (t *Table) LoadExtensions(exts map[string]string) {
	for k, v := range exts {
		t.byExt[strings.ToLower(k)] = v
	}
}

// Style returns e's display color, checking per-extension overrides before
// the class table (per-extension color is "owned" per §3, meaning it takes
// priority over the shared class reference).
func (t *Table) Style(e *listing.Entry) string {
	if e.ExtColorKey != "" {
		if c, ok := t.byExt[strings.ToLower(e.ExtColorKey)]; ok {
			return c
		}
	}
	return t.byClass[e.ColorClass]
}

// Render applies color to s if the table is enabled, else returns s as-is.
func (t *Table) Render(s, hexColor string) string {
	if !t.enabled || hexColor == "" {
		return s
	}
	return termenv.String(s).Foreground(t.profile.Color(hexColor)).String()
}

// RenderEntry is a convenience wrapping Style+Render for one listing entry.
func (t *Table) RenderEntry(e *listing.Entry) string {
	name := e.DisplayName
	if e.Trimmed && t.enabled {
		base := strings.TrimSuffix(name, listing.TrimSentinel)
		return t.Render(base, t.Style(e)) + t.Render(listing.TrimSentinel, t.trimColor)
	}
	return t.Render(name, t.Style(e))
}

// Enabled reports whether color output is active.
func (t *Table) Enabled() bool { return t.enabled }
