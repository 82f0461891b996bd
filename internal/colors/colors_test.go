package colors

import (
	"testing"

	"cfm/internal/listing"
)

func TestExtensionOverrideTakesPriorityOverClass(t *testing.T) {
	tbl := Default()
	tbl.LoadExtensions(map[string]string{"go": "#00ff00"})
	e := &listing.Entry{ColorClass: listing.ColorExtension, ExtColorKey: "go"}
	if got := tbl.Style(e); got != "#00ff00" {
		t.Fatalf("expected extension override color, got %q", got)
	}
}

func TestDisabledTableRendersPlainText(t *testing.T) {
	tbl := Default()
	tbl.enabled = false
	if got := tbl.Render("name", "#ff0000"); got != "name" {
		t.Fatalf("expected plain text when disabled, got %q", got)
	}
}
