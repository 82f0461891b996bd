// Package config resolves XDG-style paths and loads/creates the per-profile
// configuration files (§6 "Persisted state layout").
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Paths is the resolved persisted-state layout for one profile.
type Paths struct {
	ConfigDirParent string // $XDG_CONFIG_HOME/<prog> or ~/.config/<prog>
	ProfileDir      string // .../profiles/<name>
	DataDir         string // --data-dir override, else ConfigDirParent

	ClifmRC      string
	Bookmarks    string
	History      string
	DirHist      string
	Log          string
	MimeList     string
	ProfileFile  string
	Actions      string
	Nets         string
	SelBox       string

	Keybindings string
	ColorsDir   string
	PluginsDir  string
	TagsDir     string
}

const progName = "cfm"

// Resolve builds the Paths for profile, honoring XDG_CONFIG_HOME and the
// --data-dir override, and creating every directory in the layout.
func Resolve(profile, dataDirOverride string) (*Paths, error) {
	parent, err := configParent()
	if err != nil {
		return nil, err
	}
	profileDir := filepath.Join(parent, "profiles", profile)

	dataDir := dataDirOverride
	if dataDir == "" {
		dataDir = parent
	}

	p := &Paths{
		ConfigDirParent: parent,
		ProfileDir:      profileDir,
		DataDir:         dataDir,

		ClifmRC:     filepath.Join(profileDir, "clifmrc"),
		Bookmarks:   filepath.Join(profileDir, "bookmarks.clifm"),
		History:     filepath.Join(profileDir, "history.clifm"),
		DirHist:     filepath.Join(profileDir, "dirhist.clifm"),
		Log:         filepath.Join(profileDir, "log.clifm"),
		MimeList:    filepath.Join(profileDir, "mimelist.clifm"),
		ProfileFile: filepath.Join(profileDir, "profile.clifm"),
		Actions:     filepath.Join(profileDir, "actions.clifm"),
		Nets:        filepath.Join(profileDir, "nets.clifm"),
		SelBox:      filepath.Join(profileDir, "selbox.clifm"),

		Keybindings: filepath.Join(parent, "keybindings.clifm"),
		ColorsDir:   filepath.Join(parent, "colors"),
		PluginsDir:  filepath.Join(parent, "plugins"),
		TagsDir:     filepath.Join(parent, "tags"),
	}

	for _, dir := range []string{profileDir, p.ColorsDir, p.PluginsDir, p.TagsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// configParent resolves $XDG_CONFIG_HOME/<prog>, falling back to
// ~/.config/<prog>, independent of any particular profile.
func configParent() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base != "" {
		return filepath.Join(base, progName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", progName), nil
}

// ListProfiles enumerates the non-hidden subdirectories of
// <config_dir_gral>/profiles, the way get_profile_names scans the profiles
// directory (profiles.c).
func ListProfiles() ([]string, error) {
	parent, err := configParent()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(parent, "profiles"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ProfileExists reports whether name is among ListProfiles' results.
func ProfileExists(name string) (bool, error) {
	names, err := ListProfiles()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// AddProfile creates a new, empty profile directory via Resolve, the way
// profile_add (profiles.c) creates the profile's config tree on disk.
// It fails if the profile already exists.
func AddProfile(name string) error {
	if name == "" {
		return fmt.Errorf("pf add: missing NAME")
	}
	exists, err := ProfileExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("pf add: %s: profile already exists", name)
	}
	_, err = Resolve(name, "")
	return err
}

// DeleteProfile removes a profile's entire directory tree, the way
// profile_del (profiles.c) removes the profile's config tree.
func DeleteProfile(name string) error {
	if name == "" {
		return fmt.Errorf("pf del: missing NAME")
	}
	exists, err := ProfileExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("pf del: %s: no such profile", name)
	}
	parent, err := configParent()
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(parent, "profiles", name))
}
