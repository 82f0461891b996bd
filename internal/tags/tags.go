// Package tags implements the symlink-based many-to-many tag graph
// described in §4.7: tags_dir/<tag_name>/<encoded_path> symlinks pointing at
// the tagged file's absolute path.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Graph roots the tag hierarchy at dir (tags_dir).
type Graph struct {
	Dir string
}

// New returns a Graph rooted at dir.
func New(dir string) *Graph {
	return &Graph{Dir: dir}
}

// encode turns an absolute path into the symlink basename used inside a tag
// directory: slashes become colons.
func encode(path string) string {
	return strings.ReplaceAll(path, "/", ":")
}

func decode(name string) string {
	return strings.ReplaceAll(name, ":", "/")
}

// validName rejects tag names containing '/' or NUL, per the boundary case
// in §8.
func validName(name string) error {
	if name == "" || strings.ContainsRune(name, '/') || strings.ContainsRune(name, 0) {
		return fmt.Errorf("tags: invalid tag name %q", name)
	}
	return nil
}

func (g *Graph) tagDir(name string) string {
	return filepath.Join(g.Dir, name)
}

// Add creates a symlink under tags_dir/tag for each file, creating the tag
// directory on demand ("tag add FILE... :TAG...").
func (g *Graph) Add(files []string, tag string) error {
	if err := validName(tag); err != nil {
		return err
	}
	dir := g.tagDir(tag)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		link := filepath.Join(dir, encode(abs))
		if _, err := os.Lstat(link); err == nil {
			continue // already tagged, symlink creation is idempotent
		}
		if err := os.Symlink(abs, link); err != nil {
			return err
		}
	}
	return nil
}

// Untag removes the named symlinks ("tag untag FILE... :TAG..."). The tag
// directory persists even if it becomes empty.
func (g *Graph) Untag(files []string, tag string) error {
	if err := validName(tag); err != nil {
		return err
	}
	dir := g.tagDir(tag)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		link := filepath.Join(dir, encode(abs))
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Delete removes a tag directory recursively ("tag del :TAG...").
func (g *Graph) Delete(tag string) error {
	if err := validName(tag); err != nil {
		return err
	}
	return os.RemoveAll(g.tagDir(tag))
}

// Rename renames a tag directory ("tag rename OLD NEW").
func (g *Graph) Rename(oldName, newName string) error {
	if err := validName(oldName); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}
	return os.Rename(g.tagDir(oldName), g.tagDir(newName))
}

// Merge moves every entry from src into dst, then removes src ("tag merge
// SRC DST").
func (g *Graph) Merge(src, dst string) error {
	if err := validName(src); err != nil {
		return err
	}
	if err := validName(dst); err != nil {
		return err
	}
	srcDir := g.tagDir(src)
	dstDir := g.tagDir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(srcDir, e.Name()), filepath.Join(dstDir, e.Name())); err != nil {
			return err
		}
	}
	return os.Remove(srcDir)
}

// Files returns the dereferenced target paths tagged with tag ("tag ls
// TAG" and the t:TAG expansion token).
func (g *Graph) Files(tag string) ([]string, error) {
	if err := validName(tag); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(g.tagDir(tag))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("tags: %s: no such tag", tag)
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if target, err := os.Readlink(filepath.Join(g.tagDir(tag), e.Name())); err == nil {
			out = append(out, target)
			continue
		}
		out = append(out, decode(e.Name()))
	}
	return out, nil
}

// List returns every tag name with its file count ("tag ls" with no
// argument).
func (g *Graph) List() (map[string]int, error) {
	entries, err := os.ReadDir(g.Dir)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		links, err := os.ReadDir(filepath.Join(g.Dir, e.Name()))
		if err != nil {
			continue
		}
		out[e.Name()] = len(links)
	}
	return out, nil
}

// Exists reports whether tag has a directory.
func (g *Graph) Exists(tag string) bool {
	st, err := os.Stat(g.tagDir(tag))
	return err == nil && st.IsDir()
}
