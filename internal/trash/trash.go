// Package trash implements the FreeDesktop trash-spec layout the dispatcher's
// "t"/"trash" and "u"/"untrash" commands move files through: a files/
// subdirectory holding the moved-aside content and an info/ subdirectory
// holding one *.trashinfo record per trashed item.
package trash

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	shutil "github.com/termie/go-shutil"
)

// Can is rooted at ~/.local/share/Trash (or wherever XDG_DATA_HOME points).
type Can struct {
	FilesDir string
	InfoDir  string
}

// Open ensures the trash can's files/ and info/ directories exist.
func Open(dataHome string) (*Can, error) {
	root := filepath.Join(dataHome, "Trash")
	c := &Can{FilesDir: filepath.Join(root, "files"), InfoDir: filepath.Join(root, "info")}
	if err := os.MkdirAll(c.FilesDir, 0700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.InfoDir, 0700); err != nil {
		return nil, err
	}
	return c, nil
}

// Item is one trashed entry, read back from its .trashinfo file.
type Item struct {
	Name         string // the basename used in files/ and info/
	OriginalPath string
	DeletionDate time.Time
}

// Move relocates path into the can, writing its .trashinfo record. A
// colliding basename gets a numeric suffix, the same way the reference
// trash-cli tools avoid clobbering an existing trashed file of the same
// name.
func (c *Can) Move(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	base := filepath.Base(abs)
	name := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(filepath.Join(c.FilesDir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s.%d", base, i)
	}

	dest := filepath.Join(c.FilesDir, name)
	info := c.infoPath(name)

	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		url.PathEscape(abs), time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(info, []byte(content), 0600); err != nil {
		return err
	}

	if err := os.Rename(abs, dest); err != nil {
		// cross-device: copy then remove, with the same shutil.CopyTree/Copy
		// calls the 'c' wrapper uses.
		if fi, statErr := os.Stat(abs); statErr == nil && fi.IsDir() {
			if err := shutil.CopyTree(abs, dest, nil); err != nil {
				os.Remove(info)
				return err
			}
		} else {
			if err := shutil.Copy(abs, dest, false); err != nil {
				os.Remove(info)
				return err
			}
		}
		if err := os.RemoveAll(abs); err != nil {
			return err
		}
	}
	return nil
}

func (c *Can) infoPath(name string) string {
	return filepath.Join(c.InfoDir, name+".trashinfo")
}

// List enumerates trashed items in the file-name order os.ReadDir returns
// for the info/ directory, not by deletion date.
func (c *Can) List() ([]Item, error) {
	entries, err := os.ReadDir(c.InfoDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".trashinfo") {
			continue
		}
		item, err := c.readInfo(e.Name())
		if err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Can) readInfo(infoName string) (Item, error) {
	name := strings.TrimSuffix(infoName, ".trashinfo")
	f, err := os.Open(filepath.Join(c.InfoDir, infoName))
	if err != nil {
		return Item{}, err
	}
	defer f.Close()

	item := Item{Name: name}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Path="):
			if p, err := url.PathUnescape(strings.TrimPrefix(line, "Path=")); err == nil {
				item.OriginalPath = p
			}
		case strings.HasPrefix(line, "DeletionDate="):
			if t, err := time.Parse("2006-01-02T15:04:05", strings.TrimPrefix(line, "DeletionDate=")); err == nil {
				item.DeletionDate = t
			}
		}
	}
	return item, scanner.Err()
}

// Restore moves a trashed item back to its recorded original path,
// refusing to overwrite anything already there.
func (c *Can) Restore(name string) (string, error) {
	item, err := c.readInfo(name + ".trashinfo")
	if err != nil {
		return "", fmt.Errorf("trash: %s: no such item: %w", name, err)
	}
	if item.OriginalPath == "" {
		return "", fmt.Errorf("trash: %s: missing original path", name)
	}
	if _, err := os.Lstat(item.OriginalPath); err == nil {
		return "", fmt.Errorf("trash: %s: restore target already exists", item.OriginalPath)
	}
	if err := os.MkdirAll(filepath.Dir(item.OriginalPath), 0755); err != nil {
		return "", err
	}
	if err := os.Rename(filepath.Join(c.FilesDir, name), item.OriginalPath); err != nil {
		return "", err
	}
	os.Remove(c.infoPath(name))
	return item.OriginalPath, nil
}

// Empty permanently deletes every trashed item.
func (c *Can) Empty() error {
	items, err := c.List()
	if err != nil {
		return err
	}
	for _, it := range items {
		os.RemoveAll(filepath.Join(c.FilesDir, it.Name))
		os.Remove(c.infoPath(it.Name))
	}
	return nil
}
