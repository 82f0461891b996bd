package listing

import "os"

// classify assigns an entry's ColorClass using the precedence order from
// §4.1 step 4: broken-symlink > symlink-to-dir > directory (sticky/other-
// writable variants) > empty-directory > suid/sgid > capability-marked >
// executable > empty-regular > multi-hardlink > per-extension > regular.
func classify(e *Entry) {
	switch {
	case e.StatFailed:
		e.ColorClass = ColorRegular
	case e.IsSymlink && e.BrokenLink:
		e.ColorClass = ColorBrokenSymlink
	case e.IsSymlink && e.IsDir:
		e.ColorClass = ColorSymlinkToDir
	case e.IsDir && e.Mode&os.ModeSticky != 0:
		e.ColorClass = ColorDirSticky
	case e.IsDir && e.Mode&0002 != 0:
		e.ColorClass = ColorDirOtherWritable
	case e.IsDir && e.ChildCount == 0:
		e.ColorClass = ColorEmptyDir
	case e.IsDir:
		e.ColorClass = ColorDir
	case e.Mode&(os.ModeSetuid|os.ModeSetgid) != 0:
		e.ColorClass = ColorSUIDSGID
	case hasCapability(e):
		e.ColorClass = ColorCapability
	case e.Exec:
		e.ColorClass = ColorExecutable
	case e.Size == 0:
		e.ColorClass = ColorEmptyRegular
	case e.Nlink > 1:
		e.ColorClass = ColorMultiHardlink
	case extensionOf(e.Name) != "":
		e.ColorClass = ColorExtension
		e.ExtColorKey = extensionOf(e.Name)
	default:
		e.ColorClass = ColorRegular
	}
}

// hasCapability reports whether the entry carries a Linux file capability
// (xattr security.capability). Out of scope to probe here without a
// dedicated xattr dependency the pack doesn't supply; always false, the
// classifier simply falls through to the next precedence tier.
func hasCapability(e *Entry) bool {
	return false
}

func extensionOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			if i == 0 {
				return ""
			}
			return name[i+1:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}
