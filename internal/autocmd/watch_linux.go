//go:build linux

package autocmd

import (
	"golang.org/x/sys/unix"
)

// Watch wraps a single inotify watch on one directory, polled
// non-blockingly at prompt re-entry (§5: "Event notifications ... are
// polled non-blockingly at prompt re-entry").
type Watch struct {
	fd      int
	wd      int
	dir     string
}

// NewWatch opens an inotify instance and watches dir for the events that
// matter to a directory listing: create/delete/move/attrib.
func NewWatch(dir string) (*Watch, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		return nil, err
	}
	wd, err := unix.InotifyAddWatch(fd, dir,
		unix.IN_CREATE|unix.IN_DELETE|unix.IN_MOVED_FROM|unix.IN_MOVED_TO|unix.IN_ATTRIB)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Watch{fd: fd, wd: wd, dir: dir}, nil
}

// Poll reads any pending inotify events without blocking, returning true if
// the directory changed since the last Poll.
func (w *Watch) Poll() bool {
	buf := make([]byte, 4096)
	n, err := unix.Read(w.fd, buf)
	return err == nil && n > 0
}

// Close releases the inotify instance.
func (w *Watch) Close() error {
	unix.InotifyRmWatch(w.fd, uint32(w.wd))
	return unix.Close(w.fd)
}
