//go:build !windows
// +build !windows

package hashcache

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// Identity is a stable unique handle for a file, distinct from its
// path. On unix this is the device and inode pair, so hardlinked paths
// share one cache entry.
type Identity struct {
	Dev  uint64
	Ino  uint64
	Path string
}

func (self Identity) Key() string {
	if self.Dev == 0 && self.Ino == 0 {
		// Filesystems that expose no stat identity fall back to
		// the path itself.
		return self.Path
	}
	return fmt.Sprintf("%d:%d", self.Dev, self.Ino)
}

func statIdentity(path string) (Identity, time.Time, int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Identity{}, time.Time{}, 0, err
	}

	identity := Identity{Path: path}
	sys, ok := stat.Sys().(*syscall.Stat_t)
	if ok {
		identity = Identity{
			Dev: uint64(sys.Dev),
			Ino: uint64(sys.Ino),
		}
	}

	return identity, stat.ModTime(), stat.Size(), nil
}
