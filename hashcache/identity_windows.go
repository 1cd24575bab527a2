//go:build windows
// +build windows

package hashcache

import (
	"os"
	"time"
)

// Identity is a stable unique handle for a file. Windows has no cheap
// device+inode equivalent through os.Stat, so the path itself is the
// identity. Hardlinked paths therefore hash independently, which costs
// duplicate work but never correctness.
type Identity struct {
	Dev  uint64
	Ino  uint64
	Path string
}

func (self Identity) Key() string {
	return self.Path
}

func statIdentity(path string) (Identity, time.Time, int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Identity{}, time.Time{}, 0, err
	}
	return Identity{Path: path}, stat.ModTime(), stat.Size(), nil
}
