//go:build !windows
// +build !windows

package providers

import (
	"os"
	"syscall"
)

func statNumbers(stat os.FileInfo) (inode, device uint64, uid, gid int64) {
	sys, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, -1, -1
	}
	return uint64(sys.Ino), uint64(sys.Dev), int64(sys.Uid), int64(sys.Gid)
}
