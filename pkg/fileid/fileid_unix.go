//go:build unix

package fileid

import (
	"fmt"
	"os"
	"syscall"
)

// FromPath returns the unique file identifier (device + inode) and link count for a file.
// This uses direct syscall.Stat() instead of os.Stat() for better performance.
// Symlinks are followed, so the identity reported is that of the target.
func FromPath(path string) (FileID, uint64, error) {
	var stat syscall.Stat_t
	err := syscall.Stat(path, &stat)
	if err != nil {
		return FileID{}, 0, fmt.Errorf("stat file: %w", err)
	}

	return FileID{
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
	}, uint64(stat.Nlink), nil
}

// FromFileInfo extracts the file identifier and link count from an already
// obtained os.FileInfo, avoiding a second stat call.
func FromFileInfo(path string, info os.FileInfo) (FileID, uint64, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FromPath(path)
	}

	return FileID{
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
	}, uint64(stat.Nlink), nil
}
