package fileid

import (
	"fmt"
	"os"
	"syscall"
)

// FromPath returns the unique file identifier (device + inode equivalent) and
// link count for a file on Windows. Symlinks are followed.
func FromPath(path string) (FileID, uint64, error) {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return FileID{}, 0, fmt.Errorf("convert path to UTF16: %w", err)
	}

	attrs := uint32(syscall.FILE_FLAG_BACKUP_SEMANTICS)

	h, err := syscall.CreateFile(pathp, 0, 0, nil, syscall.OPEN_EXISTING, attrs, 0)
	if err != nil {
		return FileID{}, 0, fmt.Errorf("open file: %w", err)
	}
	defer syscall.CloseHandle(h)

	var info syscall.ByHandleFileInformation
	err = syscall.GetFileInformationByHandle(h, &info)
	if err != nil {
		return FileID{}, 0, fmt.Errorf("get file info: %w", err)
	}

	// On Windows, combine volume serial number with file index to create unique identifier
	// Device = VolumeSerialNumber, Inode = (FileIndexHigh << 32) | FileIndexLow
	fileID := FileID{
		Device: uint64(info.VolumeSerialNumber),
		Inode:  (uint64(info.FileIndexHigh) << 32) | uint64(info.FileIndexLow),
	}

	return fileID, uint64(info.NumberOfLinks), nil
}

// FromFileInfo extracts the file identifier and link count. Windows file info
// does not carry the file index, so this falls back to a handle based lookup.
func FromFileInfo(path string, _ os.FileInfo) (FileID, uint64, error) {
	return FromPath(path)
}
