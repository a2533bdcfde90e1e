// Package fs holds some utilities for manipulating the file system
package fs

import (
	"fmt"
	"os"
)

const (
	defaultDirectoryPermission = 0740
	secureFilePermission       = 0600
)

// CreateSecureFolder checks if the folder exists and is not world writable.
// If the folder doesn't exist it creates it.
func CreateSecureFolder(folder string) (string, error) {
	exists, err := Exists(folder)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := os.MkdirAll(folder, defaultDirectoryPermission); err != nil {
			return "", fmt.Errorf("fs: creating folder %s: %w", folder, err)
		}
		return folder, nil
	}
	info, err := os.Lstat(folder)
	if err != nil {
		return "", fmt.Errorf("fs: checking stat folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("fs: %s is not a folder", folder)
	}
	if perm := info.Mode().Perm(); perm&0002 != 0 {
		return "", fmt.Errorf("fs: folder %s is world writable (%#o)", folder, perm)
	}
	return folder, nil
}

// Exists returns whether the given file or directory exists.
func Exists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

// CreateSecureFile creates a file with wr permission for user only and returns
// the file handle. An existing file is truncated.
func CreateSecureFile(file string) (*os.File, error) {
	fd, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, secureFilePermission)
	if err != nil {
		return nil, err
	}
	// the file may have existed with wider permissions
	if err := fd.Chmod(secureFilePermission); err != nil {
		fd.Close()
		return nil, err
	}
	return fd, nil
}
