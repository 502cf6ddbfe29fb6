package saver

import "os"

// FS is the part of the filesystem the writer touches.
type FS interface {
	MkdirAll(path string) error
	WriteFile(path string, data []byte) error
}

// OSFS writes to the local disk.
type OSFS struct{}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
