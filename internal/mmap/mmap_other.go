//go:build !unix

package mmap

import (
	"errors"
	"os"
)

var ErrUnsupported = errors.New("mmap is not supported on this platform")

type MmapFile struct {
	Data []byte
	File *os.File
}

func NewMmapFile(filePath string) (*MmapFile, error) {
	return nil, ErrUnsupported
}

func (mf *MmapFile) ReadAt(p []byte, off int64) (int, error) {
	return 0, ErrUnsupported
}

func (mf *MmapFile) Size() int64 {
	return 0
}

func (mf *MmapFile) Close() error {
	return nil
}
