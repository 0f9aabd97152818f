// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

//go:build unix

package mmap

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// MmapFile is a read-only memory mapping of a whole file.
type MmapFile struct {
	Data []byte   // The memory-mapped byte slice
	File *os.File // The underlying opened file
}

// NewMmapFile maps filePath read-only in its entirety.
func NewMmapFile(filePath string) (*MmapFile, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", filePath, err)
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("file %q is empty, cannot mmap", filePath)
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("file %q of %d bytes does not fit the address space", filePath, size)
	}

	// MAP_SHARED with PROT_READ: the mapping never writes back.
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", filePath, size, err)
	}

	return &MmapFile{
		Data: data,
		File: f,
	}, nil
}

// ReadAt implements io.ReaderAt over the mapped bytes.
func (mf *MmapFile) ReadAt(p []byte, off int64) (int, error) {
	if mf.Data == nil {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("mmap: negative offset %d", off)
	}
	if off >= int64(len(mf.Data)) {
		return 0, io.EOF
	}

	n := copy(p, mf.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (mf *MmapFile) Size() int64 {
	return int64(len(mf.Data))
}

// Close unmaps the memory region and closes the underlying file.
func (mf *MmapFile) Close() error {
	var err error
	if mf.Data != nil {
		err = unix.Munmap(mf.Data)
		if err != nil {
			return fmt.Errorf("failed to munmap: %w", err)
		}
		mf.Data = nil
	}

	if mf.File != nil {
		if closeErr := mf.File.Close(); closeErr != nil {
			return fmt.Errorf("failed to close file: %w", closeErr)
		}
		mf.File = nil
	}
	return nil
}
