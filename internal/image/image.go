// Package image provides positioned-read access to the backing image of a
// volume.
package image

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ostafen/fatscope/internal/mmap"
)

// Image is a read-only blob. Reads carry their own offset, so an Image can
// be shared by concurrent readers.
type Image interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Name() string
}

// Open opens the image at path. With useMmap the file is memory-mapped
// instead of being read through the file descriptor.
func Open(path string, useMmap bool) (Image, error) {
	if useMmap {
		mf, err := mmap.NewMmapFile(path)
		if err != nil {
			return nil, err
		}
		return &mappedImage{MmapFile: mf, name: path}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %q: %w", path, err)
	}

	finfo, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat image file %q: %w", path, err)
	}
	if finfo.IsDir() {
		f.Close()
		return nil, fmt.Errorf("image path %q is a directory", path)
	}

	size := finfo.Size()
	if finfo.Mode()&os.ModeDevice != 0 {
		// block devices report no size through stat
		if size, err = f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to size device %q: %w", path, err)
		}
	}
	return &fileImage{File: f, size: size}, nil
}

// FromBytes returns an Image over an in-memory buffer.
func FromBytes(name string, data []byte) Image {
	return &memImage{Reader: bytes.NewReader(data), name: name}
}

type fileImage struct {
	*os.File
	size int64
}

func (fi *fileImage) Size() int64 { return fi.size }

type mappedImage struct {
	*mmap.MmapFile
	name string
}

func (mi *mappedImage) Name() string { return mi.name }

type memImage struct {
	*bytes.Reader
	name string
}

func (mi *memImage) Name() string { return mi.name }
func (mi *memImage) Close() error { return nil }
