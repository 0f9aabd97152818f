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
package reader

import (
	"fmt"
	"io"
	"sort"
)

// MultiReadSeeker is the logical concatenation of a sequence of
// io.ReadSeekers of known sizes.
type MultiReadSeeker struct {
	readers  []io.ReadSeeker
	cumSizes []int64 // cumSizes[i] is the end offset of readers[i]

	currReader int
	currOff    int64
	size       int64 // total size
}

// NewMultiReadSeeker joins readers; sizes[i] must be the size of readers[i].
func NewMultiReadSeeker(
	readers []io.ReadSeeker,
	sizes []int64,
) *MultiReadSeeker {
	cumSizes := make([]int64, len(sizes))

	size := int64(0)
	for i, s := range sizes {
		size += s
		cumSizes[i] = size
	}

	return &MultiReadSeeker{
		currReader: -1,
		currOff:    0,
		readers:    readers,
		cumSizes:   cumSizes,
		size:       size,
	}
}

// Size returns the total size of the joined readers.
func (r *MultiReadSeeker) Size() int64 {
	return r.size
}

func (r *MultiReadSeeker) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if r.currOff >= r.size {
		return 0, io.EOF
	}

	if r.currReader < 0 {
		if err := r.advanceReader(); err != nil {
			return 0, err
		}
	}

	bytesRead := 0
	for bytesRead < len(buf) && r.currReader < len(r.readers) {
		n, err := r.readers[r.currReader].Read(buf[bytesRead:])
		if err != nil && err != io.EOF {
			return bytesRead, err
		}

		bytesRead += n
		r.currOff += int64(n)
		if err == io.EOF || r.currOff >= r.cumSizes[r.currReader] {
			if r.currReader+1 == len(r.readers) {
				r.currReader++
				break
			}

			if err := r.advanceReader(); err != nil {
				return bytesRead, err
			}
		}
	}

	if bytesRead < len(buf) {
		return bytesRead, io.EOF
	}
	return bytesRead, nil
}

func (r *MultiReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += r.currOff
	case io.SeekEnd:
		offset = r.size + offset
	default:
		return -1, fmt.Errorf("MultiReadSeeker.Seek: invalid whence (%d)", whence)
	}

	if offset < 0 {
		return -1, fmt.Errorf("MultiReadSeeker.Seek: negative position")
	}

	if offset >= r.size {
		r.currOff = offset
		r.currReader = len(r.readers)
		return offset, nil
	}

	i := sort.Search(len(r.readers), func(i int) bool {
		return r.cumSizes[i] > offset
	})
	r.currReader = i

	var base int64
	if i > 0 {
		base = r.cumSizes[i-1]
	}
	if _, err := r.readers[i].Seek(offset-base, io.SeekStart); err != nil {
		return -1, err
	}

	r.currOff = offset
	return offset, nil
}

// ReadAt reads len(p) bytes at off without moving the read offset.
func (r *MultiReadSeeker) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("MultiReadSeeker.ReadAt: negative offset")
	}

	i := sort.Search(len(r.readers), func(i int) bool {
		return r.cumSizes[i] > off
	})

	bytesRead := 0
	for ; i < len(r.readers) && bytesRead < len(p); i++ {
		var base int64
		if i > 0 {
			base = r.cumSizes[i-1]
		}

		ra, ok := r.readers[i].(io.ReaderAt)
		if !ok {
			return bytesRead, fmt.Errorf("MultiReadSeeker.ReadAt: reader %d does not implement io.ReaderAt", i)
		}

		want := min(int64(len(p)-bytesRead), r.cumSizes[i]-off)
		n, err := ra.ReadAt(p[bytesRead:bytesRead+int(want)], off-base)
		bytesRead += n
		off += int64(n)
		if err != nil && err != io.EOF {
			return bytesRead, err
		}
		if int64(n) < want {
			break
		}
	}

	if bytesRead < len(p) {
		return bytesRead, io.EOF
	}
	return bytesRead, nil
}

func (r *MultiReadSeeker) advanceReader() error {
	i := r.currReader + 1
	if i >= len(r.readers) {
		r.currReader = len(r.readers)
		return nil
	}

	if _, err := r.readers[i].Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.currReader = i
	return nil
}
