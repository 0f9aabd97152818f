package reader

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newChunkedReader(data []byte, maxChunk int) *MultiReadSeeker {
	var (
		readers []io.ReadSeeker
		sizes   []int64
	)

	size := 0
	for size < len(data) {
		sz := min(
			rand.Intn(maxChunk)+1,
			len(data)-size,
		)

		chunk := data[size : size+sz]
		readers = append(readers, bytes.NewReader(chunk))

		sizes = append(sizes, int64(sz))
		size += sz
	}
	return NewMultiReadSeeker(readers, sizes)
}

func TestMultiReadSeekerRandomSeek(t *testing.T) {
	testReadSeeker(t, func(data []byte) io.ReadSeeker {
		return newChunkedReader(data, 1024)
	})
}

func TestMultiReadSeekerReadAll(t *testing.T) {
	data := GenerateRandomBuffer(4096 + 17)
	r := newChunkedReader(data, 64)

	require.Equal(t, int64(len(data)), r.Size())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = r.Seek(100, io.SeekStart)
	require.NoError(t, err)

	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data[100:], got)
}

func TestMultiReadSeekerReadAt(t *testing.T) {
	data := GenerateRandomBuffer(2048)
	r := newChunkedReader(data, 100)

	for _, c := range []struct{ off, n int }{{0, 10}, {99, 300}, {1000, 1048}, {2040, 8}} {
		buf := make([]byte, c.n)
		n, err := r.ReadAt(buf, int64(c.off))
		require.NoError(t, err)
		require.Equal(t, c.n, n)
		require.Equal(t, data[c.off:c.off+c.n], buf)
	}

	buf := make([]byte, 16)
	n, err := r.ReadAt(buf, 2040)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 8, n)
}

func TestMultiReadSeekerEmpty(t *testing.T) {
	r := NewMultiReadSeeker(nil, nil)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)

	off, err := r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(0), off)
}
