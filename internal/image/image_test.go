package image_test

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ostafen/fatscope/internal/image"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()

	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestOpen(t *testing.T) {
	data := randomBytes(t, 8192)
	path := writeTemp(t, data)

	for _, useMmap := range []bool{false, true} {
		img, err := image.Open(path, useMmap)
		require.NoError(t, err)

		require.Equal(t, int64(len(data)), img.Size())
		require.Equal(t, path, img.Name())

		buf := make([]byte, 100)
		n, err := img.ReadAt(buf, 4000)
		require.NoError(t, err)
		require.Equal(t, 100, n)
		require.Equal(t, data[4000:4100], buf)

		n, err = img.ReadAt(buf, int64(len(data))-10)
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, 10, n)
		require.Equal(t, data[len(data)-10:], buf[:n])

		require.NoError(t, img.Close())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := image.Open(filepath.Join(t.TempDir(), "missing.img"), false)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = image.Open(t.TempDir(), false)
	require.Error(t, err)
}

func TestConcurrentReads(t *testing.T) {
	data := randomBytes(t, 1<<16)
	img := image.FromBytes("mem", data)
	defer img.Close()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			buf := make([]byte, 512)
			for off := int64(w * 512); off+512 <= int64(len(data)); off += 8 * 512 {
				_, err := img.ReadAt(buf, off)
				if err != nil || string(buf) != string(data[off:off+512]) {
					t.Errorf("worker %d: mismatch at offset %d", w, off)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
