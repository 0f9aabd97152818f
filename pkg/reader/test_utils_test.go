package reader

import (
	"crypto/rand"
	"io"
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// testReadSeeker seeks to random offsets of a reader built over random data
// and checks that every read returns the bytes found there.
func testReadSeeker(t *testing.T, newReader func([]byte) io.ReadSeeker) {
	const (
		trials  = 1000
		maxRead = 64
	)

	data := GenerateRandomBuffer(10 * 1024)
	rs := newReader(data)

	rng := mrand.New(mrand.NewPCG(1, 2))
	buf := make([]byte, maxRead)
	for i := range trials {
		offset := rng.IntN(len(data))
		readLen := max(1, min(rng.IntN(maxRead), len(data)-offset))

		pos, err := rs.Seek(int64(offset), io.SeekStart)
		require.NoError(t, err, "trial %d", i)
		require.Equal(t, int64(offset), pos)

		n, err := io.ReadFull(rs, buf[:readLen])
		require.NoError(t, err, "trial %d: read %d bytes at %d", i, readLen, offset)
		require.Equal(t, data[offset:offset+readLen], buf[:n], "trial %d: offset %d", i, offset)
	}
}

// GenerateRandomBuffer returns a random byte slice of the given size.
func GenerateRandomBuffer(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random data: " + err.Error())
	}
	return b
}
