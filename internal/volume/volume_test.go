package volume_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/ostafen/fatscope/internal/disk"
	"github.com/ostafen/fatscope/internal/imagetest"
	"github.com/ostafen/fatscope/internal/tree"
	"github.com/ostafen/fatscope/internal/volume"
	"github.com/stretchr/testify/require"
)

const blockSize = 2 * disk.RecordSize

func pad(s string) []byte {
	b := make([]byte, blockSize)
	copy(b, s)
	return b
}

func sampleImage() *imagetest.Image {
	return &imagetest.Image{
		BlockSize: blockSize,
		Chain:     imagetest.Link(4, map[int32]int32{0: 1}),
		Root: []imagetest.Record{
			imagetest.File("a.txt", 0),
			imagetest.Dir("d", 2),
			imagetest.File("empty", -1),
		},
		Blocks: [][]byte{
			[]byte("hello "),
			[]byte("world"),
			imagetest.EncodeRecords(imagetest.File("b.txt", 3)),
			[]byte("bee"),
		},
	}
}

func open(t *testing.T, img *imagetest.Image) *volume.Volume {
	t.Helper()

	v, err := volume.Open(img.Reader(), volume.Options{Name: "sample.img", SuperblockSize: img.SuperblockSize})
	require.NoError(t, err)
	return v
}

func TestOpen(t *testing.T) {
	v := open(t, sampleImage())

	require.Equal(t, disk.Superblock{BlockSize: blockSize, FATSize: 32, RootCapacity: 3}, v.Superblock())
	require.Len(t, v.ChainTable(), 4)
	require.Len(t, v.Root(), 3)
	require.Len(t, v.Tree(), 3)

	var paths []string
	for _, rec := range v.FileMapReport().Records {
		paths = append(paths, rec.Path)
	}
	require.Equal(t, []string{"/a.txt", "/d", "/d/b.txt", "/empty"}, paths)
}

func TestReports(t *testing.T) {
	v := open(t, sampleImage())

	sb := v.SuperblockReport()
	require.Equal(t, "sample.img", sb.Image)
	require.Equal(t, disk.SuperblockSize, sb.SuperblockSize)
	require.Equal(t, disk.IntSize, sb.FieldSize)
	require.Equal(t, int64(12+32+3*disk.RecordSize), sb.DataOffset)
	require.Equal(t, int64(4), sb.DataBlocks)
	require.Equal(t, sb.DataOffset+4*blockSize, sb.ImageSize)

	fat := v.ChainTableReport()
	require.Equal(t, int64(12), fat.Offset)
	require.Equal(t, int32(32), fat.Size)
	require.Equal(t, disk.ChainRecordSize, fat.RecordSize)
	require.Equal(t, int32(1), fat.Entries[0].Next)

	dir := v.DirectoryReport()
	require.Equal(t, int64(44), dir.Offset)
	require.Equal(t, int32(3), dir.Capacity)
	require.Equal(t, disk.RecordSize, dir.RecordSize)
	require.Equal(t, "d", dir.Entries[1].Name)
	require.True(t, dir.Entries[1].IsDir())

	s := v.SearchReport("txt")
	require.Equal(t, "txt", s.Query)
	require.Equal(t, []string{"/a.txt", "/d/b.txt"}, s.Paths)
	require.Empty(t, v.Search("missing"))
}

func TestReadTextFile(t *testing.T) {
	v := open(t, sampleImage())

	data, err := v.ReadTextFile("/a.txt")
	require.NoError(t, err)
	require.Equal(t, append(pad("hello "), pad("world")...), data)

	data, err = v.ReadTextFile("/d/b.txt")
	require.NoError(t, err)
	require.Equal(t, pad("bee"), data)

	data, err = v.ReadTextFile("/empty")
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestSaveFile(t *testing.T) {
	v := open(t, sampleImage())

	var buf bytes.Buffer
	n, err := v.SaveFile("/a.txt", &buf)
	require.NoError(t, err)
	require.Equal(t, int64(2*blockSize), n)

	want, err := v.ReadTextFile("/a.txt")
	require.NoError(t, err)
	require.Equal(t, want, buf.Bytes())

	_, err = v.SaveFile("/d", io.Discard)
	require.ErrorIs(t, err, volume.ErrNotAFile)

	_, err = v.SaveFile("/nope", io.Discard)
	require.ErrorIs(t, err, volume.ErrPathNotFound)

	_, err = v.ReadTextFile("/d")
	require.ErrorIs(t, err, volume.ErrNotAFile)
}

func TestOpenContent(t *testing.T) {
	v := open(t, sampleImage())

	r, err := v.OpenContent(0)
	require.NoError(t, err)
	require.Equal(t, int64(2*blockSize), r.Size())

	buf := make([]byte, 8)
	n, err := r.ReadAt(buf, blockSize-3)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, append(make([]byte, 3), "world"...), buf)

	size, err := v.ContentSize(0)
	require.NoError(t, err)
	require.Equal(t, int64(2*blockSize), size)

	r, err = v.OpenContent(-1)
	require.NoError(t, err)
	require.Equal(t, int64(0), r.Size())
}

func TestFileCycle(t *testing.T) {
	img := sampleImage()
	img.Chain = imagetest.Link(4, map[int32]int32{0: 1, 1: 0})

	v := open(t, img)

	_, err := v.ReadTextFile("/a.txt")
	require.ErrorIs(t, err, disk.ErrCycleDetected)

	_, err = v.SaveFile("/a.txt", io.Discard)
	require.ErrorIs(t, err, disk.ErrCycleDetected)
}

func TestFileOutOfRange(t *testing.T) {
	img := sampleImage()
	img.Blocks = img.Blocks[:1]

	_, err := volume.Open(img.Reader(), volume.Options{})
	require.ErrorIs(t, err, disk.ErrBlockOutOfRange)

	img = sampleImage()
	img.Root = []imagetest.Record{imagetest.File("far", 9)}

	v := open(t, img)
	_, err = v.ReadTextFile("/far")
	require.ErrorIs(t, err, disk.ErrBlockOutOfRange)
}

func TestOpenMalformed(t *testing.T) {
	data := sampleImage().Bytes()

	_, err := volume.Open(bytes.NewReader(data[:8]), volume.Options{})
	require.ErrorIs(t, err, disk.ErrMalformedHeader)

	_, err = volume.Open(bytes.NewReader(data[:20]), volume.Options{})
	require.ErrorIs(t, err, disk.ErrMalformedHeader)

	_, err = volume.Open(bytes.NewReader(data[:50]), volume.Options{})
	require.ErrorIs(t, err, disk.ErrMalformedRecord)
}

func TestOpenAncestorLoop(t *testing.T) {
	img := sampleImage()
	img.Blocks[2] = imagetest.EncodeRecords(imagetest.Dir("self", 2))

	_, err := volume.Open(img.Reader(), volume.Options{})
	require.ErrorIs(t, err, disk.ErrCycleDetected)
}

func TestSuperblockSize(t *testing.T) {
	img := sampleImage()
	img.SuperblockSize = 16

	v := open(t, img)
	require.Equal(t, int64(16), v.Layout().ChainOffset)

	data, err := v.ReadTextFile("/d/b.txt")
	require.NoError(t, err)
	require.Equal(t, pad("bee"), data)
}

func TestTextFiles(t *testing.T) {
	v := open(t, sampleImage())

	var paths []string
	for _, rec := range v.Index().TextFiles() {
		paths = append(paths, rec.Path)
	}
	require.Equal(t, []string{"/a.txt", "/d/b.txt"}, paths)

	rec, err := v.Lookup("/d")
	require.NoError(t, err)
	require.Equal(t, tree.PathRecord{Name: "d", Path: "/d", FirstBlock: 2, Attr: 1, Kind: disk.KindDirectory}, rec)
}

func header(blockSize, fatSize, rootCapacity int32) []byte {
	buf := make([]byte, disk.SuperblockSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(blockSize))
	binary.LittleEndian.PutUint32(buf[4:], uint32(fatSize))
	binary.LittleEndian.PutUint32(buf[8:], uint32(rootCapacity))
	return buf
}

func TestOpenOversizedHeader(t *testing.T) {
	_, err := volume.Open(bytes.NewReader(header(40, 0, 0x7FFFFFFF)), volume.Options{})
	require.ErrorIs(t, err, disk.ErrMalformedRecord)

	_, err = volume.Open(bytes.NewReader(header(40, 0x7FFFFFF8, 0)), volume.Options{})
	require.ErrorIs(t, err, disk.ErrMalformedHeader)
	require.ErrorContains(t, err, "offset 12")

	const sbSize = 1 << 30
	_, err = volume.Open(bytes.NewReader(header(40, 0, 0)), volume.Options{SuperblockSize: sbSize})
	require.ErrorIs(t, err, disk.ErrMalformedHeader)
}
