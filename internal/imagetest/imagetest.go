// Package imagetest builds synthetic images in memory for tests.
package imagetest

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/fatscope/internal/disk"
)

// Record is a raw directory record.
type Record struct {
	Name       string
	FirstBlock int32
	Attr       int32
}

// File returns a record for a file starting at block.
func File(name string, block int32) Record {
	return Record{Name: name, FirstBlock: block, Attr: 0}
}

// Dir returns a record for a directory starting at block.
func Dir(name string, block int32) Record {
	return Record{Name: name, FirstBlock: block, Attr: disk.AttrDirectory}
}

// Image describes the content of a synthetic image.
type Image struct {
	// SuperblockSize defaults to disk.SuperblockSize. Any extra byte is zero.
	SuperblockSize int
	BlockSize      int32
	// RootCapacity defaults to len(Root).
	RootCapacity int32
	Chain        []disk.ChainEntry
	Root         []Record
	// Blocks holds the payload of each data block, zero padded to BlockSize.
	Blocks [][]byte
}

// Link returns a chain table of n entries where every block is a
// terminator, then applies the given block -> next links.
func Link(n int, links map[int32]int32) []disk.ChainEntry {
	chain := make([]disk.ChainEntry, n)
	for i := range chain {
		chain[i] = disk.ChainEntry{Tag: int32(i), Next: 255}
	}
	for b, next := range links {
		chain[b].Next = next
	}
	return chain
}

// EncodeRecords serializes records in on-disk form.
func EncodeRecords(recs ...Record) []byte {
	var buf bytes.Buffer
	for _, r := range recs {
		var name [disk.NameSize]byte
		copy(name[:], r.Name)
		buf.Write(name[:])
		_ = binary.Write(&buf, binary.LittleEndian, r.FirstBlock)
		_ = binary.Write(&buf, binary.LittleEndian, r.Attr)
	}
	return buf.Bytes()
}

// Bytes serializes the image.
func (img *Image) Bytes() []byte {
	sbSize := img.SuperblockSize
	if sbSize == 0 {
		sbSize = disk.SuperblockSize
	}
	capacity := img.RootCapacity
	if capacity == 0 {
		capacity = int32(len(img.Root))
	}

	var buf bytes.Buffer

	sb := make([]byte, sbSize)
	binary.LittleEndian.PutUint32(sb[0:], uint32(img.BlockSize))
	binary.LittleEndian.PutUint32(sb[4:], uint32(len(img.Chain)*disk.ChainRecordSize))
	binary.LittleEndian.PutUint32(sb[8:], uint32(capacity))
	buf.Write(sb)

	for _, e := range img.Chain {
		_ = binary.Write(&buf, binary.LittleEndian, e)
	}

	root := make([]byte, int(capacity)*disk.RecordSize)
	copy(root, EncodeRecords(img.Root...))
	buf.Write(root)

	for _, payload := range img.Blocks {
		block := make([]byte, img.BlockSize)
		copy(block, payload)
		buf.Write(block)
	}
	return buf.Bytes()
}

// Reader returns a reader over the serialized image.
func (img *Image) Reader() *bytes.Reader {
	return bytes.NewReader(img.Bytes())
}
