package disk

import (
	"encoding/binary"
	"fmt"
)

// On-disk field widths. Every decoder slices raw bytes using these values.
const (
	IntSize         = 4                    // signed 32-bit integer
	SuperblockSize  = 3 * IntSize          // block_size, fat_bytes, root_capacity
	ChainRecordSize = 2 * IntSize          // tag, next
	NameSize        = 12                   // NUL padded name
	RecordSize      = NameSize + 2*IntSize // name, first_block, attr
)

// Field offsets inside a directory record.
const (
	firstBlockOff = NameSize
	attrOff       = NameSize + IntSize
)

// AttrDirectory is the raw attribute value marking a directory entry.
const AttrDirectory = 1

// NoBlock is the start block of an entry that owns no data.
const NoBlock int32 = -1

// byteOrder of every integer in the image.
var byteOrder = binary.LittleEndian

// terminators are the link values that end a chain. The format does not
// distinguish end-of-chain from a free block, both stop traversal.
var terminators = [...]int32{-1, 0, 254, 255}

// IsTerminator reports whether next ends a chain.
func IsTerminator(next int32) bool {
	for _, t := range terminators {
		if next == t {
			return true
		}
	}
	return false
}

// Terminators returns the terminator set in ascending order.
func Terminators() []int32 {
	return append([]int32(nil), terminators[:]...)
}

// Layout holds the absolute offsets of each region of an image.
type Layout struct {
	SuperblockSize int64
	ChainOffset    int64 // start of the chain table
	RootOffset     int64 // start of the root directory
	DataOffset     int64 // start of block 0
	BlockSize      int64
}

// NewLayout computes the region offsets for an image whose superblock
// occupies sbSize bytes.
func NewLayout(sbSize int, sb *Superblock) Layout {
	chainOff := int64(sbSize)
	rootOff := chainOff + int64(sb.FATSize)
	return Layout{
		SuperblockSize: int64(sbSize),
		ChainOffset:    chainOff,
		RootOffset:     rootOff,
		DataOffset:     rootOff + int64(sb.RootCapacity)*RecordSize,
		BlockSize:      int64(sb.BlockSize),
	}
}

// BlockOffset returns the absolute offset of the data block b.
func (l Layout) BlockOffset(b int32) int64 {
	return l.DataOffset + l.BlockSize*int64(b)
}

// RecordsPerBlock is the number of directory records a data block holds.
func (l Layout) RecordsPerBlock() int {
	return int(l.BlockSize / RecordSize)
}

// DataBlocks returns how many whole blocks fit between the data region
// and the end of an image of the given size.
func (l Layout) DataBlocks(imageSize int64) int64 {
	if imageSize <= l.DataOffset || l.BlockSize <= 0 {
		return 0
	}
	return (imageSize - l.DataOffset) / l.BlockSize
}

// CheckRegions verifies that the chain table and the root directory end
// within an image of imageSize bytes, so neither is read into a buffer the
// image cannot fill.
func (l Layout) CheckRegions(imageSize int64) error {
	if l.SuperblockSize > imageSize {
		return fmt.Errorf("%w: superblock of %d bytes exceeds image size %d",
			ErrMalformedHeader, l.SuperblockSize, imageSize)
	}
	if l.RootOffset > imageSize {
		return fmt.Errorf("%w: chain table at offset %d ends at %d, past image size %d",
			ErrMalformedHeader, l.ChainOffset, l.RootOffset, imageSize)
	}
	if l.DataOffset > imageSize {
		return fmt.Errorf("%w: root directory at offset %d ends at %d, past image size %d",
			ErrMalformedRecord, l.RootOffset, l.DataOffset, imageSize)
	}
	return nil
}
