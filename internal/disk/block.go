package disk

import (
	"errors"
	"fmt"
	"io"
)

// BlockReader reads whole data blocks of an image.
//
// A block is addressable when the chain table describes it and the image
// holds all of its bytes. BlockReader keeps no cursor, so it is safe for
// concurrent use when the underlying io.ReaderAt is.
type BlockReader struct {
	r      io.ReaderAt
	layout Layout
	table  ChainTable
	blocks int64
}

func NewBlockReader(r io.ReaderAt, layout Layout, table ChainTable, imageSize int64) *BlockReader {
	return &BlockReader{
		r:      r,
		layout: layout,
		table:  table,
		blocks: min(int64(len(table)), layout.DataBlocks(imageSize)),
	}
}

// Blocks returns the number of addressable blocks.
func (br *BlockReader) Blocks() int64 {
	return br.blocks
}

func (br *BlockReader) Layout() Layout {
	return br.layout
}

func (br *BlockReader) ChainTable() ChainTable {
	return br.table
}

// Check returns ErrBlockOutOfRange if b is not addressable.
func (br *BlockReader) Check(b int32) error {
	if b < 0 || int64(b) >= br.blocks {
		return fmt.Errorf("%w: block %d at offset %d, image has %d addressable blocks",
			ErrBlockOutOfRange, b, br.layout.BlockOffset(b), br.blocks)
	}
	return nil
}

// Section returns a reader limited to the bytes of block b.
func (br *BlockReader) Section(b int32) (*io.SectionReader, error) {
	if err := br.Check(b); err != nil {
		return nil, err
	}
	return io.NewSectionReader(br.r, br.layout.BlockOffset(b), br.layout.BlockSize), nil
}

// ReadBlock returns a copy of the bytes of block b.
func (br *BlockReader) ReadBlock(b int32) ([]byte, error) {
	if err := br.Check(b); err != nil {
		return nil, err
	}

	off := br.layout.BlockOffset(b)
	buf := make([]byte, br.layout.BlockSize)
	n, err := br.r.ReadAt(buf, off)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: block %d truncated at offset %d", ErrBlockOutOfRange, b, off+int64(n))
		}
		return nil, fmt.Errorf("reading block %d at offset %d: %w", b, off, err)
	}
	return buf, nil
}

// ReadRecordBlock decodes the batch of directory records held by block b.
func (br *BlockReader) ReadRecordBlock(b int32) ([]DirectoryEntry, error) {
	buf, err := br.ReadBlock(b)
	if err != nil {
		return nil, err
	}

	entries, err := DecodeRecords(buf, br.layout.RecordsPerBlock())
	if err != nil {
		return nil, fmt.Errorf("block %d at offset %d: %w", b, br.layout.BlockOffset(b), err)
	}
	return entries, nil
}
