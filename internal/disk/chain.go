package disk

import (
	"errors"
	"fmt"
	"io"
)

// ChainEntry is one record of the chain table. The record at index i
// describes data block i.
type ChainEntry struct {
	Tag  int32 `json:"tag" yaml:"tag"`   // 0x00 Tag word, not interpreted by the reader
	Next int32 `json:"next" yaml:"next"` // 0x04 Next block of the chain, or a terminator
}

// IsLast reports whether the block described by e ends its chain.
func (e ChainEntry) IsLast() bool {
	return IsTerminator(e.Next)
}

// ChainTable is the decoded chain table, indexed by block number.
type ChainTable []ChainEntry

// ReadChainTable reads size bytes at offset and decodes one ChainEntry per
// ChainRecordSize bytes.
func ReadChainTable(r io.ReaderAt, offset, size int64) (ChainTable, error) {
	if size < 0 || size%ChainRecordSize != 0 {
		return nil, fmt.Errorf("%w: chain table size %d at offset %d is not a multiple of %d",
			ErrMalformedHeader, size, offset, ChainRecordSize)
	}

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if int64(n) < size {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: chain table truncated at offset %d: expected %d bytes, got %d",
				ErrMalformedHeader, offset+int64(n), size, n)
		}
		return nil, fmt.Errorf("reading chain table at offset %d: %w", offset, err)
	}
	return DecodeChainTable(buf)
}

// DecodeChainTable decodes a raw chain table.
func DecodeChainTable(data []byte) (ChainTable, error) {
	if len(data)%ChainRecordSize != 0 {
		return nil, fmt.Errorf("%w: chain table length %d is not a multiple of %d",
			ErrMalformedHeader, len(data), ChainRecordSize)
	}

	table := make(ChainTable, len(data)/ChainRecordSize)
	for i := range table {
		rec := data[i*ChainRecordSize : (i+1)*ChainRecordSize]
		table[i] = ChainEntry{
			Tag:  int32(byteOrder.Uint32(rec[0:IntSize])),
			Next: int32(byteOrder.Uint32(rec[IntSize:ChainRecordSize])),
		}
	}
	return table, nil
}

// Contains reports whether b is a block described by the table.
func (t ChainTable) Contains(b int32) bool {
	return b >= 0 && int(b) < len(t)
}

// Walk calls visit for start and every following block of its chain, in
// order, until a terminator is reached.
//
// Walk visits each block at most once: a block that recurs within the same
// chain aborts the walk with ErrCycleDetected, so the number of visits is
// bounded by len(t). A start or link outside the table is ErrBlockOutOfRange.
// An error returned by visit stops the walk and is returned as is.
func (t ChainTable) Walk(start int32, visit func(block int32) error) error {
	if !t.Contains(start) {
		return fmt.Errorf("%w: start block %d, table has %d blocks", ErrBlockOutOfRange, start, len(t))
	}

	visited := make(map[int32]struct{})
	for curr := start; ; {
		if _, seen := visited[curr]; seen {
			return fmt.Errorf("%w: block %d revisited in chain starting at block %d",
				ErrCycleDetected, curr, start)
		}
		visited[curr] = struct{}{}

		if err := visit(curr); err != nil {
			return err
		}

		next := t[curr].Next
		if IsTerminator(next) {
			return nil
		}
		if !t.Contains(next) {
			return fmt.Errorf("%w: block %d links to block %d, table has %d blocks",
				ErrBlockOutOfRange, curr, next, len(t))
		}
		curr = next
	}
}

// Chain returns the blocks of the chain starting at start.
func (t ChainTable) Chain(start int32) ([]int32, error) {
	var blocks []int32
	err := t.Walk(start, func(b int32) error {
		blocks = append(blocks, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
