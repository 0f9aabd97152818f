package disk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Superblock is the fixed header at offset 0 of an image.
//
// The three fields are stored as little endian signed 32-bit integers, in
// this order, so the struct is decoded directly with binary.Read.
type Superblock struct {
	BlockSize    int32 // 0x00 Bytes per data block
	FATSize      int32 // 0x04 Length of the chain table in bytes
	RootCapacity int32 // 0x08 Number of records in the root directory
}

// ChainEntries returns the number of records of the chain table.
func (sb *Superblock) ChainEntries() int {
	return int(sb.FATSize) / ChainRecordSize
}

// Validate checks the invariants every decoder relies on.
func (sb *Superblock) Validate() error {
	if sb.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive, got %d", ErrMalformedHeader, sb.BlockSize)
	}
	if sb.FATSize < 0 || sb.FATSize%ChainRecordSize != 0 {
		return fmt.Errorf("%w: chain table size %d is not a multiple of %d",
			ErrMalformedHeader, sb.FATSize, ChainRecordSize)
	}
	if sb.RootCapacity < 0 {
		return fmt.Errorf("%w: negative root capacity %d", ErrMalformedHeader, sb.RootCapacity)
	}
	return nil
}

// ReadSuperblock reads size bytes at offset 0 and decodes the superblock
// from their head. Bytes past the three fields are ignored.
func ReadSuperblock(r io.ReaderAt, size int) (*Superblock, error) {
	if size < SuperblockSize {
		return nil, fmt.Errorf("%w: superblock size %d is smaller than %d bytes",
			ErrMalformedHeader, size, SuperblockSize)
	}

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, 0)
	if n < size {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: superblock truncated at offset %d: expected %d bytes, got %d",
				ErrMalformedHeader, n, size, n)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	return DecodeSuperblock(buf)
}

// DecodeSuperblock decodes and validates a superblock from raw bytes.
func DecodeSuperblock(data []byte) (*Superblock, error) {
	if len(data) < SuperblockSize {
		return nil, fmt.Errorf("%w: input data slice too short: expected %d bytes, got %d bytes",
			ErrMalformedHeader, SuperblockSize, len(data))
	}

	var sb Superblock
	if err := binary.Read(bytes.NewReader(data[:SuperblockSize]), byteOrder, &sb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}

	if err := sb.Validate(); err != nil {
		return nil, err
	}
	return &sb, nil
}
