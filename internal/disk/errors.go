package disk

import "errors"

var (
	// ErrMalformedHeader reports a superblock or chain table that is truncated
	// or whose sizes are inconsistent.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMalformedRecord reports a directory record batch that cannot be
	// sliced into whole records.
	ErrMalformedRecord = errors.New("malformed directory record")
	// ErrCycleDetected reports a chain that revisits a block.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrBlockOutOfRange reports a link or start block past the addressable
	// blocks of the image.
	ErrBlockOutOfRange = errors.New("block out of range")
)
