package volume

import (
	"io"

	"github.com/ostafen/fatscope/pkg/reader"
)

// ContentBlocks returns the blocks holding the content that starts at
// start, in order. A negative start owns no block.
func (v *Volume) ContentBlocks(start int32) ([]int32, error) {
	if start < 0 {
		return nil, nil
	}

	blocks, err := v.table.Chain(start)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if err := v.blocks.Check(b); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// ReadContent returns the concatenation of every block of the chain that
// starts at start. No length is stored on disk, so the padding of the last
// block is part of the content.
func (v *Volume) ReadContent(start int32) ([]byte, error) {
	if start < 0 {
		return []byte{}, nil
	}

	var content []byte
	err := v.table.Walk(start, func(b int32) error {
		data, err := v.blocks.ReadBlock(b)
		if err != nil {
			return err
		}
		content = append(content, data...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.logger.Debug("read content", "first_block", start, "bytes", len(content))
	return content, nil
}

// OpenContent returns a reader streaming the same bytes ReadContent
// returns, reading each block from the image on demand.
func (v *Volume) OpenContent(start int32) (*reader.MultiReadSeeker, error) {
	blocks, err := v.ContentBlocks(start)
	if err != nil {
		return nil, err
	}

	readers := make([]io.ReadSeeker, len(blocks))
	sizes := make([]int64, len(blocks))
	for i, b := range blocks {
		sec, err := v.blocks.Section(b)
		if err != nil {
			return nil, err
		}
		readers[i] = sec
		sizes[i] = sec.Size()
	}
	return reader.NewMultiReadSeeker(readers, sizes), nil
}

// ContentSize returns the length of the content starting at start, a whole
// number of blocks.
func (v *Volume) ContentSize(start int32) (int64, error) {
	blocks, err := v.ContentBlocks(start)
	if err != nil {
		return 0, err
	}
	return int64(len(blocks)) * int64(v.sb.BlockSize), nil
}
