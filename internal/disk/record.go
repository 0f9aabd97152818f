package disk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Kind tells files and directories apart.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf maps a raw attribute value to a Kind.
func KindOf(attr int32) Kind {
	if attr == AttrDirectory {
		return KindDirectory
	}
	return KindFile
}

// DirectoryEntry is one decoded directory record.
type DirectoryEntry struct {
	Name       string `json:"name" yaml:"name"`
	FirstBlock int32  `json:"first_block" yaml:"first_block"`
	Attr       int32  `json:"attr" yaml:"attr"` // raw attribute, kept for reports
	Kind       Kind   `json:"kind" yaml:"kind"`
}

func (e DirectoryEntry) IsDir() bool {
	return e.Kind == KindDirectory
}

// DecodeName decodes a NUL padded name field. Only trailing NULs are
// removed; anything else inside the field is part of the name.
func DecodeName(field []byte) string {
	return string(bytes.TrimRight(field, "\x00"))
}

// DecodeRecord decodes a single RecordSize bytes record.
func DecodeRecord(rec []byte) (DirectoryEntry, error) {
	if len(rec) < RecordSize {
		return DirectoryEntry{}, fmt.Errorf("%w: record of %d bytes, expected %d",
			ErrMalformedRecord, len(rec), RecordSize)
	}

	attr := int32(byteOrder.Uint32(rec[attrOff:RecordSize]))
	return DirectoryEntry{
		Name:       DecodeName(rec[:NameSize]),
		FirstBlock: int32(byteOrder.Uint32(rec[firstBlockOff:attrOff])),
		Attr:       attr,
		Kind:       KindOf(attr),
	}, nil
}

// DecodeRecords decodes up to count records from buf. Decoding stops at the
// first record with an empty name, which is not part of the result.
func DecodeRecords(buf []byte, count int) ([]DirectoryEntry, error) {
	if count < 0 || len(buf) < count*RecordSize {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %d records of %d bytes",
			ErrMalformedRecord, len(buf), count, RecordSize)
	}

	entries := make([]DirectoryEntry, 0, count)
	for i := range count {
		e, err := DecodeRecord(buf[i*RecordSize : (i+1)*RecordSize])
		if err != nil {
			return nil, err
		}
		if e.Name == "" {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadRecords reads a batch of count records at offset.
func ReadRecords(r io.ReaderAt, offset int64, count int) ([]DirectoryEntry, error) {
	if count <= 0 {
		return nil, nil
	}

	buf := make([]byte, count*RecordSize)
	n, err := r.ReadAt(buf, offset)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: batch of %d records at offset %d truncated at offset %d",
				ErrMalformedRecord, count, offset, offset+int64(n))
		}
		return nil, fmt.Errorf("reading directory records at offset %d: %w", offset, err)
	}
	return DecodeRecords(buf, count)
}
