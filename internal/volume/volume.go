// Package volume decodes an image once and answers queries over it.
package volume

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ostafen/fatscope/internal/disk"
	"github.com/ostafen/fatscope/internal/report"
	"github.com/ostafen/fatscope/internal/tree"
)

var (
	// ErrPathNotFound reports a path that names no entry.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotAFile reports a content request on a directory.
	ErrNotAFile = errors.New("not a file")
)

// Source is the backing image of a volume.
type Source interface {
	io.ReaderAt
	Size() int64
}

type Options struct {
	// SuperblockSize is the number of bytes the superblock occupies.
	// Zero means disk.SuperblockSize.
	SuperblockSize int
	// Name is reported as the image name.
	Name string
	// MaxEntries limits the number of entries of the hierarchy. Zero means
	// tree.DefaultMaxEntries.
	MaxEntries int
	Logger     *slog.Logger
}

// Volume holds the decoded structures of an image. It is immutable after
// Open and safe for concurrent use if its Source is.
type Volume struct {
	src    Source
	name   string
	logger *slog.Logger

	sbSize int
	sb     *disk.Superblock
	layout disk.Layout
	table  disk.ChainTable
	root   []disk.DirectoryEntry
	blocks *disk.BlockReader
	nodes  []*tree.Node
	index  *tree.Index
}

// Open decodes the superblock, the chain table and the root directory of
// src, then builds the full hierarchy. Any decode error aborts Open.
func Open(src Source, opts Options) (*Volume, error) {
	sbSize := opts.SuperblockSize
	if sbSize == 0 {
		sbSize = disk.SuperblockSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	size := src.Size()
	if int64(sbSize) > size {
		return nil, fmt.Errorf("%w: superblock of %d bytes exceeds image size %d",
			disk.ErrMalformedHeader, sbSize, size)
	}

	sb, err := disk.ReadSuperblock(src, sbSize)
	if err != nil {
		return nil, err
	}
	logger.Info("decoded superblock",
		"block_size", sb.BlockSize,
		"fat_size", sb.FATSize,
		"root_capacity", sb.RootCapacity,
	)

	layout := disk.NewLayout(sbSize, sb)
	if err := layout.CheckRegions(size); err != nil {
		if errors.Is(err, disk.ErrMalformedRecord) {
			return nil, fmt.Errorf("root directory: %w", err)
		}
		return nil, err
	}

	table, err := disk.ReadChainTable(src, layout.ChainOffset, int64(sb.FATSize))
	if err != nil {
		return nil, err
	}
	logger.Info("decoded chain table", "offset", layout.ChainOffset, "entries", len(table))

	root, err := disk.ReadRecords(src, layout.RootOffset, int(sb.RootCapacity))
	if err != nil {
		return nil, fmt.Errorf("root directory: %w", err)
	}
	logger.Info("decoded root directory", "offset", layout.RootOffset, "entries", len(root))

	v := &Volume{
		src:    src,
		name:   opts.Name,
		logger: logger,
		sbSize: sbSize,
		sb:     sb,
		layout: layout,
		table:  table,
		root:   root,
		blocks: disk.NewBlockReader(src, layout, table, size),
	}
	if v.blocks.Blocks() < int64(len(table)) {
		logger.Warn("chain table describes blocks past the end of the image",
			"entries", len(table),
			"addressable", v.blocks.Blocks(),
		)
	}

	v.nodes, err = tree.NewBuilder(v.blocks, logger).WithMaxEntries(opts.MaxEntries).Build(root)
	if err != nil {
		return nil, err
	}
	v.index = tree.NewIndex(v.nodes)
	logger.Info("built directory tree", "records", v.index.Len())
	return v, nil
}

func (v *Volume) Superblock() disk.Superblock {
	return *v.sb
}

func (v *Volume) Layout() disk.Layout {
	return v.layout
}

func (v *Volume) ChainTable() disk.ChainTable {
	return v.table
}

// Root returns the entries of the root directory.
func (v *Volume) Root() []disk.DirectoryEntry {
	return v.root
}

// Tree returns the hierarchy rooted at the root directory entries.
func (v *Volume) Tree() []*tree.Node {
	return v.nodes
}

func (v *Volume) Index() *tree.Index {
	return v.index
}

// Lookup returns the record of path.
func (v *Volume) Lookup(path string) (tree.PathRecord, error) {
	rec, ok := v.index.Lookup(path)
	if !ok {
		return tree.PathRecord{}, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return rec, nil
}

// lookupFile is Lookup restricted to files.
func (v *Volume) lookupFile(path string) (tree.PathRecord, error) {
	rec, err := v.Lookup(path)
	if err != nil {
		return rec, err
	}
	if rec.IsDir() {
		return rec, fmt.Errorf("%w: %s is a directory", ErrNotAFile, path)
	}
	return rec, nil
}

func (v *Volume) SuperblockReport() report.Superblock {
	return report.Superblock{
		Image:          v.name,
		ImageSize:      v.src.Size(),
		SuperblockSize: v.sbSize,
		FieldSize:      disk.IntSize,
		BlockSize:      v.sb.BlockSize,
		FATSize:        v.sb.FATSize,
		RootCapacity:   v.sb.RootCapacity,
		DataOffset:     v.layout.DataOffset,
		DataBlocks:     v.blocks.Blocks(),
	}
}

func (v *Volume) ChainTableReport() report.ChainTable {
	return report.ChainTable{
		Offset:     v.layout.ChainOffset,
		Size:       v.sb.FATSize,
		RecordSize: disk.ChainRecordSize,
		Entries:    v.table,
	}
}

func (v *Volume) DirectoryReport() report.Directory {
	return report.Directory{
		Offset:     v.layout.RootOffset,
		Capacity:   v.sb.RootCapacity,
		NameSize:   disk.NameSize,
		BlockSize:  disk.IntSize,
		AttrSize:   disk.IntSize,
		RecordSize: disk.RecordSize,
		Entries:    v.root,
	}
}

// Search returns the paths of the entries whose name contains substr.
func (v *Volume) Search(substr string) []string {
	return v.index.Search(substr)
}

func (v *Volume) SearchReport(substr string) report.Search {
	return report.Search{Query: substr, Paths: v.Search(substr)}
}

func (v *Volume) FileMapReport() report.FileMap {
	return report.FileMap{Records: v.index.Records()}
}

// SaveFile writes the content of the file at path to w and returns the
// number of bytes written.
func (v *Volume) SaveFile(path string, w io.Writer) (int64, error) {
	rec, err := v.lookupFile(path)
	if err != nil {
		return 0, err
	}

	r, err := v.OpenContent(rec.FirstBlock)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return io.Copy(w, r)
}

// ReadTextFile returns the content of the file at path.
func (v *Volume) ReadTextFile(path string) ([]byte, error) {
	rec, err := v.lookupFile(path)
	if err != nil {
		return nil, err
	}

	data, err := v.ReadContent(rec.FirstBlock)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
