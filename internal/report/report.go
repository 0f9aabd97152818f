// Package report holds the human and machine readable views of a volume.
package report

import (
	"github.com/ostafen/fatscope/internal/disk"
	"github.com/ostafen/fatscope/internal/tree"
)

// Superblock describes the header of an image.
type Superblock struct {
	Image          string `json:"image" yaml:"image"`
	ImageSize      int64  `json:"image_size" yaml:"image_size"`
	SuperblockSize int    `json:"superblock_size" yaml:"superblock_size"`
	FieldSize      int    `json:"field_size" yaml:"field_size"`
	BlockSize      int32  `json:"block_size" yaml:"block_size"`
	FATSize        int32  `json:"fat_size" yaml:"fat_size"`
	RootCapacity   int32  `json:"root_capacity" yaml:"root_capacity"`
	DataOffset     int64  `json:"data_offset" yaml:"data_offset"`
	DataBlocks     int64  `json:"data_blocks" yaml:"data_blocks"`
}

// ChainTable describes the chain table.
type ChainTable struct {
	Offset     int64             `json:"offset" yaml:"offset"`
	Size       int32             `json:"size" yaml:"size"`
	RecordSize int               `json:"record_size" yaml:"record_size"`
	Entries    []disk.ChainEntry `json:"entries" yaml:"entries"`
}

// Directory describes the root directory.
type Directory struct {
	Offset     int64                 `json:"offset" yaml:"offset"`
	Capacity   int32                 `json:"capacity" yaml:"capacity"`
	NameSize   int                   `json:"name_size" yaml:"name_size"`
	BlockSize  int                   `json:"first_block_size" yaml:"first_block_size"`
	AttrSize   int                   `json:"attr_size" yaml:"attr_size"`
	RecordSize int                   `json:"record_size" yaml:"record_size"`
	Entries    []disk.DirectoryEntry `json:"entries" yaml:"entries"`
}

// Search is the result of a name search.
type Search struct {
	Query string   `json:"query" yaml:"query"`
	Paths []string `json:"paths" yaml:"paths"`
}

// FileMap lists every entry of the hierarchy in traversal order.
type FileMap struct {
	Records []tree.PathRecord `json:"records" yaml:"records"`
}
