// Package tree rebuilds the directory hierarchy of an image and flattens it
// into path records.
package tree

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ostafen/fatscope/internal/disk"
)

// Node is a directory entry together with its children. Only directories
// have children; their order is the on-disk order.
type Node struct {
	disk.DirectoryEntry
	Children []*Node
}

// BlockSource is what the builder needs from an image: the chain table and
// a way to decode the records held by one block.
type BlockSource interface {
	ChainTable() disk.ChainTable
	ReadRecordBlock(b int32) ([]disk.DirectoryEntry, error)
}

// DefaultMaxEntries is the default limit on the number of nodes of a
// hierarchy.
const DefaultMaxEntries = 1 << 20

// ErrTooManyEntries reports a hierarchy with more nodes than the builder
// accepts. Directories may share blocks, so a small image can describe a
// tree that grows exponentially with depth.
var ErrTooManyEntries = errors.New("too many directory entries")

type Builder struct {
	src        BlockSource
	logger     *slog.Logger
	maxEntries int
}

func NewBuilder(src BlockSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{src: src, logger: logger, maxEntries: DefaultMaxEntries}
}

// WithMaxEntries limits the number of nodes Build creates. A non positive
// n restores DefaultMaxEntries.
func (b *Builder) WithMaxEntries(n int) *Builder {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	b.maxEntries = n
	return b
}

// ancestor is a link of the list of first blocks from a directory up to
// the root.
type ancestor struct {
	block  int32
	parent *ancestor
}

func (a *ancestor) contains(b int32) bool {
	for ; a != nil; a = a.parent {
		if a.block == b {
			return true
		}
	}
	return false
}

type pending struct {
	node      *Node
	ancestors *ancestor
}

// Build expands the root entries into the full hierarchy.
//
// Directories are expanded from an explicit stack, so nesting depth is
// bounded by memory rather than by the call stack. A directory whose first
// block is also the first block of one of its ancestors makes the hierarchy
// infinite and is reported as disk.ErrCycleDetected. Build fails with
// ErrTooManyEntries once the hierarchy exceeds the entry limit.
func (b *Builder) Build(root []disk.DirectoryEntry) ([]*Node, error) {
	if len(root) > b.maxEntries {
		return nil, fmt.Errorf("%w: root directory has %d entries, limit is %d",
			ErrTooManyEntries, len(root), b.maxEntries)
	}

	total := len(root)
	nodes := make([]*Node, len(root))
	stack := make([]pending, 0, len(root))
	for i, e := range root {
		nodes[i] = &Node{DirectoryEntry: e}
		if e.IsDir() {
			stack = append(stack, pending{node: nodes[i]})
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := p.node
		if disk.IsTerminator(dir.FirstBlock) {
			b.logger.Debug("empty directory", "name", dir.Name, "first_block", dir.FirstBlock)
			continue
		}
		if p.ancestors.contains(dir.FirstBlock) {
			return nil, fmt.Errorf("%w: directory %q at block %d contains one of its ancestors",
				disk.ErrCycleDetected, dir.Name, dir.FirstBlock)
		}

		children, err := b.readDir(dir.DirectoryEntry)
		if err != nil {
			return nil, err
		}
		total += len(children)
		if total > b.maxEntries {
			b.logger.Warn("hierarchy exceeds entry limit",
				"directory", dir.Name,
				"first_block", dir.FirstBlock,
				"limit", b.maxEntries,
			)
			return nil, fmt.Errorf("%w: expanding directory %q exceeds the limit of %d entries",
				ErrTooManyEntries, dir.Name, b.maxEntries)
		}

		anc := &ancestor{block: dir.FirstBlock, parent: p.ancestors}
		dir.Children = make([]*Node, len(children))
		for i, e := range children {
			child := &Node{DirectoryEntry: e}
			dir.Children[i] = child
			if e.IsDir() {
				stack = append(stack, pending{node: child, ancestors: anc})
			}
		}
	}
	return nodes, nil
}

// readDir collects the records of every block in the chain of dir.
func (b *Builder) readDir(dir disk.DirectoryEntry) ([]disk.DirectoryEntry, error) {
	var (
		entries []disk.DirectoryEntry
		blocks  int
	)
	err := b.src.ChainTable().Walk(dir.FirstBlock, func(block int32) error {
		batch, err := b.src.ReadRecordBlock(block)
		if err != nil {
			return err
		}
		blocks++
		entries = append(entries, batch...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expanding directory %q: %w", dir.Name, err)
	}

	b.logger.Debug("expanded directory",
		"name", dir.Name,
		"first_block", dir.FirstBlock,
		"blocks", blocks,
		"entries", len(entries),
	)
	return entries, nil
}
