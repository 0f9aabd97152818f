package tree_test

import (
	"fmt"
	"testing"

	"github.com/ostafen/fatscope/internal/disk"
	"github.com/ostafen/fatscope/internal/imagetest"
	"github.com/ostafen/fatscope/internal/tree"
	"github.com/stretchr/testify/require"
)

// open decodes img the way a volume does and returns the root entries with
// a block source over the data region.
func open(t *testing.T, img *imagetest.Image) ([]disk.DirectoryEntry, *disk.BlockReader) {
	t.Helper()

	data := img.Bytes()
	r := img.Reader()

	sb, err := disk.ReadSuperblock(r, disk.SuperblockSize)
	require.NoError(t, err)

	l := disk.NewLayout(disk.SuperblockSize, sb)
	table, err := disk.ReadChainTable(r, l.ChainOffset, int64(sb.FATSize))
	require.NoError(t, err)

	root, err := disk.ReadRecords(r, l.RootOffset, int(sb.RootCapacity))
	require.NoError(t, err)
	return root, disk.NewBlockReader(r, l, table, int64(len(data)))
}

func build(t *testing.T, img *imagetest.Image) ([]*tree.Node, error) {
	root, src := open(t, img)
	return tree.NewBuilder(src, nil).Build(root)
}

func paths(records []tree.PathRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func TestFlattenNestedFile(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: 2 * disk.RecordSize,
		Chain:     imagetest.Link(2, nil),
		Root:      []imagetest.Record{imagetest.Dir("docs", 1)},
		Blocks: [][]byte{
			[]byte("unused"),
			imagetest.EncodeRecords(imagetest.File("a.txt", 0)),
		},
	}

	nodes, err := build(t, img)
	require.NoError(t, err)

	records := tree.Flatten(nodes)
	require.Equal(t, []tree.PathRecord{
		{Name: "docs", Path: "/docs", FirstBlock: 1, Attr: 1, Kind: disk.KindDirectory},
		{Name: "a.txt", Path: "/docs/a.txt", FirstBlock: 0, Attr: 0, Kind: disk.KindFile},
	}, records)
	require.Equal(t, 0, records[0].Depth())
	require.Equal(t, 1, records[1].Depth())
}

func TestBuildDirectorySpanningBlocks(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: 2 * disk.RecordSize,
		Chain:     imagetest.Link(6, map[int32]int32{1: 3, 3: 4, 4: -1}),
		Root: []imagetest.Record{
			imagetest.File("boot", 0),
			imagetest.Dir("etc", 1),
			imagetest.File("zz", 5),
		},
		Blocks: [][]byte{
			nil,
			imagetest.EncodeRecords(imagetest.File("a", 2), imagetest.File("b", 2)),
			nil,
			// the empty name ends this batch only
			imagetest.EncodeRecords(imagetest.Record{}, imagetest.File("hidden", 2)),
			imagetest.EncodeRecords(imagetest.Dir("sub", 5), imagetest.File("c", 2)),
			imagetest.EncodeRecords(imagetest.File("leaf", 2)),
		},
	}

	nodes, err := build(t, img)
	require.NoError(t, err)
	require.Equal(t, []string{
		"/boot",
		"/etc",
		"/etc/a",
		"/etc/b",
		"/etc/sub",
		"/etc/sub/leaf",
		"/etc/c",
		"/zz",
	}, paths(tree.Flatten(nodes)))
}

func TestBuildEmptyDirectory(t *testing.T) {
	for _, first := range disk.Terminators() {
		img := &imagetest.Image{
			BlockSize: disk.RecordSize,
			Chain:     imagetest.Link(1, nil),
			Root:      []imagetest.Record{imagetest.Dir("empty", first)},
			Blocks:    [][]byte{imagetest.EncodeRecords(imagetest.File("x", 0))},
		}

		nodes, err := build(t, img)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Empty(t, nodes[0].Children)
	}
}

func TestBuildCycle(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: disk.RecordSize,
		Chain:     imagetest.Link(6, map[int32]int32{3: 5, 5: 3}),
		Root:      []imagetest.Record{imagetest.Dir("loop", 3)},
		Blocks:    make([][]byte, 6),
	}

	_, err := build(t, img)
	require.ErrorIs(t, err, disk.ErrCycleDetected)
}

func TestBuildAncestorLoop(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: disk.RecordSize,
		Chain:     imagetest.Link(3, nil),
		Root:      []imagetest.Record{imagetest.Dir("a", 1)},
		Blocks: [][]byte{
			nil,
			imagetest.EncodeRecords(imagetest.Dir("b", 2)),
			imagetest.EncodeRecords(imagetest.Dir("back", 1)),
		},
	}

	_, err := build(t, img)
	require.ErrorIs(t, err, disk.ErrCycleDetected)
}

func TestBuildSharedBlockTolerated(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: disk.RecordSize,
		Chain:     imagetest.Link(3, nil),
		Root: []imagetest.Record{
			imagetest.Dir("a", 2),
			imagetest.Dir("b", 2),
		},
		Blocks: [][]byte{nil, nil, imagetest.EncodeRecords(imagetest.File("f", 1))},
	}

	nodes, err := build(t, img)
	require.NoError(t, err)
	require.Equal(t, []string{"/a", "/a/f", "/b", "/b/f"}, paths(tree.Flatten(nodes)))
}

func TestBuildOutOfRange(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: disk.RecordSize,
		Chain:     imagetest.Link(4, nil),
		Root:      []imagetest.Record{imagetest.Dir("far", 3)},
		// block 3 is described by the table but not stored in the image
		Blocks: make([][]byte, 2),
	}

	_, err := build(t, img)
	require.ErrorIs(t, err, disk.ErrBlockOutOfRange)

	img.Root = []imagetest.Record{imagetest.Dir("past", 9)}
	_, err = build(t, img)
	require.ErrorIs(t, err, disk.ErrBlockOutOfRange)
}

func TestBuildDeepNesting(t *testing.T) {
	const depth = 2000

	img := &imagetest.Image{
		BlockSize: disk.RecordSize,
		Chain:     imagetest.Link(depth+1, nil),
		Root:      []imagetest.Record{imagetest.Dir("d", 1)},
		Blocks:    make([][]byte, depth+1),
	}
	for b := int32(1); b < depth; b++ {
		img.Blocks[b] = imagetest.EncodeRecords(imagetest.Dir("d", b+1))
	}
	img.Blocks[depth] = imagetest.EncodeRecords(imagetest.File("bottom", 0))

	nodes, err := build(t, img)
	require.NoError(t, err)

	records := tree.Flatten(nodes)
	require.Len(t, records, depth+1)
	require.Equal(t, depth, records[depth].Depth())
	require.Equal(t, "bottom", records[depth].Name)
}

func TestIndex(t *testing.T) {
	img := &imagetest.Image{
		BlockSize: 3 * disk.RecordSize,
		Chain:     imagetest.Link(3, nil),
		Root: []imagetest.Record{
			imagetest.File("notes.txt", 0),
			imagetest.Dir("src", 1),
			imagetest.Dir("dup", 2),
			imagetest.Dir("dup", 1),
		},
		Blocks: [][]byte{
			nil,
			imagetest.EncodeRecords(
				imagetest.File("main.go", 0),
				imagetest.File("todo.txt", 0),
				imagetest.Dir("txt", -1),
			),
			imagetest.EncodeRecords(imagetest.File("first", 0)),
		},
	}

	nodes, err := build(t, img)
	require.NoError(t, err)

	ix := tree.NewIndex(nodes)
	require.Equal(t, 11, ix.Len())

	rec, ok := ix.Lookup("/src/todo.txt")
	require.True(t, ok)
	require.Equal(t, "todo.txt", rec.Name)
	require.Equal(t, disk.KindFile, rec.Kind)

	_, ok = ix.Lookup("/src/missing")
	require.False(t, ok)

	dup, ok := ix.Lookup("/dup")
	require.True(t, ok)
	require.Equal(t, int32(2), dup.FirstBlock)

	require.Equal(t, []string{"/notes.txt", "/src/todo.txt", "/src/txt", "/dup/todo.txt", "/dup/txt"},
		ix.Search("txt"))
	require.Empty(t, ix.Search("nothing"))

	var text []string
	for _, r := range ix.TextFiles() {
		text = append(text, r.Path)
	}
	require.Equal(t, []string{"/notes.txt", "/src/todo.txt", "/dup/todo.txt"}, text)
}

func TestFlattenOrderIsPreOrder(t *testing.T) {
	leaf := func(name string) *tree.Node {
		return &tree.Node{DirectoryEntry: disk.DirectoryEntry{Name: name}}
	}
	dir := func(name string, children ...*tree.Node) *tree.Node {
		return &tree.Node{
			DirectoryEntry: disk.DirectoryEntry{Name: name, Attr: 1, Kind: disk.KindDirectory},
			Children:       children,
		}
	}

	nodes := []*tree.Node{
		dir("a", leaf("1"), dir("b", leaf("2")), leaf("3")),
		leaf("4"),
	}

	var want []string
	for _, p := range []string{"a", "a/1", "a/b", "a/b/2", "a/3", "4"} {
		want = append(want, fmt.Sprintf("/%s", p))
	}
	require.Equal(t, want, paths(tree.Flatten(nodes)))
}

// sharedLevels returns an image where each of the first levels blocks holds
// two directories that both start at the next block, so the hierarchy
// doubles at every level.
func sharedLevels(levels int) *imagetest.Image {
	blocks := make([][]byte, levels+1)
	for i := range levels {
		next := int32(i + 2)
		blocks[i] = imagetest.EncodeRecords(imagetest.Dir("l", next), imagetest.Dir("r", next))
	}
	// block 0 is unused so that every directory starts past the terminator.
	blocks = append([][]byte{nil}, blocks...)
	blocks[len(blocks)-1] = imagetest.EncodeRecords(imagetest.File("f", 0))

	return &imagetest.Image{
		BlockSize: 2 * disk.RecordSize,
		Chain:     imagetest.Link(len(blocks), nil),
		Root:      []imagetest.Record{imagetest.Dir("top", 1)},
		Blocks:    blocks,
	}
}

func TestBuildEntryLimit(t *testing.T) {
	img := sharedLevels(4)
	root, src := open(t, img)

	nodes, err := tree.NewBuilder(src, nil).Build(root)
	require.NoError(t, err)
	// 1 + 2 + 4 + 8 + 16 directories, then one file under each of the 16.
	require.Len(t, tree.Flatten(nodes), 1+2+4+8+16+16)

	_, err = tree.NewBuilder(src, nil).WithMaxEntries(20).Build(root)
	require.ErrorIs(t, err, tree.ErrTooManyEntries)

	_, err = tree.NewBuilder(src, nil).WithMaxEntries(1).Build(append(root, root...))
	require.ErrorIs(t, err, tree.ErrTooManyEntries)
}
