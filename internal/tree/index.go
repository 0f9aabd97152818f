package tree

import (
	"strings"

	"github.com/ostafen/fatscope/internal/disk"
)

// Separator of path components. Paths are rooted at Separator.
const Separator = "/"

// PathRecord is the flattened form of a Node.
type PathRecord struct {
	Name       string    `json:"name" yaml:"name"`
	Path       string    `json:"path" yaml:"path"`
	FirstBlock int32     `json:"first_block" yaml:"first_block"`
	Attr       int32     `json:"attr" yaml:"attr"`
	Kind       disk.Kind `json:"kind" yaml:"kind"`
}

// Depth is the number of directories above the record.
func (r PathRecord) Depth() int {
	return strings.Count(r.Path, Separator) - 1
}

func (r PathRecord) IsDir() bool {
	return r.Kind == disk.KindDirectory
}

// Flatten walks the hierarchy in pre-order, parents before their children,
// siblings in on-disk order. The path of a node is its parent path, a
// separator and its name.
func Flatten(nodes []*Node) []PathRecord {
	type item struct {
		node   *Node
		prefix string
	}

	stack := make([]item, 0, len(nodes))
	pushAll := func(children []*Node, prefix string) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: children[i], prefix: prefix})
		}
	}
	pushAll(nodes, Separator)

	var records []PathRecord
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := it.node
		path := it.prefix + n.Name
		records = append(records, PathRecord{
			Name:       n.Name,
			Path:       path,
			FirstBlock: n.FirstBlock,
			Attr:       n.Attr,
			Kind:       n.Kind,
		})
		if n.IsDir() {
			pushAll(n.Children, path+Separator)
		}
	}
	return records
}

// Index answers lookups over the flattened records.
type Index struct {
	records []PathRecord
	byPath  map[string]int
}

func NewIndex(nodes []*Node) *Index {
	records := Flatten(nodes)

	byPath := make(map[string]int, len(records))
	for i, r := range records {
		// the first record wins, as a lookup by position would
		if _, ok := byPath[r.Path]; !ok {
			byPath[r.Path] = i
		}
	}
	return &Index{records: records, byPath: byPath}
}

// Records returns the records in traversal order.
func (ix *Index) Records() []PathRecord {
	return ix.records
}

func (ix *Index) Len() int {
	return len(ix.records)
}

// Lookup returns the record with the given path.
func (ix *Index) Lookup(path string) (PathRecord, bool) {
	i, ok := ix.byPath[path]
	if !ok {
		return PathRecord{}, false
	}
	return ix.records[i], true
}

// Search returns, in traversal order, the paths of the records whose name
// contains substr.
func (ix *Index) Search(substr string) []string {
	var paths []string
	for _, r := range ix.records {
		if strings.Contains(r.Name, substr) {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// TextFiles returns the file records whose path contains ".txt".
func (ix *Index) TextFiles() []PathRecord {
	var files []PathRecord
	for _, r := range ix.records {
		if !r.IsDir() && strings.Contains(r.Path, ".txt") {
			files = append(files, r)
		}
	}
	return files
}
