// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

//go:build linux
// +build linux

package fuse

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/ostafen/fatscope/internal/tree"
	"github.com/ostafen/fatscope/pkg/reader"
)

// Volume is the content a mount serves.
type Volume interface {
	Tree() []*tree.Node
	OpenContent(start int32) (*reader.MultiReadSeeker, error)
}

// ImageFS exposes the directory tree of a volume as a read-only
// filesystem. Nodes are built once, when the filesystem is created.
type ImageFS struct {
	root   *Dir
	logger *slog.Logger
}

func NewImageFS(v Volume, logger *slog.Logger) *ImageFS {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ifs := &ImageFS{logger: logger}

	var inode uint64 = 1
	ifs.root = &Dir{inode: inode, entries: map[string]fs.Node{}}

	type frame struct {
		dir   *Dir
		nodes []*tree.Node
	}
	stack := []frame{{ifs.root, v.Tree()}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range top.nodes {
			if _, dup := top.dir.entries[n.Name]; dup {
				continue
			}
			inode++

			if n.IsDir() {
				d := &Dir{inode: inode, entries: map[string]fs.Node{}}
				top.dir.add(n.Name, d, fuse.DT_Dir)
				stack = append(stack, frame{d, n.Children})
				continue
			}
			top.dir.add(n.Name, &File{
				inode:  inode,
				start:  n.FirstBlock,
				v:      v,
				logger: logger,
			}, fuse.DT_File)
		}
	}
	return ifs
}

func (ifs *ImageFS) Root() (fs.Node, error) {
	return ifs.root, nil
}

type Dir struct {
	inode   uint64
	entries map[string]fs.Node
	dirents []fuse.Dirent
}

func (d *Dir) add(name string, n fs.Node, typ fuse.DirentType) {
	d.entries[name] = n

	var inode uint64
	switch n := n.(type) {
	case *Dir:
		inode = n.inode
	case *File:
		inode = n.inode
	}
	d.dirents = append(d.dirents, fuse.Dirent{Inode: inode, Name: name, Type: typ})
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.inode
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if n, ok := d.entries[name]; ok {
		return n, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirents := make([]fuse.Dirent, len(d.dirents))
	copy(dirents, d.dirents)
	sort.Slice(dirents, func(i, j int) bool {
		return dirents[i].Name < dirents[j].Name
	})
	return dirents, nil
}

// File streams the content of a block chain. The chain is resolved on
// first access.
type File struct {
	inode  uint64
	start  int32
	v      Volume
	logger *slog.Logger

	once sync.Once
	r    *reader.MultiReadSeeker
	err  error
}

func (f *File) content() (*reader.MultiReadSeeker, error) {
	f.once.Do(func() {
		f.r, f.err = f.v.OpenContent(f.start)
		if f.err != nil {
			f.logger.Error("unable to resolve file content", "first_block", f.start, "err", f.err)
		}
	})
	return f.r, f.err
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.inode
	a.Mode = 0444

	r, err := f.content()
	if err != nil {
		return fuse.Errno(syscall.EIO)
	}
	a.Size = uint64(r.Size())
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	r, err := f.content()
	if err != nil {
		return fuse.Errno(syscall.EIO)
	}

	if req.Offset >= r.Size() {
		resp.Data = []byte{}
		return nil
	}
	size := min(int64(req.Size), r.Size()-req.Offset)

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		f.logger.Error("read failed", "first_block", f.start, "offset", req.Offset, "err", err)
		return fuse.Errno(syscall.EIO)
	}
	resp.Data = buf[:n]
	return nil
}
