// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/suprsokr/go-u8/internal/binio"
)

// treeBuilder reconstructs a directory tree from the node section.
type treeBuilder struct {
	br       *binio.Reader
	size     int64 // Stream length
	nameBase int64
	nameSize int64
	nodes    []nodeDescriptor
	names    map[uint32]string
}

// decodeTree reads a whole archive from r and returns its root directory.
func decodeTree(r io.ReadSeeker, cfg *config) (*Directory, int, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("measure stream: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek to header: %w", err)
	}

	header, err := readArchiveHeader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	nodeOffset := int64(header.NodeOffset)
	if nodeOffset+nodeSize > size {
		return nil, 0, fmt.Errorf("%w: node section at 0x%X beyond end of stream", ErrStructure, nodeOffset)
	}

	b := &treeBuilder{
		br:    binio.NewReader(r, binary.BigEndian, cfg.codepage),
		size:  size,
		names: make(map[uint32]string),
	}

	// The root's end-bound is the node count
	b.br.Seek(nodeOffset)
	root := decodeNode(readRawNode(b.br))
	if err := b.br.Err(); err != nil {
		return nil, 0, fmt.Errorf("read root node: %w", err)
	}
	if root.kind != kindDirectory {
		return nil, 0, fmt.Errorf("%w: root node is not a directory", ErrStructure)
	}
	count := int64(root.dir.end)
	if count == 0 {
		return nil, 0, fmt.Errorf("%w: root end-bound is zero", ErrStructure)
	}
	if limit := cfg.nodeLimit(); limit > 0 && count > int64(limit) {
		return nil, 0, fmt.Errorf("%w: %d nodes exceeds limit of %d", ErrStructure, count, limit)
	}

	b.nameBase = nodeOffset + count*nodeSize
	b.nameSize = int64(header.TableSize) - count*nodeSize
	if b.nameSize < 0 || b.nameBase+b.nameSize > size {
		return nil, 0, fmt.Errorf("%w: %d nodes and %d table bytes do not fit in %d byte stream",
			ErrStructure, count, header.TableSize, size)
	}

	b.nodes = make([]nodeDescriptor, count)
	b.nodes[0] = root
	for i := int64(1); i < count; i++ {
		b.nodes[i] = decodeNode(readRawNode(b.br))
	}
	if err := b.br.Err(); err != nil {
		return nil, 0, fmt.Errorf("read node records: %w", err)
	}

	dir, err := b.build()
	if err != nil {
		return nil, 0, err
	}
	return dir, int(count), nil
}

// build walks the node array in order, tracking open directories on a stack.
// A directory closes once the node before its end-bound has been placed.
func (b *treeBuilder) build() (*Directory, error) {
	rootName, err := b.name(0)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(b.nodes))
	root := NewDirectory(rootName)
	entries[0] = root
	stack := []uint32{0}

	for i := uint32(1); i < uint32(len(b.nodes)); i++ {
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: node %d lies outside the root directory", ErrStructure, i)
		}
		top := stack[len(stack)-1]
		n := b.nodes[i]

		name, err := b.name(i)
		if err != nil {
			return nil, err
		}

		var e Entry
		switch n.kind {
		case kindDirectory:
			if err := b.checkDirectory(i, top); err != nil {
				return nil, err
			}
			e = NewDirectory(name)
			stack = append(stack, i)
		case kindFile:
			data, err := b.payload(i)
			if err != nil {
				return nil, err
			}
			e = &File{name: name, data: data}
		}

		parent := entries[top].(*Directory)
		if err := parent.Add(e); err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrStructure, i, err)
		}
		entries[i] = e

		for len(stack) > 0 && i == b.nodes[stack[len(stack)-1]].dir.end-1 {
			stack = stack[:len(stack)-1]
		}
	}

	return root, nil
}

// checkDirectory validates the trailing fields of directory node i, which
// must be enclosed by the open directory at index top.
func (b *treeBuilder) checkDirectory(i, top uint32) error {
	n := b.nodes[i].dir
	switch {
	case n.parent >= i:
		return fmt.Errorf("%w: node %d: parent index %d out of range", ErrStructure, i, n.parent)
	case b.nodes[n.parent].kind != kindDirectory:
		return fmt.Errorf("%w: node %d: parent index %d is not a directory", ErrStructure, i, n.parent)
	case n.parent != top:
		return fmt.Errorf("%w: node %d: parent index %d, enclosing directory is %d", ErrStructure, i, n.parent, top)
	case n.end <= i || n.end > b.nodes[top].dir.end:
		return fmt.Errorf("%w: node %d: end-bound %d outside (%d, %d]", ErrStructure, i, n.end, i, b.nodes[top].dir.end)
	}
	return nil
}

// name resolves the name of node i from the name table.
func (b *treeBuilder) name(i uint32) (string, error) {
	off := b.nodes[i].nameOffset
	if s, ok := b.names[off]; ok {
		return s, nil
	}
	if int64(off) >= b.nameSize {
		return "", fmt.Errorf("%w: node %d: name offset 0x%X outside %d byte name table", ErrStructure, i, off, b.nameSize)
	}

	b.br.Seek(b.nameBase + int64(off))
	s := b.br.CString(int(b.nameSize - int64(off)))
	if err := b.br.Err(); err != nil {
		if errors.Is(err, binio.ErrUnterminated) {
			return "", fmt.Errorf("%w: node %d: %w", ErrStructure, i, err)
		}
		return "", fmt.Errorf("read name of node %d: %w", i, err)
	}
	b.names[off] = s
	return s, nil
}

// payload reads the data of file node i.
func (b *treeBuilder) payload(i uint32) ([]byte, error) {
	f := b.nodes[i].file
	if int64(f.dataOffset)+int64(f.length) > b.size {
		return nil, fmt.Errorf("%w: node %d: data 0x%X+%d beyond end of stream", ErrStructure, i, f.dataOffset, f.length)
	}

	data := make([]byte, f.length)
	b.br.Seek(int64(f.dataOffset))
	b.br.Data(data)
	if err := b.br.Err(); err != nil {
		return nil, fmt.Errorf("read data of node %d: %w", i, err)
	}
	return data, nil
}
