// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"

	"github.com/suprsokr/go-u8/internal/binio"
)

// flatNode is one entry in encode order.
type flatNode struct {
	entry  Entry
	parent int // Directories only
	end    int // Directories only
}

// flattener linearizes a tree into physical node order.
type flattener struct {
	nodes []flatNode
}

// visit appends d, then its files, then recurses into its subdirectories,
// each group in insertion order. The end-bound is fixed once the subtree
// has been emitted.
func (f *flattener) visit(d *Directory, parent int) {
	self := len(f.nodes)
	f.nodes = append(f.nodes, flatNode{entry: d, parent: parent})

	var subdirs []*Directory
	for _, child := range d.children {
		switch c := child.(type) {
		case *File:
			f.nodes = append(f.nodes, flatNode{entry: c})
		case *Directory:
			subdirs = append(subdirs, c)
		}
	}
	for _, sub := range subdirs {
		f.visit(sub, self)
	}

	f.nodes[self].end = len(f.nodes)
}

// nameTable stores each distinct name once, at the offset of its first use.
type nameTable struct {
	buf     []byte
	offsets map[string]uint32
	enc     *encoding.Encoder
}

func newNameTable(cp encoding.Encoding) *nameTable {
	return &nameTable{offsets: make(map[string]uint32), enc: cp.NewEncoder()}
}

func (t *nameTable) add(name string) (uint32, error) {
	if off, ok := t.offsets[name]; ok {
		return off, nil
	}
	off := uint32(len(t.buf))
	buf, err := binio.AppendCString(t.buf, name, t.enc)
	if err != nil {
		return 0, fmt.Errorf("%w: name: %w", ErrData, err)
	}
	t.buf = buf
	t.offsets[name] = off
	return off, nil
}

// encodeStats summarizes an encoded archive for logging.
type encodeStats struct {
	nodes     int
	nameBytes int
	dataBytes int
	deduped   int
}

// encodeTree lays out the archive rooted at root. The header is written as a
// placeholder and patched once the section offsets are known.
func encodeTree(root *Directory, cfg *config) ([]byte, encodeStats, error) {
	if root == nil {
		return nil, encodeStats{}, fmt.Errorf("%w: archive has no root", ErrStructure)
	}

	f := &flattener{}
	f.visit(root, 0)

	names := newNameTable(cfg.codepage)
	descs := make([]nodeDescriptor, len(f.nodes))
	for i, n := range f.nodes {
		off, err := names.add(n.entry.Name())
		if err != nil {
			return nil, encodeStats{}, fmt.Errorf("node %d (%q): %w", i, EntryPath(n.entry), err)
		}
		descs[i].nameOffset = off

		switch e := n.entry.(type) {
		case *Directory:
			descs[i].kind = kindDirectory
			descs[i].dir = dirFields{parent: uint32(n.parent), end: uint32(n.end)}
		case *File:
			if !e.HasData() {
				return nil, encodeStats{}, fmt.Errorf("%w: file %q has no payload", ErrData, EntryPath(e))
			}
			descs[i].kind = kindFile
		}
	}

	tableSize := int64(len(descs))*nodeSize + int64(len(names.buf))
	data := newDataSection(binio.Align(nodeSectionOffset+tableSize, dataAlignment))
	for i, n := range f.nodes {
		if file, ok := n.entry.(*File); ok {
			off := data.add(file.data)
			descs[i].file = fileFields{dataOffset: uint32(off), length: uint32(len(file.data))}
		}
	}
	if total := data.base + int64(len(data.buf)); total > math.MaxUint32 {
		return nil, encodeStats{}, fmt.Errorf("%w: archive size %d exceeds 32-bit offsets", ErrStructure, total)
	}

	out := &binio.Buffer{}
	bw := binio.NewWriter(out, binary.BigEndian)
	bw.Data(make([]byte, headerSize))
	for _, d := range descs {
		raw, err := encodeNode(d)
		if err != nil {
			return nil, encodeStats{}, err
		}
		writeRawNode(bw, raw)
	}
	bw.Data(names.buf)
	bw.Pad(dataAlignment, 0)
	bw.Data(data.buf)

	bw.Seek(0)
	if err := bw.Err(); err != nil {
		return nil, encodeStats{}, fmt.Errorf("write sections: %w", err)
	}
	if err := writeArchiveHeader(out, newArchiveHeader(uint32(tableSize), uint32(data.base))); err != nil {
		return nil, encodeStats{}, fmt.Errorf("write header: %w", err)
	}

	stats := encodeStats{
		nodes:     len(descs),
		nameBytes: len(names.buf),
		dataBytes: len(data.buf),
		deduped:   data.deduped,
	}
	return out.Bytes(), stats, nil
}
