// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"fmt"

	"github.com/suprsokr/go-u8/internal/binio"
)

type nodeKind uint8

const (
	kindFile      nodeKind = 0
	kindDirectory nodeKind = 1
)

// rawNode is a 12-byte node record as stored on disk. The meaning of A and B
// depends on the kind byte in the top of Info.
type rawNode struct {
	Info uint32 // Kind << 24 | name table offset
	A    uint32 // File: data offset. Directory: parent node index
	B    uint32 // File: payload length. Directory: end-bound
}

// dirFields are the trailing fields of a directory node.
type dirFields struct {
	parent uint32 // Index of the enclosing directory's node
	end    uint32 // One past the last node of this directory's subtree
}

// fileFields are the trailing fields of a file node.
type fileFields struct {
	dataOffset uint32 // Absolute offset of the payload
	length     uint32
}

// nodeDescriptor is a decoded node record. Only the field group selected by
// kind is meaningful.
type nodeDescriptor struct {
	kind       nodeKind
	nameOffset uint32
	dir        dirFields
	file       fileFields
}

// decodeNode interprets a raw record. Any nonzero kind byte is a directory.
func decodeNode(raw rawNode) nodeDescriptor {
	n := nodeDescriptor{nameOffset: raw.Info & nameOffsetMask}
	if raw.Info>>kindShift != 0 {
		n.kind = kindDirectory
		n.dir = dirFields{parent: raw.A, end: raw.B}
	} else {
		n.kind = kindFile
		n.file = fileFields{dataOffset: raw.A, length: raw.B}
	}
	return n
}

// encodeNode packs a descriptor into its on-disk record.
func encodeNode(n nodeDescriptor) (rawNode, error) {
	if n.nameOffset > nameOffsetMask {
		return rawNode{}, fmt.Errorf("%w: name offset 0x%X exceeds 24 bits", ErrStructure, n.nameOffset)
	}
	raw := rawNode{Info: uint32(n.kind)<<kindShift | n.nameOffset&nameOffsetMask}
	switch n.kind {
	case kindDirectory:
		raw.A, raw.B = n.dir.parent, n.dir.end
	case kindFile:
		raw.A, raw.B = n.file.dataOffset, n.file.length
	default:
		return rawNode{}, fmt.Errorf("%w: unknown node kind %d", ErrStructure, n.kind)
	}
	return raw, nil
}

func readRawNode(r *binio.Reader) rawNode {
	var raw rawNode
	raw.Info = r.Uint32()
	raw.A = r.Uint32()
	raw.B = r.Uint32()
	return raw
}

func writeRawNode(w *binio.Writer, raw rawNode) {
	w.Uint32(raw.Info)
	w.Uint32(raw.A)
	w.Uint32(raw.B)
}
