// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Archive format constants
const (
	// Identifier at offset 0, big-endian
	u8Magic = 0x55AA382D

	// Header is 32 bytes; the node section conventionally follows it directly
	headerSize        = 0x20
	nodeSectionOffset = headerSize

	// Node record size (3 x uint32)
	nodeSize = 12

	// Name table and every payload are padded to this boundary
	dataAlignment = 32

	// Reserved header bytes are filled with this on encode
	reservedFill = 0xCC

	// Name offsets share a word with the kind byte
	nameOffsetMask = 0x00FFFFFF
	kindShift      = 24
)

// archiveHeader is the fixed 32-byte header.
type archiveHeader struct {
	Magic      uint32   // 0x55AA382D
	NodeOffset uint32   // Offset of the root node record
	TableSize  uint32   // Node records plus name table, unpadded
	DataOffset uint32   // Offset of the first payload
	Reserved   [16]byte // Filled with 0xCC, ignored on read
}

// readArchiveHeader reads the header from r. The identifier is checked before
// anything else is read.
func readArchiveHeader(r io.Reader) (*archiveHeader, error) {
	h := &archiveHeader{}

	if err := binary.Read(r, binary.BigEndian, &h.Magic); err != nil {
		return nil, err
	}
	if h.Magic != u8Magic {
		return nil, fmt.Errorf("%w: identifier 0x%08X", ErrFormat, h.Magic)
	}

	for _, field := range []any{&h.NodeOffset, &h.TableSize, &h.DataOffset, &h.Reserved} {
		if err := binary.Read(r, binary.BigEndian, field); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// writeArchiveHeader writes the header to w.
func writeArchiveHeader(w io.Writer, h *archiveHeader) error {
	for _, field := range []any{h.Magic, h.NodeOffset, h.TableSize, h.DataOffset, h.Reserved} {
		if err := binary.Write(w, binary.BigEndian, field); err != nil {
			return err
		}
	}
	return nil
}

// newArchiveHeader returns a header with the reserved bytes filled.
func newArchiveHeader(tableSize, dataOffset uint32) *archiveHeader {
	h := &archiveHeader{
		Magic:      u8Magic,
		NodeOffset: nodeSectionOffset,
		TableSize:  tableSize,
		DataOffset: dataOffset,
	}
	for i := range h.Reserved {
		h.Reserved[i] = reservedFill
	}
	return h
}
