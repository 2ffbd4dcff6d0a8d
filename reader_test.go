// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Name table used by the hand-built archives below:
// "" @0, "a" @1, "b" @3, "c" @5, "f" @7
const testNames = "\x00a\x00b\x00c\x00f\x00"

func TestDecodeHandBuilt(t *testing.T) {
	t.Parallel()

	t.Run("file after subdirectory", func(t *testing.T) {
		t.Parallel()
		// root{ a{ f }, b } with b written after a's subtree.
		blob := buildBlob(t, []rawNode{
			dirNode(0, 0, 4),
			dirNode(1, 0, 3),
			fileNode(7, 0, 2),
			fileNode(3, 32, 1),
		}, testNames, append(append([]byte{0xAA, 0xBB}, make([]byte, 30)...), 0xCC))

		a := mustDecode(t, blob)
		data, err := a.ReadFile("a/f")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xAA, 0xBB}, data)
		data, err = a.ReadFile("b")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xCC}, data)

		// Re-encoding moves the file ahead of the subdirectory. Names are
		// renumbered in the new order: "" @0, "b" @1, "a" @3, "f" @5.
		nodes := parseNodes(t, mustEncode(t, a))
		require.Len(t, nodes, 4)
		assert.Equal(t, uint32(1), nodes[1].Info)
		assert.Equal(t, dirNode(3, 0, 4), nodes[2])
		assert.Equal(t, uint32(5), nodes[3].Info)
	})

	t.Run("cascading close", func(t *testing.T) {
		t.Parallel()
		// root{ a{ b{ f } }, c{} }: a and b close on the same node.
		blob := buildBlob(t, []rawNode{
			dirNode(0, 0, 5),
			dirNode(1, 0, 4),
			dirNode(3, 1, 4),
			fileNode(7, 0, 0),
			dirNode(5, 0, 5),
		}, testNames, nil)

		a := mustDecode(t, blob)
		c, ok := a.Lookup("c")
		require.True(t, ok)
		assert.Same(t, a.Root(), c.Parent())
		assert.True(t, a.HasFile("a/b/f"))
		assert.Equal(t, 2, a.Root().Len())
	})

	t.Run("nonzero kind byte", func(t *testing.T) {
		t.Parallel()
		root := dirNode(0, 0, 2)
		root.Info = 0xFF<<kindShift | root.Info&nameOffsetMask
		blob := buildBlob(t, []rawNode{root, dirNode(1, 0, 2)}, testNames, nil)

		a := mustDecode(t, blob)
		e, ok := a.Lookup("a")
		require.True(t, ok)
		assert.IsType(t, &Directory{}, e)
	})
}

func TestDecodeStructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []rawNode
		names string
		data  []byte
	}{
		{
			name:  "root is a file",
			nodes: []rawNode{fileNode(0, 0, 0)},
			names: testNames,
		},
		{
			name:  "root end-bound zero",
			nodes: []rawNode{dirNode(0, 0, 0)},
			names: testNames,
		},
		{
			name:  "node count beyond stream",
			nodes: []rawNode{dirNode(0, 0, 1000)},
			names: testNames,
		},
		{
			name:  "parent index out of range",
			nodes: []rawNode{dirNode(0, 0, 2), dirNode(1, 5, 2)},
			names: testNames,
		},
		{
			name:  "parent is a file",
			nodes: []rawNode{dirNode(0, 0, 3), fileNode(1, 0, 0), dirNode(3, 1, 3)},
			names: testNames,
		},
		{
			name:  "parent already closed",
			nodes: []rawNode{dirNode(0, 0, 3), dirNode(1, 0, 2), dirNode(3, 1, 3)},
			names: testNames,
		},
		{
			name:  "end-bound beyond parent",
			nodes: []rawNode{dirNode(0, 0, 2), dirNode(1, 0, 9)},
			names: testNames,
		},
		{
			name:  "end-bound not past self",
			nodes: []rawNode{dirNode(0, 0, 3), dirNode(1, 0, 1), fileNode(3, 0, 0)},
			names: testNames,
		},
		{
			name:  "name offset out of range",
			nodes: []rawNode{dirNode(0, 0, 2), fileNode(0x40, 0, 0)},
			names: testNames,
		},
		{
			name:  "unterminated name",
			nodes: []rawNode{dirNode(0, 0, 2), fileNode(1, 0, 0)},
			names: "\x00abc",
		},
		{
			name:  "data beyond stream",
			nodes: []rawNode{dirNode(0, 0, 2), fileNode(1, 0, 64)},
			names: testNames,
			data:  []byte{1, 2},
		},
		{
			name:  "duplicate sibling names",
			nodes: []rawNode{dirNode(0, 0, 3), fileNode(1, 0, 0), fileNode(1, 0, 0)},
			names: testNames,
		},
		{
			name:  "empty child name",
			nodes: []rawNode{dirNode(0, 0, 2), fileNode(0, 0, 0)},
			names: testNames,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blob := buildBlob(t, tt.nodes, tt.names, tt.data)
			a, err := DecodeBytes(blob)
			require.ErrorIs(t, err, ErrStructure)
			assert.Nil(t, a)
		})
	}
}

func TestDecodeDuplicateNameCause(t *testing.T) {
	t.Parallel()

	blob := buildBlob(t, []rawNode{dirNode(0, 0, 3), fileNode(1, 0, 0), dirNode(1, 0, 3)}, testNames, nil)
	_, err := DecodeBytes(blob)
	require.ErrorIs(t, err, ErrStructure)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	blob := mustEncode(t, scenarioArchive(t))

	t.Run("inside identifier", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeBytes(blob[:2])
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.NotErrorIs(t, err, ErrFormat)
	})

	t.Run("inside header", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeBytes(blob[:20])
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("inside nodes", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeBytes(blob[:0x30])
		require.ErrorIs(t, err, ErrStructure)
	})

	t.Run("inside data", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeBytes(blob[:0x81])
		require.ErrorIs(t, err, ErrStructure)
	})
}

func TestDecodeMaxNodes(t *testing.T) {
	t.Parallel()

	blob := mustEncode(t, scenarioArchive(t))

	_, err := DecodeBytes(blob, WithMaxNodes(3))
	require.ErrorIs(t, err, ErrStructure)

	a, err := DecodeBytes(blob, WithMaxNodes(4))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Root().Len())

	_, err = DecodeBytes(blob, WithMaxNodes(-1))
	require.NoError(t, err)
}

func TestDecodeIgnoresReservedBytes(t *testing.T) {
	t.Parallel()

	blob := mustEncode(t, scenarioArchive(t))
	for i := 16; i < 32; i++ {
		blob[i] = 0
	}
	a := mustDecode(t, blob)
	assert.True(t, a.HasFile("a.bin"))
}
