// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suprsokr/go-u8/internal/binio"
)

func dirNode(nameOff, parent, end uint32) rawNode {
	return rawNode{Info: 1<<kindShift | nameOff, A: parent, B: end}
}

// fileNode takes its data offset relative to the data section; buildBlob
// makes it absolute.
func fileNode(nameOff, relOffset, length uint32) rawNode {
	return rawNode{Info: nameOff, A: relOffset, B: length}
}

// buildBlob lays out a hand-made archive the same way the encoder does.
func buildBlob(tb testing.TB, nodes []rawNode, names string, data []byte) []byte {
	tb.Helper()

	tableSize := uint32(len(nodes)*nodeSize + len(names))
	dataBase := uint32(binio.Align(int64(headerSize+tableSize), dataAlignment))

	var buf bytes.Buffer
	require.NoError(tb, writeArchiveHeader(&buf, newArchiveHeader(tableSize, dataBase)))
	for _, n := range nodes {
		if n.Info>>kindShift == 0 {
			n.A += dataBase
		}
		require.NoError(tb, binary.Write(&buf, binary.BigEndian, n))
	}
	buf.WriteString(names)
	buf.Write(make([]byte, int(dataBase)-buf.Len()))
	buf.Write(data)
	return buf.Bytes()
}

// parseNodes returns the raw node records of an encoded archive.
func parseNodes(tb testing.TB, blob []byte) []rawNode {
	tb.Helper()

	nodeOffset := binary.BigEndian.Uint32(blob[4:8])
	count := binary.BigEndian.Uint32(blob[nodeOffset+8 : nodeOffset+12])
	nodes := make([]rawNode, count)
	require.NoError(tb, binary.Read(bytes.NewReader(blob[nodeOffset:]), binary.BigEndian, nodes))
	return nodes
}

// mustEncode encodes a or fails the test.
func mustEncode(tb testing.TB, a *Archive) []byte {
	tb.Helper()
	data, err := a.Bytes()
	require.NoError(tb, err, "encode failed")
	return data
}

// mustDecode decodes data or fails the test.
func mustDecode(tb testing.TB, data []byte, opts ...Option) *Archive {
	tb.Helper()
	a, err := DecodeBytes(data, opts...)
	require.NoError(tb, err, "decode failed")
	return a
}

// requireSameTree checks that got holds the same names, kinds and payloads
// as want. Files and subdirectories are compared as separate ordered groups
// since encoding places files first.
func requireSameTree(tb testing.TB, want, got *Directory) {
	tb.Helper()

	require.Equal(tb, want.Name(), got.Name())
	require.Equal(tb, want.Len(), got.Len(), "child count of %q", EntryPath(want))

	wantFiles, wantDirs := splitKinds(want)
	gotFiles, gotDirs := splitKinds(got)
	require.Len(tb, gotFiles, len(wantFiles))
	require.Len(tb, gotDirs, len(wantDirs))

	for i, wf := range wantFiles {
		require.Equal(tb, wf.Name(), gotFiles[i].Name())
		require.Equal(tb, wf.Data(), gotFiles[i].Data(), "payload of %q", EntryPath(wf))
	}
	for i, wd := range wantDirs {
		requireSameTree(tb, wd, gotDirs[i])
	}
}

func splitKinds(d *Directory) (files []*File, dirs []*Directory) {
	for _, e := range d.Entries() {
		switch e := e.(type) {
		case *File:
			files = append(files, e)
		case *Directory:
			dirs = append(dirs, e)
		}
	}
	return files, dirs
}
