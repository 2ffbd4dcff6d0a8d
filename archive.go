// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"bytes"
	"io"
)

// Archive is an in-memory archive: a root directory and the codec settings
// used to decode and encode it.
type Archive struct {
	root *Directory
	cfg  config
}

// New returns an archive with an empty, unnamed root directory.
func New(opts ...Option) *Archive {
	return &Archive{root: NewDirectory(""), cfg: newConfig(opts)}
}

// Decode reads a whole archive from r. r is only used for the duration of
// the call.
func Decode(r io.ReadSeeker, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)

	root, count, err := decodeTree(r, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.log().Debug("archive decoded", "node_count", count, "root_entries", root.Len())
	return &Archive{root: root, cfg: cfg}, nil
}

// DecodeBytes decodes an archive held in memory.
func DecodeBytes(data []byte, opts ...Option) (*Archive, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// Encode writes the archive to w. Nothing is written if encoding fails.
func (a *Archive) Encode(w io.Writer) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Bytes returns the encoded archive.
func (a *Archive) Bytes() ([]byte, error) {
	data, stats, err := encodeTree(a.root, &a.cfg)
	if err != nil {
		return nil, err
	}

	a.cfg.log().Debug("archive encoded",
		"node_count", stats.nodes,
		"name_bytes", stats.nameBytes,
		"data_bytes", stats.dataBytes,
		"deduplicated_files", stats.deduped,
		"size", len(data))
	return data, nil
}

// Root returns the root directory, or nil if it was unset.
func (a *Archive) Root() *Directory {
	return a.root
}

// SetRoot replaces the root directory. A nil root makes Encode fail.
func (a *Archive) SetRoot(root *Directory) {
	a.root = root
}
