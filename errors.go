// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import "errors"

// Codec errors. Decode and Encode wrap exactly one of these, or an I/O error
// from the underlying stream, with context describing where it happened.
var (
	// ErrFormat is returned when a stream does not start with the archive identifier.
	ErrFormat = errors.New("u8: not an archive")

	// ErrStructure is returned for a malformed node graph: offsets or indices
	// out of range, inconsistent end-bounds or parents, duplicate sibling
	// names, or an archive without a root.
	ErrStructure = errors.New("u8: malformed archive structure")

	// ErrData is returned when an entry cannot be encoded: a file without a
	// payload, or a name the codepage cannot represent.
	ErrData = errors.New("u8: unencodable entry")
)

// Tree and path errors.
var (
	// ErrInvalidName is returned for an empty name or one containing '/' or NUL.
	ErrInvalidName = errors.New("u8: invalid entry name")

	// ErrDuplicateName is returned when a directory already has a child with the name.
	ErrDuplicateName = errors.New("u8: duplicate entry name")

	// ErrHasParent is returned when adding an entry that already belongs to a directory.
	ErrHasParent = errors.New("u8: entry already has a parent")

	// ErrCycle is returned when adding a directory below itself.
	ErrCycle = errors.New("u8: directory cycle")

	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("u8: entry not found")

	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("u8: is a directory")

	// ErrNotDirectory is returned when a path component is a file.
	ErrNotDirectory = errors.New("u8: not a directory")

	// ErrUnsafePath is returned when extraction would write outside the destination.
	ErrUnsafePath = errors.New("u8: unsafe extraction path")
)
