// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package u8 provides pure Go support for reading and writing U8 archives.

U8 is the hierarchical container format used by a family of 3D game
runtimes to bundle models, textures, animations and sound tables. An archive
is a flat, big-endian blob: a 32-byte header, an array of 12-byte node
records, a table of NUL-terminated names and a data section. The directory
tree is implicit in the node order: every directory records the index of its
parent and one past the index of the last node in its subtree.

# Features

  - Lossless decode and encode of the full directory tree
  - Content deduplication: identical payloads are stored once
  - Name deduplication in the name table
  - Legacy codepage names (Shift-JIS by default)
  - Prioritized archive chains with merge support

# Basic Usage

Creating an archive:

	archive := u8.New()
	if err := archive.WriteFile("arc/model.bin", data); err != nil {
		log.Fatal(err)
	}
	if err := archive.Save("out.arc"); err != nil {
		log.Fatal(err)
	}

Reading an archive:

	archive, err := u8.Open("game.arc")
	if err != nil {
		log.Fatal(err)
	}

	if archive.HasFile("arc/model.bin") {
		data, err := archive.ReadFile("arc/model.bin")
		if err != nil {
			log.Fatal(err)
		}
		_ = data
	}

Working on streams directly:

	archive, err := u8.Decode(r) // r is an io.ReadSeeker
	...
	err = archive.Encode(w)

# Layout

Encoding places each directory's files before its subdirectories, and both
in insertion order. Re-encoding a decoded archive produces identical bytes.

# Path Conventions

Paths use forward slashes relative to the root. Backslashes are accepted and
converted, and empty components are ignored:

	archive.ReadFile("arc/sub/file.bin")
	archive.ReadFile("arc\\sub\\file.bin") // Same file

Names are matched exactly; "." and ".." are ordinary names since some
archives use a directory literally named ".".

# Limitations

  - Whole archives are held in memory; there is no streaming decode
  - No compression (compressed archives are wrapped in a separate container)
  - An Archive must not be used from several goroutines at once
*/
package u8
