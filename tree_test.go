// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(d *Directory) []string {
	var out []string
	for _, e := range d.Entries() {
		out = append(out, e.Name())
	}
	return out
}

func TestDirectoryAdd(t *testing.T) {
	t.Parallel()

	root := NewDirectory("")
	sub, err := root.Mkdir("sub")
	require.NoError(t, err)
	_, err = root.Create("b.bin", []byte("b"))
	require.NoError(t, err)
	_, err = root.Create("a.bin", []byte("a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"sub", "b.bin", "a.bin"}, names(root))
	assert.Same(t, root, sub.Parent())

	child, ok := root.Child("a.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), child.(*File).Data())

	_, ok = root.Child("missing")
	assert.False(t, ok)
}

func TestDirectoryAddErrors(t *testing.T) {
	t.Parallel()

	root := NewDirectory("top")
	sub, err := root.Mkdir("sub")
	require.NoError(t, err)

	_, err = root.Create("sub", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.ErrorIs(t, root.Add(sub), ErrHasParent)

	for _, bad := range []string{"", "a/b", "nul\x00"} {
		_, err := root.Create(bad, []byte{1})
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", bad)
	}

	deep, err := sub.Mkdir("deep")
	require.NoError(t, err)
	assert.ErrorIs(t, deep.Add(root), ErrCycle)
	assert.ErrorIs(t, root.Add(root), ErrCycle)

	// Dot names are literal.
	_, err = root.Mkdir(".")
	assert.NoError(t, err)
}

func TestDirectoryRemove(t *testing.T) {
	t.Parallel()

	root := NewDirectory("")
	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := root.Create(name, []byte(name))
		require.NoError(t, err)
	}

	removed, ok := root.Remove("b")
	require.True(t, ok)
	assert.Nil(t, removed.Parent())
	assert.Equal(t, []string{"a", "c", "d"}, names(root))

	// Lookups still resolve after the index shift.
	d, ok := root.Child("d")
	require.True(t, ok)
	assert.Equal(t, []byte("d"), d.(*File).Data())

	_, ok = root.Remove("b")
	assert.False(t, ok)

	// A removed entry can be re-added elsewhere.
	require.NoError(t, root.Add(removed))
	assert.Equal(t, []string{"a", "c", "d", "b"}, names(root))
}

func TestFilePayload(t *testing.T) {
	t.Parallel()

	src := []byte{1, 2, 3}
	f := NewFile("f", src)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, f.Data(), "payload must be copied in")
	assert.True(t, f.HasData())
	assert.Equal(t, 3, f.Size())

	f.SetData(nil)
	assert.False(t, f.HasData())

	f.SetData([]byte{})
	assert.True(t, f.HasData())
	assert.Equal(t, 0, f.Size())

	assert.False(t, NewFile("unset", nil).HasData())
}

func TestEntriesIsCopy(t *testing.T) {
	t.Parallel()

	root := NewDirectory("")
	_, err := root.Create("a", []byte{1})
	require.NoError(t, err)

	entries := root.Entries()
	entries[0] = nil
	_, ok := root.Child("a")
	assert.True(t, ok)
	assert.NotNil(t, root.Entries()[0])
}

func TestEntryPath(t *testing.T) {
	t.Parallel()

	root := NewDirectory("")
	a, err := root.Mkdir("a")
	require.NoError(t, err)
	b, err := a.Mkdir("b")
	require.NoError(t, err)
	f, err := b.Create("f.bin", []byte{})
	require.NoError(t, err)

	assert.Equal(t, "", EntryPath(root))
	assert.Equal(t, "a", EntryPath(a))
	assert.Equal(t, "a/b/f.bin", EntryPath(f))
}
