// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"bytes"
	"fmt"
	"strings"
)

// Entry is a named member of a Directory: either a *Directory or a *File.
type Entry interface {
	// Name returns the entry's name within its parent.
	Name() string
	// Parent returns the directory holding the entry, or nil.
	Parent() *Directory

	setParent(*Directory)
}

// Directory is an ordered collection of uniquely named entries. Insertion
// order is preserved and determines the encoded layout.
type Directory struct {
	name     string
	parent   *Directory
	children []Entry
	index    map[string]int
}

// File is a named byte payload.
type File struct {
	name   string
	parent *Directory
	data   []byte
}

// NewDirectory returns an empty directory.
func NewDirectory(name string) *Directory {
	return &Directory{name: name, index: make(map[string]int)}
}

// NewFile returns a file holding a copy of data. A nil data leaves the
// payload unset; such a file cannot be encoded until SetData is called.
func NewFile(name string, data []byte) *File {
	return &File{name: name, data: bytes.Clone(data)}
}

func (d *Directory) Name() string           { return d.name }
func (d *Directory) Parent() *Directory     { return d.parent }
func (d *Directory) setParent(p *Directory) { d.parent = p }

func (f *File) Name() string           { return f.name }
func (f *File) Parent() *Directory     { return f.parent }
func (f *File) setParent(p *Directory) { f.parent = p }

// Len returns the number of direct children.
func (d *Directory) Len() int {
	return len(d.children)
}

// Entries returns the direct children in insertion order.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.children))
	copy(out, d.children)
	return out
}

// Child returns the direct child with the given name.
func (d *Directory) Child(name string) (Entry, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.children[i], true
}

// Add appends e to the directory.
func (d *Directory) Add(e Entry) error {
	if err := validName(e.Name()); err != nil {
		return err
	}
	if e.Parent() != nil {
		return fmt.Errorf("%w: %q", ErrHasParent, e.Name())
	}
	if _, exists := d.index[e.Name()]; exists {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateName, e.Name(), d.name)
	}
	if sub, ok := e.(*Directory); ok {
		for p := d; p != nil; p = p.parent {
			if p == sub {
				return fmt.Errorf("%w: %q", ErrCycle, sub.name)
			}
		}
	}

	if d.index == nil {
		d.index = make(map[string]int)
	}
	d.index[e.Name()] = len(d.children)
	d.children = append(d.children, e)
	e.setParent(d)
	return nil
}

// Remove detaches the named child and returns it. The order of the
// remaining children is preserved.
func (d *Directory) Remove(name string) (Entry, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	e := d.children[i]
	d.children = append(d.children[:i], d.children[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.children); j++ {
		d.index[d.children[j].Name()] = j
	}
	e.setParent(nil)
	return e, true
}

// Mkdir creates and adds an empty subdirectory.
func (d *Directory) Mkdir(name string) (*Directory, error) {
	sub := NewDirectory(name)
	if err := d.Add(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Create adds a file holding a copy of data.
func (d *Directory) Create(name string, data []byte) (*File, error) {
	f := NewFile(name, data)
	if err := d.Add(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Data returns the payload, or nil if unset. The slice is owned by the file
// and must not be modified.
func (f *File) Data() []byte {
	return f.data
}

// SetData replaces the payload with a copy of data. A nil data unsets it.
func (f *File) SetData(data []byte) {
	f.data = bytes.Clone(data)
}

// HasData reports whether the payload is set.
func (f *File) HasData() bool {
	return f.data != nil
}

// Size returns the payload length in bytes.
func (f *File) Size() int {
	return len(f.data)
}

// EntryPath returns the slash-separated path of e from the root of its tree.
func EntryPath(e Entry) string {
	if e.Parent() == nil {
		return ""
	}
	parts := []string{e.Name()}
	for d := e.Parent(); d.parent != nil; d = d.parent {
		parts = append(parts, d.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
