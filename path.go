// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// splitPath splits an archive path into names. Backslashes count as
// separators and empty components are dropped. "." and ".." are ordinary
// names, since archives may contain them literally.
func splitPath(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizePath returns the canonical slash-separated form of p.
func normalizePath(p string) string {
	return strings.Join(splitPath(p), "/")
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Lookup returns the entry at path p. The empty path is the root.
func (a *Archive) Lookup(p string) (Entry, bool) {
	if a.root == nil {
		return nil, false
	}
	var cur Entry = a.root
	for _, name := range splitPath(p) {
		d, ok := cur.(*Directory)
		if !ok {
			return nil, false
		}
		if cur, ok = d.Child(name); !ok {
			return nil, false
		}
	}
	return cur, true
}

// HasFile reports whether p names a file.
func (a *Archive) HasFile(p string) bool {
	e, ok := a.Lookup(p)
	if !ok {
		return false
	}
	_, isFile := e.(*File)
	return isFile
}

// ReadFile returns a copy of the payload of the file at p.
func (a *Archive) ReadFile(p string) ([]byte, error) {
	e, ok := a.Lookup(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	switch e := e.(type) {
	case *Directory:
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, p)
	case *File:
		return bytes.Clone(e.data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
}

// MkdirAll returns the directory at p, creating it and any missing parents.
func (a *Archive) MkdirAll(p string) (*Directory, error) {
	if a.root == nil {
		return nil, fmt.Errorf("%w: archive has no root", ErrStructure)
	}
	return mkdirAll(a.root, splitPath(p))
}

func mkdirAll(d *Directory, names []string) (*Directory, error) {
	for _, name := range names {
		child, ok := d.Child(name)
		if !ok {
			sub, err := d.Mkdir(name)
			if err != nil {
				return nil, err
			}
			d = sub
			continue
		}
		switch c := child.(type) {
		case *Directory:
			d = c
		case *File:
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, EntryPath(c))
		}
	}
	return d, nil
}

// WriteFile stores a copy of data at p, creating parent directories as
// needed. An existing file keeps its position and only its payload changes.
func (a *Archive) WriteFile(p string, data []byte) error {
	if a.root == nil {
		return fmt.Errorf("%w: archive has no root", ErrStructure)
	}
	names := splitPath(p)
	if len(names) == 0 {
		return fmt.Errorf("%w: root", ErrIsDirectory)
	}
	if data == nil {
		data = []byte{}
	}

	dir, err := mkdirAll(a.root, names[:len(names)-1])
	if err != nil {
		return err
	}
	name := names[len(names)-1]
	if existing, ok := dir.Child(name); ok {
		switch e := existing.(type) {
		case *Directory:
			return fmt.Errorf("%w: %s", ErrIsDirectory, p)
		case *File:
			e.SetData(data)
			return nil
		}
	}
	_, err = dir.Create(name, data)
	return err
}

// Remove deletes the entry at p along with anything below it.
func (a *Archive) Remove(p string) error {
	names := splitPath(p)
	if len(names) == 0 {
		return fmt.Errorf("%w: cannot remove the root", ErrInvalidName)
	}
	parent, ok := a.Lookup(strings.Join(names[:len(names)-1], "/"))
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	d, ok := parent.(*Directory)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotDirectory, EntryPath(parent))
	}
	if _, ok := d.Remove(names[len(names)-1]); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return nil
}

// WalkFunc is called for every entry below the root. Returning fs.SkipDir
// from a directory skips its contents; any other error stops the walk.
type WalkFunc func(path string, e Entry) error

// Walk visits every entry below the root in encoded order: a directory,
// then its files, then its subdirectories.
func (a *Archive) Walk(fn WalkFunc) error {
	if a.root == nil {
		return nil
	}
	return walkDir(a.root, "", fn)
}

func walkDir(d *Directory, dir string, fn WalkFunc) error {
	var subdirs []*Directory
	for _, child := range d.children {
		switch c := child.(type) {
		case *File:
			if err := fn(joinPath(dir, c.name), c); err != nil {
				return err
			}
		case *Directory:
			subdirs = append(subdirs, c)
		}
	}
	for _, sub := range subdirs {
		p := joinPath(dir, sub.name)
		err := fn(p, sub)
		if errors.Is(err, fs.SkipDir) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walkDir(sub, p, fn); err != nil {
			return err
		}
	}
	return nil
}

// Files returns the paths of all files in encoded order.
func (a *Archive) Files() []string {
	var out []string
	_ = a.Walk(func(p string, e Entry) error {
		if _, ok := e.(*File); ok {
			out = append(out, p)
		}
		return nil
	})
	return out
}
