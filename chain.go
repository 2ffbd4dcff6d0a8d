// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"errors"
	"fmt"
	"strings"
)

// Chain is a prioritized list of archives. Later archives override earlier
// ones: a path resolves to the highest-priority archive holding a file there.
type Chain struct {
	archives   []*Archive
	fileMap    map[string]int // cache: normalized path -> archive index
	cacheBuilt bool
}

// NewChain returns a chain over archives in order of increasing priority.
func NewChain(archives ...*Archive) *Chain {
	return &Chain{
		archives: archives,
		fileMap:  make(map[string]int),
	}
}

// OpenChain opens archives from disk in order of increasing priority.
func OpenChain(paths []string, opts ...Option) (*Chain, error) {
	archives := make([]*Archive, 0, len(paths))
	for _, path := range paths {
		archive, err := Open(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("open archive %s: %w", path, err)
		}
		archives = append(archives, archive)
	}

	chain := NewChain(archives...)
	chain.Refresh()
	return chain, nil
}

// Len returns the number of archives in the chain.
func (c *Chain) Len() int {
	return len(c.archives)
}

// Archive returns the archive at priority index i.
func (c *Chain) Archive(i int) *Archive {
	return c.archives[i]
}

// Refresh rebuilds the path cache. Call it after modifying any archive in
// the chain.
func (c *Chain) Refresh() {
	c.fileMap = make(map[string]int)

	// Highest priority first, so later archives win
	for i := len(c.archives) - 1; i >= 0; i-- {
		for _, file := range c.archives[i].Files() {
			if _, exists := c.fileMap[file]; !exists {
				c.fileMap[file] = i
			}
		}
	}

	c.cacheBuilt = true
}

// find returns the archive holding the highest-priority copy of p.
func (c *Chain) find(p string) (*Archive, bool) {
	if !c.cacheBuilt {
		c.Refresh()
	}

	key := normalizePath(p)
	idx, found := c.fileMap[key]
	if !found {
		return nil, false
	}

	// Verify the cached entry still exists, rebuilding once if it went away
	if archive := c.archives[idx]; archive.HasFile(key) {
		return archive, true
	}
	c.Refresh()
	if idx, found = c.fileMap[key]; found {
		return c.archives[idx], true
	}
	return nil, false
}

// HasFile reports whether any archive in the chain holds a file at p.
func (c *Chain) HasFile(p string) bool {
	_, ok := c.find(p)
	return ok
}

// ReadFile returns the highest-priority version of the file at p.
func (c *Chain) ReadFile(p string) ([]byte, error) {
	archive, ok := c.find(p)
	if !ok {
		return nil, fmt.Errorf("%w in chain: %s", ErrNotFound, p)
	}
	return archive.ReadFile(p)
}

// ExtractFile writes the highest-priority version of the file at p to destPath.
func (c *Chain) ExtractFile(p, destPath string) error {
	archive, ok := c.find(p)
	if !ok {
		return fmt.Errorf("%w in chain: %s", ErrNotFound, p)
	}
	return archive.ExtractFile(p, destPath)
}

// Files returns the union of file paths across the chain, lowest priority
// archive first.
func (c *Chain) Files() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, archive := range c.archives {
		for _, file := range archive.Files() {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}
			result = append(result, file)
		}
	}
	return result
}

// Merge flattens the chain into a new archive. Entries are merged in priority
// order; where a file and a directory collide, the higher-priority entry
// replaces the other. Options default to those of the first archive.
func (c *Chain) Merge(opts ...Option) (*Archive, error) {
	merged := New(opts...)
	if len(opts) == 0 && len(c.archives) > 0 {
		merged.cfg = c.archives[0].cfg
	}

	for _, archive := range c.archives {
		err := archive.Walk(func(p string, e Entry) error {
			switch e := e.(type) {
			case *Directory:
				return overlayDir(merged, p)
			case *File:
				return overlayFile(merged, p, e.data)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}

	merged.cfg.log().Debug("chain merged", "archives", len(c.archives), "files", len(merged.Files()))
	return merged, nil
}

func overlayDir(a *Archive, p string) error {
	_, err := a.MkdirAll(p)
	if errors.Is(err, ErrNotDirectory) {
		if err := removeFileAncestor(a, p); err != nil {
			return err
		}
		_, err = a.MkdirAll(p)
	}
	return err
}

func overlayFile(a *Archive, p string, data []byte) error {
	err := a.WriteFile(p, data)
	switch {
	case errors.Is(err, ErrIsDirectory):
		if err := a.Remove(p); err != nil {
			return err
		}
		err = a.WriteFile(p, data)
	case errors.Is(err, ErrNotDirectory):
		if err := removeFileAncestor(a, p); err != nil {
			return err
		}
		err = a.WriteFile(p, data)
	}
	return err
}

// removeFileAncestor removes the file blocking the directory path leading to p.
func removeFileAncestor(a *Archive, p string) error {
	names := splitPath(p)
	for i := 1; i <= len(names); i++ {
		prefix := strings.Join(names[:i], "/")
		if a.HasFile(prefix) {
			return a.Remove(prefix)
		}
	}
	return nil
}
