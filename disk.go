// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Open decodes the archive stored at path.
func Open(path string, opts ...Option) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	a, err := Decode(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return a, nil
}

// Save encodes the archive and writes it to path. The data goes to a
// temporary file in the same directory which is then renamed over path.
func (a *Archive) Save(path string) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "u8_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Move temp file to final path
	if err := os.Rename(tempPath, path); err != nil {
		if err := copyFile(tempPath, path); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("save archive: %w", err)
		}
		os.Remove(tempPath)
	}

	a.cfg.log().Debug("archive saved", "path", path, "size", len(data))
	return nil
}

// AddFile reads srcPath from disk and stores it at archivePath, creating
// parent directories as needed.
func (a *Archive) AddFile(srcPath, archivePath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", srcPath, err)
	}
	return a.WriteFile(archivePath, data)
}

// AddTree mirrors the directory srcDir below archivePath. Entries are added
// in lexical order; anything other than regular files and directories is
// skipped.
func (a *Archive) AddTree(srcDir, archivePath string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := normalizePath(archivePath)
		if rel != "." {
			target = joinPath(target, normalizePath(filepath.ToSlash(rel)))
		}

		switch {
		case d.IsDir():
			_, err = a.MkdirAll(target)
			return err
		case d.Type().IsRegular():
			return a.AddFile(path, target)
		default:
			a.cfg.log().Debug("skipping non-regular file", "path", path, "mode", d.Type().String())
			return nil
		}
	})
}

// ExtractFile writes the file at archivePath to destPath.
func (a *Archive) ExtractFile(archivePath, destPath string) error {
	data, err := a.ReadFile(archivePath)
	if err != nil {
		return err
	}

	// Ensure destination directory exists
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ExtractAll writes the whole tree below destDir. Entry names that would
// resolve outside destDir fail with ErrUnsafePath before anything is written.
func (a *Archive) ExtractAll(destDir string) error {
	err := a.Walk(func(p string, e Entry) error {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return a.Walk(func(p string, e Entry) error {
		target := filepath.Join(destDir, filepath.FromSlash(p))
		switch e := e.(type) {
		case *Directory:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case *File:
			if err := os.WriteFile(target, e.data, 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
		}
		return nil
	})
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
