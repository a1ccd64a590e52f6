// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/samber/oops"

	"github.com/holomush/bricks/internal/xdg"
)

// entryName matches names produced by Name.
var entryName = regexp.MustCompile(`^[0-9a-f]{128}$`)

// FileStore keeps one file per entry in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultFileStore creates a store in the XDG cache directory.
func DefaultFileStore() (*FileStore, error) {
	dir, err := xdg.CacheDir()
	if err != nil {
		return nil, oops.With("operation", "resolve cache directory").Wrap(err)
	}
	return NewFileStore(dir), nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Put writes data atomically: it is written to a temporary file that is then
// renamed over the entry.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	if err := xdg.EnsureDir(s.dir); err != nil {
		return oops.With("dir", s.dir).Wrap(err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return oops.With("dir", s.dir).Wrapf(err, "create temp file")
	}
	defer func() {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return oops.With("path", tmp.Name()).Wrapf(err, "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmp.Name()).Wrapf(err, "close cache entry")
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return oops.With("path", path).Wrapf(err, "rename cache entry")
	}
	return nil
}

// Get reads the entry name.
func (s *FileStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, oops.With("path", path).Wrap(err)
	}
	return data, true, nil
}

// Has reports whether the entry name exists.
func (s *FileStore) Has(_ context.Context, name string) (bool, error) {
	path := filepath.Join(s.dir, name)
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, oops.With("path", path).Wrap(err)
	}
	return true, nil
}

// Clear removes every entry file. Other files in the directory are kept.
func (s *FileStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return oops.With("dir", s.dir).Wrap(err)
	}

	for _, e := range entries {
		if e.IsDir() || !entryName.MatchString(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.With("path", filepath.Join(s.dir, e.Name())).Wrap(err)
		}
	}
	return nil
}
