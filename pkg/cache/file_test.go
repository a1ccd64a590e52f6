// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/bricks/pkg/cache"
)

func TestFileStore_PutCreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s := cache.NewFileStore(dir)
	assert.Equal(t, dir, s.Dir())

	name := cache.Name("ns", "key")
	require.NoError(t, s.Put(context.Background(), name, []byte("first")))
	require.NoError(t, s.Put(context.Background(), name, []byte("second")))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	data, found, err := s.Get(context.Background(), name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not linger")
}

func TestFileStore_Clear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := cache.NewFileStore(dir)

	name := cache.Name("ns", "key")
	require.NoError(t, s.Put(ctx, name, []byte("x")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("keep"), 0o600))

	require.NoError(t, s.Clear(ctx))

	ok, err := s.Has(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.FileExists(t, filepath.Join(dir, "README"))
}

func TestFileStore_ClearMissingDir(t *testing.T) {
	s := cache.NewFileStore(filepath.Join(t.TempDir(), "absent"))
	assert.NoError(t, s.Clear(context.Background()))
}

func TestDefaultFileStore(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	s, err := cache.DefaultFileStore()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-cache/bricks", s.Dir())
}
