// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package configfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/bricks/internal/configfile"
	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/pkg/brick"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "hello: world!\nnested:\n  answer: 42\n")

	cfg, err := configfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "world!", cfg["hello"])
	assert.Equal(t, map[string]any{"answer": 42}, cfg["nested"])
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := configfile.Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, brick.Config{}, cfg)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "hello: [unterminated\n")

	_, err := configfile.Load(path)
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "path", path)
}
