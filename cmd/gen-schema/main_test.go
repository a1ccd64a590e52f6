// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/bricks/internal/discovery"
)

func TestWrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schemas", "installed.schema.json")
	require.NoError(t, write(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := discovery.GenerateSchema()
	require.NoError(t, err)
	assert.Equal(t, want, data)
}
