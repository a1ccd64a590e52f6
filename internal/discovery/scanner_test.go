// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/pkg/brick"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

func typeIDs(symbols []discovery.Symbol) []brick.TypeID {
	ids := make([]brick.TypeID, len(symbols))
	for i, s := range symbols {
		ids[i] = s.Type
	}
	return ids
}

func TestScanner_Scan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":               "module example.com/hello\n\ngo 1.25\n",
		"a.go":                 "package hello\n\ntype Hello struct{}\n\ntype helper struct{}\n\ntype (\n\tGreeter struct{}\n\tName string\n)\n",
		"b.go":                 "package hello\n\nfunc NotAType() {}\n",
		"a_test.go":            "package hello\n\ntype TestOnly struct{}\n",
		"sub/sub.go":           "package sub\n\ntype Joined struct{}\n",
		"sub/ignored.go":       "//go:build never\n\npackage sub\n\ntype Tagged struct{}\n",
		"cmd/main.go":          "package main\n\ntype Flags struct{}\n",
		"testdata/fixture.go":  "package fixture\n\ntype Fixture struct{}\n",
		"vendor/x/x.go":        "package x\n\ntype Vendored struct{}\n",
		".hidden/h.go":         "package h\n\ntype Hidden struct{}\n",
		"nested/go.mod":        "module example.com/nested\n",
		"nested/n.go":          "package nested\n\ntype Nested struct{}\n",
		"generated/gen.go":     "package generated\n\ntype Generated struct{}\n",
		"sub/deeper/deeper.go": "package deeper\n\ntype Deep struct{}\n",
		"sub/deeper/mock_x.go": "package deeper\n\ntype MockX struct{}\n",
	})

	s, err := discovery.NewScanner("generated", "**/mock_*.go")
	require.NoError(t, err)

	symbols, err := s.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []brick.TypeID{
		"example.com/hello.Hello",
		"example.com/hello.Greeter",
		"example.com/hello.Name",
		"example.com/hello/sub/deeper.Deep",
		"example.com/hello/sub.Joined",
	}, typeIDs(symbols))
	assert.Equal(t, filepath.Join(root, "a.go"), symbols[0].File)
}

func TestScanner_ScanSubdirectoryOfModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":        "module example.com/mono\n",
		"bricks/a/a.go": "package a\n\ntype A struct{}\n",
		"bricks/b/b.go": "package b\n\ntype B struct{}\n",
	})

	s, err := discovery.NewScanner()
	require.NoError(t, err)

	symbols, err := s.Scan(filepath.Join(root, "bricks", "a"))
	require.NoError(t, err)
	assert.Equal(t, []brick.TypeID{"example.com/mono/bricks/a.A"}, typeIDs(symbols))
}

func TestScanner_Errors(t *testing.T) {
	s, err := discovery.NewScanner()
	require.NoError(t, err)

	module := writeTree(t, map[string]string{"go.mod": "module example.com/empty\n"})
	_, err = s.Scan(filepath.Join(module, "missing"))
	assert.Error(t, err)

	broken := writeTree(t, map[string]string{
		"go.mod": "module example.com/broken\n",
		"a.go":   "package a\n\ntype {\n",
	})
	_, err = s.Scan(broken)
	assert.Error(t, err)

	_, err = discovery.NewScanner("[")
	assert.Error(t, err)
}
