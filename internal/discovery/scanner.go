// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package discovery

import (
	"errors"
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"golang.org/x/mod/modfile"

	"github.com/holomush/bricks/pkg/brick"
)

// Symbol is an exported type declaration found in a source file.
type Symbol struct {
	Type brick.TypeID `json:"type"`
	File string       `json:"file"`
}

// Scanner lists exported type declarations of the Go packages below a root.
type Scanner struct {
	excludes []glob.Glob
	build    build.Context
}

// DefaultScanner returns a scanner without exclude patterns.
func DefaultScanner() *Scanner {
	return &Scanner{build: build.Default}
}

// NewScanner creates a scanner. Paths relative to the scan root (using
// forward slashes) that match one of the exclude globs are skipped.
func NewScanner(excludes ...string) (*Scanner, error) {
	s := DefaultScanner()
	for _, pattern := range excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, oops.With("pattern", pattern).Wrapf(err, "compile exclude pattern")
		}
		s.excludes = append(s.excludes, g)
	}
	return s, nil
}

// Scan walks root in lexical order and returns the exported types declared in
// non-test files that match the build context. Directories named testdata or
// vendor, hidden directories, nested modules and package main files are
// skipped.
func (s *Scanner) Scan(root string) ([]Symbol, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, oops.With("root", root).Wrap(err)
	}

	modRoot, modPath, err := findModule(root)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	symbols := []Symbol{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p == root {
				return nil
			}
			if s.skipDir(p, d.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") || s.excluded(rel) {
			return nil
		}
		match, err := s.build.MatchFile(filepath.Dir(p), d.Name())
		if err != nil || !match {
			return err
		}

		found, err := declaredTypes(fset, p)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}

		importPath := packagePath(modRoot, modPath, filepath.Dir(p))
		for _, name := range found {
			symbols = append(symbols, Symbol{
				Type: brick.TypeID(importPath + "." + name),
				File: p,
			})
		}
		return nil
	})
	if err != nil {
		return nil, oops.With("root", root).Wrapf(err, "scan source tree")
	}
	return symbols, nil
}

func (s *Scanner) skipDir(p, name, rel string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor" {
		return true
	}
	if s.excluded(rel) {
		return true
	}
	_, err := os.Stat(filepath.Join(p, "go.mod"))
	return err == nil
}

func (s *Scanner) excluded(rel string) bool {
	for _, g := range s.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// declaredTypes returns the exported type names declared at the top level of
// the file, or nothing for package main.
func declaredTypes(fset *token.FileSet, filename string) ([]string, error) {
	f, err := parser.ParseFile(fset, filename, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	if f.Name.Name == "main" {
		return nil, nil
	}

	var names []string
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if ok && ts.Name.IsExported() {
				names = append(names, ts.Name.Name)
			}
		}
	}
	return names, nil
}

// findModule locates the go.mod enclosing dir.
func findModule(dir string) (root, modulePath string, err error) {
	for d := dir; ; d = filepath.Dir(d) {
		data, err := os.ReadFile(filepath.Join(d, "go.mod")) //nolint:gosec // walking up from the scan root
		switch {
		case err == nil:
			modulePath := modfile.ModulePath(data)
			if modulePath == "" {
				return "", "", oops.With("dir", d).Errorf("go.mod has no module directive")
			}
			return d, modulePath, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", "", oops.With("dir", d).Wrap(err)
		}
		if filepath.Dir(d) == d {
			return "", "", oops.With("dir", dir).Errorf("no go.mod found above %s", dir)
		}
	}
}

func packagePath(modRoot, modPath, dir string) string {
	rel, err := filepath.Rel(modRoot, dir)
	if err != nil || rel == "." {
		return modPath
	}
	return path.Join(modPath, filepath.ToSlash(rel))
}
