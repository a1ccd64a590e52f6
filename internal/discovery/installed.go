// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package discovery finds installed brick packages and the types they declare.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// BrickPackageType is the package type of brick packages.
const BrickPackageType = "holomush-brick"

// Package is one entry of the installed manifest.
type Package struct {
	Name        string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Type        string `yaml:"type" json:"type" jsonschema:"required,minLength=1"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	InstallPath string `yaml:"install-path,omitempty" json:"install-path,omitempty"`
}

// Manifest represents an installed.yaml file.
type Manifest struct {
	Packages []Package `yaml:"packages" json:"packages"`
}

// maxNameLength is the maximum allowed length for package names.
const maxNameLength = 214

// namePattern validates package names: an optional vendor segment and a
// package segment, each lowercase alphanumerics with inner dots, underscores
// or hyphens.
var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?(/[a-z0-9]([a-z0-9._-]*[a-z0-9])?)?$`)

// ParseManifest parses and validates installed.yaml content.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Packages))
	for i, p := range m.Packages {
		if !namePattern.MatchString(p.Name) {
			return fmt.Errorf("packages[%d]: invalid name %q", i, p.Name)
		}
		if len(p.Name) > maxNameLength {
			return fmt.Errorf("packages[%d]: name must be %d characters or less, got %d", i, maxNameLength, len(p.Name))
		}
		if seen[p.Name] {
			return fmt.Errorf("packages[%d]: duplicate package %q", i, p.Name)
		}
		seen[p.Name] = true
		if p.Type == "" {
			return fmt.Errorf("packages[%d]: type is required", i)
		}
		if p.Version != "" {
			if _, err := semver.NewVersion(p.Version); err != nil {
				return fmt.Errorf("packages[%d]: invalid version %q: %w", i, p.Version, err)
			}
		}
	}
	return nil
}

// Installed is the set of packages listed in an installed manifest.
type Installed struct {
	path     string
	manifest *Manifest
}

// LoadInstalled reads the manifest at path. A missing file yields an empty set.
func LoadInstalled(path string) (*Installed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from host configuration
	if errors.Is(err, fs.ErrNotExist) {
		return &Installed{path: path, manifest: &Manifest{}}, nil
	}
	if err != nil {
		return nil, wrapManifestInvalid(path, err)
	}
	if len(data) == 0 {
		return nil, errManifestInvalid(path, "manifest is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, errManifestInvalid(path, "%s", FormatSchemaError(err))
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, wrapManifestInvalid(path, err)
	}
	return &Installed{path: path, manifest: m}, nil
}

// Path returns the manifest path.
func (i *Installed) Path() string {
	return i.path
}

// Packages returns every listed package in manifest order.
func (i *Installed) Packages() []Package {
	return slices.Clone(i.manifest.Packages)
}

// Package returns the package called name.
func (i *Installed) Package(name string) (Package, bool) {
	for _, p := range i.manifest.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// ListPackagesByType returns the names of packages of type t in manifest order.
func (i *Installed) ListPackagesByType(t string) []string {
	names := []string{}
	for _, p := range i.manifest.Packages {
		if p.Type == t {
			names = append(names, p.Name)
		}
	}
	return names
}

// InstallRoot returns the directory package name is installed in. The install
// path defaults to the package name and is resolved against the manifest
// directory when relative. ok is false when the package is unknown or its
// directory does not exist.
func (i *Installed) InstallRoot(name string) (root string, ok bool) {
	p, found := i.Package(name)
	if !found {
		return "", false
	}

	root = p.InstallPath
	if root == "" {
		root = filepath.FromSlash(p.Name)
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(i.path), root)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return root, true
}
