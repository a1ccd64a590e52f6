// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package loader

import (
	"github.com/samber/oops"

	"github.com/holomush/bricks/pkg/brick"
	"github.com/holomush/bricks/pkg/registry"
)

// Error codes returned by the loader.
const (
	CodeNoEntryType        = "NO_ENTRY_TYPE"
	CodeMultipleEntryTypes = "MULTIPLE_ENTRY_TYPES"
	CodeInitFailed         = "INIT_FAILED"
	CodeScanFailed         = "SCAN_FAILED"
)

// ErrNoEntryType reports a package that declares no entry type.
func ErrNoEntryType(pkg string) error {
	return oops.Code(CodeNoEntryType).
		With("package", pkg).
		Hint("embed brick.Base in exactly one exported type of the package").
		Errorf("package %s declares no brick entry type", pkg)
}

// ErrMultipleEntryTypes reports a package with more than one entry type,
// naming the first two found.
func ErrMultipleEntryTypes(pkg string, first, second brick.TypeID) error {
	return oops.Code(CodeMultipleEntryTypes).
		With("package", pkg).
		With("types", []string{string(first), string(second)}).
		Errorf("package %s declares more than one brick entry type: %s and %s", pkg, first, second)
}

// ErrInitFailed wraps an error returned by an entry type's Init method.
func ErrInitFailed(pkg string, entry brick.TypeID, cause error) error {
	return oops.Code(CodeInitFailed).
		With("package", pkg).
		With("type", string(entry)).
		Wrapf(cause, "initialize brick %s", pkg)
}

func errScanFailed(pkg, dir string, cause error) error {
	return oops.Code(CodeScanFailed).
		With("package", pkg).
		With("dir", dir).
		Wrapf(cause, "scan package %s", pkg)
}

// errNotLinked reports a package none of whose types are declared to the
// type system, which usually means it is not imported by the binary.
func errNotLinked(pkg, dir string) error {
	return oops.Code(registry.CodeUnknownType).
		With("package", pkg).
		With("dir", dir).
		Hint("blank-import the package so its init registers its types").
		Errorf("package %s declares no known types", pkg)
}
