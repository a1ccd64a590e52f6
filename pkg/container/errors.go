// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package container

import (
	"github.com/samber/oops"

	"github.com/holomush/bricks/pkg/brick"
)

// Error codes for resolution failures.
const (
	CodeCyclicDependency   = "CYCLIC_DEPENDENCY"
	CodeDuplicateComponent = "DUPLICATE_COMPONENT"
	CodeNotAComponent      = "NOT_A_COMPONENT"
	CodeMissingConstructor = "MISSING_CONSTRUCTOR"
	CodeConstructFailed    = "CONSTRUCT_FAILED"
	CodeConfigParseFailed  = "CONFIG_PARSE_FAILED"
)

// ErrCyclicDependency creates an error listing the components that could not
// be activated.
func ErrCyclicDependency(blocked []brick.TypeID) error {
	types := make([]string, len(blocked))
	for i, id := range blocked {
		types[i] = string(id)
	}
	return oops.Code(CodeCyclicDependency).
		With("types", types).
		Errorf("cyclic or unsatisfiable dependencies between %d components: %v", len(types), types)
}

// ErrDuplicateComponent creates an error for a second instance of a type.
func ErrDuplicateComponent(id brick.TypeID) error {
	return oops.Code(CodeDuplicateComponent).
		With("type", string(id)).
		Errorf("component %s already active", id)
}

// ErrNotAComponent creates an error for a type without a component tag.
func ErrNotAComponent(id brick.TypeID) error {
	return oops.Code(CodeNotAComponent).
		With("type", string(id)).
		Errorf("type %q is not a component", id)
}

// ErrMissingConstructor creates an error for an auto-activated component
// without a constructor.
func ErrMissingConstructor(id brick.TypeID) error {
	return oops.Code(CodeMissingConstructor).
		With("type", string(id)).
		Errorf("component %s has no constructor", id)
}

// ErrConstructFailed wraps an error returned by a component constructor.
func ErrConstructFailed(id brick.TypeID, cause error) error {
	return oops.Code(CodeConstructFailed).
		With("type", string(id)).
		Wrapf(cause, "construct %s", id)
}

// ErrConfigParseFailed wraps a config file parse failure.
func ErrConfigParseFailed(path string, cause error) error {
	return oops.Code(CodeConfigParseFailed).
		With("path", path).
		Wrapf(cause, "parse config file")
}
