// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"github.com/samber/oops"

	"github.com/holomush/bricks/pkg/brick"
)

// CodeUnknownType is reported when a recorded type no longer resolves.
const CodeUnknownType = "UNKNOWN_TYPE"

// ErrUnknownType creates an error for a type of pkg that no longer resolves.
func ErrUnknownType(pkg string, id brick.TypeID) error {
	return oops.Code(CodeUnknownType).
		With("package", pkg).
		With("type", string(id)).
		Errorf("type %s of package %s is not declared", id, pkg)
}
