// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package brick

import (
	"errors"

	"github.com/samber/oops"
)

// Introspection errors. Callers in the runtime treat these as recoverable.
var (
	ErrUnknownType       = errors.New("type is not declared")
	ErrNoConstructor     = errors.New("type has no constructor")
	ErrUnknownMethod     = errors.New("method not found")
	ErrSignatureMismatch = errors.New("arguments do not match signature")
)

// CodeInvalidDeclaration is the error code for rejected type declarations.
const CodeInvalidDeclaration = "INVALID_DECLARATION"

func errInvalidDeclaration(id TypeID, format string, args ...any) error {
	return oops.Code(CodeInvalidDeclaration).
		With("type", string(id)).
		Errorf(format, args...)
}
