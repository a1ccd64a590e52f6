// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package discovery

import (
	"github.com/samber/oops"
)

// CodeManifestInvalid is reported for unreadable or invalid installed manifests.
const CodeManifestInvalid = "MANIFEST_INVALID"

func errManifestInvalid(path string, format string, args ...any) error {
	return oops.Code(CodeManifestInvalid).
		With("path", path).
		Errorf(format, args...)
}

func wrapManifestInvalid(path string, err error) error {
	return oops.Code(CodeManifestInvalid).
		With("path", path).
		Wrap(err)
}
