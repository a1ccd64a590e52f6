// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cache

import (
	"github.com/samber/oops"
)

// Error codes for cache failures.
const (
	CodeWriteFailed  = "CACHE_WRITE_FAILED"
	CodeReadFailed   = "CACHE_READ_FAILED"
	CodeDecodeFailed = "CACHE_DECODE_FAILED"
	CodeEncodeFailed = "CACHE_ENCODE_FAILED"
	CodeNotMigrated  = "CACHE_NOT_MIGRATED"
	CodeInvalidMode  = "CACHE_INVALID_MODE"
)

// ErrNotMigrated creates an error for a database without the cache table.
func ErrNotMigrated(cause error) error {
	return oops.Code(CodeNotMigrated).
		Hint("run `bricks cache migrate`").
		Wrapf(cause, "cache table missing")
}
