// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package twobricks declares two entry types.
package twobricks

import (
	"github.com/holomush/bricks/pkg/brick"
)

func init() {
	brick.Register[First]()
	brick.Register[Second]()
}

// First is an entry type.
type First struct{ brick.Base }

// Second is another entry type.
type Second struct{ brick.Base }
