// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package nobrick declares a component but no entry type.
package nobrick

import (
	"github.com/holomush/bricks/pkg/brick"
)

func init() {
	brick.Register[Orphan](brick.Component(), brick.Constructor(NewOrphan))
}

// Orphan is a component without a brick.
type Orphan struct{}

// NewOrphan creates an Orphan.
func NewOrphan() *Orphan { return &Orphan{} }
