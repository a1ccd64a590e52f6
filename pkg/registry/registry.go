// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package registry holds the bricks loaded into a host.
package registry

import (
	"slices"
	"sync"

	"github.com/holomush/bricks/pkg/brick"
)

// Brick is a loaded extension package.
type Brick struct {
	// Package is the identifier of the package the brick was loaded from.
	Package string `yaml:"package" json:"package"`
	// Entry is the brick's entry type.
	Entry brick.TypeID `yaml:"entry" json:"entry"`
	// Members are the declared types of the package in discovery order.
	Members []brick.TypeID `yaml:"members,omitempty" json:"members,omitempty"`
}

// Resolver reports whether a type identifier is still known.
type Resolver interface {
	Has(id brick.TypeID) bool
}

// Validate checks that the entry and every member resolve.
func (b Brick) Validate(r Resolver) error {
	if !r.Has(b.Entry) {
		return ErrUnknownType(b.Package, b.Entry)
	}
	for _, m := range b.Members {
		if !r.Has(m) {
			return ErrUnknownType(b.Package, m)
		}
	}
	return nil
}

func (b Brick) clone() Brick {
	b.Members = slices.Clone(b.Members)
	return b
}

// Predicate selects member types.
type Predicate func(id brick.TypeID) bool

// Tagged selects types carrying at least one tag of kind.
// Types the introspector cannot resolve are not selected.
func Tagged(intro brick.Introspector, kind brick.TagKind) Predicate {
	return func(id brick.TypeID) bool {
		tags, err := intro.TagsOf(id, kind)
		return err == nil && len(tags) > 0
	}
}

// Registry is an ordered collection of bricks.
// It is thread-safe for concurrent access.
type Registry struct {
	bricks []Brick
	mu     sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// AddBrick appends b. Adding a package twice keeps both entries.
func (r *Registry) AddBrick(b Brick) {
	r.AddBricks(b)
}

// AddBricks appends bricks in order.
func (r *Registry) AddBricks(bricks ...Brick) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bricks {
		r.bricks = append(r.bricks, b.clone())
	}
}

// Brick returns the first brick loaded from pkg.
func (r *Registry) Brick(pkg string) (*Brick, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bricks {
		if b.Package == pkg {
			found := b.clone()
			return &found, true
		}
	}
	return nil, false
}

// Bricks returns the bricks in insertion order.
// The returned slice is a copy and safe to modify.
func (r *Registry) Bricks() []Brick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Brick, len(r.bricks))
	for i, b := range r.bricks {
		out[i] = b.clone()
	}
	return out
}

// Components returns the member types of every brick that satisfy pred,
// concatenated in brick order. A nil pred selects every member. Types shared
// by several bricks appear once per brick.
func (r *Registry) Components(pred Predicate) []brick.TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []brick.TypeID{}
	for _, b := range r.bricks {
		for _, m := range b.Members {
			if pred == nil || pred(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// Len returns the number of bricks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bricks)
}

// Snapshot returns the registry content for persistence.
func (r *Registry) Snapshot() []Brick {
	return r.Bricks()
}

// Restore replaces the registry content with bricks after checking that
// every type still resolves. On error the registry is left unchanged.
func (r *Registry) Restore(bricks []Brick, res Resolver) error {
	for _, b := range bricks {
		if err := b.Validate(res); err != nil {
			return err
		}
	}

	restored := make([]Brick, len(bricks))
	for i, b := range bricks {
		restored[i] = b.clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bricks = restored
	return nil
}
