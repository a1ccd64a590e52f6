// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package brick is the SDK used by extension packages ("bricks").
//
// A brick package declares its types in an init function:
//
//	func init() {
//		brick.Register[HelloBrick]()
//		brick.Register[Greeter](
//			brick.Component(brick.ConfigFile("greeter.yaml")),
//			brick.Constructor(NewGreeter),
//			brick.Listener("OnJoined"),
//		)
//		brick.Register[Joined](brick.Event())
//	}
//
// Exactly one type per package embeds Base; it is the brick's entry type and
// may expose an Init method whose parameters are resolved from the
// component container.
package brick

import (
	"reflect"
)

// Brick is implemented by the entry type of an extension package.
// Embed Base to implement it.
type Brick interface {
	isBrick()
}

// Base marks the embedding type as a brick entry type.
type Base struct{}

func (Base) isBrick() {}

// Config is the structured configuration value handed to component
// constructors that declare a config file.
type Config map[string]any

// TypeID is the stable identifier of a named Go type:
// "<import path>.<TypeName>". Pointer types resolve to their element type.
type TypeID string

// String returns the identifier as a string.
func (id TypeID) String() string {
	return string(id)
}

// Well-known type identifiers.
var (
	BrickType  = TypeIDOf(reflect.TypeFor[Brick]())
	ConfigType = TypeIDOf(reflect.TypeFor[Config]())
)

// TypeIDOf returns the identifier of t. Unnamed types (including the empty
// interface) have no identifier and yield "".
func TypeIDOf(t reflect.Type) TypeID {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return TypeID(t.Name())
	}
	return TypeID(t.PkgPath() + "." + t.Name())
}

// TypeOf returns the identifier of T.
func TypeOf[T any]() TypeID {
	return TypeIDOf(reflect.TypeFor[T]())
}

// IDOf returns the identifier of the dynamic type of v.
func IDOf(v any) TypeID {
	if v == nil {
		return ""
	}
	return TypeIDOf(reflect.TypeOf(v))
}
