// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package brick

// TagKind names a kind of metadata tag attached to a declared type or method.
type TagKind string

// Tag kinds understood by the runtime.
const (
	KindComponent TagKind = "component"
	KindEvent     TagKind = "event"
	KindListener  TagKind = "listener"
)

// Tag is a metadata tag instance.
type Tag interface {
	Kind() TagKind
}

// ComponentTag marks a type as an injectable component.
type ComponentTag struct {
	// ConfigFile is resolved against the host's config directory. When the
	// file exists, constructor parameters of type Config receive its content.
	ConfigFile string
	// AutoActivate is false for components the host adds to the container
	// itself.
	AutoActivate bool
}

// Kind implements Tag.
func (ComponentTag) Kind() TagKind { return KindComponent }

// EventTag marks a type as an event.
type EventTag struct{}

// Kind implements Tag.
func (EventTag) Kind() TagKind { return KindEvent }

// ListenerTag marks a method as an event listener.
type ListenerTag struct{}

// Kind implements Tag.
func (ListenerTag) Kind() TagKind { return KindListener }

// Option configures a type declaration.
type Option func(*declaration)

// ComponentOption configures a ComponentTag.
type ComponentOption func(*ComponentTag)

type declaration struct {
	tags      []Tag
	ctor      any
	listeners []string
}

// Component tags the declared type as a component.
func Component(opts ...ComponentOption) Option {
	tag := ComponentTag{AutoActivate: true}
	for _, opt := range opts {
		opt(&tag)
	}
	return func(d *declaration) {
		d.tags = append(d.tags, tag)
	}
}

// ConfigFile sets the component's config file name.
func ConfigFile(name string) ComponentOption {
	return func(t *ComponentTag) {
		t.ConfigFile = name
	}
}

// Manual disables automatic activation of the component.
func Manual() ComponentOption {
	return func(t *ComponentTag) {
		t.AutoActivate = false
	}
}

// Event tags the declared type as an event.
func Event() Option {
	return func(d *declaration) {
		d.tags = append(d.tags, EventTag{})
	}
}

// Constructor sets the function used to build instances of the declared type.
// fn must return *T or (*T, error).
func Constructor(fn any) Option {
	return func(d *declaration) {
		d.ctor = fn
	}
}

// Listener tags the named method of the declared type as an event listener.
// The method takes a single pointer to the event type, since events are
// dispatched by pointer. Declaring a listener that takes the event by value
// fails.
func Listener(method string) Option {
	return func(d *declaration) {
		d.listeners = append(d.listeners, method)
	}
}
