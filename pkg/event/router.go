// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package event routes typed events to listener methods of active components.
//
// The set of event types is fixed when the router is created. Dispatching a
// value whose type is outside that set is a no-op that returns the value.
package event

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/bricks/pkg/brick"
)

var tracer = otel.Tracer("holomush/bricks/event")

// Binding names a listener method on the component of type Owner.
type Binding struct {
	Owner  brick.TypeID `json:"owner"`
	Method string       `json:"method"`
}

// InstanceSource looks up active component instances.
type InstanceSource interface {
	Get(id brick.TypeID) (any, bool)
}

// Invoker calls a method on an instance.
type Invoker interface {
	Invoke(target any, method string, args ...any) error
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// Router dispatches events to bound listeners in registration order.
// Dispatch is safe for concurrent use.
type Router struct {
	instances InstanceSource
	invoker   Invoker
	logger    *slog.Logger

	events    []brick.TypeID
	mu        sync.RWMutex
	listeners map[brick.TypeID][]Binding
}

// NewRouter creates a router for the given event types. Repeated types are
// registered once.
func NewRouter(events []brick.TypeID, instances InstanceSource, invoker Invoker, opts ...Option) *Router {
	r := &Router{
		instances: instances,
		invoker:   invoker,
		logger:    slog.Default(),
		listeners: make(map[brick.TypeID][]Binding, len(events)),
	}
	for _, ev := range events {
		if _, ok := r.listeners[ev]; ok {
			continue
		}
		r.listeners[ev] = []Binding{}
		r.events = append(r.events, ev)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddListener appends b to the listeners of event.
func (r *Router) AddListener(event brick.TypeID, b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bindings, ok := r.listeners[event]
	if !ok {
		return ErrEventNotRegistered(event, b)
	}
	r.listeners[event] = append(bindings, b)
	return nil
}

// HasEvent reports whether event is routed.
func (r *Router) HasEvent(event brick.TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.listeners[event]
	return ok
}

// Events returns the routed event types in registration order.
func (r *Router) Events() []brick.TypeID {
	return slices.Clone(r.events)
}

// Listeners returns the bindings of event in registration order.
func (r *Router) Listeners(event brick.TypeID) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.listeners[event])
}

// Dispatch hands ev to every listener of its type and returns ev.
// Listeners whose owner is not active, or whose method cannot accept ev, are
// skipped. The first error returned by a listener stops dispatch.
func (r *Router) Dispatch(ctx context.Context, ev any) (result any, err error) {
	id := brick.IDOf(ev)

	r.mu.RLock()
	bindings, routed := r.listeners[id]
	bindings = slices.Clone(bindings)
	r.mu.RUnlock()

	if !routed {
		recordUnrouted()
		return ev, nil
	}

	ctx, span := tracer.Start(ctx, "event.dispatch",
		trace.WithAttributes(
			attribute.String("event.type", string(id)),
			attribute.Int("event.listeners", len(bindings)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			recordDispatch(id, StatusFailed)
		} else {
			recordDispatch(id, StatusDelivered)
		}
		span.End()
	}()

	for _, b := range bindings {
		owner, ok := r.instances.Get(b.Owner)
		if !ok {
			r.logger.DebugContext(ctx, "listener owner not active",
				"event", id,
				"owner", b.Owner)
			continue
		}

		err := r.invoker.Invoke(owner, b.Method, ev)
		switch {
		case err == nil:
		case errors.Is(err, brick.ErrSignatureMismatch), errors.Is(err, brick.ErrUnknownMethod):
			r.logger.DebugContext(ctx, "listener skipped",
				"event", id,
				"owner", b.Owner,
				"method", b.Method,
				"error", err)
		default:
			return ev, ErrListenerFailed(id, b, err)
		}
	}
	return ev, nil
}

// Dispatch is the typed form of Router.Dispatch.
func Dispatch[E any](ctx context.Context, r *Router, ev *E) (*E, error) {
	if _, err := r.Dispatch(ctx, ev); err != nil {
		return ev, err
	}
	return ev, nil
}

// BindListeners adds a binding for every method of the given component types
// tagged as listener that takes exactly one named parameter. Other listener
// methods are ignored.
func BindListeners(r *Router, intro brick.Introspector, components []brick.TypeID) error {
	for _, owner := range components {
		methods, err := intro.MethodsOf(owner)
		if err != nil {
			return err
		}
		for _, m := range methods {
			if !m.HasTag(brick.KindListener) || len(m.Params) != 1 || m.Params[0] == "" {
				continue
			}
			if err := r.AddListener(m.Params[0], Binding{Owner: owner, Method: m.Name}); err != nil {
				return err
			}
		}
	}
	return nil
}
