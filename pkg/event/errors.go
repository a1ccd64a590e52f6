// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package event

import (
	"github.com/samber/oops"

	"github.com/holomush/bricks/pkg/brick"
)

// Error codes for event routing failures.
const (
	CodeEventNotRegistered = "EVENT_NOT_REGISTERED"
	CodeListenerFailed     = "LISTENER_FAILED"
)

// ErrEventNotRegistered creates an error for a listener on an unknown event type.
func ErrEventNotRegistered(event brick.TypeID, b Binding) error {
	return oops.Code(CodeEventNotRegistered).
		With("event", string(event)).
		With("owner", string(b.Owner)).
		With("method", b.Method).
		Errorf("event %s is not registered", event)
}

// ErrListenerFailed wraps an error returned by a listener.
func ErrListenerFailed(event brick.TypeID, b Binding, cause error) error {
	return oops.Code(CodeListenerFailed).
		With("event", string(event)).
		With("owner", string(b.Owner)).
		With("method", b.Method).
		Wrapf(cause, "listener %s.%s failed", b.Owner, b.Method)
}
