// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package cache persists discovery results between runs.
//
// Values are stored as YAML under a name derived from a namespace and a key.
// The storage itself is pluggable: FileStore keeps one file per entry and
// PostgresStore keeps entries in a single table.
package cache

import (
	"context"
	"encoding/hex"
	"log/slog"

	"github.com/samber/oops"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Mode controls whether the cache is used at all.
type Mode string

// Cache modes.
const (
	// ModeProd reads and writes entries.
	ModeProd Mode = "prod"
	// ModeDev ignores the store: nothing is saved and nothing is found.
	ModeDev Mode = "dev"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeProd, ModeDev:
		return Mode(s), nil
	default:
		return "", oops.Code(CodeInvalidMode).
			With("mode", s).
			Errorf("unknown cache mode %q", s)
	}
}

// Store holds named blobs.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	// Get returns found=false and no error for a missing entry.
	Get(ctx context.Context, name string) (data []byte, found bool, err error)
	Has(ctx context.Context, name string) (bool, error)
	Clear(ctx context.Context) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithMode sets the cache mode.
func WithMode(mode Mode) Option {
	return func(m *Manager) {
		m.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager encodes values into a Store.
type Manager struct {
	store  Store
	mode   Mode
	logger *slog.Logger
}

// NewManager creates a manager in ModeProd over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		mode:   ModeProd,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mode returns the cache mode.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Name returns the storage name of (namespace, key).
func Name(namespace, key string) string {
	sum := blake2b.Sum512([]byte(namespace + key))
	return hex.EncodeToString(sum[:])
}

// Save encodes v and stores it under (namespace, key).
func (m *Manager) Save(ctx context.Context, namespace, key string, v any) error {
	if m.mode == ModeDev {
		return nil
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return oops.Code(CodeEncodeFailed).
			With("namespace", namespace).
			With("key", key).
			Wrap(err)
	}

	name := Name(namespace, key)
	if err := m.store.Put(ctx, name, data); err != nil {
		return oops.Code(CodeWriteFailed).
			With("namespace", namespace).
			With("key", key).
			Wrap(err)
	}

	m.logger.DebugContext(ctx, "cache entry saved",
		"namespace", namespace,
		"key", key,
		"bytes", len(data))
	return nil
}

// Load decodes the entry (namespace, key) into out. found is false when no
// entry exists, in which case out is untouched.
func (m *Manager) Load(ctx context.Context, namespace, key string, out any) (found bool, err error) {
	if m.mode == ModeDev {
		return false, nil
	}

	data, found, err := m.store.Get(ctx, Name(namespace, key))
	if err != nil {
		return false, oops.Code(CodeReadFailed).
			With("namespace", namespace).
			With("key", key).
			Wrap(err)
	}
	if !found {
		return false, nil
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return false, oops.Code(CodeDecodeFailed).
			With("namespace", namespace).
			With("key", key).
			Wrap(err)
	}
	return true, nil
}

// Exists reports whether an entry exists for (namespace, key).
func (m *Manager) Exists(ctx context.Context, namespace, key string) (bool, error) {
	if m.mode == ModeDev {
		return false, nil
	}

	ok, err := m.store.Has(ctx, Name(namespace, key))
	if err != nil {
		return false, oops.Code(CodeReadFailed).
			With("namespace", namespace).
			With("key", key).
			Wrap(err)
	}
	return ok, nil
}

// Clear removes every entry from the store, regardless of mode.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return oops.Code(CodeWriteFailed).With("operation", "clear").Wrap(err)
	}
	return nil
}
