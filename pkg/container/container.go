// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package container activates components and keeps one instance per type.
//
// Resolve works in passes. Each pass tries every pending component in order
// and activates those whose constructor parameters are all available. A pass
// that activates nothing ends resolution with a CYCLIC_DEPENDENCY error naming
// the components still pending, which covers both true cycles and
// dependencies on types that never become available.
package container

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/holomush/bricks/internal/configfile"
	"github.com/holomush/bricks/pkg/brick"
)

// ConfigLoader parses the config file at path.
type ConfigLoader func(path string) (brick.Config, error)

// Option configures a Container.
type Option func(*Container)

// WithConfigDir sets the directory relative config file names resolve against.
func WithConfigDir(dir string) Option {
	return func(c *Container) {
		c.configDir = dir
	}
}

// WithConfigLoader replaces the YAML config loader.
func WithConfigLoader(load ConfigLoader) Option {
	return func(c *Container) {
		c.loadConfig = load
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// Container holds active component instances keyed by type.
// Lookups are safe for concurrent use; Resolve is meant to run once at startup.
type Container struct {
	types      brick.TypeSystem
	configDir  string
	loadConfig ConfigLoader
	logger     *slog.Logger

	mu        sync.RWMutex
	instances map[brick.TypeID]any
	order     []brick.TypeID
}

// New creates an empty container backed by types.
func New(types brick.TypeSystem, opts ...Option) *Container {
	c := &Container{
		types:      types,
		loadConfig: configfile.Load,
		logger:     slog.Default(),
		instances:  make(map[brick.TypeID]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve activates every component in ids whose dependencies can be met.
// Components with AutoActivate unset are accepted without being constructed.
func (c *Container) Resolve(ctx context.Context, ids []brick.TypeID) error {
	pending := slices.Clone(ids)
	passes := 0
	defer func() {
		ResolutionPasses.Observe(float64(passes))
	}()

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		passes++

		var blocked []brick.TypeID
		for _, id := range pending {
			done, err := c.activate(id)
			if err != nil {
				return err
			}
			if !done {
				blocked = append(blocked, id)
			}
		}

		if len(blocked) == len(pending) {
			c.logger.DebugContext(ctx, "dependency resolution stalled",
				"pass", passes,
				"blocked", len(blocked))
			return ErrCyclicDependency(blocked)
		}
		pending = blocked
	}

	c.logger.DebugContext(ctx, "dependencies resolved",
		"components", len(ids),
		"passes", passes)
	return nil
}

// activate tries to construct id. It reports false when id stays blocked.
func (c *Container) activate(id brick.TypeID) (bool, error) {
	tags, err := c.types.TagsOf(id, brick.KindComponent)
	if errors.Is(err, brick.ErrUnknownType) {
		c.logger.Debug("component type not resolvable", "type", id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(tags) == 0 {
		return false, ErrNotAComponent(id)
	}

	tag, _ := tags[0].(brick.ComponentTag)
	if !tag.AutoActivate {
		return true, nil
	}

	params, err := c.types.ConstructorParams(id)
	switch {
	case errors.Is(err, brick.ErrNoConstructor):
		return false, ErrMissingConstructor(id)
	case err != nil:
		c.logger.Debug("constructor not introspectable", "type", id, "error", err)
		return false, nil
	}

	args, ok, err := c.Bind(params, tag.ConfigFile)
	if err != nil || !ok {
		return false, err
	}

	instance, err := c.types.Construct(id, args)
	if err != nil {
		return false, ErrConstructFailed(id, err)
	}
	if err := c.Add(instance); err != nil {
		return false, err
	}

	ComponentsActivated.Inc()
	c.logger.Debug("component activated", "type", id)
	return true, nil
}

// Bind produces call arguments for params. Each parameter is bound to an
// active component of that type, or to the parsed content of configFile when
// it has type brick.Config and the file exists. ok is false as soon as one
// parameter cannot be bound.
func (c *Container) Bind(params []brick.TypeID, configFile string) (args []any, ok bool, err error) {
	args = make([]any, 0, len(params))
	for _, p := range params {
		if instance, found := c.Get(p); found {
			args = append(args, instance)
			continue
		}
		if p == brick.ConfigType && configFile != "" {
			cfg, found, err := c.config(configFile)
			if err != nil {
				return nil, false, err
			}
			if found {
				args = append(args, cfg)
				continue
			}
		}
		return nil, false, nil
	}
	return args, true, nil
}

func (c *Container) config(name string) (brick.Config, bool, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.configDir, name)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, ErrConfigParseFailed(path, err)
	}

	cfg, err := c.loadConfig(path)
	if err != nil {
		return nil, false, ErrConfigParseFailed(path, err)
	}
	return cfg, true, nil
}

// Add registers instance under the type of its dynamic value.
func (c *Container) Add(instance any) error {
	id := brick.IDOf(instance)
	if id == "" {
		return ErrNotAComponent(id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.instances[id]; exists {
		return ErrDuplicateComponent(id)
	}
	c.instances[id] = instance
	c.order = append(c.order, id)
	return nil
}

// Has reports whether an instance of id is active.
func (c *Container) Has(id brick.TypeID) bool {
	_, ok := c.Get(id)
	return ok
}

// Get returns the active instance of id.
func (c *Container) Get(id brick.TypeID) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	instance, ok := c.instances[id]
	return instance, ok
}

// Activated returns the active types in the order they were added.
func (c *Container) Activated() []brick.TypeID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Lookup returns the active instance of T.
func Lookup[T any](c *Container) (*T, bool) {
	instance, ok := c.Get(brick.TypeOf[T]())
	if !ok {
		return nil, false
	}
	typed, ok := instance.(*T)
	return typed, ok
}
