// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package loader turns installed brick packages into a running set of
// components.
//
// A load discovers bricks (by scanning installed packages or by restoring a
// cached registry), then initializes them: components are activated, listener
// methods are bound to events and every entry type's Init method is called.
package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/pkg/brick"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/container"
	"github.com/holomush/bricks/pkg/event"
	"github.com/holomush/bricks/pkg/registry"
)

// Cache location of the registry snapshot.
const (
	CacheNamespace = "bricks"
	CacheKey       = "loader"
)

// initMethod is the entry type method called once components are active.
const initMethod = "Init"

var tracer = otel.Tracer("holomush/bricks/loader")

// Enumerator lists installed packages.
type Enumerator interface {
	ListPackagesByType(packageType string) []string
	// InstallRoot returns the directory of an installed package, or false
	// when the package is not present on disk.
	InstallRoot(name string) (string, bool)
}

// SymbolScanner lists the types declared below a directory.
type SymbolScanner interface {
	Scan(root string) ([]discovery.Symbol, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithTypes sets the type system. Defaults to brick.Default.
func WithTypes(types brick.TypeSystem) Option {
	return func(l *Loader) {
		l.types = types
	}
}

// WithEnumerator sets the source of installed packages.
func WithEnumerator(e Enumerator) Option {
	return func(l *Loader) {
		l.packages = e
	}
}

// WithScanner replaces the source scanner.
func WithScanner(s SymbolScanner) Option {
	return func(l *Loader) {
		l.scanner = s
	}
}

// WithCache sets the cache for registry snapshots. Without one nothing is
// cached and LoadFromCache always loads fresh.
func WithCache(m *cache.Manager) Option {
	return func(l *Loader) {
		l.cache = m
	}
}

// WithConfigDir sets the directory component config files are read from.
func WithConfigDir(dir string) Option {
	return func(l *Loader) {
		l.configDir = dir
	}
}

// WithPackageType sets the package type listed by LoadFresh.
func WithPackageType(packageType string) Option {
	return func(l *Loader) {
		l.packageType = packageType
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader owns the registry, container and router of one application.
// Loads are not safe for concurrent use.
type Loader struct {
	types       brick.TypeSystem
	packages    Enumerator
	scanner     SymbolScanner
	cache       *cache.Manager
	configDir   string
	packageType string
	logger      *slog.Logger

	registry  *registry.Registry
	container *container.Container
	router    *event.Router
}

// New creates a loader with an empty registry.
func New(opts ...Option) *Loader {
	l := &Loader{
		types:       brick.Default,
		scanner:     discovery.DefaultScanner(),
		packageType: discovery.BrickPackageType,
		logger:      slog.Default(),
		registry:    registry.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the brick registry.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Container returns the container of the last initialization, or nil.
func (l *Loader) Container() *container.Container {
	return l.container
}

// Router returns the event router of the last initialization, or nil.
func (l *Loader) Router() *event.Router {
	return l.router
}

// Reset discards all bricks and active components. It must not run
// concurrently with anything else using the loader.
func (l *Loader) Reset() {
	l.registry = registry.New()
	l.container = nil
	l.router = nil
	BricksLoaded.Set(0)
}

// LoadFresh scans every installed brick package, caches the resulting
// registry and initializes it. A package without exactly one entry type
// aborts the load; other per-package failures are logged and the package
// skipped.
func (l *Loader) LoadFresh(ctx context.Context) (err error) {
	ctx, logger, end := l.begin(ctx, "loader.load_fresh", ModeFresh)
	defer func() { end(err) }()

	var names []string
	if l.packages != nil {
		names = l.packages.ListPackagesByType(l.packageType)
	}

	for _, name := range names {
		root, ok := l.packages.InstallRoot(name)
		if !ok {
			logger.DebugContext(ctx, "package not installed", "package", name)
			continue
		}
		if err := l.addDir(ctx, logger, root, name); err != nil {
			return err
		}
	}

	if err := l.save(ctx); err != nil {
		return err
	}
	return l.Initialize(ctx)
}

// LoadFromDir scans dir as the brick package pkg, adds it and caches the
// registry. It does not initialize.
func (l *Loader) LoadFromDir(ctx context.Context, dir, pkg string) (err error) {
	ctx, logger, end := l.begin(ctx, "loader.load_from_dir", ModeDir)
	defer func() { end(err) }()

	if err := l.addDir(ctx, logger, dir, pkg); err != nil {
		return err
	}
	return l.save(ctx)
}

// LoadFromCache restores the registry from the cache and initializes it.
// Without a cache entry it behaves like LoadFresh.
func (l *Loader) LoadFromCache(ctx context.Context) (err error) {
	if l.cache == nil {
		return l.LoadFresh(ctx)
	}

	var bricks []registry.Brick
	found, err := l.cache.Load(ctx, CacheNamespace, CacheKey, &bricks)
	if err != nil {
		return err
	}
	if !found {
		l.logger.DebugContext(ctx, "no cached registry", "namespace", CacheNamespace, "key", CacheKey)
		return l.LoadFresh(ctx)
	}

	ctx, logger, end := l.begin(ctx, "loader.load_from_cache", ModeCached)
	defer func() { end(err) }()

	if err := l.registry.Restore(bricks, l.types); err != nil {
		return err
	}
	logger.DebugContext(ctx, "registry restored", "bricks", len(bricks))
	return l.Initialize(ctx)
}

// Initialize builds a new container and router for the registry: it activates
// every component, binds listeners and calls the Init method of each entry
// type whose parameters are all active. The container, the registry, the
// router and the loader itself are available to components as dependencies.
func (l *Loader) Initialize(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "loader.initialize",
		trace.WithAttributes(attribute.Int("bricks.count", l.registry.Len())),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c := container.New(l.types,
		container.WithConfigDir(l.configDir),
		container.WithLogger(l.logger),
	)
	events := l.registry.Components(registry.Tagged(l.types, brick.KindEvent))
	r := event.NewRouter(events, c, l.types, event.WithLogger(l.logger))

	for _, instance := range []any{c, l.registry, r, l} {
		if err := c.Add(instance); err != nil {
			return err
		}
	}

	components := l.registry.Components(registry.Tagged(l.types, brick.KindComponent))
	if err := c.Resolve(ctx, components); err != nil {
		return err
	}
	if err := event.BindListeners(r, l.types, components); err != nil {
		return err
	}

	for _, b := range l.registry.Bricks() {
		if err := l.initBrick(ctx, c, b); err != nil {
			return err
		}
	}

	l.container = c
	l.router = r
	return nil
}

func (l *Loader) initBrick(ctx context.Context, c *container.Container, b registry.Brick) error {
	methods, err := l.types.MethodsOf(b.Entry)
	if err != nil {
		return err
	}

	for _, m := range methods {
		if m.Name != initMethod {
			continue
		}

		args, ok, err := c.Bind(m.Params, "")
		if err != nil {
			return ErrInitFailed(b.Package, b.Entry, err)
		}
		if !ok {
			l.logger.DebugContext(ctx, "brick init skipped: dependencies not active",
				"package", b.Package,
				"type", b.Entry)
			return nil
		}

		target, err := l.types.Zero(b.Entry)
		if err != nil {
			return err
		}
		if err := l.types.Invoke(target, initMethod, args...); err != nil {
			return ErrInitFailed(b.Package, b.Entry, err)
		}
		l.logger.DebugContext(ctx, "brick initialized", "package", b.Package)
		return nil
	}
	return nil
}

// addDir loads dir into the registry. Entry type errors are returned; any
// other failure is logged and the package skipped.
func (l *Loader) addDir(ctx context.Context, logger *slog.Logger, dir, pkg string) error {
	b, err := l.loadDir(dir, pkg)
	if err == nil {
		l.registry.AddBrick(b)
		logger.InfoContext(ctx, "brick loaded",
			"package", pkg,
			"entry", b.Entry,
			"members", len(b.Members))
		return nil
	}

	switch errutil.Code(err) {
	case CodeNoEntryType, CodeMultipleEntryTypes:
		return err
	}
	logger.WarnContext(ctx, "skipping brick package",
		"package", pkg,
		"dir", dir,
		"error", err)
	return nil
}

// loadDir scans dir and sorts the declared types into the entry type and
// the members. Types unknown to the type system are ignored. A directory
// declaring no types at all has no entry type.
func (l *Loader) loadDir(dir, pkg string) (registry.Brick, error) {
	symbols, err := l.scanner.Scan(dir)
	if err != nil {
		return registry.Brick{}, errScanFailed(pkg, dir, err)
	}

	b := registry.Brick{Package: pkg}
	known := 0
	for _, s := range symbols {
		if !l.types.Has(s.Type) {
			continue
		}
		known++

		isEntry, err := l.types.IsSubtypeOf(s.Type, brick.BrickType)
		if err != nil {
			return registry.Brick{}, err
		}
		if !isEntry {
			b.Members = append(b.Members, s.Type)
			continue
		}
		if b.Entry != "" {
			return registry.Brick{}, ErrMultipleEntryTypes(pkg, b.Entry, s.Type)
		}
		b.Entry = s.Type
	}

	switch {
	case known == 0 && len(symbols) > 0:
		return registry.Brick{}, errNotLinked(pkg, dir)
	case b.Entry == "":
		return registry.Brick{}, ErrNoEntryType(pkg)
	}
	return b, nil
}

func (l *Loader) save(ctx context.Context) error {
	BricksLoaded.Set(float64(l.registry.Len()))
	if l.cache == nil {
		return nil
	}
	return l.cache.Save(ctx, CacheNamespace, CacheKey, l.registry.Snapshot())
}

// begin starts the span and timer of a load and returns a logger carrying a
// load ID. The returned func ends both.
func (l *Loader) begin(ctx context.Context, spanName, mode string) (context.Context, *slog.Logger, func(error)) {
	loadID := ulid.Make().String()
	logger := l.logger.With("load_id", loadID, "mode", mode)

	ctx, span := tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("load.id", loadID)),
	)
	start := time.Now()

	return ctx, logger, func(err error) {
		LoadDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "brick load failed", "error", err)
		} else {
			logger.InfoContext(ctx, "brick load complete", "bricks", l.registry.Len())
		}
		span.End()
	}
}
