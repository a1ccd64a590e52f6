// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package loader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/pkg/brick"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/container"
	"github.com/holomush/bricks/pkg/event"
	"github.com/holomush/bricks/pkg/loader"
	"github.com/holomush/bricks/pkg/registry"
)

type entry struct{ brick.Base }

func (*entry) Init(s *service) { s.inits++ }

type service struct {
	inits int
	seen  []int
}

func newService() *service { return &service{} }

func (s *service) OnPing(p *ping) {
	s.seen = append(s.seen, p.n)
	p.n = 42
}

type ping struct{ n int }

type lonely struct{}

type second struct{ brick.Base }

var errInit = errors.New("init failed")

type failing struct{ brick.Base }

func (*failing) Init(*service) error { return errInit }

type unsatisfied struct{ brick.Base }

func (*unsatisfied) Init(*lonely) { panic("must not be called") }

type plain struct{}

func testCatalog() *brick.Catalog {
	c := brick.NewCatalog()
	brick.MustDeclare[entry](c)
	brick.MustDeclare[service](c,
		brick.Component(),
		brick.Constructor(newService),
		brick.Listener("OnPing"),
	)
	brick.MustDeclare[ping](c, brick.Event())
	brick.MustDeclare[lonely](c)
	brick.MustDeclare[second](c)
	brick.MustDeclare[failing](c)
	brick.MustDeclare[unsatisfied](c)
	return c
}

func symbols(ids ...brick.TypeID) []discovery.Symbol {
	out := make([]discovery.Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, discovery.Symbol{Type: id, File: "brick.go"})
	}
	return out
}

// fakeScanner returns fixed symbols per directory.
type fakeScanner struct {
	dirs  map[string][]discovery.Symbol
	fail  map[string]error
	calls int
}

func (s *fakeScanner) Scan(root string) ([]discovery.Symbol, error) {
	s.calls++
	if err := s.fail[root]; err != nil {
		return nil, err
	}
	return s.dirs[root], nil
}

// fakePackages maps package names to install roots; an empty root means
// the package is listed but not installed.
type fakePackages struct {
	names []string
	roots map[string]string
}

func (p fakePackages) ListPackagesByType(packageType string) []string {
	if packageType != discovery.BrickPackageType {
		return nil
	}
	return p.names
}

func (p fakePackages) InstallRoot(name string) (string, bool) {
	root := p.roots[name]
	return root, root != ""
}

// countingStore counts store operations.
type countingStore struct {
	cache.Store
	puts, gets int
}

func (s *countingStore) Put(ctx context.Context, name string, data []byte) error {
	s.puts++
	return s.Store.Put(ctx, name, data)
}

func (s *countingStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	s.gets++
	return s.Store.Get(ctx, name)
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	return &countingStore{Store: cache.NewFileStore(t.TempDir())}
}

func goodScanner() *fakeScanner {
	return &fakeScanner{dirs: map[string][]discovery.Symbol{
		"/bricks/a": symbols(brick.TypeOf[service](), brick.TypeOf[entry](), "example.com/a.Unknown", brick.TypeOf[ping]()),
		"/bricks/x": symbols("example.com/x.Thing"),
	}}
}

func goodPackages() fakePackages {
	return fakePackages{
		names: []string{"a", "missing", "x"},
		roots: map[string]string{"a": "/bricks/a", "x": "/bricks/x"},
	}
}

func TestLoader_LoadFresh(t *testing.T) {
	store := newStore(t)
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(goodScanner()),
		loader.WithCache(cache.NewManager(store)),
	)

	require.NoError(t, l.LoadFresh(context.Background()))

	assert.Equal(t, []registry.Brick{{
		Package: "a",
		Entry:   brick.TypeOf[entry](),
		Members: []brick.TypeID{brick.TypeOf[service](), brick.TypeOf[ping]()},
	}}, l.Registry().Bricks())
	assert.Equal(t, 1, store.puts)
	assert.InDelta(t, 1, testutil.ToFloat64(loader.BricksLoaded), 0)

	svc, ok := container.Lookup[service](l.Container())
	require.True(t, ok)
	assert.Equal(t, 1, svc.inits)

	ev, err := event.Dispatch(context.Background(), l.Router(), &ping{n: -2})
	require.NoError(t, err)
	assert.Equal(t, 42, ev.n)
	assert.Equal(t, []int{-2}, svc.seen)
}

func TestLoader_InitializeExposesRuntime(t *testing.T) {
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(goodScanner()),
	)
	require.NoError(t, l.LoadFresh(context.Background()))

	c := l.Container()
	got, ok := container.Lookup[loader.Loader](c)
	require.True(t, ok)
	assert.Same(t, l, got)

	reg, ok := container.Lookup[registry.Registry](c)
	require.True(t, ok)
	assert.Same(t, l.Registry(), reg)

	r, ok := container.Lookup[event.Router](c)
	require.True(t, ok)
	assert.Same(t, l.Router(), r)

	self, ok := container.Lookup[container.Container](c)
	require.True(t, ok)
	assert.Same(t, c, self)
}

func TestLoader_LoadFreshEntryErrors(t *testing.T) {
	tests := []struct {
		name    string
		symbols []discovery.Symbol
		code    string
	}{
		{
			name:    "no entry type",
			symbols: symbols(brick.TypeOf[lonely]()),
			code:    loader.CodeNoEntryType,
		},
		{
			name:    "empty package",
			symbols: nil,
			code:    loader.CodeNoEntryType,
		},
		{
			name:    "two entry types",
			symbols: symbols(brick.TypeOf[entry](), brick.TypeOf[lonely](), brick.TypeOf[second]()),
			code:    loader.CodeMultipleEntryTypes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := goodScanner()
			scanner.dirs["/bricks/bad"] = tt.symbols
			store := newStore(t)
			l := loader.New(
				loader.WithTypes(testCatalog()),
				loader.WithEnumerator(fakePackages{
					names: []string{"a", "bad"},
					roots: map[string]string{"a": "/bricks/a", "bad": "/bricks/bad"},
				}),
				loader.WithScanner(scanner),
				loader.WithCache(cache.NewManager(store)),
			)

			err := l.LoadFresh(context.Background())
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
			errutil.AssertErrorContext(t, err, "package", "bad")

			assert.Equal(t, 1, l.Registry().Len())
			assert.Zero(t, store.puts)
			assert.Nil(t, l.Container())
		})
	}
}

func TestLoader_MultipleEntryTypesNamesFirstTwo(t *testing.T) {
	scanner := &fakeScanner{dirs: map[string][]discovery.Symbol{
		"/bricks/bad": symbols(brick.TypeOf[second](), brick.TypeOf[entry](), brick.TypeOf[failing]()),
	}}
	l := loader.New(loader.WithTypes(testCatalog()), loader.WithScanner(scanner))

	err := l.LoadFromDir(context.Background(), "/bricks/bad", "bad")
	errutil.AssertErrorCode(t, err, loader.CodeMultipleEntryTypes)
	errutil.AssertErrorContext(t, err, "types",
		[]string{string(brick.TypeOf[second]()), string(brick.TypeOf[entry]())})
}

func TestLoader_LoadFreshSkipsScanFailures(t *testing.T) {
	scanner := goodScanner()
	scanner.fail = map[string]error{"/bricks/broken": errors.New("parse error")}
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(fakePackages{
			names: []string{"broken", "a"},
			roots: map[string]string{"a": "/bricks/a", "broken": "/bricks/broken"},
		}),
		loader.WithScanner(scanner),
	)

	require.NoError(t, l.LoadFresh(context.Background()))
	_, ok := l.Registry().Brick("broken")
	assert.False(t, ok)
	_, ok = l.Registry().Brick("a")
	assert.True(t, ok)
}

func TestLoader_LoadFromCache(t *testing.T) {
	store := newStore(t)
	manager := cache.NewManager(store)

	first := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(goodScanner()),
		loader.WithCache(manager),
	)
	require.NoError(t, first.LoadFromCache(context.Background()))
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, 1, store.gets)

	scanner := &fakeScanner{}
	second := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(scanner),
		loader.WithCache(manager),
	)
	require.NoError(t, second.LoadFromCache(context.Background()))

	assert.Zero(t, scanner.calls)
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, 2, store.gets)
	assert.Equal(t, first.Registry().Bricks(), second.Registry().Bricks())

	svc, ok := container.Lookup[service](second.Container())
	require.True(t, ok)
	assert.Equal(t, 1, svc.inits)
}

func TestLoader_LoadFromCacheUnknownType(t *testing.T) {
	manager := cache.NewManager(newStore(t))
	stale := []registry.Brick{{Package: "gone", Entry: "example.com/gone.Brick"}}
	require.NoError(t, manager.Save(context.Background(), loader.CacheNamespace, loader.CacheKey, stale))

	l := loader.New(loader.WithTypes(testCatalog()), loader.WithCache(manager))
	err := l.LoadFromCache(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, registry.CodeUnknownType)
	assert.Zero(t, l.Registry().Len())
}

func TestLoader_LoadFromCacheDevModeLoadsFresh(t *testing.T) {
	store := newStore(t)
	scanner := goodScanner()
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(scanner),
		loader.WithCache(cache.NewManager(store, cache.WithMode(cache.ModeDev))),
	)

	require.NoError(t, l.LoadFromCache(context.Background()))
	assert.Equal(t, 2, scanner.calls)
	assert.Zero(t, store.puts)
	assert.Zero(t, store.gets)
}

func TestLoader_LoadFromDir(t *testing.T) {
	store := newStore(t)
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithScanner(goodScanner()),
		loader.WithCache(cache.NewManager(store)),
	)

	require.NoError(t, l.LoadFromDir(context.Background(), "/bricks/a", "a"))
	b, ok := l.Registry().Brick("a")
	require.True(t, ok)
	assert.Equal(t, brick.TypeOf[entry](), b.Entry)
	assert.Equal(t, 1, store.puts)
	assert.Nil(t, l.Container())
	assert.Nil(t, l.Router())

	// Packages without known types are skipped.
	require.NoError(t, l.LoadFromDir(context.Background(), "/bricks/x", "x"))
	assert.Equal(t, 1, l.Registry().Len())
}

func TestLoader_InitializeErrors(t *testing.T) {
	scanner := &fakeScanner{dirs: map[string][]discovery.Symbol{
		"/bricks/f": symbols(brick.TypeOf[failing](), brick.TypeOf[service]()),
	}}
	l := loader.New(loader.WithTypes(testCatalog()), loader.WithScanner(scanner))
	require.NoError(t, l.LoadFromDir(context.Background(), "/bricks/f", "f"))

	err := l.Initialize(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, loader.CodeInitFailed)
	errutil.AssertErrorContext(t, err, "package", "f")
	assert.ErrorIs(t, err, errInit)
}

func TestLoader_InitializeSkipsUnsatisfiedInit(t *testing.T) {
	scanner := &fakeScanner{dirs: map[string][]discovery.Symbol{
		"/bricks/u": symbols(brick.TypeOf[unsatisfied](), brick.TypeOf[lonely]()),
	}}
	l := loader.New(loader.WithTypes(testCatalog()), loader.WithScanner(scanner))
	require.NoError(t, l.LoadFromDir(context.Background(), "/bricks/u", "u"))

	require.NoError(t, l.Initialize(context.Background()))
	assert.NotNil(t, l.Container())
}

func TestLoader_InitializeMissingConstructorDependency(t *testing.T) {
	c := testCatalog()
	brick.MustDeclare[plain](c, brick.Component())
	scanner := &fakeScanner{dirs: map[string][]discovery.Symbol{
		"/bricks/p": symbols(brick.TypeOf[entry](), brick.TypeOf[plain]()),
	}}
	l := loader.New(loader.WithTypes(c), loader.WithScanner(scanner))
	require.NoError(t, l.LoadFromDir(context.Background(), "/bricks/p", "p"))

	err := l.Initialize(context.Background())
	errutil.AssertErrorCode(t, err, container.CodeMissingConstructor)
}

func TestLoader_Reset(t *testing.T) {
	l := loader.New(
		loader.WithTypes(testCatalog()),
		loader.WithEnumerator(goodPackages()),
		loader.WithScanner(goodScanner()),
	)
	require.NoError(t, l.LoadFresh(context.Background()))
	before := l.Registry()

	l.Reset()

	assert.NotSame(t, before, l.Registry())
	assert.Zero(t, l.Registry().Len())
	assert.Nil(t, l.Container())
	assert.Nil(t, l.Router())
}

func TestLoader_LoadFreshWithoutEnumerator(t *testing.T) {
	l := loader.New(loader.WithTypes(testCatalog()))
	require.NoError(t, l.LoadFresh(context.Background()))
	assert.Zero(t, l.Registry().Len())
	assert.NotNil(t, l.Container())
}
