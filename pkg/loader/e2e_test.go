// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package loader_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"gopkg.in/yaml.v3"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/internal/testbricks/abrick"
	_ "github.com/holomush/bricks/internal/testbricks/nobrick"
	_ "github.com/holomush/bricks/internal/testbricks/twobricks"
	"github.com/holomush/bricks/pkg/brick"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/container"
	"github.com/holomush/bricks/pkg/event"
	"github.com/holomush/bricks/pkg/loader"
	"github.com/holomush/bricks/pkg/registry"
)

const fixtures = "../../internal/testbricks"

// writeInstalled writes an installed.yaml listing the named fixture
// packages and loads it back.
func writeInstalled(names ...string) *discovery.Installed {
	manifest := discovery.Manifest{Packages: []discovery.Package{}}
	for _, name := range names {
		root, err := filepath.Abs(filepath.Join(fixtures, name))
		Expect(err).NotTo(HaveOccurred())
		manifest.Packages = append(manifest.Packages, discovery.Package{
			Name:        "test/" + name,
			Type:        discovery.BrickPackageType,
			Version:     "1.0.0",
			InstallPath: root,
		})
	}
	manifest.Packages = append(manifest.Packages, discovery.Package{
		Name: "test/library",
		Type: "library",
	})

	data, err := yaml.Marshal(manifest)
	Expect(err).NotTo(HaveOccurred())
	path := filepath.Join(GinkgoT().TempDir(), "installed.yaml")
	Expect(os.WriteFile(path, data, 0o600)).To(Succeed())

	installed, err := discovery.LoadInstalled(path)
	Expect(err).NotTo(HaveOccurred())
	return installed
}

var _ = Describe("Loading installed bricks", func() {
	var (
		ctx     context.Context
		manager *cache.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		manager = cache.NewManager(cache.NewFileStore(GinkgoT().TempDir()))
	})

	newLoader := func(installed *discovery.Installed) *loader.Loader {
		return loader.New(
			loader.WithEnumerator(installed),
			loader.WithCache(manager),
			loader.WithConfigDir(fixtures),
		)
	}

	Describe("a complete brick", func() {
		It("activates its components, initializes it and routes its events", func() {
			l := newLoader(writeInstalled("abrick"))
			Expect(l.LoadFresh(ctx)).To(Succeed())

			b, ok := l.Registry().Brick("test/abrick")
			Expect(ok).To(BeTrue())
			Expect(b.Entry).To(Equal(brick.TypeOf[abrick.ABrick]()))
			Expect(b.Members).To(Equal([]brick.TypeID{
				brick.TypeOf[abrick.AService](),
				brick.TypeOf[abrick.AnEvent](),
			}))

			svc, ok := container.Lookup[abrick.AService](l.Container())
			Expect(ok).To(BeTrue())
			Expect(svc.GetConfig()).To(Equal(brick.Config{"hello": "world!"}))

			ev, err := event.Dispatch(ctx, l.Router(), &abrick.AnEvent{Value: -2})
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Value).To(Equal(42))
			Expect(svc.Counter).To(Equal(2))
		})

		It("restores the same registry from the cache", func() {
			installed := writeInstalled("abrick")
			fresh := newLoader(installed)
			Expect(fresh.LoadFresh(ctx)).To(Succeed())

			cached := newLoader(installed)
			Expect(cached.LoadFromCache(ctx)).To(Succeed())
			Expect(cached.Registry().Bricks()).To(Equal(fresh.Registry().Bricks()))

			svc, ok := container.Lookup[abrick.AService](cached.Container())
			Expect(ok).To(BeTrue())
			Expect(svc.Counter).To(Equal(1))
		})

		It("loads a single directory without initializing", func() {
			l := newLoader(writeInstalled())
			Expect(l.LoadFromDir(ctx, filepath.Join(fixtures, "abrick"), "test/abrick")).To(Succeed())
			Expect(l.Registry().Len()).To(Equal(1))
			Expect(l.Container()).To(BeNil())

			var snapshot []registry.Brick
			found, err := manager.Load(ctx, loader.CacheNamespace, loader.CacheKey, &snapshot)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(snapshot).To(Equal(l.Registry().Bricks()))
		})
	})

	DescribeTable("invalid brick packages",
		func(name, code string) {
			l := newLoader(writeInstalled(name))
			err := l.LoadFresh(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errutil.Code(err)).To(Equal(code))

			exists, err := manager.Exists(ctx, loader.CacheNamespace, loader.CacheKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		},
		Entry("without an entry type", "nobrick", loader.CodeNoEntryType),
		Entry("with two entry types", "twobricks", loader.CodeMultipleEntryTypes),
	)

	It("skips packages whose install path is gone", func() {
		l := loader.New(
			loader.WithEnumerator(missingRoot{writeInstalled("abrick")}),
			loader.WithCache(manager),
			loader.WithConfigDir(fixtures),
		)
		Expect(l.LoadFresh(ctx)).To(Succeed())
		Expect(l.Registry().Len()).To(BeZero())
	})
})

// missingRoot reports every package as not installed.
type missingRoot struct{ *discovery.Installed }

func (missingRoot) InstallRoot(string) (string, bool) { return "", false }
