// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package cache_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/pkg/cache"
)

type cachedBrick struct {
	Package string   `yaml:"package"`
	Members []string `yaml:"members,omitempty"`
}

var _ = Describe("PostgresStore", func() {
	var (
		ctx       context.Context
		connStr   string
		store     *cache.PostgresStore
		terminate func()
	)

	BeforeEach(func() {
		ctx = context.Background()

		pg, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("bricks_test"),
			postgres.WithUsername("bricks"),
			postgres.WithPassword("bricks"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = pg.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		store, err = cache.OpenPostgres(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())

		terminate = func() {
			store.Close()
			_ = pg.Terminate(ctx)
		}
	})

	AfterEach(func() {
		terminate()
	})

	It("reports an unmigrated database", func() {
		_, _, err := store.Get(ctx, cache.Name("bricks", "loader"))
		Expect(err).To(HaveOccurred())
		Expect(errutil.Code(err)).To(Equal(cache.CodeNotMigrated))
	})

	Describe("after migration", func() {
		BeforeEach(func() {
			m, err := cache.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() { _ = m.Close() })

			Expect(m.Up()).To(Succeed())
			version, dirty, err := m.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(uint(1)))
			Expect(dirty).To(BeFalse())
		})

		It("round-trips a snapshot through the manager", func() {
			m := cache.NewManager(store)
			in := []cachedBrick{{Package: "acme/a", Members: []string{"acme/a.X"}}, {Package: "acme/b"}}

			Expect(m.Save(ctx, "bricks", "loader", in)).To(Succeed())
			Expect(m.Save(ctx, "bricks", "loader", in)).To(Succeed())

			var out []cachedBrick
			found, err := m.Load(ctx, "bricks", "loader", &out)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(out).To(Equal(in))

			Expect(m.Clear(ctx)).To(Succeed())
			exists, err := m.Exists(ctx, "bricks", "loader")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})
