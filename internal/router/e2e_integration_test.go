//go:build integration

package router

// End-to-end tests against real Postgres and Redis started with testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nazim1903/Businesstracker/internal/config"
	"github.com/nazim1903/Businesstracker/internal/infra"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupIntegration(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("ledger_test"),
		tcPostgres.WithUsername("ledger"),
		tcPostgres.WithPassword("ledger"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		StoreDriver:        "postgres",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		ReportCacheTTL:     time.Minute,
		RateLimitPerMinute: 10000,
		CORSOrigins:        "*",
		DefaultCostRatio:   0.7,
	}

	store, db, err := infra.OpenStore(cfg.StoreDriver, cfg.DatabaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { infra.CloseDB(db) })

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := infra.NewReportCache(rdb, cfg.ReportCacheTTL)

	locks := service.NewLockSet()
	engine := New(ctx, cfg, Deps{
		Ledger: service.NewLedgerService(store, service.LedgerConfig{
			DefaultCostRatio: cfg.CostRatio(),
			Locks:            locks,
			OnCommit:         cache.Invalidate,
		}),
		Reports: service.NewReportService(store, cache),
		Backup:  service.NewBackupService(store, locks, cache.Invalidate),
		DB:      db,
		Redis:   rdb,
		Cache:   cache,
	})
	return &testEnv{engine: engine}
}

func TestE2E_CompletionCycleOnPostgres(t *testing.T) {
	env := setupIntegration(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	health := decode[map[string]any](t, w)
	assert.Equal(t, "connected", health["cache"])
	assert.Equal(t, "closed", health["cache_breaker"])

	cid := env.createCustomer(t, "Alice")
	oid := env.createOrder(t, cid, "200")

	// Dashboard is cached, then invalidated by the completion.
	w = env.do(t, http.MethodGet, "/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "200", decode[map[string]any](t, w)["activeDepositsTotal"])

	w = env.do(t, http.MethodPost, "/v1/orders/"+oid+"/complete", map[string]any{"amount": "800"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[map[string]any](t, w)
	assert.Equal(t, "1000", dash["totalIncoming"])
	assert.Equal(t, "0", dash["activeDepositsTotal"])
	assert.Equal(t, "400", dash["totalProfit"])
}

func TestE2E_ConcurrentCompletionOnPostgres(t *testing.T) {
	env := setupIntegration(t)
	cid := env.createCustomer(t, "Alice")
	oid := env.createOrder(t, cid, "200")

	const n = 6
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/orders/"+oid+"/complete",
				strings.NewReader(`{"amount":"800"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			env.engine.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		if c == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, c)
		}
	}
	assert.Equal(t, 1, ok)

	w := env.do(t, http.MethodGet, "/v1/products?customerId="+cid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestE2E_BackupRoundTripOnPostgres(t *testing.T) {
	env := setupIntegration(t)
	cid := env.createCustomer(t, "Alice")
	env.createOrder(t, cid, "150")

	w := env.do(t, http.MethodGet, "/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	env.createCustomer(t, "Temporary")

	w = env.do(t, http.MethodPost, "/v1/backup/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	customers := decode[[]map[string]any](t, w)
	require.Len(t, customers, 1)
	assert.Equal(t, cid, customers[0]["id"])
}
