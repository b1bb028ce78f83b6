package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/generator"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/risk"
	"meme-coin-tracker/internal/scheduler"
	"meme-coin-tracker/internal/storage/memory"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	server  *Server
	store   *memory.CoinStore
	bus     *events.Bus
	sched   *scheduler.Scheduler
	metrics *observability.Metrics
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T, rateLimit float64, burst int) *testEnv {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	reg := prometheus.NewRegistry()
	env := &testEnv{
		store:   memory.NewCoinStoreWithClock(20, func() time.Time { return testNow }),
		bus:     events.NewBus(),
		reg:     reg,
		metrics: observability.NewMetrics("test", reg),
	}

	sched, err := scheduler.New(scheduler.Options{
		Generator: generator.New(generator.Options{
			Source: generator.NewSource(7),
			Now:    func() time.Time { return testNow },
		}),
		Store:     env.store,
		Publisher: env.bus,
		Metrics:   env.metrics,
		Interval:  time.Hour,
		Logger:    logger,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	env.sched = sched
	t.Cleanup(func() { _ = sched.Shutdown() })

	srv, err := NewServer(Options{
		Store:     env.store,
		Scheduler: sched,
		Events:    env.bus,
		Metrics:   env.metrics,
		Gatherer:  reg,
		Logger:    logger,
		RateLimit: rateLimit,
		RateBurst: burst,
		Now:       func() time.Time { return testNow.Add(90 * time.Second) },
	})
	require.NoError(t, err)
	env.server = srv
	t.Cleanup(srv.Close)
	return env
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func coin(id string, level domain.RiskLevel, score int) domain.CoinRecord {
	return domain.CoinRecord{
		ID:                   id,
		Name:                 "Pepe",
		Symbol:               "PEPE",
		ContractAddress:      "0x" + strings.Repeat("0", 40),
		LaunchTime:           testNow,
		MarketCap:            50_000,
		TopHoldersPercentage: 30,
		RiskScore:            score,
		RugPullRisk:          level,
	}
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(Options{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	rec := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	st := decode[StatusResponse](t, env.get(t, "/status"))
	assert.Equal(t, "stopped", st.Status)
	assert.Equal(t, scheduler.StateIdle, st.State)
	assert.Equal(t, 0, st.CoinsTracked)

	require.NoError(t, env.sched.Initialize(context.Background()))

	st = decode[StatusResponse](t, env.get(t, "/status"))
	assert.Equal(t, "running", st.Status)
	assert.Equal(t, scheduler.StateActive, st.State)
	assert.Equal(t, 1, st.Scans)
	assert.Equal(t, 1, st.CoinsTracked)
	assert.Equal(t, 20, st.Capacity)
	assert.Equal(t, "1h0m0s", st.ScanInterval)
	assert.Equal(t, "1m30s", st.Uptime)
}

func TestListCoins(t *testing.T) {
	env := newTestEnv(t, 0, 0)
	ctx := context.Background()

	require.NoError(t, env.store.Prepend(ctx, coin("a", domain.RiskLow, 0)))
	require.NoError(t, env.store.Prepend(ctx, coin("b", domain.RiskHigh, 60)))
	require.NoError(t, env.store.Prepend(ctx, coin("c", domain.RiskLow, 20)))

	rec := env.get(t, "/api/coins")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[CoinsResponse](t, rec)
	require.Len(t, resp.Coins, 3)
	assert.Equal(t, "c", resp.Coins[0].ID)
	assert.Equal(t, "b", resp.Coins[1].ID)
	assert.Equal(t, "a", resp.Coins[2].ID)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 20, resp.Capacity)
	assert.True(t, resp.LastUpdate.Equal(testNow))
}

func TestListCoins_RiskFilter(t *testing.T) {
	env := newTestEnv(t, 0, 0)
	ctx := context.Background()

	require.NoError(t, env.store.Prepend(ctx, coin("a", domain.RiskLow, 0)))
	require.NoError(t, env.store.Prepend(ctx, coin("b", domain.RiskHigh, 60)))

	resp := decode[CoinsResponse](t, env.get(t, "/api/coins?risk=high"))
	require.Len(t, resp.Coins, 1)
	assert.Equal(t, "b", resp.Coins[0].ID)
	assert.Equal(t, 1, resp.Count)
	assert.True(t, resp.LastUpdate.Equal(testNow))

	resp = decode[CoinsResponse](t, env.get(t, "/api/coins?risk=CRITICAL"))
	assert.Empty(t, resp.Coins)
	assert.NotNil(t, resp.Coins)
	assert.Equal(t, 0, resp.Count)

	rec := env.get(t, "/api/coins?risk=extreme")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCoins_Empty(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	rec := env.get(t, "/api/coins")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"coins":[]`)
	assert.True(t, decode[CoinsResponse](t, rec).LastUpdate.IsZero())
}

func TestGetCoin(t *testing.T) {
	env := newTestEnv(t, 0, 0)
	require.NoError(t, env.sched.Initialize(context.Background()))

	coins, err := env.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 1)
	want := coins[0]

	rec := env.get(t, "/api/coins/"+want.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[CoinDetail](t, rec)
	assert.Equal(t, want.ID, detail.Coin.ID)
	assert.Equal(t, want.RiskScore, detail.Assessment.Score)
	assert.Equal(t, want.RugPullRisk, detail.Assessment.Level)
	assert.Equal(t, risk.Emoji(want.RugPullRisk), detail.Emoji)
	assert.Equal(t, risk.Color(want.RugPullRisk), detail.Color)
	assert.Equal(t, risk.Labels(want), detail.Flags)
}

func TestGetCoin_NotFound(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	rec := env.get(t, "/api/coins/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing")
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, 0, 0)
	ctx := context.Background()

	require.NoError(t, env.store.Prepend(ctx, coin("a", domain.RiskLow, 0)))
	require.NoError(t, env.store.Prepend(ctx, coin("b", domain.RiskCritical, 165)))
	require.NoError(t, env.store.Prepend(ctx, coin("c", domain.RiskCritical, 90)))

	stats := decode[StatsResponse](t, env.get(t, "/api/stats"))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByLevel[domain.RiskLow])
	assert.Equal(t, 0, stats.ByLevel[domain.RiskMedium])
	assert.Equal(t, 2, stats.ByLevel[domain.RiskCritical])
	assert.Equal(t, 165, stats.MaxScore)
	assert.InDelta(t, 85.0, stats.AverageScore, 0.001)
	assert.Equal(t, "1h0m0s", stats.ScanInterval)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	rec := env.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, 0, 0)
	require.NoError(t, env.sched.Initialize(context.Background()))

	env.get(t, "/health")
	env.get(t, "/api/coins")

	rec := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_scanner_scans_total 1")
	assert.Contains(t, string(body), `test_api_requests_total{code="2xx",route="/api/coins"} 1`)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, 0.001, 1)

	assert.Equal(t, http.StatusOK, env.get(t, "/api/coins").Code)

	rec := env.get(t, "/api/coins")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HTTPRateLimited))

	// Operational endpoints are not limited.
	assert.Equal(t, http.StatusOK, env.get(t, "/health").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/status").Code)
}
