package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/generator"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/storage"
	"meme-coin-tracker/internal/storage/memory"
)

// recordingPublisher keeps every notification it receives.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CoinsUpdated
}

func (p *recordingPublisher) PublishCoinsUpdated(ev events.CoinsUpdated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []events.CoinsUpdated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.CoinsUpdated(nil), p.events...)
}

// failingStore rejects every write.
type failingStore struct {
	storage.CoinStore
}

func (failingStore) Prepend(context.Context, domain.CoinRecord) error {
	return storage.ErrInvalidInput
}

type fixture struct {
	sched     *Scheduler
	store     *memory.CoinStore
	publisher *recordingPublisher
	logs      *logtest.Hook
	metrics   *observability.Metrics
}

func newFixture(t *testing.T, interval time.Duration) *fixture {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		store:     memory.NewCoinStore(20),
		publisher: &recordingPublisher{},
		logs:      hook,
		metrics:   observability.NewMetrics("test", prometheus.NewRegistry()),
	}

	sched, err := New(Options{
		Generator: generator.New(generator.Options{Source: generator.NewSource(1)}),
		Store:     f.store,
		Publisher: f.publisher,
		Metrics:   f.metrics,
		Interval:  interval,
		Logger:    logger,
	})
	require.NoError(t, err)
	f.sched = sched

	t.Cleanup(func() { _ = sched.Shutdown() })
	return f
}

func TestNew_Validation(t *testing.T) {
	gen := generator.New(generator.Options{Source: generator.NewSource(1)})
	store := memory.NewCoinStore(20)

	_, err := New(Options{Store: store})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = New(Options{Generator: gen})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = New(Options{Generator: gen, Store: store, Interval: -time.Second})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	s, err := New(Options{Generator: gen, Store: store})
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, s.Interval())
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestInitialize_ScansImmediately(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.sched.Initialize(ctx))

	coins, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, coins, 1, "Initialize must produce exactly one coin")

	last, _ := f.store.LastUpdate(ctx)
	assert.False(t, last.IsZero())

	status := f.sched.Status()
	assert.Equal(t, StateActive, status.State)
	assert.Equal(t, 1, status.Scans)
	assert.Equal(t, last, status.LastScan)

	published := f.publisher.all()
	require.Len(t, published, 1)
	assert.Equal(t, coins[0], published[0].Coin)
	assert.Equal(t, 1, published[0].Count)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SchedulerUp))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScansTotal))
}

func TestInitialize_Twice(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.sched.Initialize(ctx))
	err := f.sched.Initialize(ctx)
	assert.ErrorIs(t, err, ErrAlreadyStarted)

	// The rejected call must not have scanned.
	n, _ := f.store.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestInitialize_AfterShutdown(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.sched.Initialize(ctx))
	require.NoError(t, f.sched.Shutdown())

	err := f.sched.Initialize(ctx)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateStopped, f.sched.Status().State)
}

func TestShutdown_Idempotent(t *testing.T) {
	f := newFixture(t, time.Hour)

	require.NoError(t, f.sched.Initialize(context.Background()))
	require.NoError(t, f.sched.Shutdown())
	require.NoError(t, f.sched.Shutdown())

	status := f.sched.Status()
	assert.Equal(t, StateStopped, status.State)
	assert.False(t, status.StoppedAt.IsZero())
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.SchedulerUp))
}

func TestShutdown_BeforeInitialize(t *testing.T) {
	f := newFixture(t, time.Hour)

	require.NoError(t, f.sched.Shutdown())
	assert.Equal(t, StateStopped, f.sched.Status().State)
	assert.ErrorIs(t, f.sched.Initialize(context.Background()), ErrStopped)

	n, _ := f.store.Len(context.Background())
	assert.Equal(t, 0, n)
}

func TestTimer_FiresPeriodically(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, f.sched.Initialize(ctx))

	require.Eventually(t, func() bool {
		return f.sched.Status().Scans >= 4
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.sched.Shutdown())

	coins, err := f.store.List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(coins), 4)

	// Notifications arrive in generation order, newest coin at the head of the store.
	published := f.publisher.all()
	require.Len(t, published, f.sched.Status().Scans)
	assert.Equal(t, published[len(published)-1].Coin.ID, coins[0].ID)
}

func TestTimer_StopsAfterShutdown(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, f.sched.Initialize(ctx))
	require.Eventually(t, func() bool {
		return f.sched.Status().Scans >= 2
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, f.sched.Shutdown())
	scans := f.sched.Status().Scans

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, scans, f.sched.Status().Scans, "no scans may run after Shutdown returns")
}

func TestTimer_IgnoresContextCancellation(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.sched.Initialize(ctx))
	cancel()

	require.Eventually(t, func() bool {
		return f.sched.Status().Scans >= 3
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, StateActive, f.sched.Status().State)
}

func TestScan_TwentyFiveEvents(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, f.sched.scan(ctx))

		n, err := f.store.Len(ctx)
		require.NoError(t, err)
		require.LessOrEqual(t, n, 20)
	}

	coins, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, coins, 20)

	published := f.publisher.all()
	require.Len(t, published, 25)

	// The 20 most recent generations, newest first; the first 5 are gone.
	for i, c := range coins {
		assert.Equal(t, published[24-i].Coin, c, "index %d", i)
	}
	for _, ev := range published[:5] {
		_, err := f.store.GetByID(ctx, ev.Coin.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}
	assert.Equal(t, 20, published[24].Count)
}

func TestScan_OrderingWithinCapacity(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	const n = 12
	for i := 0; i < n; i++ {
		require.NoError(t, f.sched.scan(ctx))
	}

	coins, err := f.store.List(ctx)
	require.NoError(t, err)
	published := f.publisher.all()
	require.Len(t, coins, n)
	for i := range coins {
		assert.Equal(t, published[n-1-i].Coin.ID, coins[i].ID)
	}
}

func TestScan_LogsEachCoin(t *testing.T) {
	f := newFixture(t, time.Hour)
	require.NoError(t, f.sched.scan(context.Background()))

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Coin scanned", entry.Message)
	assert.Contains(t, entry.Data, "risk_score")
	assert.Contains(t, entry.Data, "risk_level")
}

func TestInitialize_StoreFailure(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	sched, err := New(Options{
		Generator: generator.New(generator.Options{Source: generator.NewSource(1)}),
		Store:     failingStore{CoinStore: memory.NewCoinStore(20)},
		Interval:  time.Hour,
		Logger:    logger,
	})
	require.NoError(t, err)

	err = sched.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
	assert.Equal(t, StateIdle, sched.Status().State)
}
