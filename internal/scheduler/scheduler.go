// Package scheduler owns the rolling coin window: it generates one coin
// immediately, then one per interval, until shut down.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/storage"
)

// DefaultInterval is the time between scans.
const DefaultInterval = 5 * time.Minute

// State is the scheduler lifecycle state.
type State string

const (
	StateIdle    State = "IDLE"
	StateActive  State = "ACTIVE"
	StateStopped State = "STOPPED"
)

// CoinGenerator produces one coin per call.
type CoinGenerator interface {
	Generate() domain.CoinRecord
}

// Publisher receives a notification after every store mutation.
type Publisher interface {
	PublishCoinsUpdated(ev events.CoinsUpdated)
}

// Options configures a Scheduler.
type Options struct {
	Generator CoinGenerator     // required
	Store     storage.CoinStore // required
	Publisher Publisher
	Metrics   *observability.Metrics
	Interval  time.Duration
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	State     State         `json:"state"`
	Interval  time.Duration `json:"interval"`
	StartedAt time.Time     `json:"startedAt,omitempty"`
	StoppedAt time.Time     `json:"stoppedAt,omitempty"`
	LastScan  time.Time     `json:"lastScan,omitempty"`
	Scans     int           `json:"scans"`
}

// Scheduler drives periodic coin generation into a store.
// The scan goroutine is the store's only writer.
type Scheduler struct {
	generator CoinGenerator
	store     storage.CoinStore
	publisher Publisher
	metrics   *observability.Metrics
	interval  time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time

	// scanMu serializes scans.
	scanMu sync.Mutex

	mu        sync.Mutex
	state     State
	startedAt time.Time
	stoppedAt time.Time
	lastScan  time.Time
	scans     int
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates a Scheduler in the IDLE state.
func New(opts Options) (*Scheduler, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("%w: generator is required", ErrInvalidOptions)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidOptions)
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("%w: negative interval %v", ErrInvalidOptions, opts.Interval)
	}

	s := &Scheduler{
		generator: opts.Generator,
		store:     opts.Store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		interval:  opts.Interval,
		logger:    opts.Logger,
		now:       opts.Now,
		state:     StateIdle,
	}
	if s.interval == 0 {
		s.interval = DefaultInterval
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Initialize runs one scan immediately, then starts the periodic timer.
// ctx scopes the scans' values only: the timer runs until Shutdown.
func (s *Scheduler) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateActive:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	}
	// Claim the scheduler before the first scan so a concurrent Initialize fails fast.
	s.state = StateActive
	s.startedAt = s.now()
	s.done = make(chan struct{})
	s.mu.Unlock()

	scanCtx := context.WithoutCancel(ctx)
	if err := s.scan(scanCtx); err != nil {
		s.mu.Lock()
		if s.state == StateActive {
			s.state = StateIdle
			s.startedAt = time.Time{}
		}
		s.mu.Unlock()
		return fmt.Errorf("initial scan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		// Shutdown ran during the first scan.
		return ErrStopped
	}

	s.wg.Add(1)
	go s.run(scanCtx, s.done)
	s.metrics.SetSchedulerActive(true)

	s.logger.WithField("interval", s.interval).Info("Scheduler started")
	return nil
}

// Shutdown cancels the timer and waits for an in-flight scan to finish.
// Safe to call more than once; later calls are no-ops.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return nil
	case StateIdle:
		s.state = StateStopped
		s.stoppedAt = s.now()
		s.mu.Unlock()
		return nil
	}

	s.state = StateStopped
	s.stoppedAt = s.now()
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.metrics.SetSchedulerActive(false)
	s.logger.Info("Scheduler stopped")
	return nil
}

// Status returns the current lifecycle state and counters.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:     s.state,
		Interval:  s.interval,
		StartedAt: s.startedAt,
		StoppedAt: s.stoppedAt,
		LastScan:  s.lastScan,
		Scans:     s.scans,
	}
}

// Interval returns the time between scans.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// run fires scan on every tick until done is closed.
func (s *Scheduler) run(ctx context.Context, done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.scan(ctx); err != nil {
				// Generation and the in-memory store cannot fail on valid input.
				s.logger.WithError(err).Error("Scan failed")
			}
		}
	}
}

// scan generates one coin, prepends it, and notifies subscribers.
func (s *Scheduler) scan(ctx context.Context) error {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	coin := s.generator.Generate()
	if err := s.store.Prepend(ctx, coin); err != nil {
		return fmt.Errorf("prepend coin %s: %w", coin.ID, err)
	}

	count, err := s.store.Len(ctx)
	if err != nil {
		return fmt.Errorf("store len: %w", err)
	}
	lastUpdate, err := s.store.LastUpdate(ctx)
	if err != nil {
		return fmt.Errorf("store last update: %w", err)
	}

	s.mu.Lock()
	s.scans++
	s.lastScan = lastUpdate
	s.mu.Unlock()

	s.metrics.RecordCoin(coin, count, lastUpdate)
	s.logger.WithFields(logrus.Fields{
		"coin_id":    coin.ID,
		"name":       coin.Name,
		"symbol":     coin.Symbol,
		"risk_score": coin.RiskScore,
		"risk_level": coin.RugPullRisk,
		"tracked":    count,
	}).Info("Coin scanned")

	if s.publisher != nil {
		s.publisher.PublishCoinsUpdated(events.CoinsUpdated{
			Coin:       coin,
			Count:      count,
			LastUpdate: lastUpdate,
		})
	}
	return nil
}
