// Package httpapi exposes the coin window over HTTP and a websocket stream.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/scheduler"
	"meme-coin-tracker/internal/storage"
)

// StatusProvider reports scheduler state.
type StatusProvider interface {
	Status() scheduler.Status
}

// Subscriber delivers store-changed notifications.
type Subscriber interface {
	SubscribeCoinsUpdated(fn func(events.CoinsUpdated)) (func(), error)
}

// Options configures a Server.
type Options struct {
	Store     storage.CoinStore // required
	Scheduler StatusProvider    // required
	Events    Subscriber        // required for /ws
	Metrics   *observability.Metrics
	// Gatherer backs /metrics. Defaults to the Prometheus default gatherer.
	Gatherer prometheus.Gatherer
	Logger   logrus.FieldLogger
	// RateLimit is requests per second across /api and /ws. 0 disables limiting.
	RateLimit float64
	RateBurst int
	Now       func() time.Time
}

// Server serves the read model.
type Server struct {
	store     storage.CoinStore
	scheduler StatusProvider
	metrics   *observability.Metrics
	gatherer  prometheus.Gatherer
	logger    logrus.FieldLogger
	limiter   *rate.Limiter
	now       func() time.Time

	hub         *Hub
	unsubscribe func()
	router      *mux.Router
}

// NewServer wires routes and subscribes the websocket hub to coin updates.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Scheduler == nil || opts.Events == nil {
		return nil, errors.New("httpapi: store, scheduler and events are required")
	}

	s := &Server{
		store:     opts.Store,
		scheduler: opts.Scheduler,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}

	s.hub = NewHub(opts.Store, s.logger, s.metrics)
	unsubscribe, err := opts.Events.SubscribeCoinsUpdated(s.hub.Broadcast)
	if err != nil {
		return nil, fmt.Errorf("subscribe websocket hub: %w", err)
	}
	s.unsubscribe = unsubscribe

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.HandlerFor(s.gatherer)).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimit)
	api.HandleFunc("/coins", s.handleListCoins).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}", s.handleGetCoin).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.Handle("/ws", s.rateLimit(http.HandlerFunc(s.hub.ServeWS))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close detaches from the event bus and disconnects websocket clients.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.hub.Close()
}
