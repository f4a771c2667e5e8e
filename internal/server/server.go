// Package server exposes the restaurant and starred stores over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/starplate/internal/logging"
	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/starred"
)

// RestaurantService is the restaurant store as seen by the HTTP layer.
type RestaurantService interface {
	List(ctx context.Context) ([]restaurant.Restaurant, error)
	Get(ctx context.Context, id string) (restaurant.Restaurant, error)
	Create(ctx context.Context, name *string) (restaurant.Restaurant, error)
	Delete(ctx context.Context, id string) error
	Rename(ctx context.Context, id string, newName *string) error
}

// StarredService is the starred store as seen by the HTTP layer.
type StarredService interface {
	ListJoined(ctx context.Context) ([]starred.Joined, error)
	GetJoined(ctx context.Context, id string) (starred.Joined, error)
	Create(ctx context.Context, restaurantID string, comment *string) (starred.Joined, error)
	Delete(ctx context.Context, id string) error
	UpdateComment(ctx context.Context, id string, comment *string) error
}

// Server serves the restaurant API.
type Server struct {
	restaurants RestaurantService
	starred     StarredService
	logger      *slog.Logger
	config      Config
	metrics     *metrics
	limiter     *rateLimiter
	handler     http.Handler

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
	cancel     context.CancelFunc
	stopped    chan struct{} // closed once the current shutdown has finished
	wg         sync.WaitGroup
}

// New creates a server over the given stores.
func New(restaurants RestaurantService, starredStore StarredService, logger *slog.Logger, opts ...ConfigOption) *Server {
	s := &Server{
		restaurants: restaurants,
		starred:     starredStore,
		logger:      logging.Default(logger).With("component", "server"),
		config:      NewConfig(opts...),
	}
	if s.config.Metrics {
		s.metrics = newMetrics()
	}
	if s.config.RateLimit > 0 {
		s.limiter = newRateLimiter(s.config.RateLimit, s.config.RateBurst)
	}
	s.handler = s.buildHandler()
	return s
}

// Handler returns the full HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

func (s *Server) buildMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /restaurants", s.listRestaurants)
	mux.HandleFunc("GET /restaurants/{id}", s.getRestaurant)
	mux.HandleFunc("POST /restaurants", s.createRestaurant)
	mux.HandleFunc("DELETE /restaurants/{id}", s.deleteRestaurant)
	mux.HandleFunc("PUT /restaurants/{id}", s.renameRestaurant)

	mux.HandleFunc("GET /restaurants/starred", s.listStarred)
	mux.HandleFunc("GET /restaurants/starred/{id}", s.getStarred)
	mux.HandleFunc("POST /restaurants/starred", s.createStarred)
	mux.HandleFunc("DELETE /restaurants/starred/{id}", s.deleteStarred)
	mux.HandleFunc("PUT /restaurants/starred/{id}", s.updateStarredComment)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.handler())
	}
	return mux
}

func (s *Server) buildHandler() http.Handler {
	var h http.Handler = s.buildMux()
	if s.limiter != nil {
		h = s.rateLimit(h)
	}
	h = s.recoverPanics(h)
	return s.observe(h)
}

// Start binds the listener and serves in the background until ctx is
// cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.running = true
	httpServer := s.httpServer
	s.mu.Unlock()

	s.logger.Info("listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	if s.limiter != nil {
		s.limiter.startCleanup(runCtx, &s.wg, time.Minute, 10*time.Minute)
	}

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully shuts the server down. Concurrent callers all return
// once in-flight requests have drained.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		stopped := s.stopped
		s.mu.Unlock()
		// Another caller may still be draining; wait for it.
		if stopped != nil {
			<-stopped
		}
		return nil
	}
	s.running = false
	httpServer := s.httpServer
	cancel := s.cancel
	stopped := s.stopped
	s.mu.Unlock()
	defer close(stopped)

	ctx, done := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer done()

	err := httpServer.Shutdown(ctx)
	if err != nil {
		// Force close if graceful shutdown fails
		httpServer.Close()
	}
	cancel()
	s.wg.Wait()

	s.logger.Info("stopped")
	return err
}

// IsRunning returns true if the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ListenAddr returns the bound address, which differs from the configured
// one when port 0 was requested.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}
