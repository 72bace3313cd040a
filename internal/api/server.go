package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for real-time snapshots.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Run() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine EngineInterface) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(engine),
	}

	// Track the rate limiter for cleanup on shutdown
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
	})

	// WebSocket routes need the wsHub instance, so they can't be part of
	// the pure NewRouter factory.
	s.router.Get("/ws", s.handleWS)

	return s
}

// Run starts the background workers and serves HTTP until ctx is canceled,
// then shuts down gracefully. Designed to run under an errgroup.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop()

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("🌐 API server starting on %s", addr)
		log.Printf("📱 Snapshot stream: ws://localhost%s/ws", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(engine)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
