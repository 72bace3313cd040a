package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-client labels)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	sessionTimer = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_session_timer_seconds",
		Help: "Remaining survival countdown",
	})

	killerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_killer_transitions_total",
		Help: "Killer AI state transitions",
	}, []string{"phase"}) // Bounded: "normal", "hunt", "search"

	capturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_captures_total",
		Help: "Sessions lost to the killer",
	})

	escapesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_escapes_total",
		Help: "Sessions won (door or timer)",
	})

	flashlightActivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_flashlight_activations_total",
		Help: "Flashlight off->on edges",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // MUST stay on localhost in production
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// StartDebugServer starts the internal observability server with pprof and
// the Prometheus scrape endpoint.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	// Only allow external binding when explicitly enabled via env.
	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// RecordTick records tick timing for metrics
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateSessionTimer updates the countdown gauge
func UpdateSessionTimer(seconds float64) {
	sessionTimer.Set(seconds)
}

// RecordKillerTransition increments the transition counter for a phase.
// phase must be one of: "normal", "hunt", "search"
func RecordKillerTransition(phase string) {
	killerTransitions.WithLabelValues(phase).Inc()
}

// RecordCapture increments the capture counter
func RecordCapture() {
	capturesTotal.Inc()
}

// RecordEscape increments the escape counter
func RecordEscape() {
	escapesTotal.Inc()
}

// RecordFlashlightActivation increments the activation counter
func RecordFlashlightActivation() {
	flashlightActivations.Inc()
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
