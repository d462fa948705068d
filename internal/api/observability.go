package api

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ufo-shooter/internal/config"
	"ufo-shooter/internal/game"
)

// Label values are bounded: roles, command kinds, and fixed reason strings only.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one engine tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	frameRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frame_render_duration_seconds",
		Help:    "Time spent rendering a PNG frame",
		Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.25},
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_entities",
		Help: "Live entities by role",
	}, []string{"role"})

	commandsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_commands_applied_total",
		Help: "Commands applied by the dispatcher, by kind",
	}, []string{"kind"})

	commandsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_commands_dropped_total",
		Help: "Commands discarded because a target was gone or a limit was reached",
	})

	contactsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_contacts_total",
		Help: "Overlapping pairs reported by the contact detector",
	})

	gamesOver = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_over_total",
		Help: "Players that ran out of health",
	})

	routineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_routine_errors_total",
		Help: "Errors returned by phase routines",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "ws_flood"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active websocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Websocket messages by direction",
	}, []string{"direction"}) // "in", "out"
)

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string
	BasicAuthUser string
	BasicAuthPass string
}

// ObservabilityConfigFrom binds the debug server to localhost on the configured port.
func ObservabilityConfigFrom(d config.DebugConfig) ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:       d.Port > 0,
		ListenAddr:    fmt.Sprintf("127.0.0.1:%d", d.Port),
		BasicAuthUser: d.User,
		BasicAuthPass: d.Password,
	}
}

// DebugHandler serves pprof, /metrics and /health.
func DebugHandler(cfg ObservabilityConfig) http.Handler {
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

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer serves DebugHandler in the background.
// It must stay on a loopback address; pprof is not safe to expose.
func StartDebugServer(cfg ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()
	return srv
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick folds one tick result into the metrics.
func RecordTick(res game.TickResult) {
	tickDuration.Observe(res.Duration.Seconds())
	contactsDetected.Add(float64(res.Contacts))
	for kind, n := range res.Outcome.Applied {
		commandsApplied.WithLabelValues(kind.String()).Add(float64(n))
	}
	if res.Outcome.Dropped > 0 {
		commandsDropped.Add(float64(res.Outcome.Dropped))
	}
	if len(res.Errors) > 0 {
		routineErrors.Add(float64(len(res.Errors)))
	}
}

// RecordGameOver counts a player running out of health.
func RecordGameOver() {
	gamesOver.Inc()
}

// UpdateEntityCounts sets the per-role gauges from a snapshot.
func UpdateEntityCounts(snap *game.Snapshot) {
	if snap == nil {
		return
	}
	actors := 0
	if snap.Actor != nil {
		actors = 1
	}
	entityCount.WithLabelValues(game.RoleActor.String()).Set(float64(actors))
	entityCount.WithLabelValues(game.RoleHostile.String()).Set(float64(len(snap.Hostiles)))
	entityCount.WithLabelValues(game.RoleProjectile.String()).Set(float64(len(snap.Projectiles)))
	entityCount.WithLabelValues(game.RoleEffect.String()).Set(float64(len(snap.Effects)))
	entityCount.WithLabelValues(game.RolePeer.String()).Set(float64(len(snap.Peers)))
}

// RecordRender records how long a frame took to draw.
func RecordRender(d time.Duration) {
	frameRenderDuration.Observe(d.Seconds())
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, d time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(d.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// MetricsMiddleware records latency per chi route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// RecordConnectionRejected increments the rejection counter for a fixed reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections sets the websocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// RecordWSMessage counts one websocket message in the given direction.
func RecordWSMessage(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}
