package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ufo-shooter/internal/game"
	"ufo-shooter/internal/render"
)

// EngineInterface is the part of the game engine the API calls.
// Tests substitute a mock so no game loop needs to run.
type EngineInterface interface {
	Snapshot() *game.Snapshot
	GetStats() map[string]interface{}
	StartMatch() string
	MatchID() string
	PlayerTag() uint8
	Record(owner uint8) game.PlayerRecord
	SetInput(in game.Input)
	SetControlMode(m game.ControlMode)
	SetViewport(vp game.Viewport)
	SpawnHostile(tag uint16, pos, vel game.Vec2) (game.EntitySnapshot, error)
	DefeatHostile(tag uint16) bool
	SyncPeer(owner uint8, pos game.Vec2) error
}

// RouterConfig contains the dependencies of the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:          mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	    DisableLogging:  true,
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is required.
	Engine EngineInterface

	// Renderer draws /api/frame.png. A default renderer is created when nil.
	Renderer *render.Renderer

	// RateLimiter is used as is when set; otherwise one is built from RateLimitConfig.
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to local development origins.
	CORSOrigins []string

	// OnHostileSpawned is called after POST /api/hostiles succeeds.
	OnHostileSpawned func(game.EntitySnapshot)

	DisableLogging bool
}

type routerHandlers struct {
	engine    EngineInterface
	renderer  *render.Renderer
	limiter   *IPRateLimiter
	onSpawned func(game.EntitySnapshot)
}

// NewRouter builds the HTTP router. It starts no goroutines besides the rate
// limiter's cleanup and opens no listeners, so it can be used with httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	// Rate limit before CORS so floods are rejected early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	h := &routerHandlers{
		engine:    cfg.Engine,
		renderer:  renderer,
		limiter:   rateLimiter,
		onSpawned: cfg.OnHostileSpawned,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/frame.png", h.handleGetFrame)

		r.Post("/match/start", h.handleStartMatch)
		r.Post("/input", h.handleInput)
		r.Post("/viewport", h.handleViewport)
		r.Post("/hostiles", h.handleSpawnHostile)
		r.Delete("/hostiles/{tag}", h.handleDefeatHostile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	return r
}
