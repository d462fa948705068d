package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ufo-shooter/internal/config"
	"ufo-shooter/internal/game"
	"ufo-shooter/internal/protocol"
	"ufo-shooter/internal/render"
)

// Server is the HTTP API plus the websocket hub.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer wires the engine to the router and hub. Background workers do
// not start until Start is called, so tests can use Router directly.
func NewServer(engine *game.Engine, cfg config.AppConfig) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine, HubConfigFrom(cfg)),
		rateLimiter: NewIPRateLimiter(RateLimitConfigFrom(cfg.Limits)),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Renderer:    render.NewRenderer(),
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.Server.AllowedOrigins,
		OnHostileSpawned: func(h game.EntitySnapshot) {
			s.wsHub.Broadcast(protocol.FromSpawned(h))
		},
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	engine.SetHooks(s.engineHooks())
	return s
}

// engineHooks turns engine events into protocol broadcasts and metrics.
func (s *Server) engineHooks() game.Hooks {
	return game.Hooks{
		OnMatchStart: func(matchID string, playerTag uint8) {
			s.wsHub.Broadcast(protocol.NewGameReady())
		},
		OnPhaseChange: func(change game.PhaseChange) {
			if change.To == game.PhaseActive {
				s.wsHub.Broadcast(protocol.NewGameStart())
			}
		},
		OnDamage: func(d game.DamageConfirmed) {
			s.wsHub.Broadcast(protocol.FromDamage(d))
		},
		OnHostileSpawned: func(h game.EntitySnapshot) {
			s.wsHub.Broadcast(protocol.FromSpawned(h))
		},
		OnGameOver: func(rec game.PlayerRecord) {
			RecordGameOver()
		},
		OnTick: RecordTick,
	}
}

// Start runs the hub and broadcast loop, then serves HTTP until Shutdown.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("🌐 API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests and releases background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
