package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ufo-shooter/internal/api"
	"ufo-shooter/internal/config"
	"ufo-shooter/internal/game"
)

func main() {
	loadDotEnv()

	log.Println("🛸 ================================")
	log.Println("🛸  UFO SHOOTER - GO ENGINE")
	log.Println("🛸 ================================")

	appConfig := config.Load()
	gp := appConfig.Gameplay
	vp := appConfig.Viewport
	log.Printf("🎮 Config: %d TPS, viewport %.0fx%.0f, fire cooldown %v, player %d",
		gp.TickRate, vp.Width, vp.Height, gp.FireCooldown, gp.PlayerTag)

	engine := game.NewEngine(game.EngineConfigFrom(appConfig))
	limits := appConfig.Limits
	log.Printf("🛡️ Resource limits: %d hostiles, %d projectiles, %d effects, %d peers",
		limits.MaxHostiles, limits.MaxProjectiles, limits.MaxEffects, limits.MaxPeers)

	eventLogPath := appConfig.Server.EventLogPath
	if err := engine.GetEventLog().Start(eventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if eventLogPath != "" {
		log.Printf("📝 Event log: %s", eventLogPath)
	}

	debugSrv := api.StartDebugServer(api.ObservabilityConfigFrom(appConfig.Debug))

	server := api.NewServer(engine, appConfig)

	engine.Start()
	log.Println("✅ Game Engine started")

	go func() {
		addr := ":" + strconv.Itoa(appConfig.Server.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		log.Printf("🔌 WebSocket: ws://localhost%s/ws", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugSrv != nil {
		debugSrv.Shutdown(ctx)
	}
	engine.Stop()
	log.Println("👋 Goodbye!")
}

// loadDotEnv reads .env from the working directory. Variables already set in
// the environment take precedence.
func loadDotEnv() bool {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
		return false
	}
	log.Println("✅ Loaded environment from .env")
	return true
}
