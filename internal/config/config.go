// Package config loads the server's settings: viewport, gameplay tuning,
// resource limits, the HTTP listener and the debug server.
//
// Load starts from the Default constructors and applies environment overrides.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// VIEWPORT CONFIGURATION
// =============================================================================

// ViewportConfig holds the initial playfield size.
// The engine re-reads the viewport every tick, so this is only the starting value.
type ViewportConfig struct {
	Width           float64 // Playfield width in world units
	Height          float64 // Playfield height in world units
	FullWindowWidth float64 // Widths at or above this use the full speed and size tier
}

// DefaultViewport returns the default viewport configuration.
func DefaultViewport() ViewportConfig {
	return ViewportConfig{
		Width:           1200,
		Height:          800,
		FullWindowWidth: 1200,
	}
}

// ViewportFromEnv returns viewport configuration with environment variable overrides.
func ViewportFromEnv() ViewportConfig {
	cfg := DefaultViewport()

	if w := getEnvFloat("VIEWPORT_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("VIEWPORT_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if fw := getEnvFloat("FULL_WINDOW_WIDTH", 0); fw > 0 {
		cfg.FullWindowWidth = fw
	}

	return cfg
}

// =============================================================================
// GAMEPLAY CONFIGURATION
// =============================================================================

// GameplayConfig holds timing and balance values for a match.
type GameplayConfig struct {
	TickRate          int           // Fixed-step ticks per second
	FireCooldown      time.Duration // Minimum time between shots
	EntrySpeed        float64       // Upward speed of the actor during the entry phase
	StartingHealth    int           // Health points per player record
	InvulnerableFor   time.Duration // Grace period after taking a hit
	EffectLifetime    time.Duration // How long an explosion stays on screen
	ProjectileSpeed   float64       // Upward projectile speed per tick
	HostileSpeed      float64       // Downward hostile speed per tick
	HostileSpawnEvery time.Duration // Stand-alone spawner interval (0 disables)
	PlayerTag         uint8         // Owner tag of the local actor
	RandomSeed        int64         // Seed for the spawner RNG
}

// DefaultGameplay returns the default gameplay configuration.
func DefaultGameplay() GameplayConfig {
	return GameplayConfig{
		TickRate:          60,
		FireCooldown:      100 * time.Millisecond,
		EntrySpeed:        5,
		StartingHealth:    3,
		InvulnerableFor:   2 * time.Second,
		EffectLifetime:    500 * time.Millisecond,
		ProjectileSpeed:   12,
		HostileSpeed:      3,
		HostileSpawnEvery: 0,
		PlayerTag:         1,
		RandomSeed:        1,
	}
}

// GameplayFromEnv returns gameplay configuration with environment variable overrides.
func GameplayFromEnv() GameplayConfig {
	cfg := DefaultGameplay()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if ms := getEnvInt("FIRE_COOLDOWN_MS", 0); ms > 0 {
		cfg.FireCooldown = time.Duration(ms) * time.Millisecond
	}
	if hp := getEnvInt("STARTING_HEALTH", 0); hp > 0 {
		cfg.StartingHealth = hp
	}
	if ms := getEnvInt("INVULNERABLE_MS", -1); ms >= 0 {
		cfg.InvulnerableFor = time.Duration(ms) * time.Millisecond
	}
	if ms := getEnvInt("HOSTILE_SPAWN_MS", -1); ms >= 0 {
		cfg.HostileSpawnEvery = time.Duration(ms) * time.Millisecond
	}
	if tag := getEnvInt("PLAYER_TAG", 0); tag > 0 && tag <= 255 {
		cfg.PlayerTag = uint8(tag)
	}
	if seed := getEnvInt("RANDOM_SEED", 0); seed != 0 {
		cfg.RandomSeed = int64(seed)
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and performance limits.
type ResourceLimits struct {
	MaxHostiles    int // Hostiles accepted from spawner or network
	MaxProjectiles int // Active projectiles
	MaxEffects     int // Active explosion effects
	MaxPeers       int // Remote player ghosts
	MaxConnections int // Total websocket connections
	MaxConnsPerIP  int // Websocket connections per client IP
	RequestsPerSec int // HTTP requests per second per IP
	RequestBurst   int // HTTP burst size per IP
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxHostiles:    64,
		MaxProjectiles: 30,
		MaxEffects:     20,
		MaxPeers:       8,
		MaxConnections: 100,
		MaxConnsPerIP:  5,
		RequestsPerSec: 20,
		RequestBurst:   40,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	EventLogPath   string // JSONL event log file ("" keeps events in memory only)
	BroadcastEvery time.Duration
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
		},
		EventLogPath:   "",
		BroadcastEvery: 50 * time.Millisecond,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if path := os.Getenv("EVENT_LOG_PATH"); path != "" {
		cfg.EventLogPath = path
	}
	if ms := getEnvInt("BROADCAST_MS", 0); ms > 0 {
		cfg.BroadcastEvery = time.Duration(ms) * time.Millisecond
	}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}

	return cfg
}

// =============================================================================
// SPATIAL CONFIGURATION
// =============================================================================

// SpatialConfig holds spatial indexing settings.
type SpatialConfig struct {
	GridCellSize int // Broad-phase grid cell size in world units
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		GridCellSize: 100,
	}
}

// =============================================================================
// DEBUG CONFIGURATION
// =============================================================================

// DebugConfig controls the localhost pprof/metrics server.
type DebugConfig struct {
	Port     int
	User     string
	Password string
}

// DebugFromEnv returns debug server configuration. Port 0 disables the server.
func DebugFromEnv() DebugConfig {
	return DebugConfig{
		Port:     getEnvInt("DEBUG_PORT", 6060),
		User:     os.Getenv("DEBUG_USER"),
		Password: os.Getenv("DEBUG_PASS"),
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Viewport ViewportConfig
	Gameplay GameplayConfig
	Server   ServerConfig
	Limits   ResourceLimits
	Spatial  SpatialConfig
	Debug    DebugConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Viewport: ViewportFromEnv(),
		Gameplay: GameplayFromEnv(),
		Server:   ServerFromEnv(),
		Limits:   DefaultLimits(),
		Spatial:  DefaultSpatial(),
		Debug:    DebugFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
