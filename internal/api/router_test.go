package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufo-shooter/internal/game"
)

func newTestRouter(t *testing.T, engine EngineInterface) http.Handler {
	t.Helper()
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1000,
		Burst:             1000,
		CleanupInterval:   time.Hour,
	})
	t.Cleanup(limiter.Stop)
	return NewRouter(RouterConfig{
		Engine:         engine,
		RateLimiter:    limiter,
		DisableLogging: true,
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetState(t *testing.T) {
	engine := newMockEngine()
	router := newTestRouter(t, engine)
	engine.StartMatch()

	rec := doRequest(t, router, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "match-1", snap.MatchID)
	require.NotNil(t, snap.Actor)
	assert.Equal(t, -100.0, snap.Actor.Y)
}

func TestGetStatsIncludesRateLimit(t *testing.T) {
	router := newTestRouter(t, newMockEngine())

	rec := doRequest(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "rateLimit")
	assert.Contains(t, stats, "entityCount")
}

func TestStartMatch(t *testing.T) {
	engine := newMockEngine()
	router := newTestRouter(t, engine)

	rec := doRequest(t, router, http.MethodPost, "/api/match/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MatchID   string            `json:"matchId"`
		PlayerTag uint8             `json:"playerTag"`
		Record    game.PlayerRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "match-1", resp.MatchID)
	assert.Equal(t, uint8(1), resp.PlayerTag)
	assert.Equal(t, 3, resp.Record.Health)
}

func TestPostInput(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantIn   game.Input
		wantMode game.ControlMode
	}{
		{"keyboard", `{"up":true,"right":true,"fire":true}`, http.StatusOK,
			game.Input{Up: true, Right: true, Fire: true}, game.ControlKeyboard},
		{"hover", `{"analog":"up_left","mode":"hover"}`, http.StatusOK,
			game.Input{Analog: game.MotionUpLeft}, game.ControlHover},
		{"malformed", `{"up":`, http.StatusBadRequest, game.Input{}, game.ControlKeyboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			router := newTestRouter(t, engine)

			rec := doRequest(t, router, http.MethodPost, "/api/input", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			in, mode := engine.snapshotInput()
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

func TestPostViewport(t *testing.T) {
	engine := newMockEngine()
	router := newTestRouter(t, engine)

	rec := doRequest(t, router, http.MethodPost, "/api/viewport", `{"width":800,"height":600}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"actorSize":{"x":60,"y":60}`)
	assert.Equal(t, 800.0, engine.Snapshot().Viewport.Width)

	for _, body := range []string{
		`{"width":0,"height":600}`,
		`{"width":3.1e11,"height":3.1e11}`,
		`{"width":800,"height":9000}`,
	} {
		rec = doRequest(t, router, http.MethodPost, "/api/viewport", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, 800.0, engine.Snapshot().Viewport.Width, "rejected sizes leave the viewport alone")
	assert.Equal(t, 600.0, engine.Snapshot().Viewport.Height)
}

func TestSpawnAndDefeatHostile(t *testing.T) {
	engine := newMockEngine()
	var announced []game.EntitySnapshot
	limiter := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Hour})
	defer limiter.Stop()
	router := NewRouter(RouterConfig{
		Engine:           engine,
		RateLimiter:      limiter,
		DisableLogging:   true,
		OnHostileSpawned: func(h game.EntitySnapshot) { announced = append(announced, h) },
	})

	body := `{"tag":7,"position":[10,400],"velocity":[0,-3]}`
	rec := doRequest(t, router, http.MethodPost, "/api/hostiles", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, announced, 1)
	assert.Equal(t, uint16(7), announced[0].Tag)
	assert.Equal(t, -3.0, announced[0].VY)

	rec = doRequest(t, router, http.MethodPost, "/api/hostiles", body)
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate tag")

	rec = doRequest(t, router, http.MethodDelete, "/api/hostiles/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, "/api/hostiles/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, "/api/hostiles/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpawnErrorStatus(t *testing.T) {
	engine := newMockEngine()
	engine.spawnErr = game.ErrLimitReached
	router := newTestRouter(t, engine)

	rec := doRequest(t, router, http.MethodPost, "/api/hostiles", `{"tag":1,"position":[0,0],"velocity":[0,0]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	engine.spawnErr = game.ErrNoMatch
	rec = doRequest(t, router, http.MethodPost, "/api/hostiles", `{"tag":1,"position":[0,0],"velocity":[0,0]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetFrame(t *testing.T) {
	engine := newMockEngine()
	engine.StartMatch()
	engine.SetViewport(game.Viewport{Width: 320, Height: 240})
	router := newTestRouter(t, engine)

	rec := doRequest(t, router, http.MethodGet, "/api/frame.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRouterRateLimits(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2, CleanupInterval: time.Hour})
	defer limiter.Stop()
	router := NewRouter(RouterConfig{Engine: newMockEngine(), RateLimiter: limiter, DisableLogging: true})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, doRequest(t, router, http.MethodGet, "/health", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, uint64(1), limiter.GetStats()["rejected"])
}
