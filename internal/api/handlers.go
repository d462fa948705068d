package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ufo-shooter/internal/game"
	"ufo-shooter/internal/protocol"
)

// maxBodyBytes bounds request bodies; every request type here is tiny.
const maxBodyBytes = 4096

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.GetStats()
	stats["rateLimit"] = h.limiter.GetStats()
	if snap := h.engine.Snapshot(); snap != nil {
		stats["sequence"] = snap.Sequence
		stats["entityCount"] = snap.EntityCount()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.EncodePNG(&buf, h.engine.Snapshot()); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	matchID := h.engine.StartMatch()
	tag := h.engine.PlayerTag()
	writeJSON(w, map[string]interface{}{
		"matchId":   matchID,
		"playerTag": tag,
		"record":    h.engine.Record(tag),
	})
}

type inputRequest struct {
	protocol.Input
	Mode string `json:"mode,omitempty"`
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Mode != "" {
		h.engine.SetControlMode(game.ParseControlMode(req.Mode))
	}
	h.engine.SetInput(req.Input.ToGame())
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req protocol.Resize
	if !decodeBody(w, r, &req) {
		return
	}
	vp := game.Viewport{Width: float64(req.Width), Height: float64(req.Height)}
	if !vp.ValidSize() {
		writeError(w, fmt.Sprintf("width and height must be in (0, %g]", game.MaxViewportSide), http.StatusBadRequest)
		return
	}
	h.engine.SetViewport(vp)
	writeJSON(w, map[string]interface{}{
		"width":     vp.Width,
		"height":    vp.Height,
		"actorSize": vp.ActorSize(),
	})
}

func (h *routerHandlers) handleSpawnHostile(w http.ResponseWriter, r *http.Request) {
	var req protocol.SpawnEnemy
	if !decodeBody(w, r, &req) {
		return
	}

	ent, err := h.engine.SpawnHostile(req.Tag, req.Position.ToVec2(), req.Velocity.ToVec2())
	if err != nil {
		writeError(w, err.Error(), spawnErrorStatus(err))
		return
	}
	if h.onSpawned != nil {
		h.onSpawned(ent)
	}
	writeJSONStatus(w, http.StatusCreated, ent)
}

func (h *routerHandlers) handleDefeatHostile(w http.ResponseWriter, r *http.Request) {
	tag, err := strconv.ParseUint(chi.URLParam(r, "tag"), 10, 16)
	if err != nil || tag == 0 {
		writeError(w, "invalid hostile tag", http.StatusBadRequest)
		return
	}
	if !h.engine.DefeatHostile(uint16(tag)) {
		writeError(w, "hostile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func spawnErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNoMatch), errors.Is(err, game.ErrDuplicateTag):
		return http.StatusConflict
	case errors.Is(err, game.ErrLimitReached):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
