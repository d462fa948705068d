package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"ufo-shooter/internal/config"
	"ufo-shooter/internal/game"
	"ufo-shooter/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256

	// Input arrives at most once per frame; anything well above that is a flood.
	maxMessagesPerSec = 120
)

// ErrUnexpectedMessage is returned for server-only messages sent by a client.
var ErrUnexpectedMessage = errors.New("unexpected message from client")

// HubConfig bounds the websocket hub.
type HubConfig struct {
	MaxConnections int
	MaxConnsPerIP  int
	BroadcastEvery time.Duration
	Origins        *OriginPolicy
}

// HubConfigFrom derives hub settings from the application configuration.
func HubConfigFrom(cfg config.AppConfig) HubConfig {
	return HubConfig{
		MaxConnections: cfg.Limits.MaxConnections,
		MaxConnsPerIP:  cfg.Limits.MaxConnsPerIP,
		BroadcastEvery: cfg.Server.BroadcastEvery,
		Origins:        NewOriginPolicy(cfg.Server.AllowedOrigins),
	}
}

// frame is one encoded outbound message in both wire forms.
type frame struct {
	text   []byte
	binary []byte
}

type wsClient struct {
	hub     *WebSocketHub
	conn    *websocket.Conn
	ip      string
	send    chan frame
	binary  atomic.Bool // client spoke msgpack; answer in kind
	limiter *rate.Limiter
}

// WebSocketHub fans protocol messages out to clients and feeds their
// messages into the engine.
type WebSocketHub struct {
	engine   EngineInterface
	cfg      HubConfig
	upgrader websocket.Upgrader

	clients    map[*wsClient]bool
	mu         sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *wsClient
	unregister chan *wsClient
	stopChan   chan struct{}
	stopOnce   sync.Once

	connLimiter *ConnLimiter
	// slots counts connections from reservation until removal, including
	// upgrades still in flight.
	slots atomic.Int64
}

// NewWebSocketHub creates a hub. Call Run before accepting connections.
func NewWebSocketHub(engine EngineInterface, cfg HubConfig) *WebSocketHub {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 100
	}
	if cfg.MaxConnsPerIP <= 0 {
		cfg.MaxConnsPerIP = 5
	}
	if cfg.BroadcastEvery <= 0 {
		cfg.BroadcastEvery = 50 * time.Millisecond
	}
	if cfg.Origins == nil {
		cfg.Origins = NewOriginPolicy(nil)
	}

	h := &WebSocketHub{
		engine:      engine,
		cfg:         cfg,
		clients:     make(map[*wsClient]bool),
		broadcast:   make(chan protocol.Message, 256),
		register:    make(chan *wsClient),
		unregister:  make(chan *wsClient),
		stopChan:    make(chan struct{}),
		connLimiter: NewConnLimiter(cfg.MaxConnsPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if h.cfg.Origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run owns the client set until Stop is called.
func (h *WebSocketHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", c.ip, count)
			UpdateWSConnections(count)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			f, err := encodeFrame(msg)
			if err != nil {
				log.Printf("⚠️ Broadcast %s dropped: %v", msg, err)
				continue
			}
			h.mu.RLock()
			var slow []*wsClient
			for c := range h.clients {
				select {
				case c.send <- f:
					RecordWSMessage("out")
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.remove(c)
			}

		case <-h.stopChan:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				h.release(c.ip)
				close(c.send)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return
		}
	}
}

func (h *WebSocketHub) remove(c *wsClient) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.release(c.ip)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Client disconnected (%d remaining)", count)
	UpdateWSConnections(count)
}

// Stop disconnects every client and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// Broadcast queues msg for every client. It never blocks; a full queue drops msg.
func (h *WebSocketHub) Broadcast(msg protocol.Message) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// reserve claims one of MaxConnections slots and then a per-IP slot. It fails
// without holding either when a limit is reached.
func (h *WebSocketHub) reserve(ip string) (ok bool, reason string) {
	for {
		n := h.slots.Load()
		if n >= int64(h.cfg.MaxConnections) {
			return false, "ws_total_limit"
		}
		if h.slots.CompareAndSwap(n, n+1) {
			break
		}
	}
	if !h.connLimiter.Acquire(ip) {
		h.slots.Add(-1)
		return false, "ws_ip_limit"
	}
	return true, ""
}

func (h *WebSocketHub) release(ip string) {
	h.connLimiter.Release(ip)
	h.slots.Add(-1)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop periodically sends the local player's position and
// projectiles while a match is running.
func (h *WebSocketHub) StartBroadcastLoop() {
	ticker := time.NewTicker(h.cfg.BroadcastEvery)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			snap := h.engine.Snapshot()
			UpdateEntityCounts(snap)
			if h.ClientCount() == 0 || snap == nil || snap.MatchID == "" {
				continue
			}
			if msg, ok := protocol.FromSnapshot(snap, h.engine.PlayerTag()); ok {
				h.Broadcast(msg)
			}
		}
	}()
}

// HandleWebSocket upgrades the request and serves the connection.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if ok, reason := h.reserve(ip); !ok {
		RecordConnectionRejected(reason)
		if reason == "ws_total_limit" {
			log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", h.cfg.MaxConnections)
			http.Error(w, "Too many connections", http.StatusServiceUnavailable)
			return
		}
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.release(ip)
		return
	}

	c := &wsClient{
		hub:     h,
		conn:    conn,
		ip:      ip,
		send:    make(chan frame, sendBufSize),
		limiter: rate.NewLimiter(maxMessagesPerSec, maxMessagesPerSec),
	}

	// Greet before registering so the greeting precedes any broadcast.
	c.queue(protocol.NewJoined(h.engine.PlayerTag()))
	if h.engine.MatchID() != "" {
		c.queue(protocol.NewGameReady())
	}

	select {
	case h.register <- c:
	case <-h.stopChan:
		h.release(ip)
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// queue enqueues a message for this client only. Only valid before registration.
func (c *wsClient) queue(msg protocol.Message) {
	f, err := encodeFrame(msg)
	if err != nil {
		log.Printf("⚠️ Encode %s: %v", msg, err)
		return
	}
	c.send <- f
	RecordWSMessage("out")
}

func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopChan:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			return
		}
		RecordWSMessage("in")

		if !c.limiter.Allow() {
			log.Printf("⚠️ Message flood from %s, disconnecting", c.ip)
			RecordConnectionRejected("ws_flood")
			return
		}

		var msg protocol.Message
		if msgType == websocket.BinaryMessage {
			c.binary.Store(true)
			msg, err = protocol.DecodeBinary(data)
		} else {
			msg, err = protocol.Decode(data)
		}
		if err != nil {
			log.Printf("⚠️ Bad message from %s: %v", c.ip, err)
			continue
		}

		if err := c.hub.dispatch(msg); err != nil {
			log.Printf("⚠️ %s from %s: %v", msg, c.ip, err)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if c.binary.Load() {
				err = c.conn.WriteMessage(websocket.BinaryMessage, f.binary)
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, f.text)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch applies one client message to the engine.
func (h *WebSocketHub) dispatch(msg protocol.Message) error {
	switch msg.Kind {
	case protocol.KindInput:
		h.engine.SetInput(msg.Input.ToGame())

	case protocol.KindControl:
		h.engine.SetControlMode(game.ParseControlMode(msg.Control.Mode))

	case protocol.KindResize:
		vp := game.Viewport{Width: float64(msg.Resize.Width), Height: float64(msg.Resize.Height)}
		if !vp.ValidSize() {
			return fmt.Errorf("resize %vx%v: size out of range", msg.Resize.Width, msg.Resize.Height)
		}
		h.engine.SetViewport(vp)

	case protocol.KindStartMatch:
		h.engine.StartMatch()

	case protocol.KindUpdatePosition:
		u := msg.UpdatePosition
		return h.engine.SyncPeer(u.PlayerTag, u.Position.ToVec2())

	case protocol.KindSpawnEnemy:
		s := msg.SpawnEnemy
		ent, err := h.engine.SpawnHostile(s.Tag, s.Position.ToVec2(), s.Velocity.ToVec2())
		if err != nil {
			return err
		}
		h.Broadcast(protocol.FromSpawned(ent))

	case protocol.KindConfirmDamaged:
		h.engine.DefeatHostile(msg.ConfirmDamaged.EnemyTag)

	default:
		return fmt.Errorf("%s: %w", msg.Kind, ErrUnexpectedMessage)
	}
	return nil
}

func encodeFrame(msg protocol.Message) (frame, error) {
	text, err := protocol.Encode(msg)
	if err != nil {
		return frame{}, err
	}
	bin, err := protocol.EncodeBinary(msg)
	if err != nil {
		return frame{}, err
	}
	return frame{text: text, binary: bin}, nil
}
