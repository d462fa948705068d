package game

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize      = 1024                   // Ring buffer size
	MaxEventsPerSec      = 10000                  // Global rate limit
	MaxEventsPerPlayer   = 200                    // Per-player rate limit per second
	BatchFlushSize       = 64                     // Events per batch write
	BatchFlushInterval   = 100 * time.Millisecond // How often to flush
	PlayerLimiterCleanup = 5 * time.Minute        // Cleanup interval for player limiters
)

// EventLog is a bounded, rate-limited match journal written as JSON lines.
// Emit never blocks the tick: when the ring is full the oldest pending event is dropped.
type EventLog struct {
	mu      sync.Mutex
	ring    [EventBufferSize]Event
	head    uint64 // next sequence to assign
	tail    uint64 // next sequence to flush
	matchID string

	globalLimiter  *rate.Limiter
	playerLimiters sync.Map // map[string]*playerLimiterEntry

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	out    io.Writer
	closer io.Closer

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
}

type playerLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// NewEventLog creates an event log. Nothing is written until Start.
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens filePath for append and begins the async writer.
// An empty path keeps the journal in memory only.
func (el *EventLog) Start(filePath string) error {
	if filePath == "" {
		return el.StartWriter(nil)
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open event log %s: %w", filePath, err)
	}
	el.closer = file
	return el.StartWriter(file)
}

// StartWriter begins the async writer targeting w. A nil writer discards flushed events.
func (el *EventLog) StartWriter(w io.Writer) error {
	if !el.running.CompareAndSwap(false, true) {
		return nil
	}
	el.out = w

	el.wg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes pending events and closes the file. Safe to call more than once.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Swap(false) {
			return
		}
		close(el.stopChan)
		el.wg.Wait()

		if el.closer != nil {
			if err := el.closer.Close(); err != nil {
				log.Printf("⚠️ Event log close failed: %v", err)
			}
		}
	})
}

// SetMatchID stamps subsequent events with the match ID.
func (el *EventLog) SetMatchID(id string) {
	el.mu.Lock()
	el.matchID = id
	el.mu.Unlock()
}

// Emit queues an event. It returns false when rate limited or not running.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}
	if event.PlayerID != "" && !el.playerLimiter(event.PlayerID).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	el.mu.Lock()
	if el.head-el.tail >= EventBufferSize {
		el.tail++
		el.droppedCount.Add(1)
	}
	el.head++
	event.Sequence = el.head
	event.MatchID = el.matchID
	el.ring[el.head%EventBufferSize] = event
	el.mu.Unlock()

	el.totalCount.Add(1)
	return true
}

// EmitSimple builds and queues an event.
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, playerID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, playerID, payload))
}

func (el *EventLog) playerLimiter(playerID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.playerLimiters.Load(playerID); ok {
		entry := v.(*playerLimiterEntry)
		entry.lastUsed.Store(now)
		return entry.limiter
	}

	entry := &playerLimiterEntry{limiter: rate.NewLimiter(MaxEventsPerPlayer, MaxEventsPerPlayer/10)}
	entry.lastUsed.Store(now)
	actual, _ := el.playerLimiters.LoadOrStore(playerID, entry)
	return actual.(*playerLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.wg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.wg.Done()

	ticker := time.NewTicker(PlayerLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-PlayerLimiterCleanup).UnixNano()
			el.playerLimiters.Range(func(key, value interface{}) bool {
				if value.(*playerLimiterEntry).lastUsed.Load() < cutoff {
					el.playerLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()

	for el.tail < el.head && len(batch) < BatchFlushSize {
		el.tail++
		batch = append(batch, el.ring[el.tail%EventBufferSize])
	}
	return batch
}

func (el *EventLog) flushBatch(batch []Event) {
	if el.out == nil {
		return
	}
	enc := json.NewEncoder(el.out)
	for _, event := range batch {
		if err := enc.Encode(event); err != nil {
			log.Printf("⚠️ Event log write failed: %v", err)
			return
		}
	}
}

// GetStats returns counters for monitoring.
func (el *EventLog) GetStats() map[string]interface{} {
	el.mu.Lock()
	pending := el.head - el.tail
	el.mu.Unlock()

	return map[string]interface{}{
		"total":   el.totalCount.Load(),
		"dropped": el.droppedCount.Load(),
		"pending": pending,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return el.droppedCount.Load()
}

// GetTotalCount returns the total number of events accepted
func (el *EventLog) GetTotalCount() uint64 {
	return el.totalCount.Load()
}
