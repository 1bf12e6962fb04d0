package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/event"
)

// Hubber defines the gateway for viewer management and screen routing.
type Hubber interface {
	Broadcast(ev event.Eventer) bool
	Register(conn Connector)
	Unregister(sessionID, connID uuid.UUID)
	IsWatched(sessionID uuid.UUID) bool
	Shutdown()
}

// Hub implements a [SCALABLE_REGISTRY] using the Virtual Cell pattern.
type Hub struct {
	// cells stores map[uuid.UUID]Celler.
	cells sync.Map

	// mu serialises cell creation and removal against each other.
	mu sync.Mutex

	config   hubConfig
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		config: defaultHubConfig(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.janitor()
	return h
}

func (h *Hub) IsWatched(sessionID uuid.UUID) bool {
	val, ok := h.cells.Load(sessionID)
	if !ok {
		return false
	}
	cell, ok := val.(Celler)
	return ok && cell.Size() > 0
}

// Broadcast routes ev to its session cell. It returns false when nobody watches
// the session or the cell's mailbox overflowed.
func (h *Hub) Broadcast(ev event.Eventer) bool {
	if val, ok := h.cells.Load(ev.GetSessionID()); ok {
		if cell, ok := val.(Celler); ok {
			return cell.Push(ev)
		}
	}
	return false
}

// Register attaches conn to its session cell, creating the cell on first use.
func (h *Hub) Register(conn Connector) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sid := conn.GetSessionID()
	val, ok := h.cells.Load(sid)
	if !ok {
		val = NewCell(sid, h.config.mailboxSize)
		h.cells.Store(sid, val)
	}
	if cell, ok := val.(Celler); ok {
		cell.Attach(conn)
	}
}

// Unregister detaches and closes a viewer. Empty cells are reclaimed immediately.
func (h *Hub) Unregister(sessionID, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	val, ok := h.cells.Load(sessionID)
	if !ok {
		return
	}
	if cell, ok := val.(Celler); ok && cell.Detach(connID) {
		cell.Stop()
		h.cells.Delete(sessionID)
	}
}

// Evict removes cells that are idle for longer than the configured timeout.
func (h *Hub) Evict() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	h.cells.Range(func(key, val any) bool {
		if cell, ok := val.(Celler); ok && cell.IsIdle(h.config.idleTimeout) {
			cell.Stop()
			h.cells.Delete(key)
			evicted++
		}
		return true
	})
	return evicted
}

func (h *Hub) janitor() {
	ticker := time.NewTicker(h.config.evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.Evict()
		}
	}
}

// Shutdown stops the janitor and every cell, closing all viewers.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		defer h.mu.Unlock()
		h.cells.Range(func(key, val any) bool {
			if cell, ok := val.(Celler); ok {
				cell.Stop()
			}
			h.cells.Delete(key)
			return true
		})
	})
}
