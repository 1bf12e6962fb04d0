/*
Package registry fans rendered screens out to everything currently watching a
browser session.

  - Cells: every session with at least one viewer is represented by an
    isolated Cell (actor) that owns the session's Connectors.
  - Mailboxes: the Hub only enqueues; delivery happens on the Cell's own
    goroutine, so a slow viewer never stalls the publisher.
  - Eviction: a janitor removes Cells that have had no viewers and no
    traffic for the configured idle timeout.
*/
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/event"
)

const deliveryTimeout = 500 * time.Millisecond

// Celler defines the internal API for session-specific delivery units.
type Celler interface {
	Push(ev event.Eventer) bool
	Attach(conn Connector)
	Detach(connID uuid.UUID) bool
	Size() int
	IsIdle(timeout time.Duration) bool
	Stop()
}

// Cell implements [ISOLATED_DELIVERY] for a single session.
type Cell struct {
	sessionID uuid.UUID

	// [MAILBOX] decouples the Hub from delivery to individual viewers.
	mailbox chan event.Eventer

	sessions map[uuid.UUID]Connector
	mu       sync.RWMutex

	doneCh   chan struct{}
	stopOnce sync.Once

	lastActivityAt time.Time
}

func NewCell(sessionID uuid.UUID, bufferSize int) *Cell {
	c := &Cell{
		sessionID:      sessionID,
		mailbox:        make(chan event.Eventer, bufferSize),
		sessions:       make(map[uuid.UUID]Connector),
		doneCh:         make(chan struct{}),
		lastActivityAt: time.Now(),
	}
	go c.loop()
	return c
}

// IsIdle reports whether the cell has no viewers and was quiet for longer than timeout.
func (c *Cell) IsIdle(timeout time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions) == 0 && time.Since(c.lastActivityAt) > timeout
}

func (c *Cell) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Cell) touch() {
	c.mu.Lock()
	c.lastActivityAt = time.Now()
	c.mu.Unlock()
}

// Push enqueues ev without blocking. It returns false when the mailbox is full or the cell stopped.
func (c *Cell) Push(ev event.Eventer) bool {
	c.touch()
	select {
	case <-c.doneCh:
		return false
	default:
	}

	select {
	case c.mailbox <- ev:
		return true
	default:
		return false
	}
}

func (c *Cell) Attach(conn Connector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActivityAt = time.Now()
	c.sessions[conn.GetID()] = conn
}

// Detach removes and closes a viewer. It reports whether the cell is now empty.
func (c *Cell) Detach(connID uuid.UUID) bool {
	c.mu.Lock()
	conn, ok := c.sessions[connID]
	delete(c.sessions, connID)
	c.lastActivityAt = time.Now()
	empty := len(c.sessions) == 0
	c.mu.Unlock()

	if ok {
		conn.Close()
	}
	return empty
}

func (c *Cell) loop() {
	for {
		select {
		case <-c.doneCh:
			return
		case ev := <-c.mailbox:
			c.deliver(ev)
		}
	}
}

func (c *Cell) deliver(ev event.Eventer) {
	c.mu.RLock()
	conns := make([]Connector, 0, len(c.sessions))
	for _, conn := range c.sessions {
		conns = append(conns, conn)
	}
	c.mu.RUnlock()

	for _, conn := range conns {
		conn.Send(ev, deliveryTimeout)
	}
}

// Stop terminates the cell goroutine and closes every remaining viewer.
func (c *Cell) Stop() {
	c.stopOnce.Do(func() {
		close(c.doneCh)

		c.mu.Lock()
		conns := c.sessions
		c.sessions = make(map[uuid.UUID]Connector)
		c.mu.Unlock()

		for _, conn := range conns {
			conn.Close()
		}
	})
}
