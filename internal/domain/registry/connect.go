package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/event"
)

// Interface guard
var _ Connector = (*connect)(nil)

// [CONNECTOR] ONE VIEWER OF A SESSION (a websocket or a pending long-poll)
type Connector interface {
	GetID() uuid.UUID
	GetSessionID() uuid.UUID
	Send(ev event.Eventer, timeout time.Duration) bool // Thread-safe send with backpressure handling
	Recv() <-chan event.Eventer
	Done() <-chan struct{}
	Dropped() uint64
	Close() // Terminate connection and release resources
}

type connect struct {
	id        uuid.UUID
	sessionID uuid.UUID
	createdAt time.Time

	ctx      context.Context
	cancelFn context.CancelFunc

	// sendMu guards sendCh against a close racing with a send.
	sendMu sync.RWMutex
	sendCh chan event.Eventer
	closed bool

	closeOnce    sync.Once
	droppedCount atomic.Uint64
}

// NewConnector creates a viewer bound to ctx: cancelling ctx stops every pending Send.
func NewConnector(ctx context.Context, sessionID uuid.UUID, bufferSize int) Connector {
	childCtx, cancel := context.WithCancel(ctx)
	return &connect{
		id:        uuid.New(),
		sessionID: sessionID,
		createdAt: time.Now(),
		ctx:       childCtx,
		cancelFn:  cancel,
		sendCh:    make(chan event.Eventer, bufferSize),
	}
}

func (c *connect) GetID() uuid.UUID        { return c.id }
func (c *connect) GetSessionID() uuid.UUID { return c.sessionID }
func (c *connect) Done() <-chan struct{}   { return c.ctx.Done() }
func (c *connect) Dropped() uint64         { return c.droppedCount.Load() }

// Send attempts to push an event into the channel, waiting up to timeout for room.
func (c *connect) Send(ev event.Eventer, timeout time.Duration) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()

	if c.closed {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	// 1. [LIFECYCLE_GATE] The transport is already gone.
	case <-c.ctx.Done():
		return false

	// 2. [PRIMARY_DELIVERY]
	case c.sendCh <- ev:
		return true

	// 3. [BACKPRESSURE_THRESHOLD] The buffer stayed full for the whole window.
	case <-timer.C:
		return c.handleBackpressure(ev)
	}
}

// handleBackpressure makes room for a high-priority event by evicting the
// oldest queued one. Older screens are superseded by newer ones, so losing
// one is harmless; lower-priority events are simply dropped.
func (c *connect) handleBackpressure(ev event.Eventer) bool {
	if ev.GetPriority() <= event.PriorityLow {
		c.droppedCount.Add(1)
		return false
	}

	select {
	case <-c.sendCh:
		c.droppedCount.Add(1)
	default:
	}

	select {
	case c.sendCh <- ev:
		return true
	default:
		c.droppedCount.Add(1)
		return false
	}
}

func (c *connect) Recv() <-chan event.Eventer { return c.sendCh }

// Close terminates the viewer. Safe to call more than once and concurrently.
func (c *connect) Close() {
	c.closeOnce.Do(func() {
		// 1. [SIGNAL_ABORT] Unblock pending Send calls before taking the write lock.
		c.cancelFn()

		// 2. [UPSTREAM_NOTIFY] Closing the channel tells the transport pump to exit.
		c.sendMu.Lock()
		c.closed = true
		close(c.sendCh)
		c.sendMu.Unlock()
	})
}
