package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/registry"
)

// [SCREEN_FEED] PRIMARY INTERFACE FOR VIEWER TRANSPORTS (websocket/long-poll)
type ScreenFeed interface {
	Subscribe(ctx context.Context, sessionID uuid.UUID) (registry.Connector, error)
	Unsubscribe(sessionID, connID uuid.UUID)
}

type ScreenFeedService struct {
	hub        registry.Hubber
	bufferSize int
}

func NewScreenFeedService(hub registry.Hubber) *ScreenFeedService {
	return &ScreenFeedService{
		hub:        hub,
		bufferSize: 16,
	}
}

// Subscribe attaches a new viewer to the session. The connector lives until
// Unsubscribe is called or ctx is cancelled.
func (s *ScreenFeedService) Subscribe(ctx context.Context, sessionID uuid.UUID) (registry.Connector, error) {
	conn := registry.NewConnector(ctx, sessionID, s.bufferSize)
	s.hub.Register(conn)
	return conn, nil
}

// Unsubscribe detaches the viewer; the hub closes its connector.
func (s *ScreenFeedService) Unsubscribe(sessionID, connID uuid.UUID) {
	s.hub.Unregister(sessionID, connID)
}
