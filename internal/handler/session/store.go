package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/webitel/hangman-client/internal/adapter/pubsub"
	"github.com/webitel/hangman-client/internal/domain/event"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/service"
)

// Store keeps one controller per browser session. The least recently used
// session is dropped once the store is full.
type Store struct {
	// mu makes get-or-create atomic; the cache is safe on its own otherwise.
	mu         sync.Mutex
	cache      *lru.Cache[uuid.UUID, *service.Controller]
	factory    *service.Factory
	dispatcher pubsub.EventDispatcher
	logger     *slog.Logger
}

func NewStore(size int, factory *service.Factory, dispatcher pubsub.EventDispatcher, logger *slog.Logger) (*Store, error) {
	s := &Store{
		factory:    factory,
		dispatcher: dispatcher,
		logger:     logger,
	}

	cache, err := lru.NewWithEvict(size, func(id uuid.UUID, _ *service.Controller) {
		s.logger.Debug("SESSION_EVICTED", slog.String("session_id", id.String()))
	})
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

// Get returns the controller of an existing session.
func (s *Store) Get(id uuid.UUID) (*service.Controller, bool) {
	return s.cache.Get(id)
}

// Acquire returns the controller of id, creating it when the session is unknown.
func (s *Store) Acquire(id uuid.UUID) (*service.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache.Get(id); ok {
		return c, false
	}

	c := s.factory.New(s.publisher(id))
	s.cache.Add(id, c)
	s.logger.Debug("SESSION_CREATED", slog.String("session_id", id.String()))
	return c, true
}

func (s *Store) Len() int {
	return s.cache.Len()
}

// publisher fans every screen of the session out to its live viewers.
func (s *Store) publisher(id uuid.UUID) service.Observer {
	return service.ObserverFunc(func(screen model.Screen) {
		if err := s.dispatcher.Publish(context.Background(), event.NewScreenEvent(id, screen)); err != nil {
			s.logger.Warn("SCREEN_PUBLISH_FAILED",
				slog.String("session_id", id.String()),
				slog.Any("err", err),
			)
		}
	})
}
