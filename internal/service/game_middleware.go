package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/webitel/hangman-client/internal/domain/model"
)

// GameServiceMiddleware implements [DECORATOR_PATTERN] to add observability
// to the remote game calls without touching the controller.
type GameServiceMiddleware struct {
	Next   GameService
	Logger *slog.Logger
}

func NewGameServiceMiddleware(next GameService, logger *slog.Logger) GameService {
	return &GameServiceMiddleware{
		Next:   next,
		Logger: logger,
	}
}

func (m *GameServiceMiddleware) NewGame(ctx context.Context) (model.GameState, error) {
	start := time.Now()
	state, err := m.Next.NewGame(ctx)
	m.log("NEW_GAME", start, state.ID, state, err)
	return state, err
}

func (m *GameServiceMiddleware) Guess(ctx context.Context, gameID, letter string) (model.GameState, error) {
	start := time.Now()
	state, err := m.Next.Guess(ctx, gameID, letter)
	m.log("GUESS", start, gameID, state, err, "letter", letter)
	return state, err
}

func (m *GameServiceMiddleware) State(ctx context.Context, gameID string) (model.GameState, error) {
	start := time.Now()
	state, err := m.Next.State(ctx, gameID)
	m.log("STATE", start, gameID, state, err)
	return state, err
}

func (m *GameServiceMiddleware) log(op string, start time.Time, gameID string, state model.GameState, err error, extra ...any) {
	attrs := append([]any{
		"game_id", gameID,
		"duration_ms", time.Since(start).Milliseconds(),
	}, extra...)

	if err != nil {
		m.Logger.Error("GAMEAPI_"+op+"_FAILED", append(attrs, "err", err)...)
		return
	}
	m.Logger.Debug("GAMEAPI_"+op+"_COMPLETED", append(attrs, "status", state.Status)...)
}
