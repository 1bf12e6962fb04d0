package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/webitel/hangman-client/internal/adapter/gameapi"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/domain/view"
)

const (
	MessageCreating      = "Creating a new game..."
	MessageInvalidLetter = "Please enter a single letter (A-Z)."
	MessageNetworkError  = "Request failed (network error)"
	MessageUnavailable   = "Request failed (service unavailable)"
)

var (
	// ErrNoGame is returned by guesses issued before any game was started.
	ErrNoGame = errors.New("no game in progress")
	// ErrInvalidLetter is returned when the input is not exactly one letter a-z.
	ErrInvalidLetter = errors.New("input is not a single letter")
	// ErrGuessDisabled is returned when the guess controls are disabled.
	ErrGuessDisabled = errors.New("guess controls are disabled")
)

// [GAME_SERVICE] THE REMOTE OPERATIONS THE CONTROLLER DEPENDS ON
type GameService interface {
	NewGame(ctx context.Context) (model.GameState, error)
	Guess(ctx context.Context, gameID, letter string) (model.GameState, error)
	State(ctx context.Context, gameID string) (model.GameState, error)
}

// Observer is told about every screen change. It receives its own copy.
type Observer interface {
	ScreenChanged(screen model.Screen)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(screen model.Screen)

func (f ObserverFunc) ScreenChanged(screen model.Screen) { f(screen) }

// Controller is the Game View Controller: it owns the identifier of the
// current game, the last snapshot the service sent, and the screen derived
// from it. One instance lives for one page session.
//
// Remote calls run without holding the lock. Their results are applied in
// completion order, so overlapping requests resolve as "last response wins".
// Observers see screens in the order they were committed and must not call
// back into the controller.
type Controller struct {
	api    GameService
	logger *slog.Logger

	// notifyMu is held from commit until every observer returned.
	notifyMu sync.Mutex

	mu        sync.Mutex
	gameID    string
	lastState *model.GameState
	screen    model.Screen
	version   uint64
	observers []Observer
}

func NewController(api GameService, logger *slog.Logger, observers ...Observer) *Controller {
	return &Controller{
		api:    api,
		logger: logger,
		screen: model.Screen{
			Remaining: view.Placeholder,
			Status:    view.Placeholder,
		},
		observers: observers,
	}
}

// Observe registers o for all later screen changes.
func (c *Controller) Observe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Screen returns a copy of the current screen.
func (c *Controller) Screen() model.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen.Clone()
}

func (c *Controller) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// LastState returns the last snapshot applied, if any.
func (c *Controller) LastState() (model.GameState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastState == nil {
		return model.GameState{}, false
	}
	return *c.lastState, true
}

// StartNewGame asks the service for a new game and replaces whatever was on screen.
func (c *Controller) StartNewGame(ctx context.Context) error {
	c.commit(func(s *model.Screen) {
		s.Message = MessageCreating
		s.Answer = ""
	})

	state, err := c.api.NewGame(ctx)
	if err != nil {
		c.logger.Warn("START_GAME_FAILED", "err", err)
		c.commit(func(s *model.Screen) {
			s.Message = FailureMessage(err)
		})
		return err
	}

	c.logger.Debug("GAME_STARTED", "game_id", state.ID, "status", state.Status)
	c.commitState(state, true, resetInput)
	return nil
}

// GuessLetter submits one guess. The input is cleared and focused afterwards
// whatever the outcome; invalid input never reaches the service.
func (c *Controller) GuessLetter(ctx context.Context, input string) error {
	gameID := c.GameID()
	if gameID == "" {
		return ErrNoGame
	}

	letter, ok := NormalizeLetter(input)
	if !ok {
		c.commit(func(s *model.Screen) {
			s.Message = MessageInvalidLetter
			resetInput(s)
		})
		return ErrInvalidLetter
	}

	state, err := c.api.Guess(ctx, gameID, letter)
	if err != nil {
		c.logger.Warn("GUESS_FAILED", "game_id", gameID, "letter", letter, "err", err)
		c.commit(func(s *model.Screen) {
			s.Message = FailureMessage(err)
			resetInput(s)
		})
		return err
	}

	c.logger.Debug("GUESS_APPLIED",
		"game_id", gameID,
		"letter", letter,
		"status", state.Status,
	)
	c.commitState(state, false, resetInput)
	return nil
}

// SubmitInput guesses whatever is in the input box, as the guess button and Enter do.
func (c *Controller) SubmitInput(ctx context.Context) error {
	s := c.Screen()
	if !s.GuessEnabled {
		return ErrGuessDisabled
	}
	return c.GuessLetter(ctx, s.Input.Value)
}

// SetInput replaces the text of the input box.
func (c *Controller) SetInput(value string) {
	c.commit(func(s *model.Screen) {
		s.Input.Value = value
		s.Input.Focused = true
	})
}

// DismissChip hides the chip of letter until the next render. It reports whether a chip was removed.
func (c *Controller) DismissChip(letter string) bool {
	letter = strings.ToLower(strings.TrimSpace(letter))
	removed := false

	c.commit(func(s *model.Screen) {
		kept := s.Chips[:0]
		for _, chip := range s.Chips {
			if chip.Letter == letter && chip.Dismissible && !removed {
				removed = true
				continue
			}
			kept = append(kept, chip)
		}
		s.Chips = kept
	})
	return removed
}

// Refresh re-reads the current game from the service.
func (c *Controller) Refresh(ctx context.Context) error {
	gameID := c.GameID()
	if gameID == "" {
		return ErrNoGame
	}

	state, err := c.api.State(ctx, gameID)
	if err != nil {
		c.logger.Warn("REFRESH_FAILED", "game_id", gameID, "err", err)
		c.commit(func(s *model.Screen) {
			s.Message = FailureMessage(err)
		})
		return err
	}

	c.commitState(state, false)
	return nil
}

// commit mutates the screen under the lock and notifies observers outside it.
func (c *Controller) commit(fn func(s *model.Screen)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	screen := c.screen.Clone()
	fn(&screen)
	out, observers := c.store(screen)
	c.mu.Unlock()

	c.notify(observers, out)
}

// commitState stores state, renders it and applies extra screen edits in one step.
func (c *Controller) commitState(state model.GameState, adoptID bool, extra ...func(s *model.Screen)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if adoptID {
		c.gameID = state.ID
	}
	c.lastState = &state
	screen := view.Apply(c.screen, state)
	for _, fn := range extra {
		fn(&screen)
	}
	out, observers := c.store(screen)
	c.mu.Unlock()

	c.notify(observers, out)
}

// store makes screen current under a new version. Callers hold c.mu.
func (c *Controller) store(screen model.Screen) (model.Screen, []Observer) {
	c.version++
	screen.Version = c.version
	c.screen = screen
	return screen.Clone(), slices.Clone(c.observers)
}

func (c *Controller) notify(observers []Observer, screen model.Screen) {
	for _, o := range observers {
		o.ScreenChanged(screen.Clone())
	}
}

func resetInput(s *model.Screen) {
	s.Input.Value = ""
	s.Input.Focused = true
}

// NormalizeLetter lowercases and trims input and accepts exactly one ASCII letter.
func NormalizeLetter(input string) (string, bool) {
	l := strings.TrimSpace(strings.ToLower(input))
	if len(l) != 1 || l[0] < 'a' || l[0] > 'z' {
		return "", false
	}
	return l, true
}

// FailureMessage converts a failed remote call into the text shown to the user.
func FailureMessage(err error) string {
	var apiErr *gameapi.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, gameapi.ErrServiceUnavailable):
		return MessageUnavailable
	default:
		return MessageNetworkError
	}
}
