package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/webitel/hangman-client/internal/adapter/gameapi"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/domain/view"
)

// fakeGame records calls and answers from queued results.
type fakeGame struct {
	mu       sync.Mutex
	newCalls int
	guesses  []string
	states   []string
	newGame  func() (model.GameState, error)
	guess    func(gameID, letter string) (model.GameState, error)
	state    func(gameID string) (model.GameState, error)
}

func (f *fakeGame) NewGame(ctx context.Context) (model.GameState, error) {
	f.mu.Lock()
	f.newCalls++
	f.mu.Unlock()
	return f.newGame()
}

func (f *fakeGame) Guess(ctx context.Context, gameID, letter string) (model.GameState, error) {
	f.mu.Lock()
	f.guesses = append(f.guesses, gameID+":"+letter)
	f.mu.Unlock()
	return f.guess(gameID, letter)
}

func (f *fakeGame) State(ctx context.Context, gameID string) (model.GameState, error) {
	f.mu.Lock()
	f.states = append(f.states, gameID)
	f.mu.Unlock()
	return f.state(gameID)
}

func intPtr(v int) *int { return &v }

func g1(guessed ...string) model.GameState {
	return model.GameState{
		ID:             "g1",
		MaskedWord:     "__t",
		Remaining:      intPtr(5),
		Status:         model.StatusPlaying,
		GuessedLetters: append([]string{}, guessed...),
		WrongLetters:   []string{},
	}
}

func newFake() *fakeGame {
	return &fakeGame{
		newGame: func() (model.GameState, error) { return g1(), nil },
		guess: func(gameID, letter string) (model.GameState, error) {
			return g1(letter), nil
		},
		state: func(gameID string) (model.GameState, error) { return g1(), nil },
	}
}

func newTestController(api GameService, observers ...Observer) *Controller {
	return NewController(api, slog.New(slog.NewTextHandler(io.Discard, nil)), observers...)
}

func keyByLabel(t *testing.T, s model.Screen, label string) model.Key {
	t.Helper()
	for _, k := range s.Keys {
		if k.Label == label {
			return k
		}
	}
	t.Fatalf("no key %q on screen", label)
	return model.Key{}
}

func TestStartNewGame(t *testing.T) {
	api := newFake()
	c := newTestController(api)

	if err := c.StartNewGame(context.Background()); err != nil {
		t.Fatalf("StartNewGame: %v", err)
	}

	s := c.Screen()
	if c.GameID() != "g1" {
		t.Errorf("game id = %q", c.GameID())
	}
	if len(s.Keys) != 26 {
		t.Fatalf("expected 26 keys, got %d", len(s.Keys))
	}
	for _, k := range s.Keys {
		if k.Disabled {
			t.Errorf("key %s disabled after start", k.Label)
		}
	}
	if !s.Input.Enabled || !s.GuessEnabled || !s.Input.Focused || s.Input.Value != "" {
		t.Errorf("input = %+v guess=%v", s.Input, s.GuessEnabled)
	}
	if s.Message != view.MessagePlaying {
		t.Errorf("message = %q", s.Message)
	}
	if _, ok := c.LastState(); !ok {
		t.Error("last state not stored")
	}
}

func TestStartNewGameShowsProgressThenResult(t *testing.T) {
	var messages []string
	api := newFake()
	c := newTestController(api, ObserverFunc(func(s model.Screen) {
		messages = append(messages, s.Message)
	}))

	c.StartNewGame(context.Background())

	if len(messages) != 2 {
		t.Fatalf("expected 2 screen changes, got %d: %v", len(messages), messages)
	}
	if messages[0] != MessageCreating || messages[1] != view.MessagePlaying {
		t.Errorf("messages = %v", messages)
	}
}

func TestStartNewGameFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service message", &gameapi.APIError{StatusCode: 500, Message: "boom"}, "boom"},
		{"status fallback", &gameapi.APIError{StatusCode: 503}, "Request failed (503)"},
		{"breaker open", gameapi.ErrServiceUnavailable, MessageUnavailable},
		{"transport", errors.New("dial tcp: refused"), MessageNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFake()
			api.newGame = func() (model.GameState, error) { return model.GameState{}, tt.err }
			c := newTestController(api)

			if err := c.StartNewGame(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if got := c.Screen().Message; got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
			if c.GameID() != "" {
				t.Errorf("game id must stay empty, got %q", c.GameID())
			}
		})
	}
}

func TestGuessLetterRejectsInvalidInputWithoutCalling(t *testing.T) {
	for _, in := range []string{"", " ", "ab", "1", "é", "?", "a b", "ß"} {
		api := newFake()
		c := newTestController(api)
		c.StartNewGame(context.Background())
		c.SetInput(in)

		err := c.GuessLetter(context.Background(), in)
		if !errors.Is(err, ErrInvalidLetter) {
			t.Errorf("input %q: err = %v", in, err)
		}
		if len(api.guesses) != 0 {
			t.Errorf("input %q: service was called: %v", in, api.guesses)
		}

		s := c.Screen()
		if s.Message != MessageInvalidLetter {
			t.Errorf("input %q: message = %q", in, s.Message)
		}
		if s.Input.Value != "" || !s.Input.Focused {
			t.Errorf("input %q: input not reset: %+v", in, s.Input)
		}
	}
}

func TestGuessLetterNormalises(t *testing.T) {
	api := newFake()
	c := newTestController(api)
	c.StartNewGame(context.Background())

	if err := c.GuessLetter(context.Background(), "  T "); err != nil {
		t.Fatalf("GuessLetter: %v", err)
	}
	if len(api.guesses) != 1 || api.guesses[0] != "g1:t" {
		t.Errorf("guesses = %v", api.guesses)
	}
}

func TestGuessLetterBeforeStartIsIgnored(t *testing.T) {
	api := newFake()
	c := newTestController(api)

	if err := c.GuessLetter(context.Background(), "a"); !errors.Is(err, ErrNoGame) {
		t.Fatalf("err = %v", err)
	}
	if len(api.guesses) != 0 {
		t.Errorf("service was called: %v", api.guesses)
	}
}

func TestGuessLetterFailureKeepsState(t *testing.T) {
	api := newFake()
	api.guess = func(string, string) (model.GameState, error) {
		return model.GameState{}, &gameapi.APIError{StatusCode: 404, Message: "Game not found"}
	}
	c := newTestController(api)
	c.StartNewGame(context.Background())
	before := c.Screen()

	c.SetInput("q")
	if err := c.SubmitInput(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	s := c.Screen()
	if s.Message != "Game not found" {
		t.Errorf("message = %q", s.Message)
	}
	if s.MaskedWord != before.MaskedWord || len(s.Keys) != 26 {
		t.Error("failed guess must not change the rendered game")
	}
	if s.Input.Value != "" || !s.Input.Focused {
		t.Errorf("input not reset: %+v", s.Input)
	}
}

func TestScenarioGuessCorrectLetter(t *testing.T) {
	api := newFake()
	c := newTestController(api)
	c.StartNewGame(context.Background())
	before := c.Screen()

	if err := c.GuessLetter(context.Background(), "t"); err != nil {
		t.Fatalf("GuessLetter: %v", err)
	}

	s := c.Screen()
	k := keyByLabel(t, s, "T")
	if !k.Correct || !k.Disabled {
		t.Errorf("key T = %+v", k)
	}
	if s.MaskedWord != before.MaskedWord {
		t.Errorf("masked word changed: %q -> %q", before.MaskedWord, s.MaskedWord)
	}
	st, _ := c.LastState()
	if !st.HasGuessed("t") {
		t.Error("last state not replaced")
	}
}

func TestSubmitInputWhenGameOver(t *testing.T) {
	api := newFake()
	api.newGame = func() (model.GameState, error) {
		st := g1()
		st.Status = model.StatusLost
		st.Answer = "cat"
		return st, nil
	}
	c := newTestController(api)
	c.StartNewGame(context.Background())

	if s := c.Screen(); s.Answer != "Answer: CAT" {
		t.Errorf("answer = %q", s.Answer)
	}

	c.SetInput("a")
	if err := c.SubmitInput(context.Background()); !errors.Is(err, ErrGuessDisabled) {
		t.Fatalf("err = %v", err)
	}
	if len(api.guesses) != 0 {
		t.Errorf("service was called: %v", api.guesses)
	}
}

func TestNewGameClearsPreviousAnswer(t *testing.T) {
	api := newFake()
	lost := true
	api.newGame = func() (model.GameState, error) {
		st := g1()
		if lost {
			st.Status = model.StatusLost
			st.Answer = "cat"
		}
		return st, nil
	}
	c := newTestController(api)
	c.StartNewGame(context.Background())

	lost = false
	c.StartNewGame(context.Background())

	if s := c.Screen(); s.Answer != "" || !s.GuessEnabled {
		t.Errorf("screen after second game = %+v", s)
	}
}

func TestDismissChip(t *testing.T) {
	api := newFake()
	api.newGame = func() (model.GameState, error) {
		st := g1()
		st.WrongLetters = []string{"a", "z"}
		return st, nil
	}
	c := newTestController(api)
	c.StartNewGame(context.Background())

	if !c.DismissChip("A") {
		t.Fatal("chip A not dismissed")
	}
	if c.DismissChip("q") {
		t.Error("dismissed a chip that does not exist")
	}

	s := c.Screen()
	if len(s.Chips) != 1 || s.Chips[0].Label != "Z" {
		t.Errorf("chips = %+v", s.Chips)
	}

	c.Refresh(context.Background())
	if len(c.Screen().Chips) != 0 {
		t.Errorf("refresh must re-render chips from the new snapshot")
	}
}

func TestRefresh(t *testing.T) {
	api := newFake()
	c := newTestController(api)

	if err := c.Refresh(context.Background()); !errors.Is(err, ErrNoGame) {
		t.Fatalf("err = %v", err)
	}

	c.StartNewGame(context.Background())
	api.state = func(string) (model.GameState, error) { return g1("t"), nil }

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !keyByLabel(t, c.Screen(), "T").Correct {
		t.Error("refresh did not apply the new snapshot")
	}
	if len(api.states) != 1 || api.states[0] != "g1" {
		t.Errorf("state calls = %v", api.states)
	}
}

func TestUndecodableStartLeavesNoGame(t *testing.T) {
	api := newFake()
	api.newGame = func() (model.GameState, error) { return model.GameState{}, nil }
	c := newTestController(api)
	c.StartNewGame(context.Background())

	s := c.Screen()
	if s.Status != view.Placeholder || s.GuessEnabled {
		t.Errorf("screen = %+v", s)
	}
	if s.Message != MessageCreating {
		t.Errorf("unknown status must keep the message, got %q", s.Message)
	}
	if err := c.GuessLetter(context.Background(), "a"); !errors.Is(err, ErrNoGame) {
		t.Errorf("err = %v", err)
	}
}

func TestNormalizeLetter(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a", "a", true},
		{"Z", "z", true},
		{" q\n", "q", true},
		{"", "", false},
		{"ab", "", false},
		{"7", "", false},
		{"ä", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeLetter(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeLetter(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestObserversSeeScreensInCommitOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []model.Screen
	)
	c := newTestController(newFake(), ObserverFunc(func(s model.Screen) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))
	if err := c.StartNewGame(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for _, l := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.GuessLetter(context.Background(), l)
		}()
		go func() {
			defer wg.Done()
			c.SetInput(l)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i].Version <= seen[i-1].Version {
			t.Fatalf("screen %d has version %d after %d", i, seen[i].Version, seen[i-1].Version)
		}
	}
	last, current := seen[len(seen)-1], c.Screen()
	if last.Version != current.Version || last.Message != current.Message || last.Input.Value != current.Input.Value {
		t.Errorf("last observed v%d %q, controller shows v%d %q", last.Version, last.Message, current.Version, current.Message)
	}
}
