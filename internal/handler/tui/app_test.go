package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/service"
)

type fakeGame struct {
	mu      sync.Mutex
	guesses []string
	wrong   []string
	status  model.Status
}

func (f *fakeGame) state() model.GameState {
	remaining := 5 - len(f.wrong)
	st := model.GameState{
		ID:             "g1",
		MaskedWord:     "__t",
		Remaining:      &remaining,
		Status:         f.status,
		GuessedLetters: append([]string{}, f.guesses...),
		WrongLetters:   append([]string{}, f.wrong...),
	}
	return st
}

func (f *fakeGame) NewGame(ctx context.Context) (model.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guesses, f.wrong = nil, nil
	return f.state(), nil
}

func (f *fakeGame) Guess(ctx context.Context, gameID, letter string) (model.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if letter == "t" {
		f.guesses = append(f.guesses, letter)
	} else {
		f.wrong = append(f.wrong, letter)
	}
	return f.state(), nil
}

func (f *fakeGame) State(ctx context.Context, gameID string) (model.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(), nil
}

func newTestApp(t *testing.T) (*App, *fakeGame, *int) {
	t.Helper()
	game := &fakeGame{status: model.StatusPlaying}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := NewApp(service.NewFactory(game, logger), logger)
	app.spawn = func(fn func()) { fn() }
	draws := 0
	app.draw = func(...ui.Drawable) { draws++ }

	if err := app.Controller().StartNewGame(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return app, game, &draws
}

func key(id string) ui.Event {
	return ui.Event{Type: ui.KeyboardEvent, ID: id}
}

func click(x, y int) ui.Event {
	return ui.Event{Type: ui.MouseEvent, ID: "<MouseLeft>", Payload: ui.Mouse{X: x, Y: y}}
}

// center returns a point inside the widget's border.
func center(d ui.Drawable) (int, int) {
	r := d.GetRect()
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func TestTypingAndEnterGuess(t *testing.T) {
	app, game, _ := newTestApp(t)
	ctx := context.Background()

	app.Handle(ctx, key("T"))
	if v := app.Controller().Screen().Input.Value; v != "T" {
		t.Fatalf("input = %q", v)
	}
	app.Handle(ctx, key("<Enter>"))

	if len(game.guesses) != 1 || game.guesses[0] != "t" {
		t.Errorf("guesses = %v", game.guesses)
	}
	if v := app.Controller().Screen().Input.Value; v != "" {
		t.Errorf("input not cleared: %q", v)
	}
}

func TestInvalidTypedInputShowsMessage(t *testing.T) {
	app, game, _ := newTestApp(t)
	ctx := context.Background()

	app.Handle(ctx, key("7"))
	app.Handle(ctx, key("<Enter>"))

	if app.Controller().Screen().Message != service.MessageInvalidLetter {
		t.Errorf("message = %q", app.Controller().Screen().Message)
	}
	if len(game.guesses)+len(game.wrong) != 0 {
		t.Error("service was called")
	}
}

func TestBackspaceClearsInput(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	app.Handle(ctx, key("q"))
	app.Handle(ctx, key("<Backspace>"))

	if v := app.Controller().Screen().Input.Value; v != "" {
		t.Errorf("input = %q", v)
	}
}

func TestClickKeyGuessesOnce(t *testing.T) {
	app, game, _ := newTestApp(t)
	ctx := context.Background()
	app.render()

	x, y := center(app.view.keys['q'-'a'])
	app.Handle(ctx, click(x, y))
	app.render()
	app.Handle(ctx, click(x, y))

	if len(game.wrong) != 1 || game.wrong[0] != "q" {
		t.Errorf("wrong = %v", game.wrong)
	}
	if !strings.Contains(app.view.chips.Text, "Q") {
		t.Errorf("chip Q missing: %q", app.view.chips.Text)
	}
}

func TestClickChipDismissesIt(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	app.Controller().GuessLetter(ctx, "a")
	app.Controller().GuessLetter(ctx, "z")
	app.render()

	inner := app.view.chips.Inner
	app.Handle(ctx, click(inner.Min.X+chipWidth+1, inner.Min.Y))

	chips := app.Controller().Screen().Chips
	if len(chips) != 1 || chips[0].Letter != "a" {
		t.Errorf("chips = %+v", chips)
	}
}

func TestClickButtons(t *testing.T) {
	app, game, _ := newTestApp(t)
	ctx := context.Background()
	app.render()

	app.Handle(ctx, key("t"))
	app.Handle(ctx, click(center(app.view.guess)))
	if len(game.guesses) != 1 {
		t.Fatalf("guess button did not submit: %v", game.guesses)
	}

	app.Handle(ctx, click(center(app.view.newGame)))
	if st, _ := app.Controller().LastState(); len(st.GuessedLetters) != 0 {
		t.Errorf("new game button did not restart: %+v", st)
	}
}

func TestGameOverDisablesInput(t *testing.T) {
	app, game, _ := newTestApp(t)
	ctx := context.Background()

	game.status = model.StatusLost
	app.Controller().Refresh(ctx)
	app.render()

	app.Handle(ctx, key("a"))
	if v := app.Controller().Screen().Input.Value; v != "" {
		t.Errorf("typing into a disabled box: %q", v)
	}

	x, y := center(app.view.keys[0])
	app.Handle(ctx, click(x, y))
	if len(game.wrong) != 0 {
		t.Errorf("disabled key guessed: %v", game.wrong)
	}
}

func TestQuitKeys(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, id := range []string{"<C-c>", "<Escape>"} {
		if app.Handle(context.Background(), key(id)) {
			t.Errorf("%s must quit", id)
		}
	}
}

func TestRunRedrawsOnScreenChange(t *testing.T) {
	app, _, draws := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan ui.Event)
	done := make(chan struct{})
	go func() {
		app.Run(ctx, events)
		close(done)
	}()

	// a screen change is delivered through redraw; quitting ends the loop
	app.Controller().SetInput("x")
	events <- key("<C-c>")
	<-done
	cancel()

	if *draws < 1 {
		t.Errorf("draws = %d", *draws)
	}
}
