package tui

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	ui "github.com/gizak/termui/v3"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/service"
)

// App runs the terminal event loop. Controller calls are spawned off the loop
// so a slow service never freezes the terminal; screen changes come back
// through redraw and are drawn on the loop goroutine only.
type App struct {
	ctrl   *service.Controller
	view   *View
	logger *slog.Logger

	redraw chan struct{}

	// spawn and draw are replaced in tests.
	spawn func(func())
	draw  func(...ui.Drawable)
}

func NewApp(factory *service.Factory, logger *slog.Logger) *App {
	a := &App{
		view:   NewView(),
		logger: logger,
		redraw: make(chan struct{}, 1),
		spawn:  func(fn func()) { go fn() },
		draw:   ui.Render,
	}
	a.ctrl = factory.New(service.ObserverFunc(a.screenChanged))
	return a
}

func (a *App) Controller() *service.Controller { return a.ctrl }

// screenChanged coalesces notifications; the loop always draws the latest screen.
func (a *App) screenChanged(model.Screen) {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// Run processes terminal events until the user quits or ctx is done.
func (a *App) Run(ctx context.Context, events <-chan ui.Event) {
	a.render()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.redraw:
			a.render()
		case e := <-events:
			if !a.Handle(ctx, e) {
				return
			}
		}
	}
}

func (a *App) render() {
	a.view.Update(a.ctrl.Screen())
	a.draw(a.view.Drawables()...)
}

// Handle applies one terminal event. It returns false when the user asked to quit.
func (a *App) Handle(ctx context.Context, e ui.Event) bool {
	switch e.ID {
	case "<C-c>", "<Escape>":
		return false

	case "<Resize>":
		if r, ok := e.Payload.(ui.Resize); ok {
			a.view.Layout(r.Width)
			ui.Clear()
		}
		a.render()

	case "<Enter>":
		a.do(ctx, "SUBMIT", a.ctrl.SubmitInput)

	case "<Backspace>", "<C-<Backspace>>":
		a.ctrl.SetInput("")

	case "<C-n>":
		a.do(ctx, "NEW_GAME", a.ctrl.StartNewGame)

	case "<C-r>":
		a.do(ctx, "REFRESH", a.ctrl.Refresh)

	case "<MouseLeft>":
		if m, ok := e.Payload.(ui.Mouse); ok {
			a.click(ctx, m.X, m.Y)
		}

	default:
		// the box holds one character, typing replaces it
		if e.Type == ui.KeyboardEvent && utf8.RuneCountInString(e.ID) == 1 && a.ctrl.Screen().Input.Enabled {
			a.ctrl.SetInput(e.ID)
		}
	}
	return true
}

func (a *App) click(ctx context.Context, x, y int) {
	target, letter := a.view.HitTest(x, y)
	screen := a.ctrl.Screen()

	switch target {
	case TargetKey:
		if keyEnabled(screen, letter) {
			a.do(ctx, "GUESS", func(ctx context.Context) error {
				return a.ctrl.GuessLetter(ctx, letter)
			})
		}
	case TargetChip:
		a.ctrl.DismissChip(letter)
	case TargetInput:
		if screen.Input.Enabled {
			a.ctrl.SetInput(screen.Input.Value)
		}
	case TargetGuess:
		a.do(ctx, "SUBMIT", a.ctrl.SubmitInput)
	case TargetNewGame:
		a.do(ctx, "NEW_GAME", a.ctrl.StartNewGame)
	}
}

// do runs a controller call off the event loop. Failures are already on screen.
func (a *App) do(ctx context.Context, action string, fn func(context.Context) error) {
	a.spawn(func() {
		if err := fn(ctx); err != nil && !errors.Is(err, service.ErrGuessDisabled) {
			a.logger.Debug("TUI_ACTION_FAILED", slog.String("action", action), slog.Any("err", err))
		}
	})
}

func keyEnabled(screen model.Screen, letter string) bool {
	for _, k := range screen.Keys {
		if k.Letter == letter {
			return !k.Disabled
		}
	}
	return false
}
