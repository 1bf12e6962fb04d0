package tui

import (
	"fmt"
	"image"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/webitel/hangman-client/internal/domain/model"
)

const (
	keysPerRow = 13
	keyWidth   = 5
	rowHeight  = 3
	chipWidth  = 5
)

// Target is what a mouse click landed on.
type Target int

const (
	TargetNone Target = iota
	TargetKey
	TargetChip
	TargetInput
	TargetGuess
	TargetNewGame
)

// View owns the widgets of one frame and knows where each of them is drawn.
type View struct {
	word    *widgets.Paragraph
	info    *widgets.Paragraph
	chips   *widgets.Paragraph
	keys    [26]*widgets.Paragraph
	input   *widgets.Paragraph
	guess   *widgets.Paragraph
	newGame *widgets.Paragraph
	message *widgets.Paragraph
	answer  *widgets.Paragraph

	screen model.Screen
}

func NewView() *View {
	v := &View{
		word:    widgets.NewParagraph(),
		info:    widgets.NewParagraph(),
		chips:   widgets.NewParagraph(),
		input:   widgets.NewParagraph(),
		guess:   widgets.NewParagraph(),
		newGame: widgets.NewParagraph(),
		message: widgets.NewParagraph(),
		answer:  widgets.NewParagraph(),
	}
	v.word.Title = "Hangman"
	v.chips.Title = "Wrong letters"
	v.input.Title = "Letter"
	v.guess.Text = " Guess"
	v.newGame.Text = " New game"
	v.message.Border = false
	v.answer.Border = false
	for i := range v.keys {
		v.keys[i] = widgets.NewParagraph()
		v.keys[i].Text = " " + string(rune('A'+i))
	}
	v.Layout(80)
	return v
}

// Layout positions the widgets for a terminal of the given width.
func (v *View) Layout(width int) {
	full := max(width, keysPerRow*keyWidth)

	v.word.SetRect(0, 0, full, 3)
	v.info.SetRect(0, 3, full, 6)
	v.chips.SetRect(0, 6, full, 9)

	for i, k := range v.keys {
		x := (i % keysPerRow) * keyWidth
		y := 9 + (i/keysPerRow)*rowHeight
		k.SetRect(x, y, x+keyWidth, y+rowHeight)
	}

	y := 9 + 2*rowHeight
	v.input.SetRect(0, y, 20, y+3)
	v.guess.SetRect(20, y, 30, y+3)
	v.newGame.SetRect(30, y, 44, y+3)
	v.message.SetRect(0, y+3, full, y+4)
	v.answer.SetRect(0, y+4, full, y+5)
}

// Update copies screen into the widgets.
func (v *View) Update(s model.Screen) {
	v.screen = s

	v.word.Text = " " + s.MaskedWord
	v.info.Text = fmt.Sprintf(" Remaining: %s   Status: %s", s.Remaining, s.Status)

	var b strings.Builder
	for _, c := range s.Chips {
		// each chip takes chipWidth cells, which HitTest relies on
		fmt.Fprintf(&b, "[ %s x ](fg:red)", c.Label)
	}
	v.chips.Text = b.String()

	for i, p := range v.keys {
		// no keys yet means no game to guess in
		k := model.Key{Label: string(rune('A' + i)), Disabled: true}
		if i < len(s.Keys) {
			k = s.Keys[i]
		}
		p.Text = " " + k.Label
		switch {
		case k.Correct:
			p.TextStyle = ui.NewStyle(ui.ColorGreen, ui.ColorClear, ui.ModifierBold)
			p.BorderStyle = ui.NewStyle(ui.ColorGreen)
		case k.Wrong:
			p.TextStyle = ui.NewStyle(ui.ColorRed)
			p.BorderStyle = ui.NewStyle(ui.ColorRed)
		case k.Disabled:
			p.TextStyle = ui.NewStyle(ui.ColorBlack)
			p.BorderStyle = ui.NewStyle(ui.ColorBlack)
		default:
			p.TextStyle = ui.NewStyle(ui.ColorWhite)
			p.BorderStyle = ui.NewStyle(ui.ColorWhite)
		}
	}

	v.input.Text = " " + s.Input.Value
	switch {
	case !s.Input.Enabled:
		v.input.BorderStyle = ui.NewStyle(ui.ColorBlack)
	case s.Input.Focused:
		v.input.BorderStyle = ui.NewStyle(ui.ColorCyan)
	default:
		v.input.BorderStyle = ui.NewStyle(ui.ColorWhite)
	}

	if s.GuessEnabled {
		v.guess.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)
	} else {
		v.guess.TextStyle = ui.NewStyle(ui.ColorBlack)
	}

	v.message.Text = s.Message
	v.answer.Text = s.Answer
	v.answer.TextStyle = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
}

// Drawables returns the widgets in drawing order.
func (v *View) Drawables() []ui.Drawable {
	out := []ui.Drawable{v.word, v.info, v.chips}
	for _, k := range v.keys {
		out = append(out, k)
	}
	return append(out, v.input, v.guess, v.newGame, v.message, v.answer)
}

// HitTest maps a click at (x, y) to a widget. For keys and chips the letter is returned too.
func (v *View) HitTest(x, y int) (Target, string) {
	pt := image.Pt(x, y)

	for i, k := range v.keys {
		if pt.In(k.GetRect()) {
			return TargetKey, string(rune('a' + i))
		}
	}

	if pt.In(v.chips.GetRect()) {
		idx := (x - v.chips.Inner.Min.X) / chipWidth
		if x >= v.chips.Inner.Min.X && idx < len(v.screen.Chips) {
			return TargetChip, v.screen.Chips[idx].Letter
		}
		return TargetNone, ""
	}

	switch {
	case pt.In(v.input.GetRect()):
		return TargetInput, ""
	case pt.In(v.guess.GetRect()):
		return TargetGuess, ""
	case pt.In(v.newGame.GetRect()):
		return TargetNewGame, ""
	}
	return TargetNone, ""
}
