// Package view maps server-asserted game snapshots onto the client screen model.
// Every function here is pure: same input, same screen, no I/O.
package view

import (
	"strconv"
	"strings"

	"github.com/webitel/hangman-client/internal/domain/model"
)

const (
	// Placeholder is shown wherever the snapshot carries no value.
	Placeholder = "-"

	MessageWon     = "Nice! Start a new game or play again."
	MessageLost    = "Try again. Start a new game."
	MessagePlaying = "Type a letter or use the keyboard."

	answerPrefix = "Answer: "
	chipTone     = "danger"
)

// Apply renders state onto screen. Fields the client owns (input value and
// focus) are carried over from screen; the message is replaced only for a
// known status.
func Apply(screen model.Screen, state model.GameState) model.Screen {
	out := screen.Clone()
	playing := state.IsPlaying()

	out.MaskedWord = SpacedMask(state.MaskedWord)
	out.Remaining = RemainingText(state.Remaining)
	out.Status = StatusLabel(state.Status)
	out.Chips = Chips(state.WrongLetters)
	out.Keys = Keys(state)

	out.GuessEnabled = playing
	out.Input.Enabled = playing

	if msg, ok := StatusMessage(state.Status); ok {
		out.Message = msg
	}
	out.Answer = AnswerText(state.Answer)

	return out
}

// SpacedMask puts a single space between the characters of the masked word.
func SpacedMask(masked string) string {
	if masked == "" {
		return ""
	}
	chars := strings.Split(masked, "")
	return strings.Join(chars, " ")
}

func RemainingText(remaining *int) string {
	if remaining == nil {
		return Placeholder
	}
	return strconv.Itoa(*remaining)
}

// StatusLabel is the human label of a status; unknown values map to the placeholder.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusPlaying:
		return "Playing"
	case model.StatusWon:
		return "You won"
	case model.StatusLost:
		return "You lost"
	}
	return Placeholder
}

// StatusMessage returns the contextual hint for a status. ok is false for an
// unknown status, in which case the current message must stay untouched.
func StatusMessage(s model.Status) (msg string, ok bool) {
	switch s {
	case model.StatusWon:
		return MessageWon, true
	case model.StatusLost:
		return MessageLost, true
	case model.StatusPlaying:
		return MessagePlaying, true
	}
	return "", false
}

func AnswerText(answer string) string {
	if answer == "" {
		return ""
	}
	return answerPrefix + strings.ToUpper(answer)
}

// Chips renders one dismissible badge per wrong letter, in snapshot order.
func Chips(wrong []string) []model.Chip {
	if len(wrong) == 0 {
		return nil
	}
	chips := make([]model.Chip, 0, len(wrong))
	for _, l := range wrong {
		chips = append(chips, model.Chip{
			Letter:      l,
			Label:       strings.ToUpper(l),
			Tone:        chipTone,
			Dismissible: true,
		})
	}
	return chips
}

// Keys renders the 26-letter keyboard. A key is disabled when its letter was
// already played or when the game no longer accepts guesses.
func Keys(state model.GameState) []model.Key {
	playing := state.IsPlaying()
	keys := make([]model.Key, 0, len(model.Alphabet))

	for _, r := range model.Alphabet {
		l := string(r)
		correct := state.HasGuessed(l)
		wrong := state.HasMissed(l)

		keys = append(keys, model.Key{
			Letter:   l,
			Label:    strings.ToUpper(l),
			Correct:  correct,
			Wrong:    wrong,
			Disabled: !playing || correct || wrong,
		})
	}
	return keys
}
