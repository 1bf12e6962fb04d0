package model

import "slices"

type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Alphabet is the set of letters the service accepts as guesses, in keyboard order.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// [GAME_STATE] SERVER-ASSERTED SNAPSHOT OF ONE GAME
// Never mutated by the client. Every successful call to the service yields a
// fresh value that replaces the previous one as a whole.
type GameState struct {
	ID             string   `json:"id"`
	MaskedWord     string   `json:"maskedWord"`
	Remaining      *int     `json:"remaining,omitempty"`
	MaxWrong       int      `json:"maxWrong,omitempty"`
	Status         Status   `json:"status"`
	GuessedLetters []string `json:"guessedLetters"`
	WrongLetters   []string `json:"wrongLetters"`
	Answer         string   `json:"answer,omitempty"`
}

// IsPlaying reports whether the service still accepts guesses for this game.
func (s GameState) IsPlaying() bool {
	return s.Status == StatusPlaying
}

func (s GameState) HasGuessed(letter string) bool {
	return slices.Contains(s.GuessedLetters, letter)
}

func (s GameState) HasMissed(letter string) bool {
	return slices.Contains(s.WrongLetters, letter)
}

// IsKnown reports whether the status is one of the three values the service defines.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPlaying, StatusWon, StatusLost:
		return true
	}
	return false
}
