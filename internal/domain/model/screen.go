package model

// [SCREEN] CLIENT-OWNED VIEW MODEL
// Everything a front end needs to draw one frame. It carries no game logic:
// front ends only read it and translate user actions back into controller calls.
type Screen struct {
	MaskedWord   string `json:"masked_word"`
	Remaining    string `json:"remaining"`
	Status       string `json:"status"`
	Chips        []Chip `json:"chips"`
	Keys         []Key  `json:"keys"`
	Input        Input  `json:"input"`
	GuessEnabled bool   `json:"guess_enabled"`
	Message      string `json:"message"`
	Answer       string `json:"answer"`
	// Version grows with every change of the screen; viewers drop anything older
	// than what they already show.
	Version uint64 `json:"version"`
}

// Chip is a badge for one wrong letter.
type Chip struct {
	Letter      string `json:"letter"`
	Label       string `json:"label"`
	Tone        string `json:"tone"`
	Dismissible bool   `json:"dismissible"`
}

// Key is one on-screen keyboard button.
type Key struct {
	Letter   string `json:"letter"`
	Label    string `json:"label"`
	Correct  bool   `json:"correct"`
	Wrong    bool   `json:"wrong"`
	Disabled bool   `json:"disabled"`
}

// Input is the free-text guess box.
type Input struct {
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Focused bool   `json:"focused"`
}

// Clone returns a deep copy so that observers can hold a screen without racing the controller.
func (s Screen) Clone() Screen {
	out := s
	out.Chips = append([]Chip(nil), s.Chips...)
	out.Keys = append([]Key(nil), s.Keys...)
	return out
}
