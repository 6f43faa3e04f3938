package session

import "fmt"

// State is the screen the player is on. States only move forward, one step
// at a time.
type State int

const (
	StateLogin State = iota
	StateLobby
	StatePlacingShips
	StateAwaitingOpponent
	StatePlaying
	StateGameOver
)

var stateNames = [...]string{
	StateLogin:            "login",
	StateLobby:            "lobby",
	StatePlacingShips:     "placing-ships",
	StateAwaitingOpponent: "awaiting-opponent",
	StatePlaying:          "playing",
	StateGameOver:         "game-over",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// CanAdvance reports whether to is the single step after s.
func (s State) CanAdvance(to State) bool {
	return to == s+1 && to <= StateGameOver
}
