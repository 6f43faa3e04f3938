package models

import (
	"fmt"
	"time"
)

type GamePlayer struct {
	ID     int64      `json:"id"`
	Board  Board      `json:"board"`
	Ships  []Position `json:"ships,omitempty"`
	Placed bool       `json:"placed"`
}

type Game struct {
	RoomID          int64        `json:"room_id"`
	Players         []GamePlayer `json:"players"`
	CurrentPlayerID int64        `json:"current_player_id"`
	Turn            int          `json:"turn"`
	Moves           []Move       `json:"moves"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	Winner          int64        `json:"winner"`
}

// Move represents a single shot in the game
type Move struct {
	PlayerID int64 `json:"player_id"`
	X        int   `json:"x"`
	Y        int   `json:"y"`
	Hit      bool  `json:"hit"`
}

// NewGame seats both players of a full room. Player 1 shoots first.
func (r *Room) NewGame() (*Game, error) {
	if !r.IsFull() {
		return nil, ErrRoomNotFull
	}
	return &Game{
		RoomID: r.ID,
		Players: []GamePlayer{
			{ID: r.Player1ID},
			{ID: r.Player2ID},
		},
		CurrentPlayerID: r.Player1ID,
		Moves:           []Move{},
		StartTime:       time.Now(),
	}, nil
}

func (g *Game) GetGamePlayer(playerID int64) (*GamePlayer, error) {
	if len(g.Players) != 2 {
		return nil, fmt.Errorf("invalid number of players in game")
	}
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i], nil
		}
	}
	return nil, ErrNotInGame
}

func (g *Game) GetOpponentGamePlayer(playerID int64) (*GamePlayer, error) {
	if len(g.Players) != 2 {
		return nil, fmt.Errorf("invalid number of players in game")
	}
	if _, err := g.GetGamePlayer(playerID); err != nil {
		return nil, err
	}
	for i := range g.Players {
		if g.Players[i].ID != playerID {
			return &g.Players[i], nil
		}
	}
	return nil, fmt.Errorf("opponent not found for player ID: %d", playerID)
}

// Ready reports whether both players have placed their ships.
func (g *Game) Ready() bool {
	for _, p := range g.Players {
		if !p.Placed {
			return false
		}
	}
	return len(g.Players) == 2
}

func (g *Game) IsOver() bool {
	return g.Winner != 0
}

// PlaceShips records a player's fleet. It returns true once both fleets are in.
func (g *Game) PlaceShips(playerID int64, positions []Position) (bool, error) {
	if g.IsOver() {
		return false, ErrGameOver
	}
	player, err := g.GetGamePlayer(playerID)
	if err != nil {
		return false, err
	}
	if player.Placed {
		return false, ErrAlreadyPlaced
	}
	if err := player.Board.PlaceShips(positions); err != nil {
		return false, err
	}
	player.Ships = append([]Position(nil), positions...)
	player.Placed = true
	return g.Ready(), nil
}

// Fire resolves a shot against the opponent's board and hands the turn over.
// When the shot sinks the last ship the game is finished instead.
func (g *Game) Fire(playerID int64, target Position) (Move, error) {
	if g.IsOver() {
		return Move{}, ErrGameOver
	}
	if _, err := g.GetGamePlayer(playerID); err != nil {
		return Move{}, err
	}
	if !g.Ready() {
		return Move{}, ErrGameNotReady
	}
	if g.CurrentPlayerID != playerID {
		return Move{}, ErrNotYourTurn
	}
	opponent, err := g.GetOpponentGamePlayer(playerID)
	if err != nil {
		return Move{}, err
	}
	hit, err := opponent.Board.Fire(target)
	if err != nil {
		return Move{}, err
	}

	move := Move{PlayerID: playerID, X: target.X(), Y: target.Y(), Hit: hit}
	g.Moves = append(g.Moves, move)
	if opponent.Board.AllShipsSunk() {
		g.FinishGame(playerID)
		return move, nil
	}
	g.NextPlayer()
	return move, nil
}

// Updates player id and turn count.
func (g *Game) NextPlayer() {
	opponent, err := g.GetOpponentGamePlayer(g.CurrentPlayerID)
	if err != nil {
		return
	}
	g.CurrentPlayerID = opponent.ID
	g.Turn += 1
}

func (g *Game) FinishGame(winnerID int64) {
	g.Winner = winnerID
	g.EndTime = time.Now()
}
