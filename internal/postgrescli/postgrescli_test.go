package postgrescli

import (
	"encoding/json"
	"testing"

	"github.com/Lavizord/gridbattle/internal/models"
)

func finishedGame(t *testing.T) models.Game {
	t.Helper()
	room := models.NewRoom(11)
	room.Join(1)
	room.Join(2)
	game, err := room.NewGame()
	if err != nil {
		t.Fatal(err)
	}
	game.PlaceShips(1, []models.Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}})
	game.PlaceShips(2, []models.Position{{4, 0}, {4, 1}, {4, 2}, {4, 3}})
	for i := 0; i < 4; i++ {
		if _, err := game.Fire(1, models.Position{4, i}); err != nil {
			t.Fatalf("shot %d: %v", i, err)
		}
		if i < 3 {
			if _, err := game.Fire(2, models.Position{2, i}); err != nil {
				t.Fatalf("reply %d: %v", i, err)
			}
		}
	}
	return *game
}

func TestNewMatchRecord(t *testing.T) {
	game := finishedGame(t)
	record, err := NewMatchRecord(game, "winner")
	if err != nil {
		t.Fatalf("NewMatchRecord: %v", err)
	}
	if record.Winner != 1 || record.Loser != 2 || record.RoomID != 11 {
		t.Errorf("record = %+v", record)
	}
	if record.NumMoves != 7 {
		t.Errorf("NumMoves = %d, want 7", record.NumMoves)
	}
	var moves []models.Move
	if err := json.Unmarshal(record.Moves, &moves); err != nil || len(moves) != 7 {
		t.Errorf("moves = %s, %v", record.Moves, err)
	}
	if record.ID.String() == "" || record.Reason != "winner" {
		t.Errorf("record id/reason = %v %q", record.ID, record.Reason)
	}
}

func TestNewMatchRecordRejectsRunningGame(t *testing.T) {
	room := models.NewRoom(1)
	room.Join(1)
	room.Join(2)
	game, _ := room.NewGame()
	if _, err := NewMatchRecord(*game, "winner"); err == nil {
		t.Fatal("expected error for unfinished game")
	}
}
