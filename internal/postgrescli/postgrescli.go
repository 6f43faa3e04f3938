package postgrescli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/models"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const createMatchesTable = `
	CREATE TABLE IF NOT EXISTS matches (
		ID UUID PRIMARY KEY,
		RoomID BIGINT NOT NULL,
		Winner BIGINT NOT NULL,
		Loser BIGINT NOT NULL,
		NumMoves INT NOT NULL,
		Moves JSONB NOT NULL,
		StartDate TIMESTAMPTZ NOT NULL,
		EndDate TIMESTAMPTZ NOT NULL,
		GameOverReason TEXT NOT NULL
	)
`

type PostgresCli struct {
	DB *sql.DB
}

// MatchRecord is one finished game as stored in the matches table.
type MatchRecord struct {
	ID        uuid.UUID
	RoomID    int64
	Winner    int64
	Loser     int64
	NumMoves  int
	Moves     []byte
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func NewPostgresCli(user, password, dbname, host, port string) (*PostgresCli, error) {
	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable", user, password, dbname, host, port)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Ping to make sure the connection is valid
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	pc := &PostgresCli{DB: db}
	if _, err := db.Exec(createMatchesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating matches table: %w", err)
	}
	return pc, nil
}

// Close method to close the database connection
func (pc *PostgresCli) Close() {
	pc.DB.Close()
}

// NewMatchRecord flattens a finished game into its ledger row.
func NewMatchRecord(game models.Game, reason string) (MatchRecord, error) {
	if !game.IsOver() {
		return MatchRecord{}, fmt.Errorf("game for room %d is not over", game.RoomID)
	}
	movesJSON, err := json.Marshal(game.Moves)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("error marshalling moves: %w", err)
	}
	loser, err := game.GetOpponentGamePlayer(game.Winner)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("error resolving loser: %w", err)
	}
	return MatchRecord{
		ID:        uuid.New(),
		RoomID:    game.RoomID,
		Winner:    game.Winner,
		Loser:     loser.ID,
		NumMoves:  len(game.Moves),
		Moves:     movesJSON,
		StartDate: game.StartTime,
		EndDate:   game.EndTime,
		Reason:    reason,
	}, nil
}

// SaveGame writes a finished game to the matches table.
func (pc *PostgresCli) SaveGame(game models.Game, reason string) error {
	record, err := NewMatchRecord(game, reason)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches (
			ID, RoomID, Winner, Loser, NumMoves, Moves, StartDate, EndDate, GameOverReason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = pc.DB.Exec(
		query,
		record.ID,
		record.RoomID,
		record.Winner,
		record.Loser,
		record.NumMoves,
		record.Moves,
		record.StartDate,
		record.EndDate,
		record.Reason,
	)
	if err != nil {
		return fmt.Errorf("error inserting match: %w", err)
	}
	logger.Default.Infof("[PostgresCli] - match %s saved for room %d", record.ID, record.RoomID)
	return nil
}
