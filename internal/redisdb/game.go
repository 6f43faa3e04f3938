package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Lavizord/gridbattle/internal/models"

	"github.com/redis/go-redis/v9"
)

// Games live in one hash, keyed by room id.

func (r *RedisClient) AddGame(game *models.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("[RedisClient] (Game) - failed to serialize game: %w", err)
	}
	return r.Client.HSet(context.Background(), gamesKey, gameField(game.RoomID), data).Err()
}

func (r *RedisClient) UpdateGame(game *models.Game) error {
	exists, err := r.GameExists(game.RoomID)
	if err != nil {
		return fmt.Errorf("[RedisClient] (Game) - failed to check game existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("[RedisClient] (Game) - game for room %d does not exist", game.RoomID)
	}
	return r.AddGame(game)
}

func (r *RedisClient) GetGame(roomID int64) (*models.Game, error) {
	data, err := r.Client.HGet(context.Background(), gamesKey, gameField(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (Game) - failed to get game: %w", err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("[RedisClient] (Game) - failed to deserialize game: %w", err)
	}
	return &game, nil
}

func (r *RedisClient) GameExists(roomID int64) (bool, error) {
	return r.Client.HExists(context.Background(), gamesKey, gameField(roomID)).Result()
}

func gameField(roomID int64) string {
	return strconv.FormatInt(roomID, 10)
}
