package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lavizord/gridbattle/internal/models"

	"github.com/redis/go-redis/v9"
)

const maxJoinRetries = 10

func (r *RedisClient) CreateRoom() (*models.Room, error) {
	ctx := context.Background()
	id, err := r.Client.Incr(ctx, nextRoomIDKey).Result()
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (Room) - failed to allocate room id: %w", err)
	}
	room := models.NewRoom(id)
	if err := r.saveRoom(ctx, r.Client, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *RedisClient) GetRoomByID(roomID int64) (*models.Room, error) {
	return r.getRoom(context.Background(), r.Client, roomID)
}

// JoinRoom seats userID in the room. The read-modify-write runs in an
// optimistic transaction, so two concurrent joins can never both take the
// last seat.
func (r *RedisClient) JoinRoom(roomID, userID int64) (*models.Room, string, error) {
	ctx := context.Background()
	key := GenerateRoomRedisKeyById(roomID)

	var room *models.Room
	var position string
	txf := func(tx *redis.Tx) error {
		var err error
		room, err = r.getRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		position, err = room.Join(userID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.saveRoom(ctx, pipe, room)
		})
		return err
	}

	for i := 0; i < maxJoinRetries; i++ {
		err := r.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return room, position, nil
	}
	return nil, "", fmt.Errorf("[RedisClient] (Room) - join of room %d kept conflicting", roomID)
}

func (r *RedisClient) getRoom(ctx context.Context, c redis.Cmdable, roomID int64) (*models.Room, error) {
	data, err := c.HGet(ctx, GenerateRoomRedisKeyById(roomID), "data").Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (Room) - failed to retrieve room %d: %w", roomID, err)
	}

	var room models.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("[RedisClient] (Room) - failed to unmarshal room data: %w", err)
	}
	return &room, nil
}

func (r *RedisClient) saveRoom(ctx context.Context, c redis.Cmdable, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("[RedisClient] (Room) - failed to serialize room: %w", err)
	}
	err = c.HSet(ctx, GenerateRoomRedisKeyById(room.ID), map[string]interface{}{
		"id":     room.ID,
		"status": string(room.Status),
		"data":   string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("[RedisClient] (Room) - failed to store room data: %w", err)
	}
	return nil
}
