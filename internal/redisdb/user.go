package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lavizord/gridbattle/internal/models"

	"github.com/redis/go-redis/v9"
)

// AddUser reserves username and stores a new user under a fresh id.
func (r *RedisClient) AddUser(username string) (*models.User, error) {
	ctx := context.Background()
	id, err := r.Client.Incr(ctx, nextUserIDKey).Result()
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to allocate user id: %w", err)
	}
	reserved, err := r.Client.SetNX(ctx, GenerateUsernameRedisKey(username), id, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to reserve username: %w", err)
	}
	if !reserved {
		return nil, models.ErrUsernameTaken
	}

	user := &models.User{ID: id, Username: username, Status: models.StatusOnline}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to serialize user: %w", err)
	}
	err = r.Client.HSet(ctx, GenerateUserRedisKeyById(id), map[string]interface{}{
		"id":   id,
		"data": string(data),
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to store user: %w", err)
	}
	return user, nil
}

func (r *RedisClient) GetUser(userID int64) (*models.User, error) {
	data, err := r.Client.HGet(context.Background(), GenerateUserRedisKeyById(userID), "data").Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to get user %d: %w", userID, err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to deserialize user: %w", err)
	}
	return &user, nil
}

func (r *RedisClient) GetUserByName(username string) (*models.User, error) {
	id, err := r.Client.Get(context.Background(), GenerateUsernameRedisKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] (User) - failed to look up username: %w", err)
	}
	return r.GetUser(id)
}
