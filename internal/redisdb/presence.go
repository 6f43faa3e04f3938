package redisdb

import (
	"context"
	"fmt"
)

// AddRoomPresence marks userID as connected to the room's channel. It reports
// whether the user was new to the room and how many distinct users are now
// present.
func (r *RedisClient) AddRoomPresence(roomID, userID int64) (bool, int64, error) {
	ctx := context.Background()
	key := GeneratePresenceRedisKey(roomID)
	pipe := r.Client.TxPipeline()
	added := pipe.SAdd(ctx, key, userID)
	count := pipe.SCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("[RedisClient] (Presence) - failed to add presence: %w", err)
	}
	return added.Val() == 1, count.Val(), nil
}

// RemoveRoomPresence drops userID from the room and returns how many users
// are still present.
func (r *RedisClient) RemoveRoomPresence(roomID, userID int64) (int64, error) {
	ctx := context.Background()
	key := GeneratePresenceRedisKey(roomID)
	pipe := r.Client.TxPipeline()
	pipe.SRem(ctx, key, userID)
	count := pipe.SCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("[RedisClient] (Presence) - failed to remove presence: %w", err)
	}
	return count.Val(), nil
}

// AddLobbyPresence marks userID as online outside any room and returns the
// lobby size.
func (r *RedisClient) AddLobbyPresence(userID int64) (int64, error) {
	ctx := context.Background()
	pipe := r.Client.TxPipeline()
	pipe.SAdd(ctx, lobbyKey, userID)
	count := pipe.SCard(ctx, lobbyKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("[RedisClient] (Presence) - failed to add lobby presence: %w", err)
	}
	return count.Val(), nil
}

func (r *RedisClient) RemoveLobbyPresence(userID int64) error {
	return r.Client.SRem(context.Background(), lobbyKey, userID).Err()
}
