package redisdb

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(addr string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	// check connection
	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("[RedisClient] - failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

func (r *RedisClient) Publish(channel string, message []byte) error {
	err := r.Client.Publish(context.Background(), channel, message).Err()
	if err != nil {
		return fmt.Errorf("[RedisClient] - failed to publish message: %w", err)
	}
	return nil
}

func (r *RedisClient) PublishToRoom(roomID int64, message []byte) error {
	return r.Publish(GetRoomPubSubChannel(roomID), message)
}

// SubscribeRoom opens a dedicated subscription to a room's event channel. The
// subscription is confirmed before returning, so a publish issued afterwards
// is guaranteed to reach it. The caller owns the returned PubSub.
func (r *RedisClient) SubscribeRoom(ctx context.Context, roomID int64) (*redis.PubSub, error) {
	pubsub := r.Client.Subscribe(ctx, GetRoomPubSubChannel(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("[RedisClient] - failed to subscribe to room %d: %w", roomID, err)
	}
	return pubsub, nil
}
