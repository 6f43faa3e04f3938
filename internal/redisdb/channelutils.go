package redisdb

import "fmt"

const (
	nextUserIDKey = "users:next_id"
	nextRoomIDKey = "rooms:next_id"
	gamesKey      = "games"
	lobbyKey      = "presence:lobby"
)

func GetRoomPubSubChannel(roomID int64) string {
	return fmt.Sprintf("room:%d:events", roomID)
}

func GenerateUserRedisKeyById(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func GenerateUsernameRedisKey(username string) string {
	return "username:" + username
}

func GenerateRoomRedisKeyById(roomID int64) string {
	return fmt.Sprintf("room:%d", roomID)
}

func GeneratePresenceRedisKey(roomID int64) string {
	return fmt.Sprintf("presence:room:%d", roomID)
}
