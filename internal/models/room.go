package models

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomFull    RoomStatus = "full"
)

type Room struct {
	ID        int64      `json:"roomId"`
	Player1ID int64      `json:"player1_id,omitempty"`
	Player2ID int64      `json:"player2_id,omitempty"`
	Status    RoomStatus `json:"status"`
}

type JoinRoomRequest struct {
	UserID int64 `json:"userId"`
}

type JoinRoomResponse struct {
	RoomID       int64      `json:"roomId"`
	Status       RoomStatus `json:"status"`
	YourPosition string     `json:"yourPosition"`
}

func NewRoom(id int64) *Room {
	return &Room{ID: id, Status: RoomWaiting}
}

func (r *Room) IsFull() bool {
	return r.Status == RoomFull
}

func (r *Room) HasPlayer(userID int64) bool {
	return userID != 0 && (r.Player1ID == userID || r.Player2ID == userID)
}

// Join seats userID in the first free slot. Joining a room one already sits in
// is a no-op that reports the existing seat.
func (r *Room) Join(userID int64) (string, error) {
	switch {
	case r.Player1ID == userID:
		return "player1", nil
	case r.Player2ID == userID:
		return "player2", nil
	case r.IsFull():
		return "", ErrRoomFull
	case r.Player1ID == 0:
		r.Player1ID = userID
		return "player1", nil
	default:
		r.Player2ID = userID
		r.Status = RoomFull
		return "player2", nil
	}
}
