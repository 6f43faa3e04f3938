package messages

import (
	"encoding/json"
	"fmt"

	"github.com/Lavizord/gridbattle/internal/models"
)

// Event names of the real-time contract.
const (
	EventJoinGame   = "join-game"
	EventPlaceShips = "place-ships"
	EventFire       = "fire"

	EventJoined      = "joined"
	EventShipsPlaced = "ships-placed"
	EventGameReady   = "game-ready"
	EventMoveUpdate  = "move-update"
	EventGameOver    = "game-over"
	EventError       = "error"
)

// Message is the frame every event travels in.
type Message[T any] struct {
	Event string `json:"event"`
	Data  T      `json:"data,omitempty"`
}

// Event is one variant of the contract. The set is closed: only the types in
// this file implement it.
type Event interface {
	EventName() string
	event()
}

// JoinGame registers presence in a room, or in the lobby when RoomID is nil.
type JoinGame struct {
	RoomID *int64 `json:"roomId"`
	UserID int64  `json:"userId"`
}

type PlaceShips struct {
	RoomID    int64             `json:"roomId"`
	UserID    int64             `json:"userId"`
	Positions []models.Position `json:"positions"`
}

type Fire struct {
	RoomID int64 `json:"roomId"`
	UserID int64 `json:"userId"`
	X      int   `json:"x"`
	Y      int   `json:"y"`
}

type Joined struct {
	RoomID int64 `json:"roomId"`
}

type ShipsPlaced struct {
	UserID int64 `json:"userId,omitempty"`
}

type GameReady struct {
	Turn int64 `json:"turn"`
}

// MoveUpdate carries the verdict of the last shot. UserID is the shooter.
type MoveUpdate struct {
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Hit    bool  `json:"hit"`
	Turn   int64 `json:"turn"`
	UserID int64 `json:"userId,omitempty"`
}

type GameOver struct {
	Winner int64 `json:"winner"`
}

type Error struct {
	Message string `json:"message"`
}

func (JoinGame) EventName() string    { return EventJoinGame }
func (PlaceShips) EventName() string  { return EventPlaceShips }
func (Fire) EventName() string        { return EventFire }
func (Joined) EventName() string      { return EventJoined }
func (ShipsPlaced) EventName() string { return EventShipsPlaced }
func (GameReady) EventName() string   { return EventGameReady }
func (MoveUpdate) EventName() string  { return EventMoveUpdate }
func (GameOver) EventName() string    { return EventGameOver }
func (Error) EventName() string       { return EventError }

func (JoinGame) event()    {}
func (PlaceShips) event()  {}
func (Fire) event()        {}
func (Joined) event()      {}
func (ShipsPlaced) event() {}
func (GameReady) event()   {}
func (MoveUpdate) event()  {}
func (GameOver) event()    {}
func (Error) event()       {}

// RoomPtr is a helper for building JoinGame values.
func RoomPtr(roomID int64) *int64 {
	return &roomID
}

// IsClientEvent reports whether e is one a client may send to the server.
func IsClientEvent(e Event) bool {
	switch e.(type) {
	case JoinGame, PlaceShips, Fire:
		return true
	}
	return false
}

func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("[Message Parser - Encode] nil event")
	}
	return json.Marshal(Message[Event]{Event: e.EventName(), Data: e})
}

func DecodeRawMessage(data []byte) (*Message[json.RawMessage], error) {
	var msg Message[json.RawMessage]
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("[Message Parser - DecodeRawMessage] invalid message format: %w", err)
	}
	return &msg, nil
}

// Decode parses a frame into its typed event.
func Decode(data []byte) (Event, error) {
	msg, err := DecodeRawMessage(data)
	if err != nil {
		return nil, err
	}

	switch msg.Event {
	case EventJoinGame:
		return decodeValue[JoinGame](msg)
	case EventPlaceShips:
		return decodeValue[PlaceShips](msg)
	case EventFire:
		return decodeValue[Fire](msg)
	case EventJoined:
		return decodeValue[Joined](msg)
	case EventShipsPlaced:
		return decodeValue[ShipsPlaced](msg)
	case EventGameReady:
		return decodeValue[GameReady](msg)
	case EventMoveUpdate:
		return decodeValue[MoveUpdate](msg)
	case EventGameOver:
		return decodeValue[GameOver](msg)
	case EventError:
		return decodeValue[Error](msg)
	}
	return nil, fmt.Errorf("[Message Parser] invalid event: %q", msg.Event)
}

func decodeValue[T Event](msg *Message[json.RawMessage]) (Event, error) {
	var value T
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return value, nil
	}
	if err := json.Unmarshal(msg.Data, &value); err != nil {
		return nil, fmt.Errorf("[Message Parser] invalid value format for %s: %w", msg.Event, err)
	}
	return value, nil
}

func NewError(format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...)}
}
