// Package gameservice runs matches: it starts games over REST and carries the
// real-time events between the two players of a room over websockets, with
// Redis pub/sub as the room fan-out.
package gameservice

import (
	"context"
	"errors"
	"sync"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/messages"
	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/redisdb"
)

// RoomLookup fetches rooms from the room service.
type RoomLookup interface {
	GetRoom(ctx context.Context, roomID int64) (*models.Room, error)
}

// ResultRecorder persists finished games.
type ResultRecorder interface {
	SaveGame(game models.Game, reason string) error
}

const reasonWin = "winner"

type Service struct {
	redis  *redisdb.RedisClient
	rooms  RoomLookup
	ledger ResultRecorder

	// Serialises read-modify-write of game state.
	mu sync.Mutex
}

// NewService builds a game service. ledger may be nil.
func NewService(redisClient *redisdb.RedisClient, rooms RoomLookup, ledger ResultRecorder) *Service {
	return &Service{redis: redisClient, rooms: rooms, ledger: ledger}
}

// StartGame creates the game for a full room. Starting a room whose game is
// still running returns that game unchanged.
func (s *Service) StartGame(ctx context.Context, roomID int64) (*models.Game, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.redis.GetGame(roomID)
	if err == nil && !existing.IsOver() {
		return existing, nil
	}
	if err != nil && !errors.Is(err, models.ErrGameNotFound) {
		return nil, err
	}

	game, err := room.NewGame()
	if err != nil {
		return nil, err
	}
	if err := s.redis.AddGame(game); err != nil {
		return nil, err
	}
	logger.Default.Infof("[GameService] - (Start Game) - room %d started, player %d shoots first", roomID, game.CurrentPlayerID)
	return game, nil
}

// HandleEvent routes one client event. Rejections go back to c only.
func (s *Service) HandleEvent(c *Client, e messages.Event) {
	switch ev := e.(type) {
	case messages.JoinGame:
		s.handleJoin(c, ev)
	case messages.PlaceShips:
		s.handlePlaceShips(c, ev)
	case messages.Fire:
		s.handleFire(c, ev)
	default:
		c.SendEvent(messages.NewError("unexpected event %s", e.EventName()))
	}
}

func (s *Service) handleJoin(c *Client, ev messages.JoinGame) {
	if ev.UserID == 0 {
		c.SendEvent(messages.NewError("userId required"))
		return
	}
	if !c.owns(ev.UserID) {
		c.SendEvent(messages.NewError("userId does not match this connection"))
		return
	}
	prevUser, prevRoom, inRoom := c.identity()
	sameRoom := inRoom && ev.RoomID != nil && *ev.RoomID == prevRoom && prevUser == ev.UserID
	if !sameRoom {
		c.leaveRoom()
	}

	if ev.RoomID == nil {
		online, err := s.redis.AddLobbyPresence(ev.UserID)
		if err != nil {
			logger.Default.Errorf("[GameService] - (Join Game) - lobby presence: %v", err)
			return
		}
		logger.Default.Debugf("[GameService] - (Join Game) - user %d in lobby (%d online)", ev.UserID, online)
		return
	}

	roomID := *ev.RoomID
	if err := s.redis.RemoveLobbyPresence(ev.UserID); err != nil {
		logger.Default.Warnf("[GameService] - (Join Game) - lobby presence: %v", err)
	}
	if !sameRoom {
		if err := c.enterRoom(roomID); err != nil {
			logger.Default.Errorf("[GameService] - (Join Game) - %v", err)
			c.SendEvent(messages.NewError("could not join room %d", roomID))
			return
		}
	}
	added, count, err := s.redis.AddRoomPresence(roomID, ev.UserID)
	if err != nil {
		logger.Default.Errorf("[GameService] - (Join Game) - %v", err)
		c.SendEvent(messages.NewError("could not join room %d", roomID))
		return
	}
	logger.Default.Infof("[GameService] - (Join Game) - user %d in room %d (%d present)", ev.UserID, roomID, count)
	if added && count == 2 {
		s.publish(roomID, messages.Joined{RoomID: roomID})
	}
}

func (s *Service) handlePlaceShips(c *Client, ev messages.PlaceShips) {
	if !c.owns(ev.UserID) {
		c.SendEvent(messages.NewError("userId does not match this connection"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	game, err := s.redis.GetGame(ev.RoomID)
	if err != nil {
		c.SendEvent(s.reject("Place Ships", err))
		return
	}
	bothPlaced, err := game.PlaceShips(ev.UserID, ev.Positions)
	if err != nil {
		c.SendEvent(s.reject("Place Ships", err))
		return
	}
	if err := s.redis.UpdateGame(game); err != nil {
		c.SendEvent(s.reject("Place Ships", err))
		return
	}

	s.publish(ev.RoomID, messages.ShipsPlaced{UserID: ev.UserID})
	if bothPlaced {
		s.publish(ev.RoomID, messages.GameReady{Turn: game.CurrentPlayerID})
	}
}

func (s *Service) handleFire(c *Client, ev messages.Fire) {
	if !c.owns(ev.UserID) {
		c.SendEvent(messages.NewError("userId does not match this connection"))
		return
	}

	s.mu.Lock()
	game, err := s.redis.GetGame(ev.RoomID)
	if err != nil {
		s.mu.Unlock()
		c.SendEvent(s.reject("Fire", err))
		return
	}
	move, err := game.Fire(ev.UserID, models.NewPosition(ev.X, ev.Y))
	if err != nil {
		s.mu.Unlock()
		c.SendEvent(s.reject("Fire", err))
		return
	}
	if err := s.redis.UpdateGame(game); err != nil {
		s.mu.Unlock()
		c.SendEvent(s.reject("Fire", err))
		return
	}

	if !game.IsOver() {
		s.publish(ev.RoomID, messages.MoveUpdate{
			X:      move.X,
			Y:      move.Y,
			Hit:    move.Hit,
			Turn:   game.CurrentPlayerID,
			UserID: move.PlayerID,
		})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	logger.Default.Infof("[GameService] - (Fire) - room %d won by %d after %d moves", ev.RoomID, game.Winner, len(game.Moves))
	if s.ledger != nil {
		if err := s.ledger.SaveGame(*game, reasonWin); err != nil {
			logger.Default.Errorf("[GameService] - (Fire) - failed to record game: %v", err)
		}
	}
	s.publish(ev.RoomID, messages.GameOver{Winner: game.Winner})
}

// Rule violations a player may see verbatim.
var clientErrors = []error{
	models.ErrGameNotFound, models.ErrNotInGame, models.ErrAlreadyPlaced,
	models.ErrInvalidPlacement, models.ErrGameNotReady, models.ErrGameOver,
	models.ErrNotYourTurn, models.ErrOutOfBounds, models.ErrAlreadyFired,
}

// reject logs err and turns it into the message the client sees.
func (s *Service) reject(op string, err error) messages.Error {
	for _, k := range clientErrors {
		if errors.Is(err, k) {
			logger.Default.Debugf("[GameService] - (%s) - rejected: %v", op, err)
			return messages.NewError("%s", k.Error())
		}
	}
	logger.Default.Errorf("[GameService] - (%s) - %v", op, err)
	return messages.NewError("internal error")
}

func (s *Service) publish(roomID int64, e messages.Event) {
	msg, err := messages.Encode(e)
	if err != nil {
		logger.Default.Errorf("[GameService] - failed to encode %s: %v", e.EventName(), err)
		return
	}
	if err := s.redis.PublishToRoom(roomID, msg); err != nil {
		logger.Default.Errorf("[GameService] - failed to publish %s to room %d: %v", e.EventName(), roomID, err)
	}
}
