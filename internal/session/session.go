// Package session is the player-side core of a match. It holds the identity,
// room and boards of one player, turns board activations into real-time
// events and reflects server events back onto a View.
//
// The session never decides a hit or a turn. Failures are reported through
// View.Alert and leave the session as it was; nothing is retried.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/messages"
	"github.com/Lavizord/gridbattle/internal/models"
)

// Status and alert texts shown to the player.
const (
	TextEnterUsername   = "Enter username"
	TextRegisterFailed  = "Register failed"
	TextLoginFailed     = "Login failed"
	TextCreateFailed    = "Failed to create room"
	TextJoinFailed      = "Failed to join room"
	TextWaiting         = "Waiting for opponent..."
	TextOpponentJoined  = `Opponent joined! Click "Start Game"`
	TextPlaceShips      = "Place 4 ship cells (click on your board)"
	TextOpponentPlaced  = "Opponent placed ships..."
	TextReadyYourTurn   = "Game started! Your turn!"
	TextReadyOpponent   = "Game started! Opponent turn"
	TextYourTurn        = "Your turn!"
	TextOpponentTurn    = "Opponent turn"
	TextYouWin          = "YOU WIN!"
	TextYouLost         = "You lost."
	TextConnectionError = "Connection error"
)

var (
	ErrEmptyUsername = errors.New("empty username")
	ErrWrongState    = errors.New("not available in the current state")
	ErrNotInRoom     = errors.New("not in a room")
	ErrNoOpponent    = errors.New("opponent has not joined")
)

// View is whatever shows the boards to the player.
type View interface {
	Render(kind BoardKind, cells []RenderedCell)
	SetStatus(text string)
	SetStartVisible(visible bool)
	Alert(text string)
	// OnCellActivated registers the callback for cell activations. The view
	// must not call it from inside another View method.
	OnCellActivated(func(kind BoardKind, x, y int))
}

// Emitter sends events on the real-time channel.
type Emitter interface {
	Emit(e messages.Event) error
}

// Backend is the REST side of the user, room and game services.
type Backend interface {
	Register(ctx context.Context, username string) (*models.User, error)
	Login(ctx context.Context, username string) (*models.User, error)
	CreateRoom(ctx context.Context) (int64, error)
	JoinRoom(ctx context.Context, roomID, userID int64) (*models.JoinRoomResponse, error)
	StartGame(ctx context.Context, roomID int64) error
}

type Session struct {
	backend Backend
	emitter Emitter
	view    View

	// Input and network callbacks arrive on different goroutines.
	mu             sync.Mutex
	state          State
	userID         int64
	username       string
	roomID         int64
	inRoom         bool
	opponentJoined bool
	placing        bool
	ships          []models.Position
	lastShot       *models.Position
	own            board
	opponent       board
}

func New(backend Backend, emitter Emitter, view View) *Session {
	s := &Session{backend: backend, emitter: emitter, view: view}
	view.OnCellActivated(s.ActivateCell)
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// RoomID returns the current room and whether there is one.
func (s *Session) RoomID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID, s.inRoom
}

// Cells renders one board without touching the view.
func (s *Session) Cells(kind BoardKind) []RenderedCell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardFor(kind).render()
}

func (s *Session) Register(ctx context.Context, username string) error {
	return s.authenticate(ctx, username, s.backend.Register, TextRegisterFailed)
}

func (s *Session) Login(ctx context.Context, username string) error {
	return s.authenticate(ctx, username, s.backend.Login, TextLoginFailed)
}

func (s *Session) authenticate(ctx context.Context, username string,
	call func(context.Context, string) (*models.User, error), failText string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		s.view.Alert(TextEnterUsername)
		return ErrEmptyUsername
	}
	if s.State() != StateLogin {
		return ErrWrongState
	}

	user, err := call(ctx, username)
	if err != nil {
		logger.Default.Warnf("[Session] - (Auth) - %q: %v", username, err)
		s.view.Alert(failText)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advance(StateLobby) {
		return ErrWrongState
	}
	s.userID = user.ID
	s.username = username
	logger.Default.Infof("[Session] - logged in as %q (%d)", username, user.ID)
	s.emit(messages.JoinGame{UserID: s.userID})
	return nil
}

// CreateRoom opens a room and seats the player in it.
func (s *Session) CreateRoom(ctx context.Context) error {
	userID, err := s.lobbyUser()
	if err != nil {
		return err
	}
	roomID, err := s.backend.CreateRoom(ctx)
	if err != nil {
		logger.Default.Warnf("[Session] - (Create Room) - %v", err)
		s.view.Alert(TextCreateFailed)
		return err
	}
	if _, err := s.backend.JoinRoom(ctx, roomID, userID); err != nil {
		logger.Default.Warnf("[Session] - (Create Room) - join %d: %v", roomID, err)
		s.view.Alert(TextJoinFailed)
		return err
	}
	s.enterRoom(roomID)
	return nil
}

func (s *Session) JoinRoom(ctx context.Context, roomID int64) error {
	userID, err := s.lobbyUser()
	if err != nil {
		return err
	}
	if _, err := s.backend.JoinRoom(ctx, roomID, userID); err != nil {
		logger.Default.Warnf("[Session] - (Join Room) - %d: %v", roomID, err)
		s.view.Alert(TextJoinFailed)
		return err
	}
	s.enterRoom(roomID)
	return nil
}

func (s *Session) lobbyUser() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLobby {
		return 0, ErrWrongState
	}
	return s.userID, nil
}

func (s *Session) enterRoom(roomID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.inRoom = true
	s.opponentJoined = false
	s.own.reset()
	s.opponent.reset()
	s.view.Render(OwnBoard, s.own.render())
	s.view.Render(OpponentBoard, s.opponent.render())
	s.emit(messages.JoinGame{RoomID: messages.RoomPtr(roomID), UserID: s.userID})
	s.view.SetStatus(TextWaiting)
}

// StartGame asks the game service to start the room's match and opens ship
// placement. A failed start request is only logged.
func (s *Session) StartGame(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state != StateLobby:
		s.mu.Unlock()
		return ErrWrongState
	case !s.inRoom:
		s.mu.Unlock()
		return ErrNotInRoom
	case !s.opponentJoined:
		s.mu.Unlock()
		return ErrNoOpponent
	}
	roomID := s.roomID
	s.mu.Unlock()

	if err := s.backend.StartGame(ctx, roomID); err != nil {
		logger.Default.Warnf("[Session] - (Start Game) - room %d: %v", roomID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advance(StatePlacingShips) {
		return ErrWrongState
	}
	s.placing = true
	s.ships = s.ships[:0]
	s.view.SetStatus(TextPlaceShips)
	s.view.SetStartVisible(false)
	return nil
}

// ActivateCell is the reaction to the player choosing a cell. Activations
// that make no sense right now are ignored.
func (s *Session) ActivateCell(kind BoardKind, x, y int) {
	p := models.NewPosition(x, y)
	if !p.InBounds() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == OwnBoard {
		s.placeShip(p)
		return
	}
	s.fire(p)
}

func (s *Session) placeShip(p models.Position) {
	if s.state != StatePlacingShips || !s.placing || len(s.ships) >= models.ShipCells {
		return
	}
	if s.own.at(p) == MarkShip {
		return
	}
	s.own.set(p, MarkShip)
	s.ships = append(s.ships, p)
	s.view.Render(OwnBoard, s.own.render())
	if len(s.ships) < models.ShipCells {
		return
	}

	positions := append([]models.Position(nil), s.ships...)
	if !s.emit(messages.PlaceShips{RoomID: s.roomID, UserID: s.userID, Positions: positions}) {
		// Take the last cell back so the next click resubmits the set.
		s.own.set(p, MarkNone)
		s.ships = s.ships[:len(s.ships)-1]
		s.view.Render(OwnBoard, s.own.render())
		return
	}
	s.placing = false
	s.advance(StateAwaitingOpponent)
	s.view.SetStatus(TextWaiting)
}

func (s *Session) fire(p models.Position) {
	if s.state != StatePlaying || s.opponent.disabled {
		return
	}
	if s.opponent.at(p) != MarkNone {
		return
	}
	if !s.emit(messages.Fire{RoomID: s.roomID, UserID: s.userID, X: p.X(), Y: p.Y()}) {
		return
	}
	s.opponent.set(p, MarkPending)
	s.lastShot = &p
	s.view.Render(OpponentBoard, s.opponent.render())
}

// HandleEvent applies one server event.
func (s *Session) HandleEvent(e messages.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := e.(type) {
	case messages.Joined:
		if !s.inRoom || ev.RoomID != s.roomID {
			logger.Default.Debugf("[Session] - ignoring joined for room %d", ev.RoomID)
			return
		}
		if s.state != StateLobby {
			return
		}
		s.opponentJoined = true
		s.view.SetStatus(TextOpponentJoined)
		s.view.SetStartVisible(true)

	case messages.ShipsPlaced:
		if ev.UserID != 0 && ev.UserID == s.userID {
			return
		}
		if s.state == StatePlaying || s.state == StateGameOver {
			return
		}
		s.view.SetStatus(TextOpponentPlaced)

	case messages.GameReady:
		if !s.advance(StatePlaying) {
			return
		}
		if ev.Turn == s.userID {
			s.view.SetStatus(TextReadyYourTurn)
		} else {
			s.view.SetStatus(TextReadyOpponent)
		}

	case messages.MoveUpdate:
		if s.state != StatePlaying {
			logger.Default.Debugf("[Session] - ignoring move-update in state %s", s.state)
			return
		}
		p := models.NewPosition(ev.X, ev.Y)
		if !p.InBounds() {
			logger.Default.Warnf("[Session] - move-update out of bounds: %s", p)
			return
		}
		mark := MarkMiss
		if ev.Hit {
			mark = MarkHit
		}
		if ev.UserID == 0 || ev.UserID == s.userID {
			s.opponent.set(p, mark)
			s.lastShot = nil
			s.view.Render(OpponentBoard, s.opponent.render())
		} else {
			s.own.set(p, mark)
			s.view.Render(OwnBoard, s.own.render())
		}
		if ev.Turn == s.userID {
			s.view.SetStatus(TextYourTurn)
		} else {
			s.view.SetStatus(TextOpponentTurn)
		}

	case messages.GameOver:
		won := ev.Winner == s.userID
		if won && s.lastShot != nil && s.opponent.at(*s.lastShot) == MarkPending {
			// The winning shot gets no move-update of its own.
			s.opponent.set(*s.lastShot, MarkHit)
		}
		s.lastShot = nil
		s.own.disabled = true
		s.opponent.disabled = true
		s.advance(StateGameOver)
		s.view.Render(OwnBoard, s.own.render())
		s.view.Render(OpponentBoard, s.opponent.render())
		if won {
			s.view.SetStatus(TextYouWin)
		} else {
			s.view.SetStatus(TextYouLost)
		}

	case messages.Error:
		if s.lastShot != nil && s.opponent.at(*s.lastShot) == MarkPending {
			s.opponent.set(*s.lastShot, MarkNone)
			s.lastShot = nil
			s.view.Render(OpponentBoard, s.opponent.render())
		}
		s.view.Alert(ev.Message)

	default:
		logger.Default.Debugf("[Session] - ignoring %s", e.EventName())
	}
}

// advance moves to the next state. Any other transition is refused.
// Callers hold mu.
func (s *Session) advance(to State) bool {
	if !s.state.CanAdvance(to) {
		logger.Default.Warnf("[Session] - refused transition %s -> %s", s.state, to)
		return false
	}
	logger.Default.Debugf("[Session] - %s -> %s", s.state, to)
	s.state = to
	return true
}

// emit sends e and alerts the player when the channel is gone. Callers hold mu.
func (s *Session) emit(e messages.Event) bool {
	if err := s.emitter.Emit(e); err != nil {
		logger.Default.Warnf("[Session] - failed to emit %s: %v", e.EventName(), err)
		s.view.Alert(TextConnectionError)
		return false
	}
	return true
}

func (s *Session) boardFor(kind BoardKind) *board {
	if kind == OwnBoard {
		return &s.own
	}
	return &s.opponent
}
