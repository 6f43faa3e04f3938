package gameservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lavizord/gridbattle/internal/messages"
	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/redisdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
)

type fakeRooms map[int64]*models.Room

func (f fakeRooms) GetRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, ok := f[roomID]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

type fakeLedger struct {
	mu    sync.Mutex
	games []models.Game
}

func (f *fakeLedger) SaveGame(game models.Game, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = append(f.games, game)
	return nil
}

func (f *fakeLedger) saved() []models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Game(nil), f.games...)
}

type testEnv struct {
	redis   *redisdb.RedisClient
	service *Service
	ledger  *fakeLedger
	server  *httptest.Server
}

// newTestEnv serves a game service where room 1 is full with users 1 and 2
// and room 2 only has user 1.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient, err := redisdb.NewRedisClient(mr.Addr(), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { redisClient.Close() })

	full := models.NewRoom(1)
	full.Join(1)
	full.Join(2)
	waiting := models.NewRoom(2)
	waiting.Join(1)

	ledger := &fakeLedger{}
	service := NewService(redisClient, fakeRooms{1: full, 2: waiting}, ledger)
	hub := NewHub(service)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(NewHandler(service, hub).Router())
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return &testEnv{redis: redisClient, service: service, ledger: ledger, server: server}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) presenceCount(roomID int64) (int64, error) {
	return e.redis.Client.SCard(context.Background(), redisdb.GeneratePresenceRedisKey(roomID)).Result()
}

func send(t *testing.T, conn *websocket.Conn, e messages.Event) {
	t.Helper()
	msg, err := messages.Encode(e)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func expect(t *testing.T, conn *websocket.Conn, want messages.Event) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("waiting for %s: %v", want.EventName(), err)
	}
	got, err := messages.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func expectError(t *testing.T, conn *websocket.Conn) messages.Error {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("waiting for error: %v", err)
	}
	got, err := messages.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	e, ok := got.(messages.Error)
	if !ok {
		t.Fatalf("got %#v, want an error event", got)
	}
	return e
}

func post(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestStartGameEndpoint(t *testing.T) {
	env := newTestEnv(t)

	if code := post(t, env.server.URL+"/games/9/start"); code != http.StatusNotFound {
		t.Fatalf("unknown room status = %d", code)
	}
	if code := post(t, env.server.URL+"/games/2/start"); code != http.StatusBadRequest {
		t.Fatalf("waiting room status = %d", code)
	}

	resp, err := http.Post(env.server.URL+"/games/1/start", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var body StartGameResponse
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body.Message != "Game started" || body.RoomID != 1 {
		t.Fatalf("start = %d %+v", resp.StatusCode, body)
	}

	game, _ := env.redis.GetGame(1)
	game.PlaceShips(1, []models.Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}})
	env.redis.UpdateGame(game)

	if code := post(t, env.server.URL+"/games/1/start"); code != http.StatusOK {
		t.Fatalf("second start status = %d", code)
	}
	again, _ := env.redis.GetGame(1)
	if p1, _ := again.GetGamePlayer(1); !p1.Placed {
		t.Fatal("restarting a running game reset it")
	}
	if again.CurrentPlayerID != 1 {
		t.Fatalf("first turn = %d, want player 1", again.CurrentPlayerID)
	}
}

func TestMatchOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	send(t, alice, messages.JoinGame{UserID: 1})
	send(t, alice, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 1})
	send(t, bob, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 2})
	expect(t, alice, messages.Joined{RoomID: 1})
	expect(t, bob, messages.Joined{RoomID: 1})

	if _, err := env.service.StartGame(context.Background(), 1); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	send(t, alice, messages.PlaceShips{RoomID: 1, UserID: 1, Positions: []models.Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}}})
	expect(t, alice, messages.ShipsPlaced{UserID: 1})
	expect(t, bob, messages.ShipsPlaced{UserID: 1})

	bobShips := []models.Position{{4, 0}, {4, 1}, {4, 2}, {4, 3}}
	send(t, bob, messages.PlaceShips{RoomID: 1, UserID: 2, Positions: bobShips})
	for _, conn := range []*websocket.Conn{alice, bob} {
		expect(t, conn, messages.ShipsPlaced{UserID: 2})
		expect(t, conn, messages.GameReady{Turn: 1})
	}

	send(t, bob, messages.Fire{RoomID: 1, UserID: 2, X: 0, Y: 0})
	if e := expectError(t, bob); e.Message != models.ErrNotYourTurn.Error() {
		t.Fatalf("out of turn error = %q", e.Message)
	}

	for i, target := range bobShips {
		send(t, alice, messages.Fire{RoomID: 1, UserID: 1, X: target.X(), Y: target.Y()})
		if i == len(bobShips)-1 {
			break
		}
		hit := messages.MoveUpdate{X: target.X(), Y: target.Y(), Hit: true, Turn: 2, UserID: 1}
		expect(t, alice, hit)
		expect(t, bob, hit)

		send(t, bob, messages.Fire{RoomID: 1, UserID: 2, X: 2, Y: i})
		miss := messages.MoveUpdate{X: 2, Y: i, Hit: false, Turn: 1, UserID: 2}
		expect(t, alice, miss)
		expect(t, bob, miss)
	}
	expect(t, alice, messages.GameOver{Winner: 1})
	expect(t, bob, messages.GameOver{Winner: 1})

	saved := env.ledger.saved()
	if len(saved) != 1 || saved[0].Winner != 1 || len(saved[0].Moves) != 7 {
		t.Fatalf("ledger = %+v", saved)
	}

	send(t, alice, messages.Fire{RoomID: 1, UserID: 1, X: 3, Y: 3})
	if e := expectError(t, alice); e.Message != models.ErrGameOver.Error() {
		t.Fatalf("fire after game over error = %q", e.Message)
	}
}

func TestRejectedFrames(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	tests := []struct {
		name  string
		frame string
	}{
		{"garbage", `not json`},
		{"unknown event", `{"event":"surrender"}`},
		{"server event", `{"event":"game-over","data":{"winner":1}}`},
		{"join without user", `{"event":"join-game","data":{"roomId":1}}`},
		{"place without game", `{"event":"place-ships","data":{"roomId":5,"userId":1,"positions":[[0,0],[0,1],[0,2],[0,3]]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatal(err)
			}
			if e := expectError(t, conn); e.Message == "" {
				t.Fatal("empty error message")
			}
		})
	}

	// Rejections never close the connection.
	send(t, conn, messages.Fire{RoomID: 5, UserID: 2})
	if e := expectError(t, conn); !strings.Contains(e.Message, "userId") {
		t.Fatalf("impersonation error = %q", e.Message)
	}

	// A later join-game cannot switch the connection to another user.
	other := env.dial(t)
	send(t, other, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 1})
	send(t, other, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 2})
	if e := expectError(t, other); !strings.Contains(e.Message, "userId") {
		t.Fatalf("rejoin error = %q", e.Message)
	}
	send(t, other, messages.PlaceShips{RoomID: 1, UserID: 2, Positions: []models.Position{
		models.NewPosition(0, 0), models.NewPosition(0, 1), models.NewPosition(0, 2), models.NewPosition(0, 3),
	}})
	if e := expectError(t, other); !strings.Contains(e.Message, "userId") {
		t.Fatalf("place-ships error = %q", e.Message)
	}
	if n, err := env.presenceCount(1); err != nil || n != 1 {
		t.Fatalf("presence count = %d, %v; want 1", n, err)
	}
}

func TestDisconnectRemovesPresence(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	send(t, alice, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 1})
	send(t, bob, messages.JoinGame{RoomID: messages.RoomPtr(1), UserID: 2})
	expect(t, alice, messages.Joined{RoomID: 1})

	bob.Close()
	deadline := time.Now().Add(3 * time.Second)
	for {
		n, err := env.presenceCount(1)
		if err == nil && n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("presence count = %d, %v; want 1", n, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
