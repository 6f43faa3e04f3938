package roomservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/redisdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
)

type fakeUsers map[int64]bool

func (f fakeUsers) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if !f[userID] {
		return nil, models.ErrUserNotFound
	}
	return &models.User{ID: userID}, nil
}

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisdb.NewRedisClient(mr.Addr(), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return NewHandler(client, fakeUsers{1: true, 2: true, 3: true}).Router()
}

func call(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestRoomLifecycle(t *testing.T) {
	router := newRouter(t)

	rec := call(router, http.MethodPost, "/rooms", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created struct {
		RoomID int64 `json:"roomId"`
	}
	json.NewDecoder(rec.Body).Decode(&created)
	if created.RoomID != 1 {
		t.Fatalf("roomId = %d", created.RoomID)
	}

	rec = call(router, http.MethodPost, "/rooms/1/join", `{"userId":1}`)
	var first models.JoinRoomResponse
	json.NewDecoder(rec.Body).Decode(&first)
	if rec.Code != http.StatusOK || first.Status != models.RoomWaiting || first.YourPosition != "player1" {
		t.Fatalf("first join = %d %+v", rec.Code, first)
	}

	rec = call(router, http.MethodPost, "/rooms/1/join", `{"userId":2}`)
	var second models.JoinRoomResponse
	json.NewDecoder(rec.Body).Decode(&second)
	if rec.Code != http.StatusOK || second.Status != models.RoomFull || second.YourPosition != "player2" {
		t.Fatalf("second join = %d %+v", rec.Code, second)
	}

	if rec := call(router, http.MethodPost, "/rooms/1/join", `{"userId":3}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("third join status = %d, want 400", rec.Code)
	}

	rec = call(router, http.MethodGet, "/rooms/1", "")
	var room models.Room
	json.NewDecoder(rec.Body).Decode(&room)
	if rec.Code != http.StatusOK || room.Player1ID != 1 || room.Player2ID != 2 || room.Status != models.RoomFull {
		t.Fatalf("get room = %d %+v", rec.Code, room)
	}
}

func TestJoinRoomErrors(t *testing.T) {
	router := newRouter(t)
	call(router, http.MethodPost, "/rooms", "")

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown room", "/rooms/9/join", `{"userId":1}`, http.StatusNotFound},
		{"missing user", "/rooms/1/join", `{}`, http.StatusBadRequest},
		{"unknown user", "/rooms/1/join", `{"userId":77}`, http.StatusBadRequest},
		{"bad body", "/rooms/1/join", `nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := call(router, http.MethodPost, tt.path, tt.body); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if rec := call(router, http.MethodGet, "/rooms/9", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get unknown room status = %d", rec.Code)
	}
}
