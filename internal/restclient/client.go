// Package restclient talks to the user, room and game services over HTTP.
// Every call is a single attempt: there is no retry or backoff.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Lavizord/gridbattle/internal/models"
)

// StatusError is returned when a service answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

type Client struct {
	UserURL string
	RoomURL string
	GameURL string
	HTTP    *http.Client
}

func New(userURL, roomURL, gameURL string) *Client {
	return &Client{
		UserURL: strings.TrimRight(userURL, "/"),
		RoomURL: strings.TrimRight(roomURL, "/"),
		GameURL: strings.TrimRight(gameURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Register(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, c.UserURL+"/register", models.UsernameRequest{Username: username}, &user)
	if err != nil {
		return nil, fmt.Errorf("[RestClient] - register: %w", err)
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, c.UserURL+"/login", models.UsernameRequest{Username: username}, &user)
	if err != nil {
		return nil, fmt.Errorf("[RestClient] - login: %w", err)
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/users/%d", c.UserURL, userID), nil, &user)
	if isStatus(err, http.StatusNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RestClient] - get user: %w", err)
	}
	return &user, nil
}

func (c *Client) CreateRoom(ctx context.Context) (int64, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodPost, c.RoomURL+"/rooms", nil, &room); err != nil {
		return 0, fmt.Errorf("[RestClient] - create room: %w", err)
	}
	return room.ID, nil
}

func (c *Client) JoinRoom(ctx context.Context, roomID, userID int64) (*models.JoinRoomResponse, error) {
	var resp models.JoinRoomResponse
	url := fmt.Sprintf("%s/rooms/%d/join", c.RoomURL, roomID)
	if err := c.do(ctx, http.MethodPost, url, models.JoinRoomRequest{UserID: userID}, &resp); err != nil {
		return nil, fmt.Errorf("[RestClient] - join room: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	var room models.Room
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/rooms/%d", c.RoomURL, roomID), nil, &room)
	if isStatus(err, http.StatusNotFound) {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RestClient] - get room: %w", err)
	}
	return &room, nil
}

func (c *Client) StartGame(ctx context.Context, roomID int64) error {
	url := fmt.Sprintf("%s/games/%d/start", c.GameURL, roomID)
	if err := c.do(ctx, http.MethodPost, url, nil, nil); err != nil {
		return fmt.Errorf("[RestClient] - start game: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}
	return nil
}

func isStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
