package roomservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Lavizord/gridbattle/internal/httpapi"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/redisdb"

	"github.com/gorilla/mux"
)

// UserLookup validates user ids against the user service.
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type Handler struct {
	redis *redisdb.RedisClient
	users UserLookup
}

func NewHandler(redisClient *redisdb.RedisClient, users UserLookup) *Handler {
	return &Handler{redis: redisClient, users: users}
}

func (h *Handler) Router() *mux.Router {
	router := httpapi.NewRouter()
	router.HandleFunc("/rooms", h.createRoom).Methods("POST")
	router.HandleFunc("/rooms/{id:[0-9]+}/join", h.joinRoom).Methods("POST")
	router.HandleFunc("/rooms/{id:[0-9]+}", h.getRoom).Methods("GET")
	return router
}

func roomIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.redis.CreateRoom()
	if err != nil {
		logger.Default.Errorf("[RoomService] - (Create Room) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not create room")
		return
	}
	logger.Default.Infof("[RoomService] - room %d created", room.ID)
	httpapi.RespondWithJSON(w, http.StatusCreated, map[string]int64{"roomId": room.ID})
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromPath(r)
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if _, err := h.redis.GetRoomByID(roomID); errors.Is(err, models.ErrRoomNotFound) {
		httpapi.RespondError(w, http.StatusNotFound, "Room not found")
		return
	}

	var req models.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		httpapi.RespondError(w, http.StatusBadRequest, "userId required")
		return
	}
	if _, err := h.users.GetUser(r.Context(), req.UserID); err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			logger.Default.Warnf("[RoomService] - (Join Room) - user lookup failed: %v", err)
		}
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	room, position, err := h.redis.JoinRoom(roomID, req.UserID)
	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		httpapi.RespondError(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, models.ErrRoomFull):
		httpapi.RespondError(w, http.StatusBadRequest, "Room is full")
		return
	case err != nil:
		logger.Default.Errorf("[RoomService] - (Join Room) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not join room")
		return
	}
	logger.Default.Infof("[RoomService] - user %d joined room %d as %s", req.UserID, roomID, position)
	httpapi.RespondWithJSON(w, http.StatusOK, models.JoinRoomResponse{
		RoomID:       room.ID,
		Status:       room.Status,
		YourPosition: position,
	})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromPath(r)
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	room, err := h.redis.GetRoomByID(roomID)
	if errors.Is(err, models.ErrRoomNotFound) {
		httpapi.RespondError(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		logger.Default.Errorf("[RoomService] - (Get Room) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not fetch room")
		return
	}
	httpapi.RespondWithJSON(w, http.StatusOK, room)
}
