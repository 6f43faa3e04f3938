package userservice

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lavizord/gridbattle/internal/httpapi"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/models"
	"github.com/Lavizord/gridbattle/internal/redisdb"

	"github.com/gorilla/mux"
)

type Handler struct {
	redis *redisdb.RedisClient
}

func NewHandler(redisClient *redisdb.RedisClient) *Handler {
	return &Handler{redis: redisClient}
}

func (h *Handler) Router() *mux.Router {
	router := httpapi.NewRouter()
	router.HandleFunc("/register", h.register).Methods("POST")
	router.HandleFunc("/login", h.login).Methods("POST")
	router.HandleFunc("/users/{id:[0-9]+}", h.getUser).Methods("GET")
	return router
}

func decodeUsername(r *http.Request) string {
	var req models.UsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.Username)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username := decodeUsername(r)
	if username == "" {
		httpapi.RespondError(w, http.StatusBadRequest, models.ErrUsernameTaken.Error())
		return
	}
	user, err := h.redis.AddUser(username)
	if errors.Is(err, models.ErrUsernameTaken) {
		httpapi.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Default.Errorf("[UserService] - (Register) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not register user")
		return
	}
	logger.Default.Infof("[UserService] - registered %q as %d", user.Username, user.ID)
	httpapi.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := decodeUsername(r)
	user, err := h.redis.GetUserByName(username)
	if errors.Is(err, models.ErrUserNotFound) || username == "" {
		httpapi.RespondError(w, http.StatusNotFound, models.ErrUserNotFound.Error())
		return
	}
	if err != nil {
		logger.Default.Errorf("[UserService] - (Login) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not log in")
		return
	}
	httpapi.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.redis.GetUser(id)
	if errors.Is(err, models.ErrUserNotFound) {
		httpapi.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logger.Default.Errorf("[UserService] - (Get User) - %v", err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not fetch user")
		return
	}
	httpapi.RespondWithJSON(w, http.StatusOK, user)
}
