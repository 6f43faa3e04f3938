package gameservice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Lavizord/gridbattle/internal/httpapi"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/models"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from any origin, as with the REST routes.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type StartGameResponse struct {
	Message string `json:"message"`
	RoomID  int64  `json:"roomId"`
}

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) Router() *mux.Router {
	router := httpapi.NewRouter()
	router.HandleFunc("/games/{id:[0-9]+}/start", h.startGame).Methods("POST")
	router.HandleFunc("/ws", h.serveWs).Methods("GET")
	return router
}

func (h *Handler) startGame(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	_, err = h.service.StartGame(r.Context(), roomID)
	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		httpapi.RespondError(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, models.ErrRoomNotFull):
		httpapi.RespondError(w, http.StatusBadRequest, "Room not full")
		return
	case err != nil:
		logger.Default.Errorf("[GameService] - (Start Game) - room %d: %v", roomID, err)
		httpapi.RespondError(w, http.StatusInternalServerError, "could not start game")
		return
	}
	httpapi.RespondWithJSON(w, http.StatusOK, StartGameResponse{Message: "Game started", RoomID: roomID})
}

// serveWs handles websocket requests from the peer.
func (h *Handler) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		logger.Default.Warnf("[GameService] - (Serve WS) - upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
}
