package gameservice

import (
	"context"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/redisdb"
)

// Hub maintains the set of active clients and cleans up after them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	redis   *redisdb.RedisClient
	service *Service
}

func NewHub(service *Service) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		redis:      service.redis,
		service:    service,
	}
}

// Run serves register and unregister requests until ctx is cancelled, then
// drops every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Default.Debugf("[Hub] - client %s connected (%d online)", client.id, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.cleanup(client)
				logger.Default.Debugf("[Hub] - client %s disconnected (%d online)", client.id, len(h.clients))
			}

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				h.cleanup(client)
			}
			return
		}
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// cleanup removes every trace of a gone connection.
func (h *Hub) cleanup(c *Client) {
	c.CloseConnection()
	c.leaveRoom()
	userID, _, _ := c.identity()
	if userID == 0 {
		return
	}
	if err := h.redis.RemoveLobbyPresence(userID); err != nil {
		logger.Default.Warnf("[Hub] - failed to remove lobby presence of %d: %v", userID, err)
	}
}
