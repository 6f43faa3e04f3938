package gameservice

import (
	"context"
	"sync"
	"time"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/messages"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id  uuid.UUID
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages. Never closed: the write pump
	// stops on ctx instead.
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	userID     int64
	roomID     int64
	inRoom     bool
	roomCancel context.CancelFunc
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     uuid.New(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// CloseConnection cancels the client context, which stops both pumps.
func (c *Client) CloseConnection() {
	c.cancel()
}

// Send queues msg for the peer. A client whose buffer is full is dropped.
func (c *Client) Send(msg []byte) {
	select {
	case <-c.ctx.Done():
	case c.send <- msg:
	default:
		logger.Default.Warnf("[Client] - %s - send buffer full, closing", c.id)
		c.CloseConnection()
	}
}

func (c *Client) SendEvent(e messages.Event) {
	msg, err := messages.Encode(e)
	if err != nil {
		logger.Default.Errorf("[Client] - %s - failed to encode %s: %v", c.id, e.EventName(), err)
		return
	}
	c.Send(msg)
}

// owns reports whether userID may act on this connection. A connection that
// never joined adopts the first identity it acts with.
func (c *Client) owns(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == 0 {
		c.userID = userID
	}
	return userID != 0 && c.userID == userID
}

func (c *Client) identity() (userID, roomID int64, inRoom bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.roomID, c.inRoom
}

// enterRoom subscribes the connection to the room's channel and forwards every
// payload to the peer. The subscription is live when enterRoom returns.
func (c *Client) enterRoom(roomID int64) error {
	subCtx, cancel := context.WithCancel(c.ctx)
	pubsub, err := c.hub.redis.SubscribeRoom(subCtx, roomID)
	if err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.roomID = roomID
	c.inRoom = true
	c.roomCancel = cancel
	c.mu.Unlock()

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.Send([]byte(msg.Payload))
			case <-subCtx.Done():
				return
			}
		}
	}()
	return nil
}

// leaveRoom drops the room subscription and the presence entry, if any.
func (c *Client) leaveRoom() {
	c.mu.Lock()
	userID, roomID, inRoom, cancel := c.userID, c.roomID, c.inRoom, c.roomCancel
	c.inRoom = false
	c.roomCancel = nil
	c.mu.Unlock()

	if !inRoom {
		return
	}
	cancel()
	left, err := c.hub.redis.RemoveRoomPresence(roomID, userID)
	if err != nil {
		logger.Default.Warnf("[Client] - %s - failed to remove presence from room %d: %v", c.id, roomID, err)
		return
	}
	logger.Default.Debugf("[Client] - %s - user %d left room %d (%d present)", c.id, userID, roomID, left)
}

// readPump pumps messages from the websocket connection to the service.
//
// The application runs readPump in a per-connection goroutine. Events of one
// connection are handled in the order they arrive.
func (c *Client) readPump() {
	defer func() {
		logger.Default.Debugf("[Client] - %s - readPump defer", c.id)
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Default.Warnf("[Client] - %s - read error: %v", c.id, err)
			}
			return
		}
		event, err := messages.Decode(message)
		if err != nil {
			c.SendEvent(messages.NewError("Invalid message format. %v", err))
			continue
		}
		if !messages.IsClientEvent(event) {
			c.SendEvent(messages.NewError("unexpected event %s", event.EventName()))
			continue
		}
		c.hub.service.HandleEvent(c, event)
	}
}

// writePump pumps messages to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		logger.Default.Debugf("[Client] - %s - writePump defer", c.id)
		ticker.Stop()
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Default.Warnf("[Client] - %s - writePump - error writing message: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Default.Warnf("[Client] - %s - writePump - error writing ping message: %v", c.id, err)
				return
			}
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
