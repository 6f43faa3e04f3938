// Package realtime is the client end of the game service websocket.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/messages"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

var ErrClosed = errors.New("realtime connection closed")

// Handler receives every decoded server event, one at a time, on the read
// goroutine.
type Handler func(messages.Event)

type Conn struct {
	conn    *websocket.Conn
	send    chan []byte
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Dial connects to url and starts delivering events to handler.
func Dial(ctx context.Context, url string, handler Handler) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("[Realtime] - failed to connect to %s: %w", url, err)
	}
	connCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		conn:    ws,
		send:    make(chan []byte, sendBuffer),
		handler: handler,
		ctx:     connCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	logger.Default.Debugf("[Realtime] - connected to %s", url)
	return c, nil
}

// Emit queues e for the server.
func (c *Conn) Emit(e messages.Event) error {
	msg, err := messages.Encode(e)
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
		return ErrClosed
	}
	// Both cases can be ready at once, and nothing writes after ctx is done.
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	return nil
}

// Close tears the connection down. It is safe to call more than once.
func (c *Conn) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// Done is closed once the connection is gone, whichever side ended it.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) readPump() {
	defer func() {
		c.cancel()
		c.conn.Close()
		c.once.Do(func() { close(c.done) })
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Default.Warnf("[Realtime] - read error: %v", err)
			}
			return
		}
		event, err := messages.Decode(data)
		if err != nil {
			logger.Default.Warnf("[Realtime] - dropping frame: %v", err)
			continue
		}
		if c.handler != nil {
			c.handler(event)
		}
	}
}

func (c *Conn) writePump() {
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Default.Warnf("[Realtime] - write error: %v", err)
				c.cancel()
				c.conn.Close()
				return
			}
		case <-c.ctx.Done():
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			// Unblocks the read pump if the server never answers the close.
			c.conn.Close()
			return
		}
	}
}
