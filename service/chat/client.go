package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Client is one live push-channel connection. A user may hold several
// (multiple tabs/devices); each is registered separately.
type Client struct {
	ConnID   string
	Username string // empty for anonymous connections

	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(connID, username string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ConnID:   connID,
		Username: username,
		ws:       ws,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
}

// Enqueue hands a payload to the connection's writer without blocking.
// Returns false when the queue is full: the event is dropped for this
// connection only. Fire-and-forget is the push channel's contract; a
// persistently slow consumer loses events rather than stalling the fan-out.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// writePump is the single writer for this connection. gorilla/websocket
// allows one concurrent writer, so every outbound frame funnels through
// here, pings included.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("[ws] write failed conn=" + c.ConnID)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close is idempotent; safe from both the read loop and the manager.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}
