package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chat-relay/logger"
	"chat-relay/service/storage"
	"chat-relay/tools/ids"
	"chat-relay/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway owns the push channel endpoint. The channel delivers all rooms'
// events to all connections; clients compare each event's roomId against
// the room they are viewing and discard the rest. There is no defined
// client-to-server message on this channel — writes go through the REST
// surface.
type Gateway struct {
	mgr      *ConnManager
	presence *storage.Presence
	jwt      security.Options
	queue    int
}

func NewGateway(mgr *ConnManager, presence *storage.Presence, jwt security.Options, sendQueueSize int) *Gateway {
	return &Gateway{mgr: mgr, presence: presence, jwt: jwt, queue: sendQueueSize}
}

// HandleWS upgrades the connection and registers it for fan-out. A valid
// token in the `token` query parameter attaches the caller's identity and
// marks presence; without one the connection is anonymous but still
// receives events, matching the channel's unfiltered contract.
func (g *Gateway) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[ws] upgrade failed: %v", err)
		return
	}

	username := ""
	if token := c.Query("token"); token != "" {
		if sub, verr := security.Verify(g.jwt, token); verr == nil {
			username = sub
		} else {
			logger.Warnf("[ws] ignoring invalid token: %v", verr)
		}
	}

	client := NewClient(ids.GenerateString(), username, ws, g.queue)
	g.mgr.Register(client)
	go client.writePump()

	logger.Infof("[ws] connected conn=%s user=%q total=%d", client.ConnID, username, g.mgr.Len())

	if username != "" && g.presence != nil {
		if err := g.presence.Online(c.Request.Context(), username, client.ConnID); err != nil {
			logger.Warnf("[ws] presence online failed user=%s: %v", username, err)
		}
	}

	g.readLoop(client)

	// The connection removes itself; the broadcaster never unregisters.
	g.mgr.Unregister(client.ConnID)
	if username != "" && g.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := g.presence.Offline(ctx, username); err != nil {
			logger.Warnf("[ws] presence offline failed user=%s: %v", username, err)
		}
	}
	logger.Infof("[ws] disconnected conn=%s total=%d", client.ConnID, g.mgr.Len())
}

func (g *Gateway) readLoop(client *Client) {
	ws := client.ws
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		// Pong doubles as the presence heartbeat: the key's TTL is renewed
		// for as long as the peer answers pings.
		if client.Username != "" && g.presence != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := g.presence.Online(ctx, client.Username, client.ConnID); err != nil {
				logger.Debug("[ws] presence renew failed user=" + client.Username)
			}
		}
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Inbound frames are drained and ignored; reading is what surfaces
		// close and error conditions.
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debug("[ws] peer closed conn=" + client.ConnID)
			} else {
				logger.Debug("[ws] read error conn=" + client.ConnID)
			}
			return
		}
	}
}
