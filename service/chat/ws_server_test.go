package chat

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/tools/security"
)

func startGateway(t *testing.T) (*ConnManager, *Broadcaster, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := NewConnManager()
	b := NewBroadcaster(mgr)
	gw := NewGateway(mgr, nil, security.DefaultOptions([]byte("ws-test-secret")), 16)

	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(mgr.Close)

	return mgr, b, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestGatewayDeliversEventsToConnectedClient(t *testing.T) {
	mgr, b, url := startGateway(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return mgr.Len() == 1 },
		2*time.Second, 10*time.Millisecond, "connection registered")

	payload := eventPayload(t, "general", "hello")
	require.NoError(t, b.HandleEvent("chat-messages", nil, payload))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGatewayDeliversAllRoomsToAllClients(t *testing.T) {
	mgr, b, url := startGateway(t)

	connA, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer connA.Close()
	connB, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer connB.Close()

	require.Eventually(t, func() bool { return mgr.Len() == 2 },
		2*time.Second, 10*time.Millisecond)

	// A private-room event reaches every connection; filtering is the
	// client's responsibility.
	payload := eventPayload(t, "alice_bob", "secret-ish")
	require.NoError(t, b.HandleEvent("chat-messages", nil, payload))

	for _, conn := range []*websocket.Conn{connA, connB} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	}
}

func TestGatewayUnregistersOnClose(t *testing.T) {
	mgr, _, url := startGateway(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return mgr.Len() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	// The connection's own read-loop exit removes it from the registry.
	require.Eventually(t, func() bool { return mgr.Len() == 0 },
		2*time.Second, 10*time.Millisecond, "connection unregistered after close")
}
