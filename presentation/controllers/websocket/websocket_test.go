package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/banterhq/banter/infrastructure/token"
	"github.com/banterhq/banter/infrastructure/ws"
)

type handshakeEnv struct {
	server   *httptest.Server
	tokens   *token.Manager
	registry *ws.Registry
}

func newHandshakeEnv(t *testing.T) *handshakeEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret-for-tests",
			RefreshTokenSecret: "refresh-secret-for-tests",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Cors: config.CorsConfig{AllowOrigins: "*"},
	}
	log := &logger.Logger{Log: zap.NewNop()}
	m := metrics.New()
	registry := ws.NewRegistry()
	emitter := ws.NewEmitter(registry, log, m)
	router := ws.NewRouter(registry, emitter, log, m)
	tokens := token.NewManager(cfg)

	engine := gin.New()
	controller := NewWebSocketController(router, tokens, cfg, log)
	engine.GET("/ws", controller.HandleConnection)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	t.Cleanup(registry.DisconnectAll)

	return &handshakeEnv{server: server, tokens: tokens, registry: registry}
}

func (e *handshakeEnv) dial(t *testing.T, query string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws" + query
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *gorilla.Conn) ws.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env ws.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestHandshakeWithValidToken(t *testing.T) {
	env := newHandshakeEnv(t)

	accessToken, err := env.tokens.IssueAccessToken("user-1")
	require.NoError(t, err)

	conn := env.dial(t, "?token="+accessToken)

	env1 := readEnvelope(t, conn)
	assert.Equal(t, "connected", env1.Event)

	require.Eventually(t, func() bool {
		return env.registry.ConnectionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandshakeWithoutToken(t *testing.T) {
	env := newHandshakeEnv(t)

	// The upgrade itself succeeds; the rejection arrives on the socket.
	conn := env.dial(t, "")

	env1 := readEnvelope(t, conn)
	assert.Equal(t, "socketError", env1.Event)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var discard ws.Envelope
	assert.Error(t, conn.ReadJSON(&discard))

	assert.Equal(t, 0, env.registry.ConnectionCount())
}

func TestHandshakeWithGarbageToken(t *testing.T) {
	env := newHandshakeEnv(t)

	conn := env.dial(t, "?token=not.a.token")

	env1 := readEnvelope(t, conn)
	assert.Equal(t, "socketError", env1.Event)
	assert.Equal(t, 0, env.registry.ConnectionCount())
}

func TestJoinChatOverTheWire(t *testing.T) {
	env := newHandshakeEnv(t)

	accessToken, err := env.tokens.IssueAccessToken("user-1")
	require.NoError(t, err)
	conn := env.dial(t, "?token="+accessToken)
	readEnvelope(t, conn) // connected

	require.NoError(t, conn.WriteJSON(ws.Envelope{Event: "joinChat", Data: "chat-42"}))

	require.Eventually(t, func() bool {
		return len(env.registry.Resolve("chat-42")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTypingFanOutBetweenConnections(t *testing.T) {
	env := newHandshakeEnv(t)

	aliceToken, err := env.tokens.IssueAccessToken("alice")
	require.NoError(t, err)
	bobToken, err := env.tokens.IssueAccessToken("bob")
	require.NoError(t, err)

	alice := env.dial(t, "?token="+aliceToken)
	bob := env.dial(t, "?token="+bobToken)
	readEnvelope(t, alice)
	readEnvelope(t, bob)

	require.NoError(t, alice.WriteJSON(ws.Envelope{Event: "joinChat", Data: "chat-42"}))
	require.NoError(t, bob.WriteJSON(ws.Envelope{Event: "joinChat", Data: "chat-42"}))
	require.Eventually(t, func() bool {
		return len(env.registry.Resolve("chat-42")) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteJSON(ws.Envelope{Event: "typing", Data: "chat-42"}))

	got := readEnvelope(t, bob)
	assert.Equal(t, "typing", got.Event)
	assert.Equal(t, "chat-42", got.Data)
}
