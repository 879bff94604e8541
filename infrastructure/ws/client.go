package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64

	// Inbound events per second a single connection may produce.
	inboundEventRate  = 20
	inboundEventBurst = 40
)

// Connection lifecycle states. Transitions only move forward; Closed is
// terminal and a reconnect is a brand-new client with no memory of prior
// room joins.
const (
	StateConnecting int32 = iota
	StateAuthenticated
	StateActive
	StateClosed
)

// Client is one live connection owned by the registry for its lifetime. A
// single user may own several concurrent clients (multi-device); each one
// carries its own send buffer.
type Client struct {
	ID     string
	UserID string

	conn    *connWrapper
	send    chan *Envelope
	limiter *rate.Limiter

	state     atomic.Int32
	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn, userID string) *Client {
	c := &Client{
		ID:      uuid.NewString(),
		UserID:  userID,
		conn:    newConnWrapper(conn),
		send:    make(chan *Envelope, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(inboundEventRate), inboundEventBurst),
		closed:  make(chan struct{}),
	}
	c.state.Store(StateConnecting)
	return c
}

func (c *Client) State() int32 {
	return c.state.Load()
}

func (c *Client) setState(s int32) {
	c.state.Store(s)
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		close(c.closed)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// ReadLoop drives the inbound side: it decodes envelopes and hands them to
// the router until the transport dies, then detaches the connection.
func (c *Client) ReadLoop(router *Router) {
	defer func() {
		router.Detach(c)
		c.Close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				router.logReadError(c, err)
			}
			return
		}

		if len(raw) == 0 {
			continue
		}

		if !c.limiter.Allow() {
			router.logThrottled(c)
			continue
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			router.logDecodeError(c, err)
			continue
		}

		router.Dispatch(c, &env)
	}
}

// WriteLoop owns the socket write side: it drains the send buffer and keeps
// the connection alive with pings. Exactly one WriteLoop runs per client.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteControl(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}

// enqueue offers an envelope to the client's send buffer without blocking.
// Reports whether the envelope was accepted.
func (c *Client) enqueue(env *Envelope) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case c.send <- env:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}
