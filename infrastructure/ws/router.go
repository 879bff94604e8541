package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
)

// Router moves a connection through its lifecycle and dispatches inbound
// client events to registry and emitter operations. It performs no
// authorization of room joins beyond the handshake: conversation membership
// is checked by the HTTP layer before a chat id ever reaches a client.
type Router struct {
	registry *Registry
	emitter  *Emitter
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewRouter(registry *Registry, emitter *Emitter, logger *logger.Logger, metrics *metrics.Metrics) *Router {
	return &Router{
		registry: registry,
		emitter:  emitter,
		logger:   logger,
		metrics:  metrics,
	}
}

// Attach admits an authenticated connection: it is registered under its
// identity, auto-joined to its identity-room and told it is connected.
// From here the connection accepts inbound events.
func (r *Router) Attach(c *Client) {
	c.setState(StateAuthenticated)
	r.registry.Admit(c)
	c.setState(StateActive)
	r.metrics.ActiveConnections.Inc()

	c.enqueue(NewEnvelope(ConnectedEvent, nil))

	r.logger.Info("connection admitted",
		zap.String("connectionID", c.ID),
		zap.String("userID", c.UserID),
	)
}

// Detach removes a disconnected connection from every room. Idempotent:
// whichever pump dies first triggers it, later calls find nothing to do.
func (r *Router) Detach(c *Client) {
	if !r.registry.LeaveAll(c) {
		return
	}
	r.metrics.ActiveConnections.Dec()

	r.logger.Info("connection detached",
		zap.String("connectionID", c.ID),
		zap.String("userID", c.UserID),
	)
}

// Dispatch routes one inbound envelope. Unknown events are dropped quietly;
// a chat client misbehaving is not a server error.
func (r *Router) Dispatch(c *Client, env *inboundEnvelope) {
	if c.State() != StateActive {
		return
	}

	switch env.Event {
	case JoinChatEvent:
		chatID, ok := r.decodeChatID(c, env.Data)
		if !ok {
			return
		}
		r.registry.Join(c, chatID)
		r.logger.Debug("connection joined chat room",
			zap.String("connectionID", c.ID),
			zap.String("chatID", chatID),
		)

	case TypingEvent, StopTypingEvent:
		chatID, ok := r.decodeChatID(c, env.Data)
		if !ok {
			return
		}
		// Rebroadcast to the chat-room, excluding the sender's own connection.
		r.emitter.EmitExcept(chatID, env.Event, chatID, c)

	default:
		r.logger.Debug("ignoring unknown inbound event",
			zap.String("event", env.Event),
			zap.String("connectionID", c.ID),
		)
	}
}

func (r *Router) decodeChatID(c *Client, raw json.RawMessage) (string, bool) {
	var chatID string
	if err := json.Unmarshal(raw, &chatID); err != nil || chatID == "" {
		r.logger.Debug("invalid chat id payload", zap.String("connectionID", c.ID))
		return "", false
	}
	return chatID, true
}

func (r *Router) logReadError(c *Client, err error) {
	r.logger.Warn("socket read error",
		zap.String("connectionID", c.ID),
		zap.String("userID", c.UserID),
		zap.Error(err),
	)
}

func (r *Router) logThrottled(c *Client) {
	r.logger.Debug("inbound event throttled", zap.String("connectionID", c.ID))
}

func (r *Router) logDecodeError(c *Client, err error) {
	r.logger.Debug("undecodable inbound frame",
		zap.String("connectionID", c.ID),
		zap.Error(err),
	)
}
