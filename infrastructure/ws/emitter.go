package ws

import (
	"go.uber.org/zap"

	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
)

// Emitter fans an event out to every connection currently joined to a room.
// Delivery is best-effort and isolated per connection: a slow or dead
// recipient costs its own event, never anyone else's. There is no ack, no
// retry and no ordering guarantee across recipients; per connection, events
// arrive in the order Emit was called.
//
// This is the entry point the HTTP layer holds a direct reference to.
type Emitter struct {
	registry *Registry
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewEmitter(registry *Registry, logger *logger.Logger, metrics *metrics.Metrics) *Emitter {
	return &Emitter{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Emit pushes (event, payload) to every member of the room. Fire-and-forget:
// it never returns an error, and an empty room performs zero sends.
func (e *Emitter) Emit(roomID, event string, payload any) {
	e.deliver(e.registry.Resolve(roomID), event, payload, nil)
}

// EmitExcept behaves like Emit but filters one connection out of the
// recipient snapshot. Used for sender-excluded rebroadcasts such as typing
// indicators.
func (e *Emitter) EmitExcept(roomID, event string, payload any, except *Client) {
	e.deliver(e.registry.Resolve(roomID), event, payload, except)
}

func (e *Emitter) deliver(clients []*Client, event string, payload any, except *Client) {
	if len(clients) == 0 {
		return
	}

	env := NewEnvelope(event, payload)
	for _, c := range clients {
		if c == except {
			continue
		}
		if c.enqueue(env) {
			e.metrics.EventsEmitted.WithLabelValues(event).Inc()
			continue
		}

		// Buffer full or connection gone mid-snapshot. Treated as "never
		// delivered"; the remaining recipients are unaffected.
		e.metrics.EventsDropped.Inc()
		e.logger.Warn("dropped event for connection",
			zap.String("event", event),
			zap.String("connectionID", c.ID),
			zap.String("userID", c.UserID),
		)
	}
}
