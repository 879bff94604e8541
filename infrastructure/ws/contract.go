package ws

import "encoding/json"

// Envelope is the frame every socket message travels in, both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEnvelope defers payload decoding until the event name is known.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewEnvelope(event string, data any) *Envelope {
	return &Envelope{
		Event: event,
		Data:  data,
	}
}

func NewSocketError(message string) *Envelope {
	return &Envelope{
		Event: SocketErrorEvent,
		Data:  message,
	}
}
