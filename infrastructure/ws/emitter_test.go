package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhq/banter/infrastructure/metrics"
)

func newTestEmitter() (*Emitter, *Registry) {
	registry := NewRegistry()
	return NewEmitter(registry, testLogger(), metrics.New()), registry
}

// drain pops every buffered envelope without blocking.
func drain(c *Client) []*Envelope {
	var out []*Envelope
	for {
		select {
		case env := <-c.send:
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestEmitToEmptyRoomIsNoOp(t *testing.T) {
	emitter, _ := newTestEmitter()

	emitter.Emit("nobody-home", MessageReceivedEvent, "payload")
}

func TestEmitDeliversToRoomMembersOnly(t *testing.T) {
	emitter, registry := newTestEmitter()

	member := newTestClient("user-1")
	outsider := newTestClient("user-2")
	registry.Admit(member)
	registry.Admit(outsider)
	registry.Join(member, "chat-1")

	emitter.Emit("chat-1", NewChatEvent, "hello")

	got := drain(member)
	require.Len(t, got, 1)
	assert.Equal(t, NewChatEvent, got[0].Event)
	assert.Equal(t, "hello", got[0].Data)

	assert.Empty(t, drain(outsider))
}

func TestEmitReachesEveryDeviceOfAUser(t *testing.T) {
	emitter, registry := newTestEmitter()

	phone := newTestClient("user-1")
	laptop := newTestClient("user-1")
	registry.Admit(phone)
	registry.Admit(laptop)

	emitter.Emit("user-1", MessageReceivedEvent, "direct")

	assert.Len(t, drain(phone), 1)
	assert.Len(t, drain(laptop), 1)
}

func TestEmitExceptSkipsTheSender(t *testing.T) {
	emitter, registry := newTestEmitter()

	sender := newTestClient("user-1")
	receiver := newTestClient("user-2")
	registry.Admit(sender)
	registry.Admit(receiver)
	registry.Join(sender, "chat-1")
	registry.Join(receiver, "chat-1")

	emitter.EmitExcept("chat-1", TypingEvent, "chat-1", sender)

	assert.Empty(t, drain(sender))
	got := drain(receiver)
	require.Len(t, got, 1)
	assert.Equal(t, TypingEvent, got[0].Event)
}

func TestEmitDropsForClosedConnectionWithoutAffectingOthers(t *testing.T) {
	emitter, registry := newTestEmitter()

	dead := newTestClient("user-1")
	alive := newTestClient("user-2")
	registry.Admit(dead)
	registry.Admit(alive)
	registry.Join(dead, "chat-1")
	registry.Join(alive, "chat-1")

	dead.Close()

	emitter.Emit("chat-1", MessageReceivedEvent, "still delivered")

	assert.Empty(t, drain(dead))
	assert.Len(t, drain(alive), 1)
}

func TestEmitDropsWhenSendBufferIsFull(t *testing.T) {
	emitter, registry := newTestEmitter()

	slow := newTestClient("user-1")
	registry.Admit(slow)

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, slow.enqueue(NewEnvelope(MessageReceivedEvent, i)))
	}

	// Beyond capacity the event is dropped, not blocked on.
	emitter.Emit("user-1", MessageReceivedEvent, "overflow")

	assert.Len(t, drain(slow), sendBufferSize)
}

func TestEmitPreservesPerConnectionOrder(t *testing.T) {
	emitter, registry := newTestEmitter()

	c := newTestClient("user-1")
	registry.Admit(c)

	emitter.Emit("user-1", MessageReceivedEvent, 1)
	emitter.Emit("user-1", MessageReceivedEvent, 2)
	emitter.Emit("user-1", MessageReceivedEvent, 3)

	got := drain(c)
	require.Len(t, got, 3)
	assert.Equal(t, []any{1, 2, 3}, []any{got[0].Data, got[1].Data, got[2].Data})
}
