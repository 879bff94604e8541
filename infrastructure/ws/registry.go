package ws

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Registry is the authoritative in-memory mapping between identities, live
// connections and the rooms those connections joined. Two room-key families
// share the same map: identity-rooms keyed by user id (auto-joined on
// admission, used for direct per-user notifications) and chat-rooms keyed by
// conversation id (joined on client request).
//
// All state is transient. Nothing survives a restart; clients rejoin rooms
// after reconnecting. The registry performs no authorization: callers check
// conversation membership before asking for a Join.
type Registry struct {
	mu         sync.RWMutex
	identities map[string]mapset.Set[*Client]
	rooms      map[string]mapset.Set[*Client]
	joined     map[*Client]mapset.Set[string]
}

func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[string]mapset.Set[*Client]),
		rooms:      make(map[string]mapset.Set[*Client]),
		joined:     make(map[*Client]mapset.Set[string]),
	}
}

// Admit registers an authenticated connection and auto-joins it to the
// identity-room keyed by its user id. Admitting the same connection twice is
// a no-op: a connection is admitted exactly once in its lifetime.
func (r *Registry) Admit(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.joined[c]; ok {
		return
	}

	conns, ok := r.identities[c.UserID]
	if !ok {
		conns = mapset.NewThreadUnsafeSet[*Client]()
		r.identities[c.UserID] = conns
	}
	conns.Add(c)

	r.joined[c] = mapset.NewThreadUnsafeSet[string]()
	r.joinLocked(c, c.UserID)
}

// Join adds the connection to a room. Joining twice is a no-op, as is
// joining on a connection the registry does not know (it already
// disconnected; such races are expected and tolerated silently).
func (r *Registry) Join(c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.joined[c]; !ok {
		return
	}
	r.joinLocked(c, roomID)
}

func (r *Registry) joinLocked(c *Client, roomID string) {
	room, ok := r.rooms[roomID]
	if !ok {
		room = mapset.NewThreadUnsafeSet[*Client]()
		r.rooms[roomID] = room
	}
	room.Add(c)
	r.joined[c].Add(roomID)
}

// Leave removes the connection from a room. Unknown connections and rooms
// are no-ops, not errors.
func (r *Registry) Leave(c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.joined[c]
	if !ok {
		return
	}
	rooms.Remove(roomID)
	r.leaveRoomLocked(c, roomID)
}

// LeaveAll removes the connection from every room and forgets it entirely.
// Reports whether the connection was known; repeated calls return false.
func (r *Registry) LeaveAll(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.joined[c]
	if !ok {
		return false
	}

	rooms.Each(func(roomID string) bool {
		r.leaveRoomLocked(c, roomID)
		return false
	})
	delete(r.joined, c)

	if conns, ok := r.identities[c.UserID]; ok {
		conns.Remove(c)
		if conns.Cardinality() == 0 {
			delete(r.identities, c.UserID)
		}
	}

	return true
}

func (r *Registry) leaveRoomLocked(c *Client, roomID string) {
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	room.Remove(c)
	if room.Cardinality() == 0 {
		delete(r.rooms, roomID)
	}
}

// Resolve returns a snapshot of the connections currently joined to a room.
// An empty slice means the recipients are simply offline, not an error.
// Connections joining after the snapshot is taken miss in-flight broadcasts.
func (r *Registry) Resolve(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return room.ToSlice()
}

// ConnectionCount reports the number of admitted connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.joined)
}

// DisconnectAll closes every admitted connection and resets the registry.
// Used on shutdown.
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.joined))
	for c := range r.joined {
		clients = append(clients, c)
	}
	r.identities = make(map[string]mapset.Set[*Client])
	r.rooms = make(map[string]mapset.Set[*Client])
	r.joined = make(map[*Client]mapset.Set[string])
	r.mu.Unlock()

	// Closing happens outside the lock; Close never touches the registry.
	for _, c := range clients {
		c.Close()
	}
}
