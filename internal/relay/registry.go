package relay

import (
	"sync"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/wire"
	"github.com/google/uuid"
)

// ClientID identifies one live connection. It is connection scoped: a client
// that reconnects gets a new id.
type ClientID string

// Sink is the outbound side of a connection as seen by the relay.
type Sink interface {
	// Send queues env for delivery. It must not block; it returns false when
	// the connection is closed or not currently writable.
	Send(env wire.Envelope) bool
	// Close releases the outbound side. It must be safe to call more than once.
	Close()
}

// Client is a registered connection.
type Client struct {
	ID          ClientID
	Sink        Sink
	ConnectedAt time.Time
}

// Registry maps client ids to their sinks. Iteration order is registration
// order.
type Registry struct {
	mu      sync.RWMutex
	clients map[ClientID]*Client
	order   []ClientID

	newID func() string
	now   func() time.Time
}

// NewRegistry creates an empty registry. A nil newID uses random UUIDs.
func NewRegistry(newID func() string) *Registry {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Registry{
		clients: make(map[ClientID]*Client),
		newID:   newID,
		now:     time.Now,
	}
}

// Register binds sink to a fresh id and returns it. It never fails.
func (r *Registry) Register(sink Sink) ClientID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ClientID(r.newID())
	for {
		if _, taken := r.clients[id]; !taken && id != "" {
			break
		}
		id = ClientID(uuid.NewString())
	}

	r.clients[id] = &Client{ID: id, Sink: sink, ConnectedAt: r.now()}
	r.order = append(r.order, id)
	return id
}

// Unregister removes id. It returns the removed client and true, or false when
// id was not registered (including a second call for the same id).
func (r *Registry) Unregister(id ClientID) (Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[id]
	if !ok {
		return Client{}, false
	}
	delete(r.clients, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *client, true
}

// Lookup returns the client registered under id.
func (r *Registry) Lookup(id ClientID) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[id]
	if !ok {
		return Client{}, false
	}
	return *client, true
}

// All returns a snapshot of every registered client.
func (r *Registry) All() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Client, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.clients[id])
	}
	return result
}

// IDs returns a snapshot of every registered id.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	for i, id := range r.order {
		result[i] = string(id)
	}
	return result
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Drain removes every client and returns them.
func (r *Registry) Drain() []Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Client, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.clients[id])
	}
	r.clients = make(map[ClientID]*Client)
	r.order = nil
	return result
}
