package relay

import "github.com/AryanXCode646/Karyakshetra/internal/wire"

// Presence publishes the connected client list.
type Presence struct {
	registry    *Registry
	broadcaster *Broadcaster
}

// NewPresence creates a presence publisher.
func NewPresence(registry *Registry, broadcaster *Broadcaster) *Presence {
	return &Presence{registry: registry, broadcaster: broadcaster}
}

// Publish sends the current id list to every client and returns it.
func (p *Presence) Publish() []string {
	users := p.registry.IDs()
	p.broadcaster.Broadcast("", wire.NewUserList(users), AudienceAll)
	return users
}
