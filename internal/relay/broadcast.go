package relay

import (
	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
)

// Audience selects who receives a broadcast.
type Audience int

const (
	// AudienceOthers delivers to every client except the sender.
	AudienceOthers Audience = iota
	// AudienceAll delivers to every client, the sender included.
	AudienceAll
)

func (a Audience) String() string {
	switch a {
	case AudienceOthers:
		return "others"
	case AudienceAll:
		return "all"
	default:
		return "unknown"
	}
}

// Broadcaster delivers envelopes to registered clients. Delivery is best
// effort: a sink that refuses the envelope is skipped and never retried.
type Broadcaster struct {
	registry *Registry
}

// NewBroadcaster creates a broadcaster over registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// Broadcast sends env to the audience relative to senderID and returns how
// many sinks accepted it.
func (b *Broadcaster) Broadcast(senderID ClientID, env wire.Envelope, audience Audience) int {
	delivered := 0
	for _, client := range b.registry.All() {
		if audience == AudienceOthers && client.ID == senderID {
			continue
		}
		if client.Sink == nil || !client.Sink.Send(env) {
			logger.Tracef("[relay] skipped %s for client %s: not writable", env.Type, client.ID)
			continue
		}
		delivered++
	}
	return delivered
}

// Unicast sends env to exactly one client. It returns false when the client is
// gone or not writable.
func (b *Broadcaster) Unicast(id ClientID, env wire.Envelope) bool {
	client, ok := b.registry.Lookup(id)
	if !ok || client.Sink == nil {
		return false
	}
	if !client.Sink.Send(env) {
		logger.Tracef("[relay] skipped %s for client %s: not writable", env.Type, id)
		return false
	}
	return true
}
