package relay

import "github.com/AryanXCode646/Karyakshetra/internal/wire"

// Delivery describes one outbound emission produced by a router call.
type Delivery struct {
	unicast  bool
	target   ClientID
	audience Audience
	env      wire.Envelope
}

func newUnicast(target ClientID, env wire.Envelope) Delivery {
	return Delivery{unicast: true, target: target, env: env}
}

func newBroadcast(audience Audience, env wire.Envelope) Delivery {
	return Delivery{audience: audience, env: env}
}

// IsUnicast reports whether the envelope goes to Target only.
func (d Delivery) IsUnicast() bool { return d.unicast }

// Target returns the recipient of a unicast delivery.
func (d Delivery) Target() ClientID { return d.target }

// Audience returns who receives a broadcast delivery.
func (d Delivery) Audience() Audience { return d.audience }

// Envelope returns the payload.
func (d Delivery) Envelope() wire.Envelope { return d.env }

// Result is the output of Router.Dispatch.
type Result struct {
	deliveries []Delivery
}

// Deliveries returns the emissions requested by the router, in order.
func (r Result) Deliveries() []Delivery { return r.deliveries }

// Empty reports whether nothing should be sent.
func (r Result) Empty() bool { return len(r.deliveries) == 0 }

func resultOf(deliveries ...Delivery) Result {
	return Result{deliveries: deliveries}
}
