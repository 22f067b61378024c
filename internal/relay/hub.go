package relay

import (
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
)

var (
	// ErrHubNotStarted is returned when the hub is used before Init.
	ErrHubNotStarted = errors.New("relay: hub not started")
	// ErrHubClosed is returned once Shutdown has been called.
	ErrHubClosed = errors.New("relay: hub closed")
)

// DefaultQueueSize is the capacity of the hub's event queue.
const DefaultQueueSize = 1024

// Options configures a Hub.
type Options struct {
	// QueueSize bounds the event queue. Producers block when it is full.
	QueueSize int
	// Now is the clock used for server assigned versions.
	Now func() time.Time
	// Recorder observes accepted saves. Optional.
	Recorder SaveRecorder
}

// Hub owns the relay state and serializes every mutation on one goroutine.
// Connection handlers feed it events; the loop applies them one at a time, so
// a dispatched message never interleaves with another.
type Hub struct {
	registry    *Registry
	docs        *DocumentStore
	router      *Router
	broadcaster *Broadcaster
	presence    *Presence

	events chan any
	done   chan struct{}
	exited chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

type connectEvent struct {
	sink  Sink
	reply chan ClientID
}

type messageEvent struct {
	sender ClientID
	in     wire.Inbound
}

type disconnectEvent struct {
	id ClientID
}

// NewHub wires the relay components around registry and docs.
func NewHub(registry *Registry, docs *DocumentStore, opts Options) *Hub {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	broadcaster := NewBroadcaster(registry)
	return &Hub{
		registry:    registry,
		docs:        docs,
		router:      NewRouter(docs, opts.Now, opts.Recorder),
		broadcaster: broadcaster,
		presence:    NewPresence(registry, broadcaster),
		events:      make(chan any, size),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
	}
}

// Init starts the dispatch loop. Calling it again is a no-op.
func (h *Hub) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if h.started {
		return nil
	}
	h.started = true
	go h.loop()
	return nil
}

// Shutdown stops the loop, closes every connection sink and drops all state.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	started := h.started
	close(h.done)
	h.mu.Unlock()

	if started {
		<-h.exited
	}

	clients := h.registry.Drain()
	for _, client := range clients {
		if client.Sink != nil {
			client.Sink.Close()
		}
	}
	h.docs.Reset()
	logger.Infof("[relay] hub stopped (%d clients dropped)", len(clients))
}

// Registry exposes the connection registry for read-only introspection.
func (h *Hub) Registry() *Registry { return h.registry }

// Documents exposes the document store for read-only introspection.
func (h *Hub) Documents() *DocumentStore { return h.docs }

// Connect registers sink, sends it its id and publishes presence.
func (h *Hub) Connect(sink Sink) (ClientID, error) {
	reply := make(chan ClientID, 1)
	if err := h.enqueue(connectEvent{sink: sink, reply: reply}); err != nil {
		return "", err
	}
	select {
	case id := <-reply:
		return id, nil
	case <-h.done:
		return "", ErrHubClosed
	}
}

// Deliver queues a decoded request from sender. Requests from one sender are
// applied in the order they are delivered.
func (h *Hub) Deliver(sender ClientID, in wire.Inbound) error {
	return h.enqueue(messageEvent{sender: sender, in: in})
}

// Disconnect unregisters id. Repeated calls are harmless.
func (h *Hub) Disconnect(id ClientID) error {
	return h.enqueue(disconnectEvent{id: id})
}

func (h *Hub) enqueue(evt any) error {
	h.mu.Lock()
	started, closed := h.started, h.closed
	h.mu.Unlock()

	if closed {
		return ErrHubClosed
	}
	if !started {
		return ErrHubNotStarted
	}

	select {
	case h.events <- evt:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) loop() {
	defer close(h.exited)
	for {
		select {
		case <-h.done:
			return
		case evt := <-h.events:
			h.handle(evt)
		}
	}
}

// handle applies one event. A panic is logged and swallowed so that one bad
// message cannot take the loop down.
func (h *Hub) handle(evt any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[relay] recovered from panic handling %T: %v\n%s", evt, r, debug.Stack())
		}
	}()

	switch e := evt.(type) {
	case connectEvent:
		h.handleConnect(e)
	case messageEvent:
		h.handleMessage(e)
	case disconnectEvent:
		h.handleDisconnect(e)
	default:
		logger.Warnf("[relay] unknown event %T", evt)
	}
}

func (h *Hub) handleConnect(e connectEvent) {
	id := h.registry.Register(e.sink)
	e.reply <- id
	logger.Infof("[relay] client connected: %s (%d online)", id, h.registry.Len())

	h.broadcaster.Unicast(id, wire.NewInit(string(id)))
	h.presence.Publish()
}

func (h *Hub) handleMessage(e messageEvent) {
	logger.Tracef("[relay] %s from %s", e.in.Kind(), e.sender)
	h.apply(e.sender, h.router.Dispatch(e.sender, e.in))
}

func (h *Hub) handleDisconnect(e disconnectEvent) {
	client, ok := h.registry.Unregister(e.id)
	if !ok {
		return
	}
	if client.Sink != nil {
		client.Sink.Close()
	}
	logger.Infof("[relay] client disconnected: %s (%d online)", e.id, h.registry.Len())
	h.presence.Publish()
}

func (h *Hub) apply(sender ClientID, res Result) {
	for _, d := range res.Deliveries() {
		if d.IsUnicast() {
			h.broadcaster.Unicast(d.Target(), d.Envelope())
			continue
		}
		h.broadcaster.Broadcast(sender, d.Envelope(), d.Audience())
	}
}
