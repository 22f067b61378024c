package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// DefaultMaxMessageBytes bounds a single inbound frame. code_change carries
// whole documents, so the limit is sized for large source files.
const DefaultMaxMessageBytes = 64 << 20

// Options configures the websocket transport.
type Options struct {
	// AllowedOrigins restricts browser origins. Empty or "*" allows all.
	AllowedOrigins []string
	// SendQueueSize bounds each connection's outbound queue.
	SendQueueSize int
	// MaxMessageBytes limits inbound frame size. A larger frame cannot be
	// skipped: the connection is closed with status 1009.
	MaxMessageBytes int64
	// PingInterval is how often idle connections are pinged. A peer that
	// stays silent for two intervals is dropped.
	PingInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	return o
}

// Server upgrades HTTP requests to websocket connections and pumps envelopes
// between them and the relay hub.
type Server struct {
	hub      *relay.Hub
	upgrader websocket.Upgrader
	opts     Options
}

// NewServer creates a websocket transport for hub.
func NewServer(hub *relay.Hub, opts Options) *Server {
	opts = opts.withDefaults()
	return &Server{
		hub:      hub,
		upgrader: makeUpgrader(opts.AllowedOrigins),
		opts:     opts,
	}
}

// makeUpgrader creates a WebSocket upgrader with origin checking.
func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originSet[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		Subprotocols:    []string{wire.CodecJSON, wire.CodecMsgPack},
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// HandleWebSocket is the gin handler for the relay endpoint.
func (s *Server) HandleWebSocket(c *gin.Context) {
	s.ServeHTTP(c.Writer, c.Request)
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("codec")
	if _, ok := wire.CodecByName(requested); !ok {
		http.Error(w, "unsupported codec", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("[ws] upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	name := requested
	if name == "" {
		name = conn.Subprotocol()
	}
	codec, _ := wire.CodecByName(name)

	c := newConnection(conn, codec, s.opts.SendQueueSize)
	go c.writePump(s.opts.PingInterval)

	id, err := s.hub.Connect(c)
	if err != nil {
		logger.Warnf("[ws] rejecting connection from %s: %v", r.RemoteAddr, err)
		c.Close()
		return
	}
	c.setID(id)
	logger.Debugf("[ws] %s connected from %s (codec=%s)", id, r.RemoteAddr, codec.Name())

	s.readLoop(c, id)
}

// readLoop feeds inbound frames to the hub in arrival order until the peer
// goes away. Undecodable frames are logged and skipped.
func (s *Server) readLoop(c *connection, id relay.ClientID) {
	defer func() {
		if err := s.hub.Disconnect(id); err != nil {
			logger.Debugf("[ws] disconnect of %s after hub stop: %v", id, err)
			c.Close()
		}
		c.conn.Close()
	}()

	pongWait := 2 * s.opts.PingInterval
	c.conn.SetReadLimit(s.opts.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if errors.Is(err, websocket.ErrReadLimit) {
			logger.Warnf("[ws] %s sent a frame over %d bytes, closing", id, s.opts.MaxMessageBytes)
			return
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Debugf("[ws] read from %s ended: %v", id, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := decode(messageType, data)
		if err != nil {
			logger.Warnf("[ws] dropping undecodable frame from %s: %v", id, err)
			continue
		}

		in, ok := wire.ParseInbound(env)
		if !ok {
			logger.Debugf("[ws] ignoring %q envelope from %s", env.Type, id)
			continue
		}

		if err := s.hub.Deliver(id, in); err != nil {
			logger.Debugf("[ws] hub refused message from %s: %v", id, err)
			return
		}
	}
}
