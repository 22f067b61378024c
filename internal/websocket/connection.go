package websocket

import (
	"sync"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// connection adapts one websocket to relay.Sink. Outbound envelopes go through
// a bounded queue drained by writePump; a full queue means "not writable".
type connection struct {
	conn  *websocket.Conn
	codec wire.Codec
	send  chan wire.Envelope

	mu     sync.Mutex
	closed bool
	id     relay.ClientID
}

func newConnection(conn *websocket.Conn, codec wire.Codec, queueSize int) *connection {
	return &connection{
		conn:  conn,
		codec: codec,
		send:  make(chan wire.Envelope, queueSize),
	}
}

// Send implements relay.Sink.
func (c *connection) Send(env wire.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Close implements relay.Sink.
func (c *connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *connection) setID(id relay.ClientID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

func (c *connection) clientID() relay.ClientID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *connection) messageType() int {
	if c.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump drains the outbound queue until it is closed, pinging the peer
// while idle. It owns all writes to the socket.
func (c *connection) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := c.codec.Marshal(env)
			if err != nil {
				logger.Errorf("[ws] failed to encode %s for %s: %v", env.Type, c.clientID(), err)
				continue
			}
			if err := c.conn.WriteMessage(c.messageType(), data); err != nil {
				logger.Debugf("[ws] write to %s failed: %v", c.clientID(), err)
				return
			}
			logger.Tracef("[ws] -> %s %s", c.clientID(), env.Type)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debugf("[ws] ping to %s failed: %v", c.clientID(), err)
				return
			}
		}
	}
}

// decode picks the codec from the frame type: text frames are JSON and binary
// frames are msgpack, independent of the codec used for replies.
func decode(messageType int, data []byte) (wire.Envelope, error) {
	if messageType == websocket.BinaryMessage {
		return wire.MsgPack.Unmarshal(data)
	}
	return wire.JSON.Unmarshal(data)
}
