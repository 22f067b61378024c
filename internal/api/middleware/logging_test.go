package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	out := &syncBuffer{}
	prev := logger.GetLevel()
	logger.SetOutput(out)
	logger.SetLevel(logger.LevelDebug)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(prev)
	})
	return out
}

func newTestEngine(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upgrader := websocket.Upgrader{}
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	router.GET("/closed", func(c *gin.Context) {
		c.String(http.StatusForbidden, "origin not allowed")
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func TestLoggingMiddleware_PlainRequests(t *testing.T) {
	out := captureLogs(t)
	ts := newTestEngine(t)

	resp, err := http.Get(ts.URL + "/ping?verbose=1")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/boom")
	require.NoError(t, err)
	resp.Body.Close()

	logs := out.String()
	require.Contains(t, logs, "[DEBUG] [GET] /ping?verbose=1 - 200")
	require.Contains(t, logs, "[WARN] [GET] /boom - 500")
}

func TestLoggingMiddleware_WebsocketSession(t *testing.T) {
	out := captureLogs(t)
	ts := newTestEngine(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?codec=json", nil)
	require.NoError(t, err)
	require.NotContains(t, out.String(), "/ws", "nothing is logged while the socket is open")
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[INFO] [ws] session /ws?codec=json from")
	}, 2*time.Second, 10*time.Millisecond)
	require.Contains(t, out.String(), "lasted")
}

func TestLoggingMiddleware_RejectedUpgrade(t *testing.T) {
	out := captureLogs(t)
	ts := newTestEngine(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/closed", nil)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[WARN] [ws] upgrade /closed from")
	}, 2*time.Second, 10*time.Millisecond)
	require.Contains(t, out.String(), "rejected: 403")
}
