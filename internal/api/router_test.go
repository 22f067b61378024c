package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/api/handlers"
	"github.com/AryanXCode646/Karyakshetra/internal/journal"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	relayws "github.com/AryanXCode646/Karyakshetra/internal/websocket"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testRelay struct {
	hub *relay.Hub
	ts  *httptest.Server
}

func newTestRelay(t *testing.T, origins []string, withJournal bool) *testRelay {
	t.Helper()

	var (
		recorder relay.SaveRecorder
		saves    handlers.SaveLister
	)
	if withJournal {
		j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = j.Close() })
		recorder, saves = j, j
	}

	hub := relay.NewHub(relay.NewRegistry(nil), relay.NewDocumentStore(), relay.Options{Recorder: recorder})
	require.NoError(t, hub.Init())

	router := NewRouter(Deps{
		Hub:            hub,
		Sockets:        relayws.NewServer(hub, relayws.Options{AllowedOrigins: origins}),
		Saves:          saves,
		AllowedOrigins: origins,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		hub.Shutdown()
	})
	return &testRelay{hub: hub, ts: ts}
}

func (r *testRelay) getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(r.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (r *testRelay) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(r.ts.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// init + presence
	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}
	return conn
}

func TestRouter_RootBanner(t *testing.T) {
	r := newTestRelay(t, nil, false)

	resp, err := http.Get(r.ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "collaboration relay")
}

func TestRouter_SocketOnRootAndWS(t *testing.T) {
	r := newTestRelay(t, nil, false)

	a := r.dial(t, "/")
	r.dial(t, "/ws")

	var presence handlers.PresenceResponse
	require.Equal(t, http.StatusOK, r.getJSON(t, "/v1/presence", &presence))
	require.Len(t, presence.Users, 2)

	require.NoError(t, a.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"code_change","path":"src/app.js","content":"let x","version":9}`)))

	require.Eventually(t, func() bool {
		var docs handlers.DocumentsResponse
		r.getJSON(t, "/v1/documents", &docs)
		return len(docs.Documents) == 1 &&
			docs.Documents[0].Path == "src/app.js" &&
			docs.Documents[0].Version == 9 &&
			docs.Documents[0].Size == 5
	}, 2*time.Second, 10*time.Millisecond)

	var health handlers.HealthResponse
	require.Equal(t, http.StatusOK, r.getJSON(t, "/v1/health", &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, 2, health.Clients)
	require.Equal(t, 1, health.Documents)
}

func TestRouter_SavesWithoutJournal(t *testing.T) {
	r := newTestRelay(t, nil, false)

	var saves handlers.SavesResponse
	require.Equal(t, http.StatusOK, r.getJSON(t, "/v1/saves", &saves))
	require.NotNil(t, saves.Saves)
	require.Empty(t, saves.Saves)

	require.Equal(t, http.StatusBadRequest, r.getJSON(t, "/v1/saves?limit=zero", nil))
}

func TestRouter_SavesFromJournal(t *testing.T) {
	r := newTestRelay(t, nil, true)
	conn := r.dial(t, "/")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"file_save","path":"notes.md","content":"# hi"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := wire.JSON.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, wire.KindFileSaved, env.Type)

	require.Eventually(t, func() bool {
		var saves handlers.SavesResponse
		r.getJSON(t, "/v1/saves?limit=5", &saves)
		return len(saves.Saves) == 1 && saves.Saves[0].Path == "notes.md" && saves.Saves[0].Size == 4
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_CORSAllowList(t *testing.T) {
	r := newTestRelay(t, []string{"http://editor.local"}, false)

	req, err := http.NewRequest(http.MethodGet, r.ts.URL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req.Header.Set("Origin", "http://editor.local")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "http://editor.local", resp.Header.Get("Access-Control-Allow-Origin"))
}
