package ws

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStream(t *testing.T, status int, reply string) (*websocket.Conn, string, *launcher.Launcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(upstream.Close)

	inv := invoker.New(client.NewClient(client.DefaultOptions()), nil)
	l := launcher.New(store.NewPreferences(store.NewMemoryStore()), inv, nil)
	h := NewHandler(l, monitoring.NewMetrics(), nil)
	h.clock = 10 * time.Millisecond

	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	pageID := id.NewPageID()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream?pageId=" + pageID.String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, upstream.URL, l
}

// readUntil reads messages until one of type want arrives, returning it and
// every message read on the way.
func readUntil(t *testing.T, conn *websocket.Conn, want string) (map[string]any, []map[string]any) {
	t.Helper()
	var seen []map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		seen = append(seen, msg)
		if msg["type"] == want {
			return msg, seen
		}
	}
}

func TestStreamClockAndLaunch(t *testing.T) {
	conn, base, _ := newStream(t, http.StatusOK, "<h1>Widget</h1>")

	_, _ = readUntil(t, conn, "clock")

	require.NoError(t, conn.WriteJSON(gin.H{
		"type": "launch",
		"form": gin.H{"functionId": "fn", "baseUrl": base, "apiKey": "k"},
	}))

	page, seen := readUntil(t, conn, "page")
	assert.Equal(t, "<h1>Widget</h1>", page["html"])
	assert.Equal(t, "raw_html", page["shape"])

	var stages []float64
	for _, msg := range seen {
		if msg["type"] == "progress" {
			stages = append(stages, msg["stage"].(float64))
		}
	}
	assert.Equal(t, []float64{30, 60, 90, 100}, stages)
}

func TestStreamLaunchError(t *testing.T) {
	conn, base, _ := newStream(t, http.StatusNotFound, "missing")

	require.NoError(t, conn.WriteJSON(gin.H{
		"type": "launch",
		"form": gin.H{"functionId": "fn", "baseUrl": base},
	}))

	msg, _ := readUntil(t, conn, "error")
	assert.Equal(t, "Error: HTTP 404: missing", msg["message"])
}

func TestStreamPingAndUnknown(t *testing.T) {
	conn, _, _ := newStream(t, http.StatusOK, "")

	require.NoError(t, conn.WriteJSON(gin.H{"type": "ping"}))
	_, _ = readUntil(t, conn, "pong")

	require.NoError(t, conn.WriteJSON(gin.H{"type": "bogus"}))
	msg, _ := readUntil(t, conn, "error")
	assert.Equal(t, "unknown message type", msg["message"])
}
