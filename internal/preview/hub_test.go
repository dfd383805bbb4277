package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/strip"
	"github.com/coreman2200/wordclock/internal/sweep"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesBroadcast(t *testing.T) {
	next := &strip.Recorder{Count: 4}
	h := NewHub(4, "horizontal", zerolog.Nop())
	h.Next = next
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	c := dial(t, srv, "/ws")
	var top map[string]any
	readJSON(t, c, &top)
	assert.Equal(t, float64(4), top["count"])
	assert.Equal(t, "horizontal", top["layout"])
	assert.Equal(t, "preview+recorder", top["driver"])

	h.Clear()
	h.SetPixel(1, palette.Color{R: 10, G: 20, B: 30})
	h.SetPixel(9, palette.Color{R: 255})
	require.NoError(t, h.Show())

	var f frame
	readJSON(t, c, &f)
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{0, 0, 0, 10, 20, 30, 0, 0, 0, 0, 0, 0}, f.RGB)
	assert.Equal(t, 1, next.Frames)
	assert.Equal(t, palette.Color{R: 10, G: 20, B: 30}, next.Last()[1])
}

func TestShowForwardsError(t *testing.T) {
	h := NewHub(4, "vertical", zerolog.Nop())
	h.Next = &strip.Recorder{Count: 4, ShowErr: errors.New("no spi")}
	assert.Error(t, h.Show())
	assert.Equal(t, "preview", NewHub(1, "", zerolog.Nop()).Signature())
}

func TestHealth(t *testing.T) {
	h := NewHub(115, "vertical", zerolog.Nop())
	require.NoError(t, h.Show())
	require.NoError(t, h.Show())

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["frame_id"])
	assert.Equal(t, float64(115), resp["count"])
	assert.Equal(t, "vertical", resp["layout"])
}

func TestControl(t *testing.T) {
	applied := map[string]string{}
	h := NewHub(115, "horizontal", zerolog.Nop())
	h.Apply = func(k, v string) error {
		if k == "brightness" && v == "999" {
			return errors.New("out of range")
		}
		applied[k] = v
		return nil
	}
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	d := dial(t, srv, "/diag")
	c := dial(t, srv, "/control")
	// the diag client is registered once its upgrade returned
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.diagClients) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(map[string]any{"runSweep": "corners", "set": map[string]any{"color": 3}}))
	var top map[string]any
	readJSON(t, c, &top)
	assert.Equal(t, sweep.Corners, h.TakeSweep())
	assert.Equal(t, sweep.None, h.TakeSweep())
	assert.Equal(t, map[string]string{"color": "3"}, applied)

	var dg Diagnostic
	readJSON(t, d, &dg)
	assert.Equal(t, "SWEEP.QUEUED", dg.Code)

	require.NoError(t, c.WriteJSON(map[string]any{"set": map[string]any{"brightness": 999}}))
	readJSON(t, c, &top)
	readJSON(t, d, &dg)
	assert.Equal(t, Err, dg.Severity)
	assert.Equal(t, "SETTINGS.INVALID", dg.Code)
}

func TestCloseWhileClientsLeave(t *testing.T) {
	h := NewHub(4, "horizontal", zerolog.Nop())
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	count := func() (int, int) {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients), len(h.diagClients)
	}

	c := dial(t, srv, "/ws")
	var top map[string]any
	readJSON(t, c, &top)
	dial(t, srv, "/diag")
	require.Eventually(t, func() bool {
		ws, diag := count()
		return ws == 1 && diag == 1
	}, time.Second, 10*time.Millisecond)

	// Close swaps the sets while the drain goroutines are still reading
	require.NoError(t, h.Close())
	ws, diag := count()
	assert.Zero(t, ws)
	assert.Zero(t, diag)

	// a late client lands in the new set and leaves it again
	late := dial(t, srv, "/ws")
	readJSON(t, late, &top)
	require.Eventually(t, func() bool { ws, _ := count(); return ws == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, late.Close())
	require.Eventually(t, func() bool { ws, _ := count(); return ws == 0 }, time.Second, 10*time.Millisecond)
}

func TestQueueSweep(t *testing.T) {
	h := NewHub(4, "horizontal", zerolog.Nop())
	assert.Equal(t, sweep.None, h.TakeSweep())
	h.QueueSweep(sweep.Rows)
	h.QueueSweep(sweep.Index)
	assert.Equal(t, sweep.Index, h.TakeSweep())
	assert.Equal(t, sweep.None, h.TakeSweep())
}
