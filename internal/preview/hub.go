// Package preview mirrors the strip to browsers over websockets.
package preview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/strip"
	"github.com/coreman2200/wordclock/internal/sweep"
)

const writeWait = 200 * time.Millisecond

// Hub is a strip.Driver that broadcasts every shown frame to /ws clients.
// When Next is set frames are forwarded to it as well.
type Hub struct {
	Next strip.Driver
	// Apply handles {"set": {...}} control messages, typically Store.Apply.
	Apply func(key, value string) error

	mu          sync.RWMutex
	wmu         sync.Mutex
	log         zerolog.Logger
	layout      string
	staged      strip.Buffer
	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	sweep       sweep.Kind
	up          websocket.Upgrader
}

func NewHub(count int, layoutName string, log zerolog.Logger) *Hub {
	return &Hub{
		log:         log.With().Str("component", "preview").Logger(),
		layout:      layoutName,
		staged:      strip.NewBuffer(count),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *Hub) SetPixel(i int, c palette.Color) {
	h.mu.Lock()
	h.staged.SetPixel(i, c)
	h.mu.Unlock()
	if h.Next != nil {
		h.Next.SetPixel(i, c)
	}
}

func (h *Hub) Clear() {
	h.mu.Lock()
	h.staged.Clear()
	h.mu.Unlock()
	if h.Next != nil {
		h.Next.Clear()
	}
}

func (h *Hub) Show() error {
	h.mu.Lock()
	h.frameID++
	rgb := h.staged.Bytes(nil, false)
	id := h.frameID
	h.mu.Unlock()

	h.broadcastFrame(id, rgb)
	if h.Next != nil {
		return h.Next.Show()
	}
	return nil
}

func (h *Hub) Signature() string {
	if h.Next != nil {
		return "preview+" + h.Next.Signature()
	}
	return "preview"
}

// Close disconnects every client and closes Next.
func (h *Hub) Close() error {
	h.mu.Lock()
	for c := range h.clients {
		c.Close()
	}
	for c := range h.diagClients {
		c.Close()
	}
	h.clients = map[*websocket.Conn]bool{}
	h.diagClients = map[*websocket.Conn]bool{}
	h.mu.Unlock()
	if h.Next != nil {
		return h.Next.Close()
	}
	return nil
}

// Handler serves /ws, /diag, /control and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return withCORS(mux)
}

// QueueSweep asks the render loop to run k before its next frame.
func (h *Hub) QueueSweep(k sweep.Kind) {
	h.mu.Lock()
	h.sweep = k
	h.mu.Unlock()
}

// TakeSweep returns a queued sweep, once.
func (h *Hub) TakeSweep() sweep.Kind {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := h.sweep
	h.sweep = sweep.None
	return k
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	set := h.clients
	set[conn] = true
	h.mu.Unlock()
	h.sendTopology(conn)
	go h.drain(conn, set)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	set := h.diagClients
	set[conn] = true
	h.mu.Unlock()
	go h.drain(conn, set)
}

// drain reads until the peer goes away, then forgets conn.
func (h *Hub) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		h.mu.Lock()
		delete(set, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.applyControl(msg)
		h.sendTopology(conn)
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    len(h.staged),
		"layout":   h.layout,
		"clients":  len(h.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) applyControl(msg map[string]any) {
	if v, ok := msg["runSweep"].(string); ok {
		k, err := sweep.ParseKind(v)
		if err != nil {
			h.pushDiag(Diagnostic{
				Severity: Warn, Code: "SWEEP.UNKNOWN", Summary: "Unknown sweep name",
				Evidence: map[string]any{"name": v},
			})
		} else {
			h.QueueSweep(k)
			h.pushDiag(Diagnostic{Severity: Info, Code: "SWEEP.QUEUED", Summary: "Sweep queued", Detail: v})
		}
	}
	if set, ok := msg["set"].(map[string]any); ok {
		for k, v := range set {
			if h.Apply == nil {
				h.pushDiag(Diagnostic{Severity: Warn, Code: "SETTINGS.READONLY", Summary: "Settings cannot be changed here"})
				break
			}
			if err := h.Apply(k, fmt.Sprint(v)); err != nil {
				h.log.Warn().Err(err).Str("key", k).Msg("control rejected")
				h.pushDiag(Diagnostic{Severity: Err, Code: "SETTINGS.INVALID", Summary: "Setting rejected", Detail: err.Error()})
				continue
			}
			h.log.Info().Str("key", k).Interface("value", v).Msg("setting changed")
		}
	}
}

func (h *Hub) sendTopology(conn *websocket.Conn) {
	h.mu.RLock()
	top := map[string]any{
		"count":  len(h.staged),
		"layout": h.layout,
		"driver": h.Signature(),
	}
	h.mu.RUnlock()
	b, _ := json.Marshal(top)
	h.write(conn, b)
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (h *Hub) broadcastFrame(id uint64, rgb []byte) {
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		if err := h.write(c, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (h *Hub) pushDiag(d Diagnostic) {
	b, _ := json.Marshal(d)
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.diagClients))
	for c := range h.diagClients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		_ = h.write(c, b)
	}
}

// write serializes writers, a websocket connection allows only one.
func (h *Hub) write(c *websocket.Conn, b []byte) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, b)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		next.ServeHTTP(w, r)
	})
}
