package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"robotsline.dev/internal/observerproto"
	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/materials"
	"robotsline.dev/internal/sim/tuning"
)

// Server streams one ROUND frame per simulated second to every connected
// observer. It implements factory.RoundObserver; the simulation stays
// unaware of the transport.
type Server struct {
	runID          string
	settingsDigest string
	log            *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu       sync.Mutex
	lastTick uint64
	subs     map[uint64]chan []byte
}

func NewServer(runID string, settings tuning.Settings, logger *log.Logger) *Server {
	return &Server{
		runID:          runID,
		settingsDigest: settings.Digest(),
		log:            logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		subs: make(map[uint64]chan []byte),
	}
}

// OnRound fans the post-round frame out to every subscriber. A subscriber
// that cannot keep up loses frames rather than stalling the simulation.
func (s *Server) OnRound(snap factory.Snapshot, applied []commands.Record, digest string) {
	s.broadcast(snap.Tick, observerproto.NewRoundMsg(snap, applied, digest))
}

// OnGameOver sends the terminal frame.
func (s *Server) OnGameOver(tick uint64, robots int) {
	s.broadcast(tick, observerproto.GameOverMsg{
		Type:            "GAME_OVER",
		ProtocolVersion: observerproto.Version,
		Tick:            tick,
		Robots:          robots,
	})
}

func (s *Server) broadcast(tick uint64, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Printf("observer: marshal: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = tick
	for id, ch := range s.subs {
		select {
		case ch <- b:
		default:
			s.log.Printf("observer: session %d lagging, dropping frame", id)
		}
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		var locations []string
		for _, loc := range materials.All() {
			locations = append(locations, string(loc))
		}
		s.mu.Lock()
		tick := s.lastTick
		s.mu.Unlock()

		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			RunID:           s.runID,
			Tick:            tick,
			SettingsDigest:  s.settingsDigest,
			Locations:       locations,
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := s.nextID.Add(1)
		out := make(chan []byte, 64)
		s.mu.Lock()
		s.subs[sid] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.subs, sid)
			s.mu.Unlock()
		}()

		// Writer goroutine.
		done := make(chan struct{})
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-done:
					writeErr <- nil
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: only keepalives and repeated SUBSCRIBEs are expected.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
