package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"robotsline.dev/internal/observerproto"
	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/tuning"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("run-1", tuning.Default(), log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", s.WSHandler())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestBootstrap(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/v1/observer/bootstrap")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var boot observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&boot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if boot.ProtocolVersion != observerproto.Version {
		t.Fatalf("version = %q", boot.ProtocolVersion)
	}
	if boot.RunID != "run-1" {
		t.Fatalf("run id = %q", boot.RunID)
	}
	if boot.SettingsDigest != tuning.Default().Digest() {
		t.Fatalf("settings digest = %q", boot.SettingsDigest)
	}
	if len(boot.Locations) == 0 {
		t.Fatalf("no locations")
	}
}

func dialObserver(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/observer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRoundFrameReachesSubscriber(t *testing.T) {
	s, ts := testServer(t)
	conn := dialObserver(t, ts)

	sub := observerproto.SubscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: observerproto.Version}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// The subscription is registered asynchronously after the handshake.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.subs)
		s.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := factory.Snapshot{
		Tick:  4,
		Foos:  1,
		Money: "2.00",
		Robots: []factory.RobotView{
			{ID: 1, Status: "Idle", Location: "cafeteria"},
		},
	}
	applied := []commands.Record{{Kind: commands.KindMine, RobotID: 1, Material: "foo"}}
	s.OnRound(snap, applied, "d1")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg observerproto.RoundMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "ROUND" || msg.Tick != 4 {
		t.Fatalf("frame = %+v", msg)
	}
	if msg.Digest != "d1" {
		t.Fatalf("digest = %q", msg.Digest)
	}
	if len(msg.Robots) != 1 || msg.Robots[0].Status != "Idle" {
		t.Fatalf("robots = %+v", msg.Robots)
	}
	if len(msg.Commands) != 1 || msg.Commands[0].Kind != commands.KindMine {
		t.Fatalf("commands = %+v", msg.Commands)
	}
}

func TestHandshakeRequiresSubscribe(t *testing.T) {
	_, ts := testServer(t)
	conn := dialObserver(t, ts)

	if err := conn.WriteJSON(map[string]string{"type": "NOPE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection survived a bad handshake")
	}
}
