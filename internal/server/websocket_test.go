package server

import (
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/beetlebugorg/burnview/pkg/session"
	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
)

// serve starts app on a loopback port and returns its address.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return ln.Addr().String()
}

func dialWS(t *testing.T, addr string) *fws.Conn {
	t.Helper()

	var (
		conn *fws.Conn
		err  error
	)
	for i := 0; i < 50; i++ {
		conn, _, err = fws.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
		if err == nil {
			return conn
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("dial: %v", err)
	return nil
}

func readJSON(t *testing.T, conn *fws.Conn, v interface{}) string {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return string(data)
}

func send(t *testing.T, conn *fws.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(fws.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

type wsSnapshot struct {
	SessionID string                 `json:"session_id"`
	Message   string                 `json:"message"`
	Total     float64                `json:"total_area"`
	Rows      []json.RawMessage      `json:"grouped_rows"`
	Selected  bool                   `json:"selected"`
	Attrs     map[string]interface{} `json:"selected_attributes"`
	Point     []float64              `json:"selected_point"`
	Error     string                 `json:"error"`
}

func TestWebSocketRoundTrip(t *testing.T) {
	app, deps := setupApp(t)
	conn := dialWS(t, serve(t, app))
	defer conn.Close()

	var initial wsSnapshot
	raw := readJSON(t, conn, &initial)
	if initial.SessionID == "" {
		t.Fatalf("Expected a session id, got %s", raw)
	}
	if initial.Message != session.NothingSelected || initial.Total != 0 {
		t.Errorf("Unexpected initial snapshot %s", raw)
	}
	if !strings.Contains(raw, `"grouped_rows":[]`) {
		t.Errorf("Expected empty grouped_rows array, got %s", raw)
	}
	if _, ok := deps.Sessions.Get(initial.SessionID); !ok {
		t.Errorf("Expected session %s in the registry", initial.SessionID)
	}

	send(t, conn, `{"type":"viewport","bounds":{"_sw":{"lng":-1,"lat":-1},"_ne":{"lng":5,"lat":5}}}`)
	var vp wsSnapshot
	raw = readJSON(t, conn, &vp)
	if vp.Total != 15 || len(vp.Rows) != 2 {
		t.Errorf("Expected total 15 in 2 rows, got %s", raw)
	}

	send(t, conn, `{"type":`)
	var bad wsSnapshot
	raw = readJSON(t, conn, &bad)
	if bad.Error == "" {
		t.Errorf("Expected an error reply, got %s", raw)
	}

	// The connection survives a malformed message.
	send(t, conn, `{"type":"click","coords":{"lng":0.5,"lat":0.5},"feature":{"props":{"id":"A"}}}`)
	var click wsSnapshot
	raw = readJSON(t, conn, &click)
	if !click.Selected || click.Attrs["id"] != "A" {
		t.Errorf("Expected A selected, got %s", raw)
	}
	if len(click.Point) != 2 || click.Point[0] != 0.5 {
		t.Errorf("Expected point (0.5, 0.5), got %s", raw)
	}
	if click.Total != 15 {
		t.Errorf("Expected click to keep total 15, got %v", click.Total)
	}

	// A click without a coordinate pair keeps the point.
	send(t, conn, `{"type":"click","coords":{"lng":9}}`)
	var partial wsSnapshot
	raw = readJSON(t, conn, &partial)
	if len(partial.Point) != 2 || partial.Point[0] != 0.5 || partial.Point[1] != 0.5 {
		t.Errorf("Expected point unchanged, got %s", raw)
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := deps.Sessions.Get(initial.SessionID); !ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("Expected the session to be removed after disconnect")
}
