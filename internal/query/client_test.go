package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// fakeQueryServer mimics the historical query server: it records every
// request and hands the connection to the test for scripted replies.
type fakeQueryServer struct {
	*httptest.Server
	requests chan Request
	conns    chan *websocket.Conn
}

func newFakeQueryServer(t *testing.T) *fakeQueryServer {
	t.Helper()
	fs := &fakeQueryServer{
		requests: make(chan Request, 16),
		conns:    make(chan *websocket.Conn, 1),
	}
	upgrader := websocket.Upgrader{}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req Request
			if err := json.Unmarshal(data, &req); err == nil {
				fs.requests <- req
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeQueryServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http")
}

func (fs *fakeQueryServer) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("client never connected")
		return nil
	}
}

func (fs *fakeQueryServer) nextRequest(t *testing.T) Request {
	t.Helper()
	select {
	case r := <-fs.requests:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no request received")
		return Request{}
	}
}

func testQueryConfig(url string) config.QueryConfig {
	cfg := config.Default().Query
	cfg.URL = url
	return cfg
}

func bulkMessage(t *testing.T, points ...string) []byte {
	t.Helper()
	return []byte(`{"type":"bulk","data":[` + strings.Join(points, ",") + `]}`)
}

func renders(reg *chart.Registry) chan chart.Snapshot {
	ch := make(chan chart.Snapshot, 16)
	reg.OnRender(func(s chart.Snapshot) { ch <- s })
	return ch
}

func waitRender(t *testing.T, ch chan chart.Snapshot) chart.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("registry never rendered")
		return chart.Snapshot{}
	}
}

func TestClient_ConnectSendsCurrentFilter(t *testing.T) {
	fs := newFakeQueryServer(t)
	reg := chart.NewRegistry()
	client := NewClient(testQueryConfig(fs.wsURL()), reg, logging.Discard())
	ctrl := NewController(client, DefaultFilter(), time.UTC, logging.Discard())
	client.SetOnOpen(ctrl.SendCurrent)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if !client.IsOpen() {
		t.Error("IsOpen() = false after Connect")
	}

	req := fs.nextRequest(t)
	if req.Range != "-1h" || req.Step != "30s" || req.Custom != nil {
		t.Errorf("initial request = %+v, want default range query", req)
	}
}

func TestClient_BulkReplacesCharts(t *testing.T) {
	fs := newFakeQueryServer(t)
	reg := chart.NewRegistry()
	rendered := renders(reg)

	client := NewClient(testQueryConfig(fs.wsURL()), reg, logging.Discard())
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	server := fs.conn(t)

	first := bulkMessage(t,
		`{"field":"temperature","time":"2024-05-01T12:00:00+00:00","value":20.5}`,
		`{"field":"pressure","time":"2024-05-01T12:00:00+00:00","value":1012}`,
	)
	second := bulkMessage(t,
		`{"field":"temperature","time":"2024-05-01T13:00:00+00:00","value":22}`,
		`{"field":"temperature","time":"2024-05-01T13:00:30+00:00","value":22.5}`,
		`{"field":"co2","time":"2024-05-01T13:00:00+00:00","value":400}`,
	)
	if err := server.WriteMessage(websocket.TextMessage, first); err != nil {
		t.Fatalf("write first bulk: %v", err)
	}
	if err := server.WriteMessage(websocket.TextMessage, second); err != nil {
		t.Fatalf("write second bulk: %v", err)
	}

	waitRender(t, rendered)
	snap := waitRender(t, rendered)

	if snap.Revision != 2 {
		t.Errorf("Revision = %d, want 2", snap.Revision)
	}
	temp := reg.Column(telemetry.Temperature)
	if len(temp) != 2 || temp[0].Y != 22 || temp[1].Y != 22.5 {
		t.Errorf("temperature column = %+v, want second bulk only", temp)
	}
	if got := reg.Column(telemetry.Pressure); len(got) != 0 {
		t.Errorf("pressure column = %+v, want cleared by second bulk", got)
	}
}

func TestClient_IgnoresMalformedAndOtherTypes(t *testing.T) {
	fs := newFakeQueryServer(t)
	reg := chart.NewRegistry()
	rendered := renders(reg)

	client := NewClient(testQueryConfig(fs.wsURL()), reg, logging.Discard())
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	server := fs.conn(t)

	for _, msg := range []string{
		`not json at all`,
		`{"type":"status","data":"ok"}`,
		`{"type":"bulk","data":{"not":"an array"}}`,
	} {
		if err := server.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write %q: %v", msg, err)
		}
	}
	if err := server.WriteMessage(websocket.TextMessage, bulkMessage(t,
		`{"field":"light","time":1714564800,"value":512}`,
	)); err != nil {
		t.Fatalf("write bulk: %v", err)
	}

	snap := waitRender(t, rendered)
	if snap.Revision != 1 {
		t.Errorf("Revision = %d, want only the valid bulk rendered", snap.Revision)
	}
	if got := reg.Column(telemetry.Light); len(got) != 1 || got[0].Y != 512 {
		t.Errorf("light column = %+v", got)
	}
	if !client.IsOpen() {
		t.Error("channel closed after malformed message")
	}
}

func TestClient_SendWhenNotOpen(t *testing.T) {
	client := NewClient(testQueryConfig("ws://127.0.0.1:1"), chart.NewRegistry(), logging.Discard())

	err := client.Send(Request{Step: "30s", Range: "-1h"})
	if !errors.Is(err, ErrNotOpen) {
		t.Errorf("Send() error = %v, want ErrNotOpen", err)
	}
}

func TestClient_DialFailure(t *testing.T) {
	fs := newFakeQueryServer(t)
	url := fs.wsURL()
	fs.Close()

	client := NewClient(testQueryConfig(url), chart.NewRegistry(), logging.Discard())
	err := client.Connect(context.Background())
	if !errors.Is(err, ErrDialFailed) {
		t.Fatalf("Connect() error = %v, want ErrDialFailed", err)
	}
	if client.IsOpen() {
		t.Error("IsOpen() = true after failed dial")
	}
}

func TestClient_ServerCloseIsNotRetried(t *testing.T) {
	fs := newFakeQueryServer(t)
	client := NewClient(testQueryConfig(fs.wsURL()), chart.NewRegistry(), logging.Discard())
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	server := fs.conn(t)
	//nolint:errcheck // test teardown of the fake server side
	server.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	server.Close()

	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not exit after server close")
	}

	if client.IsOpen() {
		t.Error("IsOpen() = true after server close")
	}
	if err := client.Send(Request{Step: "30s", Range: "-1h"}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Send() after close error = %v, want ErrNotOpen", err)
	}

	select {
	case <-fs.conns:
		t.Error("client reconnected on its own")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_ConnectTwice(t *testing.T) {
	fs := newFakeQueryServer(t)
	client := NewClient(testQueryConfig(fs.wsURL()), chart.NewRegistry(), logging.Discard())
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}
}

func TestClient_CloseBeforeConnect(t *testing.T) {
	client := NewClient(testQueryConfig("ws://127.0.0.1:1"), chart.NewRegistry(), logging.Discard())
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDecodeBulk(t *testing.T) {
	points, untimed, err := DecodeBulk(json.RawMessage(`[
		{"field":"temperature","time":"2024-05-01T12:00:00Z","value":21},
		{"field":"humidity","time":"garbage","value":40},
		{"field":"humidity","time":"2024-05-01T12:00:00Z","value":null}
	]`))
	if err != nil {
		t.Fatalf("DecodeBulk() error = %v", err)
	}
	if len(points) != 3 || untimed != 1 {
		t.Fatalf("DecodeBulk() = %d points, %d untimed; want 3, 1", len(points), untimed)
	}
	// A bad time keeps the point in place with a zero time.
	if !points[1].Time.IsZero() || !points[1].Valid || points[1].Value != 40 {
		t.Errorf("untimed point = %+v, want zero time with value 40", points[1])
	}
	if points[2].Valid {
		t.Error("null value decoded as valid")
	}

	if points, _, err := DecodeBulk(json.RawMessage(`null`)); err != nil || len(points) != 0 {
		t.Errorf("DecodeBulk(null) = %v, %v", points, err)
	}
	if _, _, err := DecodeBulk(json.RawMessage(`"x"`)); err == nil {
		t.Error("DecodeBulk(string) error = nil")
	}
}
