package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

const (
	// MessageTypeBulk tags a full replacement dataset.
	MessageTypeBulk = "bulk"

	// writeTimeout bounds a single request write.
	writeTimeout = 5 * time.Second

	// closeGrace is how long Close waits for the server to acknowledge.
	closeGrace = time.Second
)

// BulkSink receives decoded bulk responses. *chart.Registry satisfies it.
type BulkSink interface {
	ApplyBulk(points []telemetry.Point) chart.BulkResult
}

// Envelope is the outer shape of every server message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is the query channel.
//
// Thread Safety:
//   - Send may be called from any goroutine; writes are serialised.
//   - Messages are handled on a single read goroutine, in arrival order.
type Client struct {
	url            string
	dialer         *websocket.Dialer
	dialTimeout    time.Duration
	maxMessageSize int64
	sink           BulkSink
	logger         *logging.Logger

	mu     sync.Mutex // guards conn, open, done and writes
	conn   *websocket.Conn
	open   bool
	done   chan struct{}
	onOpen func()
}

// NewClient creates an unconnected client that delivers bulks to sink.
func NewClient(cfg config.QueryConfig, sink BulkSink, logger *logging.Logger) *Client {
	dialTimeout := time.Duration(cfg.DialTimeout) * time.Second
	return &Client{
		url:            cfg.URL,
		dialer:         &websocket.Dialer{HandshakeTimeout: dialTimeout},
		dialTimeout:    dialTimeout,
		maxMessageSize: int64(cfg.MaxMessageSize),
		sink:           sink,
		logger:         logger,
	}
}

// SetOnOpen sets a callback run once the channel is established, before any
// message is read. The dashboard uses it to send the current filter.
func (c *Client) SetOnOpen(fn func()) {
	c.mu.Lock()
	c.onOpen = fn
	c.mu.Unlock()
}

// Connect dials the query server and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	if c.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		metrics.SetChannelUp(metrics.ChannelQuery, false)
		return fmt.Errorf("%w: %s: %w", ErrDialFailed, c.url, err)
	}
	if c.maxMessageSize > 0 {
		conn.SetReadLimit(c.maxMessageSize)
	}

	c.mu.Lock()
	c.conn = conn
	c.open = true
	c.done = make(chan struct{})
	onOpen := c.onOpen
	done := c.done
	c.mu.Unlock()

	metrics.SetChannelUp(metrics.ChannelQuery, true)
	c.logger.Info("query channel open", "url", c.url)

	if onOpen != nil {
		onOpen()
	}

	go c.readLoop(conn, done)
	return nil
}

// IsOpen reports whether requests can currently be sent.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Done is closed when the read loop exits. It is nil before Connect.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Send writes one request. When the channel is closed the request is
// dropped, a warning is logged and ErrNotOpen is returned.
func (c *Client) Send(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding query request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		metrics.IncQuerySend(metrics.QueryDropped)
		c.logger.Warn("query channel not open, request dropped", "step", req.Step, "range", req.Range)
		return ErrNotOpen
	}

	//nolint:errcheck // Best-effort deadline; write error caught below
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		metrics.IncQuerySend(metrics.ResultError)
		return fmt.Errorf("writing query request: %w", err)
	}

	metrics.IncQuerySend(metrics.QuerySent)
	c.logger.Debug("query sent", "payload", string(data))
	return nil
}

// Close sends a close frame and waits briefly for the read loop to end.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	wasOpen := c.open
	c.open = false
	if wasOpen {
		//nolint:errcheck // Best-effort close handshake
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace))
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	select {
	case <-done:
	case <-time.After(closeGrace):
	}
	return conn.Close()
}

// readLoop handles server messages until the connection ends.
func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.open = false
		}
		c.mu.Unlock()
		metrics.SetChannelUp(metrics.ChannelQuery, false)
		close(done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// After Close, open is already false and the error is expected.
			if !c.IsOpen() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("query channel closed", "reason", err)
			} else {
				c.logger.Warn("query channel error", "error", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

// handleMessage decodes one server message. Only bulk messages are applied.
func (c *Client) handleMessage(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.IncQueryMessage(metrics.QueryKindMalformed)
		c.logger.Warn("malformed query message dropped", "error", err, "bytes", len(data))
		return
	}

	if env.Type != MessageTypeBulk {
		metrics.IncQueryMessage(metrics.QueryKindIgnored)
		c.logger.Debug("query message ignored", "type", env.Type)
		return
	}

	points, untimed, err := DecodeBulk(env.Data)
	if err != nil {
		metrics.IncQueryMessage(metrics.QueryKindMalformed)
		c.logger.Warn("malformed bulk dropped", "error", err)
		return
	}
	if untimed > 0 {
		c.logger.Debug("bulk points with invalid time kept untimed", "count", untimed)
	}

	metrics.IncQueryMessage(metrics.QueryKindBulk)
	res := c.sink.ApplyBulk(points)
	c.logger.Debug("bulk applied",
		"points", len(points),
		"routed", res.Routed,
		"dropped", res.Dropped,
		"revision", res.Revision,
	)
}

// DecodeBulk decodes the data array of a bulk message. Points whose time
// cannot be parsed are kept with a zero time and counted, so every series
// stays index aligned; a missing or null array is an empty bulk.
func DecodeBulk(raw json.RawMessage) ([]telemetry.Point, int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, 0, nil
	}

	var wire []telemetry.WirePoint
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, 0, fmt.Errorf("decoding bulk data: %w", err)
	}

	points := make([]telemetry.Point, 0, len(wire))
	untimed := 0
	for _, w := range wire {
		p, err := w.Point()
		if err != nil {
			untimed++
			p = w.UntimedPoint()
		}
		points = append(points, p)
	}
	return points, untimed, nil
}
