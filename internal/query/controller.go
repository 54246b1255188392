package query

import (
	"sync"
	"time"

	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
)

// Sender delivers requests to the query server. *Client satisfies it.
type Sender interface {
	Send(req Request) error
}

// Controller owns the current filter and issues requests for it.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Controller struct {
	sender   Sender
	loc      *time.Location
	defaults Filter
	logger   *logging.Logger

	mu      sync.Mutex
	current Filter
}

// NewController creates a controller starting from defaults.
// Empty default range or step fall back to DefaultRange and DefaultStep.
func NewController(sender Sender, defaults Filter, loc *time.Location, logger *logging.Logger) *Controller {
	if defaults.Range == "" {
		defaults.Range = DefaultRange
	}
	if defaults.Step == "" {
		defaults.Step = DefaultStep
	}
	defaults.Start, defaults.End = "", ""
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{
		sender:   sender,
		loc:      loc,
		defaults: defaults,
		logger:   logger,
		current:  defaults,
	}
}

// Current returns the filter in effect.
func (c *Controller) Current() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Defaults returns the filter Reset restores.
func (c *Controller) Defaults() Filter {
	return c.defaults
}

// Submit makes f the current filter and sends a request for it.
// An unparseable custom window returns ErrInvalidFilter and leaves the
// current filter untouched. ErrNotOpen means the filter was stored but
// nothing was sent.
func (c *Controller) Submit(f Filter) (Request, error) {
	if f.Step == "" {
		f.Step = c.defaults.Step
	}
	if f.Range == "" {
		f.Range = c.defaults.Range
	}

	req, err := BuildRequest(f, c.loc)
	if err != nil {
		return Request{}, err
	}

	c.mu.Lock()
	c.current = f
	c.mu.Unlock()

	return req, c.sender.Send(req)
}

// Reset restores the defaults and sends exactly one request.
func (c *Controller) Reset() (Request, error) {
	c.mu.Lock()
	c.current = c.defaults
	c.mu.Unlock()

	c.logger.Debug("query filter reset", "range", c.defaults.Range, "step", c.defaults.Step)
	return c.send(c.defaults)
}

// SendCurrent re-issues the request for the current filter.
// It is the query client's on-open hook.
func (c *Controller) SendCurrent() {
	if _, err := c.send(c.Current()); err != nil {
		c.logger.Warn("initial query failed", "error", err)
	}
}

func (c *Controller) send(f Filter) (Request, error) {
	req, err := BuildRequest(f, c.loc)
	if err != nil {
		return Request{}, err
	}
	return req, c.sender.Send(req)
}
