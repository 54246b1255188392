package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
	"github.com/HugoHonorez/sensora/internal/infrastructure/mqtt"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// Bus is the broker connection the service needs. *mqtt.Client satisfies it.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	PublishString(topic string, payload string) error
	QoS() byte
}

// UpdateFunc is called with every newly rendered view.
type UpdateFunc func(View)

// Service consumes live readings and publishes power commands.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - HandleMessage runs on the broker client's goroutines; update
//     listeners are called on that goroutine.
type Service struct {
	renderer  *Renderer
	dataTopic string
	logger    *logging.Logger

	busMu sync.RWMutex
	bus   Bus

	viewMu sync.RWMutex
	view   *View

	listenersMu sync.RWMutex
	listeners   []UpdateFunc
}

// NewService builds the service from the realtime config section.
func NewService(cfg config.RealtimeConfig, loc *time.Location, logger *logging.Logger) (*Service, error) {
	renderer, err := NewRenderer(cfg, loc)
	if err != nil {
		return nil, err
	}
	dataTopic := cfg.DataTopic
	if dataTopic == "" {
		dataTopic = mqtt.Topics{}.SensorData()
	}
	return &Service{
		renderer:  renderer,
		dataTopic: dataTopic,
		logger:    logger,
	}, nil
}

// Renderer returns the service's renderer.
func (s *Service) Renderer() *Renderer {
	return s.renderer
}

// DataTopic returns the topic readings are consumed from.
func (s *Service) DataTopic() string {
	return s.dataTopic
}

// Attach subscribes to the data topic on bus and uses it for commands.
// It is called once per connection.
func (s *Service) Attach(bus Bus) error {
	s.busMu.Lock()
	s.bus = bus
	s.busMu.Unlock()

	if err := bus.Subscribe(s.dataTopic, bus.QoS(), s.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.dataTopic, err)
	}
	s.logger.Info("subscribed to realtime data", "topic", s.dataTopic)
	return nil
}

// Detach unsubscribes from the data topic and stops using the bus for
// commands. The last rendered view is kept. Detach without a bus is a no-op.
func (s *Service) Detach() error {
	s.busMu.Lock()
	bus := s.bus
	s.bus = nil
	s.busMu.Unlock()

	if bus == nil {
		return nil
	}
	if err := bus.Unsubscribe(s.dataTopic); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", s.dataTopic, err)
	}
	s.logger.Info("unsubscribed from realtime data", "topic", s.dataTopic)
	return nil
}

// OnUpdate registers a listener for new views.
func (s *Service) OnUpdate(fn UpdateFunc) {
	if fn == nil {
		return
	}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// HandleMessage renders one data-topic payload. A payload that cannot be
// decoded is logged and dropped; it never returns an error, so the
// connection is left untouched.
func (s *Service) HandleMessage(topic string, payload []byte) error {
	reading, err := telemetry.DecodeReading(payload)
	if err != nil {
		metrics.IncRealtimeMessage(metrics.RealtimeDropped)
		s.logger.Error("realtime message dropped", "topic", topic, "error", err)
		return nil
	}

	view := s.renderer.Render(reading)

	s.viewMu.Lock()
	s.view = &view
	s.viewMu.Unlock()

	metrics.IncRealtimeMessage(metrics.RealtimeRendered)

	s.listenersMu.RLock()
	listeners := make([]UpdateFunc, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(view)
	}
	return nil
}

// Current returns the last rendered view.
func (s *Service) Current() (View, bool) {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	if s.view == nil {
		return View{}, false
	}
	return *s.view, true
}

// PublishPower publishes state to the sensor's power topic. Nothing is
// awaited beyond the broker's publish token.
func (s *Service) PublishPower(sensor string, state State) error {
	ps, ok := s.renderer.Sensor(sensor)
	if !ok {
		return s.unknownSensor(sensor, state)
	}
	if state != StateOn && state != StateOff {
		return fmt.Errorf("%w: %q", ErrInvalidState, state)
	}

	s.busMu.RLock()
	bus := s.bus
	s.busMu.RUnlock()
	if bus == nil {
		metrics.IncPowerCommand(sensor, string(state), metrics.ResultError)
		return ErrNotAttached
	}

	if err := bus.PublishString(ps.Topic, string(state)); err != nil {
		metrics.IncPowerCommand(sensor, string(state), metrics.ResultError)
		return fmt.Errorf("publishing %s to %s: %w", state, ps.Topic, err)
	}

	metrics.IncPowerCommand(sensor, string(state), metrics.ResultSuccess)
	s.logger.Info("power command published", "sensor", sensor, "topic", ps.Topic, "state", state)
	return nil
}

// Press publishes whatever the sensor's control currently offers.
func (s *Service) Press(sensor string) (State, error) {
	if _, ok := s.renderer.Sensor(sensor); !ok {
		return "", s.unknownSensor(sensor, "")
	}

	view, ok := s.Current()
	if !ok {
		return "", ErrNoReading
	}
	control, _ := view.Control(telemetry.Field(sensor))

	return control.Label, s.PublishPower(sensor, control.Label)
}

func (s *Service) unknownSensor(sensor string, state State) error {
	metrics.IncPowerCommand("unknown", string(state), metrics.ResultError)
	s.logger.Warn("power command for unknown sensor", "sensor", sensor)
	return fmt.Errorf("%w: %q", ErrUnknownSensor, sensor)
}
