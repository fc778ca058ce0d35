package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/seaplan/mplan/internal/dispatcher"

// ErrNoHandler is returned for frames whose abbreviation has no handler.
var ErrNoHandler = errors.New("no handler")

// Event is a frame received from a vehicle.
type Event struct {
	Vehicle  string
	Frame    wire.Frame
	Received time.Time
}

// HandlerFunc processes an event.
type HandlerFunc func(Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Decoder builds a maneuver from a frame. *registry.Registry implements it.
type Decoder interface {
	DecodeFrame(f wire.Frame) (maneuver.Maneuver, error)
}

// Maneuvers adapts a handler taking decoded maneuvers.
func Maneuvers(dec Decoder, h func(Event, maneuver.Maneuver) error) HandlerFunc {
	return func(e Event) error {
		m, err := dec.DecodeFrame(e.Frame)
		if m == nil {
			return err
		}
		// An unknown kind still yields a usable placeholder.
		return errors.Join(err, h(e, m))
	}
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes frames to handlers by message abbreviation.
type Dispatcher struct {
	logger Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	fallback HandlerFunc
	buffers  map[string]chan Event
	workers  sync.WaitGroup
	closed   bool
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
		logger:   logger,
	}

	m := otel.Meter(instrumentationName)

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of frames in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for abbrev, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("abbrev", abbrev)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.frames.processed",
		metric.WithDescription("Total frames processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.frames.dropped",
		metric.WithDescription("Total frames dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.frames.failed",
		metric.WithDescription("Total frames whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	return d, nil
}

func (d *Dispatcher) wrap(abbrev string, h HandlerFunc, opts []Option) HandlerFunc {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(abbrev, handler)
	}
	if cfg.bufferSize > 0 {
		handler = d.withBuffer(abbrev, cfg.bufferSize, cfg.blocking, handler)
	}
	return handler
}

// Register adds a handler for frames with the given abbreviation.
func (d *Dispatcher) Register(abbrev string, h HandlerFunc, opts ...Option) {
	handler := d.wrap(abbrev, h, opts)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[abbrev] = handler
}

// Fallback sets the handler for frames no other handler takes.
func (d *Dispatcher) Fallback(h HandlerFunc, opts ...Option) {
	handler := d.wrap("*", h, opts)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = handler
}

// Dispatch routes an event to its handler.
func (d *Dispatcher) Dispatch(e Event) error {
	d.mu.RLock()
	h, ok := d.handlers[e.Frame.Abbrev]
	if !ok {
		h = d.fallback
	}
	d.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("%w: %s", ErrNoHandler, e.Frame.Abbrev)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the abbreviation.
func (d *Dispatcher) HasHandler(abbrev string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[abbrev]
	return ok
}

// Run dispatches frames from a vehicle until frames is closed or ctx is done. Handler
// errors are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, vehicle string, frames <-chan wire.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			e := Event{Vehicle: vehicle, Frame: f, Received: time.Now()}
			if err := d.Dispatch(e); err != nil {
				d.logger.Error("frame not handled", "vehicle", vehicle, "abbrev", f.Abbrev, "error", err)
			}
		}
	}
}

// Close stops accepting buffered frames and waits for queued frames to be handled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()
	d.workers.Wait()
}

func (d *Dispatcher) withBuffer(abbrev string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	// A replaced buffer is closed so its worker drains and exits.
	d.mu.Lock()
	if old, ok := d.buffers[abbrev]; ok && !d.closed {
		close(old)
	}
	d.buffers[abbrev] = buffer
	if d.closed {
		close(buffer)
	}
	d.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("abbrev", abbrev))

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range buffer {
			if err := h(e); err != nil {
				d.failed.Add(context.Background(), 1, attrs)
			}
			d.processed.Add(context.Background(), 1, attrs)
		}
	}()

	if blocking {
		return func(e Event) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			if err := d.accepting(abbrev, buffer); err != nil {
				return err
			}
			buffer <- e
			return nil
		}
	}

	return func(e Event) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if err := d.accepting(abbrev, buffer); err != nil {
			return err
		}
		select {
		case buffer <- e:
			return nil
		default:
			d.dropped.Add(context.Background(), 1, attrs)
			return fmt.Errorf("queue full: %s", abbrev)
		}
	}
}

// accepting reports whether buffer still takes frames. Callers hold d.mu.
func (d *Dispatcher) accepting(abbrev string, buffer chan Event) error {
	if d.closed {
		return fmt.Errorf("dispatcher closed: %s", abbrev)
	}
	if d.buffers[abbrev] != buffer {
		return fmt.Errorf("handler replaced: %s", abbrev)
	}
	return nil
}

func (d *Dispatcher) withLogging(abbrev string, h HandlerFunc) HandlerFunc {
	return func(e Event) error {
		start := time.Now()
		d.logger.Debug("handling frame", "abbrev", abbrev, "vehicle", e.Vehicle, "bytes", len(e.Frame.Body))

		err := h(e)

		if err != nil {
			d.logger.Error("frame failed", "abbrev", abbrev, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("frame complete", "abbrev", abbrev, "duration", time.Since(start))
		}
		return err
	}
}
