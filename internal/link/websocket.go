package link

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/queue"
	"github.com/seaplan/mplan/internal/wire"
)

const (
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	maxPending   = 4096
	writeWait    = 10 * time.Second
)

// Websocket is a transport to a vehicle gateway. Each binary message carries one frame.
// Frames sent while the connection is down are kept and flushed after reconnecting.
type Websocket struct {
	mu     sync.Mutex
	conn   *ws.Conn
	closed bool

	sendCh  chan []byte
	ready   chan struct{}
	pending *queue.Queue[[]byte]
	frames  chan wire.Frame
	done    chan struct{}
	loops   sync.WaitGroup

	wsURL  string
	secret string
	delay  time.Duration

	logger *slog.Logger
}

// DialWebsocket connects to cfg.URL and starts the read and write loops.
func DialWebsocket(cfg config.LinkConfig, logger *slog.Logger) (*Websocket, error) {
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	size := max(cfg.BufferSize, 1)
	c := &Websocket{
		sendCh:  make(chan []byte, size),
		ready:   make(chan struct{}, 1),
		pending: queue.New[[]byte](maxPending),
		frames:  make(chan wire.Frame, size),
		done:    make(chan struct{}),
		wsURL:   cfg.URL,
		secret:  cfg.Secret,
		delay:   delay,
		logger:  logger.With("url", cfg.URL),
	}

	conn, err := c.dialOnce()
	if err != nil {
		return nil, err
	}
	c.conn = conn

	c.loops.Add(2)
	go c.writeLoop()
	go c.readLoop(conn)
	return c, nil
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *Websocket) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// writeLoop is the only writer of data messages. It outlives reconnects.
func (c *Websocket) writeLoop() {
	defer c.loops.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.ready:
			c.flush()
		case data := <-c.sendCh:
			if dropped := c.pending.Push(data); dropped > 0 {
				c.logger.Warn("WebSocket pending queue full, dropped oldest frames", "dropped", dropped)
			}
			c.flush()
		}
	}
}

// flush writes pending messages in order. Messages stay queued while disconnected.
func (c *Websocket) flush() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	items := c.pending.Drain()
	for i, data := range items {
		err := conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = conn.WriteMessage(ws.BinaryMessage, data)
		}
		if err != nil {
			c.pending.PushFront(items[i:]...)
			c.logger.Warn("WebSocket write error", "error", err)
			go c.reconnect(conn)
			return
		}
	}
}

// readLoop delivers frames received on conn until it fails.
func (c *Websocket) readLoop(conn *ws.Conn) {
	defer c.loops.Done()
	for {
		kind, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.reconnect(conn)
			return
		}
		if kind != ws.BinaryMessage {
			c.logger.Debug("Non-frame message received", "raw", string(message))
			continue
		}

		f, err := wire.UnmarshalFrame(message)
		if err != nil {
			c.logger.Warn("Dropping undecodable frame", "error", err)
			continue
		}
		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}

// reconnect replaces a failed connection with exponential backoff. Only the first caller
// for a given connection does anything.
func (c *Websocket) reconnect(failed *ws.Conn) {
	c.mu.Lock()
	if c.closed || c.conn != failed {
		c.mu.Unlock()
		return
	}
	_ = c.conn.Close()
	c.conn = nil
	c.mu.Unlock()

	backoff := c.delay
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt)
		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.loops.Add(1)
		c.mu.Unlock()

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		go c.readLoop(conn)
		select {
		case c.ready <- struct{}{}:
		default:
		}
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// Send queues f for the write loop. It fails when the send buffer is full.
func (c *Websocket) Send(f wire.Frame) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case c.sendCh <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full: %s", f.Abbrev)
	}
}

func (c *Websocket) Frames() <-chan wire.Frame {
	return c.frames
}

// Pending returns how many frames wait for a connection.
func (c *Websocket) Pending() int {
	return c.pending.Len() + len(c.sendCh)
}

// Close sends a close frame, stops all loops and then closes Frames.
func (c *Websocket) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		_ = conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		err = conn.Close()
	}

	c.loops.Wait()
	close(c.frames)
	if errors.Is(err, ws.ErrCloseSent) {
		err = nil
	}
	return err
}
