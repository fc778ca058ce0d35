package link

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/wire"
	"go.bug.st/serial"
)

// Stream is a transport over a byte stream such as a serial modem. Frames are written
// back to back; msgpack values delimit themselves.
type Stream struct {
	rwc    io.ReadWriteCloser
	logger *slog.Logger
	frames chan wire.Frame

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

// NewStream starts reading frames from rwc.
func NewStream(rwc io.ReadWriteCloser, bufferSize int, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stream{
		rwc:    rwc,
		logger: logger,
		frames: make(chan wire.Frame, max(bufferSize, 1)),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// OpenSerial opens cfg.SerialPort at cfg.BaudRate, 8N1.
func OpenSerial(cfg config.LinkConfig, logger *slog.Logger) (*Stream, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.SerialPort, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.SerialPort, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("serial link open", "port", cfg.SerialPort, "baud", cfg.BaudRate)
	return NewStream(port, cfg.BufferSize, logger), nil
}

func (s *Stream) readLoop() {
	defer close(s.frames)
	fr := wire.NewFrameReader(s.rwc)
	for {
		f, err := fr.Next()
		if err != nil {
			select {
			case <-s.done:
			default:
				if !errors.Is(err, io.EOF) {
					s.logger.Warn("serial link read failed", "error", err)
				}
			}
			return
		}
		select {
		case s.frames <- f:
		case <-s.done:
			return
		}
	}
}

// Send writes f synchronously.
func (s *Stream) Send(f wire.Frame) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := wire.WriteFrame(s.rwc, f); err != nil {
		return fmt.Errorf("failed to send %s: %w", f.Abbrev, err)
	}
	return nil
}

func (s *Stream) Frames() <-chan wire.Frame {
	return s.frames
}

// Close closes the underlying stream, which ends the read loop.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)
	return s.rwc.Close()
}
