// Package link carries wire frames between the planner and a vehicle.
package link

import (
	"errors"
	"log/slog"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/wire"
)

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("link closed")
	// ErrNoLink is returned by Open when neither a serial port nor a URL is configured.
	ErrNoLink = errors.New("no vehicle link configured")
)

// Transport sends frames to a vehicle and delivers the frames it sends back.
type Transport interface {
	// Send queues f for delivery. It does not wait for the vehicle.
	Send(f wire.Frame) error
	// Frames is closed after Close once no more frames can arrive.
	Frames() <-chan wire.Frame
	Close() error
}

// Open returns the transport described by cfg. A serial port takes precedence over the URL.
func Open(cfg config.LinkConfig, logger *slog.Logger) (Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case cfg.SerialPort != "":
		return OpenSerial(cfg, logger)
	case cfg.URL != "":
		return DialWebsocket(cfg, logger)
	default:
		return nil, ErrNoLink
	}
}
