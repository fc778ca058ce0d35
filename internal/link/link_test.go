package link

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks.
var (
	_ Transport = (*Websocket)(nil)
	_ Transport = (*Stream)(nil)
)

func gotoFrame(t *testing.T, timeout uint16) wire.Frame {
	t.Helper()
	f, err := wire.NewFrame(wire.Goto{Timeout: timeout, Lat: 0.72, Lon: -0.15, Speed: 1.5, SpeedUnits: wire.SpeedMetersPS})
	require.NoError(t, err)
	return f
}

func receive(t *testing.T, frames <-chan wire.Frame) wire.Frame {
	t.Helper()
	select {
	case f, ok := <-frames:
		require.True(t, ok, "frames closed")
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return wire.Frame{}
	}
}

// echoServer upgrades to WebSocket and echoes every binary message. It drops the first
// connection after dropAfter messages when dropAfter > 0.
func echoServer(t *testing.T, dropAfter int) (*httptest.Server, *atomic.Int32, *sync.Map) {
	t.Helper()
	var conns atomic.Int32
	secrets := &sync.Map{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secrets.Store(r.URL.Query().Get("secret"), true)
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		n := conns.Add(1)

		seen := 0
		for {
			kind, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(kind, msg); err != nil {
				return
			}
			seen++
			if n == 1 && dropAfter > 0 && seen >= dropAfter {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &conns, secrets
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocket_SendReceive(t *testing.T) {
	srv, _, secrets := echoServer(t, 0)

	l, err := DialWebsocket(config.LinkConfig{URL: wsURL(srv), Secret: "s3cret", BufferSize: 8}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	f := gotoFrame(t, 30)
	require.NoError(t, l.Send(f))
	assert.Equal(t, f, receive(t, l.Frames()))

	_, ok := secrets.Load("s3cret")
	assert.True(t, ok)
}

func TestWebsocket_Reconnects(t *testing.T) {
	srv, conns, _ := echoServer(t, 1)

	l, err := DialWebsocket(config.LinkConfig{
		URL:            wsURL(srv),
		BufferSize:     8,
		ReconnectDelay: 10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.NoError(t, l.Send(gotoFrame(t, 1)))
	assert.Equal(t, gotoFrame(t, 1), receive(t, l.Frames()))

	require.Eventually(t, func() bool { return conns.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, l.Send(gotoFrame(t, 2)))
	assert.Equal(t, gotoFrame(t, 2), receive(t, l.Frames()))
}

func TestWebsocket_Close(t *testing.T) {
	srv, _, _ := echoServer(t, 0)

	l, err := DialWebsocket(config.LinkConfig{URL: wsURL(srv)}, nil)
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.Send(gotoFrame(t, 1)), ErrClosed)

	_, ok := <-l.Frames()
	assert.False(t, ok)
}

func TestWebsocket_DialFails(t *testing.T) {
	_, err := DialWebsocket(config.LinkConfig{URL: "ws://127.0.0.1:1/link"}, nil)
	assert.Error(t, err)

	_, err = DialWebsocket(config.LinkConfig{URL: "://bad"}, nil)
	assert.ErrorContains(t, err, "invalid websocket URL")
}

func TestStream_SendReceive(t *testing.T) {
	local, remote := net.Pipe()
	s := NewStream(local, 4, nil)
	t.Cleanup(func() { _ = s.Close() })

	// The remote end echoes frames back.
	go func() {
		fr := wire.NewFrameReader(remote)
		for {
			f, err := fr.Next()
			if err != nil {
				return
			}
			if err := wire.WriteFrame(remote, f); err != nil {
				return
			}
		}
	}()

	for i := range 3 {
		f := gotoFrame(t, uint16(i))
		require.NoError(t, s.Send(f))
		assert.Equal(t, f, receive(t, s.Frames()))
	}
}

func TestStream_RemoteCloseEndsFrames(t *testing.T) {
	local, remote := net.Pipe()
	s := NewStream(local, 1, nil)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, remote.Close())
	select {
	case _, ok := <-s.Frames():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("frames not closed")
	}
}

func TestStream_Close(t *testing.T) {
	local, _ := net.Pipe()
	s := NewStream(local, 1, nil)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Send(gotoFrame(t, 1)), ErrClosed)
}

func TestOpen(t *testing.T) {
	_, err := Open(config.LinkConfig{}, nil)
	assert.ErrorIs(t, err, ErrNoLink)

	_, err = Open(config.LinkConfig{SerialPort: "/dev/does-not-exist", BaudRate: 9600}, nil)
	assert.ErrorContains(t, err, "failed to open serial port")

	srv, _, _ := echoServer(t, 0)
	l, err := Open(config.LinkConfig{URL: wsURL(srv)}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Websocket{}, l)
	require.NoError(t, l.Close())
}
