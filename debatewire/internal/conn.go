package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
)

// Conn wraps websocket.Conn with a per-frame read timeout.
type Conn struct {
	ws          *websocket.Conn
	readTimeout time.Duration
}

func NewConn(ws *websocket.Conn, readTimeout time.Duration) *Conn {
	// feed replay bursts can exceed the 32KiB default
	ws.SetReadLimit(1 << 20)
	return &Conn{ws: ws, readTimeout: readTimeout}
}

// ReadFrame returns the next text frame. Binary frames are reported as errors
// so the caller can drop them like any other malformed payload.
func (c *Conn) ReadFrame(ctx context.Context) ([]byte, error) {
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}
	typ, data, err := c.ws.Read(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("read frame: %w", context.DeadlineExceeded)
		}
		return nil, err
	}
	if typ != websocket.MessageText {
		return data, fmt.Errorf("%w: %s", ErrNotText, typ)
	}
	return data, nil
}

// Close starts the close handshake and returns without waiting for the peer.
// The socket is released when the peer answers or the handshake times out.
func (c *Conn) Close() error {
	go func() { _ = c.ws.Close(websocket.StatusNormalClosure, "client close") }()
	return nil
}

// ErrNotText marks a frame that arrived with a non-text opcode.
var ErrNotText = errors.New("non-text frame")
