package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// newPeer serves one websocket connection that runs fn and then stays open
// without reading until the test ends.
func newPeer(t *testing.T, fn func(ctx context.Context, c *websocket.Conn)) string {
	t.Helper()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		fn(r.Context(), c)
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, readTimeout time.Duration) *Conn {
	t.Helper()
	ws, _, err := websocket.Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return NewConn(ws, readTimeout)
}

func TestCloseDoesNotWaitForPeer(t *testing.T) {
	url := newPeer(t, func(ctx context.Context, c *websocket.Conn) {})
	conn := dial(t, url, 0)

	start := time.Now()
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if d := time.Since(start); d > 500*time.Millisecond {
		t.Fatalf("close blocked for %s on a silent peer", d)
	}
}

func TestReadFrameReportsBinaryFrames(t *testing.T) {
	url := newPeer(t, func(ctx context.Context, c *websocket.Conn) {
		_ = c.Write(ctx, websocket.MessageBinary, []byte{0x1})
		_ = c.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`))
	})
	conn := dial(t, url, 0)
	defer conn.Close()

	if _, err := conn.ReadFrame(context.Background()); !errors.Is(err, ErrNotText) {
		t.Fatalf("binary frame: err = %v, want ErrNotText", err)
	}
	data, err := conn.ReadFrame(context.Background())
	if err != nil || string(data) != `{"type":"ping"}` {
		t.Fatalf("text frame = %q, %v", data, err)
	}
}

func TestReadFrameTimesOut(t *testing.T) {
	url := newPeer(t, func(ctx context.Context, c *websocket.Conn) {})
	conn := dial(t, url, 20*time.Millisecond)
	defer conn.Close()

	_, err := conn.ReadFrame(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
