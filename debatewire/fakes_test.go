package debatewire

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeConn is an in-memory FrameConn. drop simulates the transport closing.
type fakeConn struct {
	url    string
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn(url string) *fakeConn {
	return &fakeConn{url: url, frames: make(chan []byte, 32), closed: make(chan struct{})}
}

func (c *fakeConn) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.closed:
		return nil, io.ErrUnexpectedEOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) drop() { _ = c.Close() }

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// send queues frames; frames sent after the connection closed are lost.
func (c *fakeConn) send(frames ...string) {
	for _, f := range frames {
		if c.isClosed() {
			return
		}
		c.frames <- []byte(f)
	}
}

// fakeNet hands out fakeConns and records every dial.
type fakeNet struct {
	mu       sync.Mutex
	conns    []*fakeConn
	failures int
}

func (n *fakeNet) dial(ctx context.Context, url string) (FrameConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failures > 0 {
		n.failures--
		return nil, errors.New("connection refused")
	}
	c := newFakeConn(url)
	n.conns = append(n.conns, c)
	return c, nil
}

func (n *fakeNet) failNext(k int) {
	n.mu.Lock()
	n.failures += k
	n.mu.Unlock()
}

func (n *fakeNet) dials(suffix string) []*fakeConn {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*fakeConn
	for _, c := range n.conns {
		if strings.HasSuffix(c.url, suffix) {
			out = append(out, c)
		}
	}
	return out
}

// await returns the nth (1-based) connection dialed to a URL ending in suffix.
func (n *fakeNet) await(t *testing.T, suffix string, nth int) *fakeConn {
	t.Helper()
	var c *fakeConn
	waitFor(t, "dial "+suffix, func() bool {
		got := n.dials(suffix)
		if len(got) < nth {
			return false
		}
		c = got[nth-1]
		return true
	})
	return c
}

// fakeScheduler records reconnect timers and fires them on demand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) after(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tm := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, tm)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if tm.fired || tm.stopped {
			return false
		}
		tm.stopped = true
		return true
	}
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) timer(i int) fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.timers[i]
}

// fire runs timer i as if its delay elapsed, even when it was stopped, to
// exercise the callback's own guards.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	tm := s.timers[i]
	tm.fired = true
	s.mu.Unlock()
	tm.fn()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("events channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return nil
}
