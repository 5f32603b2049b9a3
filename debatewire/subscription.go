package debatewire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire/internal"

	"github.com/coder/websocket"
)

// Target names the push stream a Subscription follows.
type Target struct {
	Channel Channel
	Room    RoomID
}

// RoomTarget follows one debate's stream.
func RoomTarget(id RoomID) Target { return Target{Channel: ChannelRoom, Room: id} }

// FeedTarget follows the global activity feed.
func FeedTarget() Target { return Target{Channel: ChannelFeed} }

// Path returns the backend endpoint for the target.
func (t Target) Path() string {
	if t.Channel == ChannelFeed {
		return "/api/loop/feed"
	}
	return fmt.Sprintf("/api/debates/%d/stream", t.Room)
}

func (t Target) String() string {
	if t.Channel == ChannelFeed {
		return "feed"
	}
	return fmt.Sprintf("room/%d", t.Room)
}

// URL resolves the target against a ws:// or http:// base.
func (t Target) URL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.JoinPath(t.Path()).String(), nil
}

// FrameConn is one live transport connection.
type FrameConn interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a FrameConn to url.
type Dialer func(ctx context.Context, url string) (FrameConn, error)

// Scheduler runs f once after d. The returned func cancels it and reports
// whether the call was stopped before running.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

func websocketDialer(cfg Config) Dialer {
	return func(ctx context.Context, u string) (FrameConn, error) {
		ws, _, err := websocket.Dial(ctx, u, nil)
		if err != nil {
			return nil, err
		}
		return internal.NewConn(ws, cfg.ReadTimeout), nil
	}
}

// Subscription is a cancellable, restartable stream of events from one
// target. It keeps at most one live connection and reconnects after
// Config.ReconnectDelay whenever the transport drops without the caller
// asking for it.
type Subscription struct {
	cfg    Config
	target Target
	logger Logger
	dial   Dialer
	after  Scheduler
	events chan Event

	openMu sync.Mutex // serializes Open

	mu            sync.Mutex
	state         ConnectionState
	gen           uint64 // bumped on every teardown; stale connections compare against it
	active        bool   // current generation is connecting or connected
	closed        bool
	parent        context.Context
	url           string
	cancel        context.CancelFunc
	conn          FrameConn
	pending       func() bool // stops the scheduled reconnect
	onState       func(StateEvent)
	lastHeartbeat time.Time

	wg sync.WaitGroup
}

// NewSubscription constructs a subscription; nothing is dialed until Open.
func NewSubscription(cfg Config, target Target) *Subscription {
	cfg = cfg.withDefaults()
	return &Subscription{
		cfg:    cfg,
		target: target,
		logger: noopLogger{},
		dial:   websocketDialer(cfg),
		after:  afterFunc,
		events: make(chan Event, 64),
	}
}

// SetLogger overrides logger (optional).
func (s *Subscription) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.logger = l
}

// SetDialer replaces the websocket transport. Call before Open.
func (s *Subscription) SetDialer(d Dialer) {
	if d != nil {
		s.dial = d
	}
}

// SetScheduler replaces the reconnect timer. Call before Open.
func (s *Subscription) SetScheduler(sc Scheduler) {
	if sc != nil {
		s.after = sc
	}
}

// OnStateChanged registers a callback for connection state transitions.
// It runs on the subscription's goroutines and must not block.
func (s *Subscription) OnStateChanged(fn func(StateEvent)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// Target returns the stream this subscription follows.
func (s *Subscription) Target() Target { return s.target }

// Events returns the inbound event sequence. It is closed by Close.
func (s *Subscription) Events() <-chan Event { return s.events }

// State returns the current connection state.
func (s *Subscription) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastHeartbeat returns when the last ping frame arrived.
func (s *Subscription) LastHeartbeat() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeartbeat
}

// Open starts streaming. Any connection or reconnect left from a previous
// Open on this handle is torn down first. Canceling ctx stops the stream
// without reconnecting; Close must still be called to release the handle.
func (s *Subscription) Open(ctx context.Context) error {
	if s.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}
	u, err := s.target.URL(s.cfg.URL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "bad URL", err)
	}

	s.openMu.Lock()
	defer s.openMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return NewError(ErrorClosed, "subscription closed")
	}
	stale := s.teardownLocked()
	ev, changed := s.transitionLocked(StateConnecting, nil)
	s.mu.Unlock()

	closeConn(stale)
	s.notify(ev, changed)

	// the old readers are detached; nothing they queued may reach the new stream
	s.wg.Wait()
	s.drainEvents()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return NewError(ErrorClosed, "subscription closed")
	}
	s.parent = ctx
	s.url = u
	s.active = true
	gen := s.gen
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(gen)
	return nil
}

func (s *Subscription) drainEvents() {
	for {
		select {
		case _, ok := <-s.events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Close stops the stream for good: no reconnect fires afterwards, the live
// connection is detached and closed, and Events is closed once every reader
// has exited.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stale := s.teardownLocked()
	ev, changed := s.transitionLocked(StateClosed, nil)
	s.mu.Unlock()

	err := closeConn(stale)
	s.wg.Wait()
	close(s.events)
	s.notify(ev, changed)
	return err
}

// teardownLocked detaches the current generation and returns its connection
// for the caller to close outside the lock.
func (s *Subscription) teardownLocked() FrameConn {
	s.gen++
	s.active = false
	if s.pending != nil {
		s.pending()
		s.pending = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	conn := s.conn
	s.conn = nil
	return conn
}

func closeConn(c FrameConn) error {
	if c == nil {
		return nil
	}
	return c.Close()
}

func (s *Subscription) run(gen uint64) {
	defer s.wg.Done()

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	u := s.url
	s.mu.Unlock()

	dialCtx := ctx
	if s.cfg.HandshakeTimeout > 0 {
		var dialCancel context.CancelFunc
		dialCtx, dialCancel = context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
		defer dialCancel()
	}

	conn, err := s.dial(dialCtx, u)
	if err != nil {
		s.logger.Warn("dial failed", map[string]any{"target": s.target.String(), "error": err.Error()})
		s.connectionLost(gen, classify(ErrorConnection, "dial failed", err))
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	ev, changed := s.transitionLocked(StateConnected, nil)
	s.mu.Unlock()
	s.notify(ev, changed)
	s.logger.Info("connected", map[string]any{"target": s.target.String()})

	s.readLoop(ctx, gen, conn)
}

func (s *Subscription) readLoop(ctx context.Context, gen uint64, conn FrameConn) {
	for {
		data, err := conn.ReadFrame(ctx)
		if errors.Is(err, internal.ErrNotText) {
			s.logger.Debug("dropping frame", map[string]any{"target": s.target.String(), "error": err.Error()})
			continue
		}
		if err != nil {
			if isExpectedDisconnect(ctx, err) {
				s.logger.Debug("read loop exit", map[string]any{"target": s.target.String(), "error": err.Error()})
			} else {
				s.logger.Warn("read loop exit", map[string]any{"target": s.target.String(), "error": err.Error()})
			}
			s.connectionLost(gen, classify(ErrorDisconnected, "read failed", err))
			return
		}

		ev, err := DecodeFrame(s.target.Channel, s.target.Room, data)
		if err != nil {
			s.logger.Debug("dropping frame", map[string]any{"target": s.target.String(), "error": err.Error()})
			continue
		}
		if _, ok := ev.(Heartbeat); ok {
			s.mu.Lock()
			s.lastHeartbeat = time.Now()
			s.mu.Unlock()
			continue
		}

		if ctx.Err() != nil {
			return
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// connectionLost handles the end of generation gen. Stale generations and
// caller-canceled streams never schedule a reconnect.
func (s *Subscription) connectionLost(gen uint64, cause error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	stale := s.conn
	s.conn = nil
	s.active = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	var (
		ev      StateEvent
		changed bool
	)
	if s.parent.Err() != nil {
		ev, changed = s.transitionLocked(StateDisconnected, cause)
	} else {
		ev, changed = s.scheduleReconnectLocked(cause)
	}
	s.mu.Unlock()

	closeConn(stale)
	s.notify(ev, changed)
}

// scheduleReconnectLocked is single-flight: nothing is scheduled while a
// reconnect is pending or the current generation is still live.
func (s *Subscription) scheduleReconnectLocked(cause error) (StateEvent, bool) {
	if s.closed || s.pending != nil || s.active {
		return StateEvent{}, false
	}
	gen := s.gen
	s.pending = s.after(s.cfg.ReconnectDelay, func() { s.reconnect(gen) })
	s.logger.Info("reconnect scheduled", map[string]any{"target": s.target.String(), "delay": s.cfg.ReconnectDelay.String()})
	return s.transitionLocked(StateReconnecting, cause)
}

func (s *Subscription) reconnect(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.pending == nil || s.parent.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.gen++
	next := s.gen
	s.active = true
	ev, changed := s.transitionLocked(StateConnecting, nil)
	s.wg.Add(1)
	s.mu.Unlock()

	s.notify(ev, changed)
	go s.run(next)
}

func (s *Subscription) transitionLocked(next ConnectionState, cause error) (StateEvent, bool) {
	if s.state == next && cause == nil {
		return StateEvent{}, false
	}
	ev := StateEvent{Target: s.target, OldState: s.state, NewState: next, Error: cause}
	s.state = next
	return ev, true
}

func (s *Subscription) notify(ev StateEvent, changed bool) {
	if !changed {
		return
	}
	s.mu.Lock()
	fn := s.onState
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// classify wraps a transport error, reporting expired deadlines as timeouts.
func classify(code ErrorCode, message string, err error) *DebateError {
	if errors.Is(err, context.DeadlineExceeded) {
		code = ErrorTimeout
	}
	return WrapError(code, message, err)
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
