package debatewire

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire/rest"
)

// RoomDetail is the static part of a room, fetched before its stream
// connects.
type RoomDetail struct {
	Topic        string
	Participants []string
}

// DetailFunc fetches a room's static detail.
type DetailFunc func(ctx context.Context, id RoomID) (RoomDetail, error)

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger shared by the dashboard and its subscriptions.
func WithLogger(l Logger) Option {
	return func(d *Dashboard) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithPull enables status polling through pull.
func WithPull(pull PullFunc) Option {
	return func(d *Dashboard) { d.pull = pull }
}

// WithRoomDetail pre-populates rooms through fetch when they are opened.
func WithRoomDetail(fetch DetailFunc) Option {
	return func(d *Dashboard) { d.detail = fetch }
}

// WithREST wires status polling and room detail to a REST client.
func WithREST(c *rest.Client) Option {
	return func(d *Dashboard) {
		d.pull = func(ctx context.Context) (LoopSnapshot, error) {
			st, err := c.LoopStatus(ctx)
			if err != nil {
				return LoopSnapshot{}, err
			}
			snap := LoopSnapshot{Running: st.Running, CompletedCount: st.DebatesRun}
			if st.CurrentTopic != nil {
				snap.Topic = *st.CurrentTopic
			}
			if st.CurrentCategory != nil {
				snap.Category = *st.CurrentCategory
			}
			return snap, nil
		}
		d.detail = func(ctx context.Context, id RoomID) (RoomDetail, error) {
			detail, err := c.GetDebate(ctx, int64(id))
			if err != nil {
				return RoomDetail{}, err
			}
			return RoomDetail{Topic: detail.Topic, Participants: detail.Participants}, nil
		}
	}
}

// WithTransport replaces the dialer and reconnect scheduler of every
// subscription the dashboard opens.
func WithTransport(dial Dialer, after Scheduler) Option {
	return func(d *Dashboard) {
		d.dial = dial
		d.after = after
	}
}

// WithClock overrides the arrival clock.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		if now != nil {
			d.now = now
		}
	}
}

// View is a rendered snapshot of the dashboard.
type View struct {
	Banner     LoopBanner
	Loop       LoopState
	Feed       []FeedRow
	Room       RoomID
	Topic      string
	Transcript []TranscriptRow
	Verdict    *VerdictView
	FeedConn   ConnectionState
	RoomConn   ConnectionState
}

// Dashboard owns the global feed, the loop state and at most one room
// transcript. All of them are mutated only by the goroutine running Run;
// other methods hand work to it.
type Dashboard struct {
	cfg    Config
	logger Logger
	now    func() time.Time
	dial   Dialer
	after  Scheduler
	pull   PullFunc
	detail DetailFunc

	cmds    chan func(*dashState)
	updates chan struct{}
	ready   chan struct{}
	stopped chan struct{}
	started atomic.Bool
}

type dashState struct {
	ctx        context.Context
	feed       FeedState
	loop       LoopState
	feedSub    *Subscription
	room       *Subscription
	transcript Transcript
}

// NewDashboard constructs a dashboard. Nothing connects until Run.
func NewDashboard(cfg Config, opts ...Option) *Dashboard {
	d := &Dashboard{
		cfg:     cfg.withDefaults(),
		logger:  noopLogger{},
		now:     time.Now,
		cmds:    make(chan func(*dashState)),
		updates: make(chan struct{}, 1),
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Updates signals, coalesced, that the view may have changed.
func (d *Dashboard) Updates() <-chan struct{} { return d.updates }

// Ready is closed once Run is serving commands.
func (d *Dashboard) Ready() <-chan struct{} { return d.ready }

// Done is closed when Run returns.
func (d *Dashboard) Done() <-chan struct{} { return d.stopped }

// Run subscribes to the global feed, starts status polling and serves
// commands until ctx is done. A Dashboard runs at most once.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return NewError(ErrorInvalidConfig, "dashboard already started")
	}
	defer close(d.stopped)

	st := &dashState{ctx: ctx, feed: NewFeedState(d.cfg.FeedCapacity)}
	st.feedSub = d.subscribe(FeedTarget())
	if err := st.feedSub.Open(ctx); err != nil {
		return err
	}
	defer st.feedSub.Close()
	defer d.closeRoom(st)

	polls := make(chan PollResult, 1)
	if d.pull != nil {
		poller := NewPoller(d.cfg.PollInterval, d.pull)
		poller.SetLogger(d.logger)
		poller.now = d.now
		pollCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go poller.Run(pollCtx, polls)
	}

	feedEvents := st.feedSub.Events()
	close(d.ready)
	for {
		var roomEvents <-chan Event
		if st.room != nil {
			roomEvents = st.room.Events()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-feedEvents:
			if !ok {
				return nil
			}
			d.applyFeed(st, ev)
		case ev, ok := <-roomEvents:
			if !ok {
				st.room = nil
				continue
			}
			st.transcript = st.transcript.Apply(ev)
		case r := <-polls:
			st.loop = st.loop.ApplyPull(r.Snapshot, r.Arrived, d.cfg.PollInterval)
		case cmd := <-d.cmds:
			cmd(st)
		}
		d.notify()
	}
}

func (d *Dashboard) applyFeed(st *dashState, ev Event) {
	arrived := d.now()
	if ls, ok := ev.(LoopStatus); ok {
		st.loop = st.loop.ApplyPush(ls, arrived)
	}
	st.feed = st.feed.Apply(ev, arrived)
}

// OpenRoom makes id the single live room. The previous room subscription is
// fully closed before the new one is opened.
func (d *Dashboard) OpenRoom(ctx context.Context, id RoomID) error {
	var detail RoomDetail
	if d.detail != nil {
		var err error
		detail, err = d.detail(ctx, id)
		if err != nil {
			d.logger.Debug("room detail unavailable", map[string]any{"room": int64(id), "error": err.Error()})
		}
	}

	var openErr error
	err := d.do(ctx, func(st *dashState) {
		d.closeRoom(st)
		st.transcript = NewTranscript(id).Seed(detail.Topic, detail.Participants)
		sub := d.subscribe(RoomTarget(id))
		if openErr = sub.Open(st.ctx); openErr != nil {
			sub.Close()
			return
		}
		st.room = sub
	})
	if err != nil {
		return err
	}
	return openErr
}

// LeaveRoom closes the room subscription, if any. The feed and the status
// poll are not affected.
func (d *Dashboard) LeaveRoom(ctx context.Context) error {
	return d.do(ctx, func(st *dashState) {
		d.closeRoom(st)
		st.transcript = Transcript{}
	})
}

// Snapshot projects the current state.
func (d *Dashboard) Snapshot(ctx context.Context, filter FeedFilter) (View, error) {
	var v View
	err := d.do(ctx, func(st *dashState) {
		v = View{
			Banner:   ProjectLoopBanner(st.loop),
			Loop:     st.loop,
			Feed:     ProjectFeed(st.feed, filter),
			FeedConn: st.feedSub.State(),
			RoomConn: StateDisconnected,
		}
		if st.room != nil {
			v.Room = st.transcript.RoomID
			v.Topic = st.transcript.Topic
			v.Transcript = ProjectTranscript(st.transcript)
			v.RoomConn = st.room.State()
			if verdict, ok := ProjectVerdict(st.transcript); ok {
				v.Verdict = &verdict
			}
		}
	})
	return v, err
}

func (d *Dashboard) closeRoom(st *dashState) {
	if st.room == nil {
		return
	}
	if err := st.room.Close(); err != nil {
		d.logger.Debug("room close", map[string]any{"target": st.room.Target().String(), "error": err.Error()})
	}
	st.room = nil
}

// do runs fn on the Run goroutine and waits for it.
func (d *Dashboard) do(ctx context.Context, fn func(*dashState)) error {
	if !d.started.Load() {
		return NewError(ErrorNotRunning, "dashboard not running")
	}
	done := make(chan struct{})
	select {
	case d.cmds <- func(st *dashState) { fn(st); close(done) }:
	case <-d.stopped:
		return NewError(ErrorNotRunning, "dashboard stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

func (d *Dashboard) subscribe(t Target) *Subscription {
	sub := NewSubscription(d.cfg, t)
	sub.SetLogger(d.logger)
	sub.SetDialer(d.dial)
	sub.SetScheduler(d.after)
	sub.OnStateChanged(func(ev StateEvent) {
		d.logger.Debug("connection state", map[string]any{"target": ev.Target.String(), "from": ev.OldState.String(), "to": ev.NewState.String()})
		d.notify()
	})
	return sub
}

func (d *Dashboard) notify() {
	select {
	case d.updates <- struct{}{}:
	default:
	}
}
