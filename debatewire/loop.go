package debatewire

import (
	"context"
	"sync/atomic"
	"time"
)

// Source says which channel produced a loop update.
type Source int

const (
	SourceNone Source = iota
	SourcePush
	SourcePull
)

// String returns the string representation of a Source.
func (s Source) String() string {
	switch s {
	case SourcePush:
		return "push"
	case SourcePull:
		return "pull"
	default:
		return "none"
	}
}

// LoopState mirrors the backend loop. LastUpdated is the local arrival time
// of the update that produced it, never a backend timestamp.
type LoopState struct {
	Running        bool
	Phase          LoopPhase
	Topic          string
	Category       string
	CompletedCount int
	LastUpdated    time.Time
	Source         Source

	lastPush time.Time
}

// LoopSnapshot is the pull-side view of the loop, as served by the status
// endpoint.
type LoopSnapshot struct {
	Running        bool
	Topic          string
	Category       string
	CompletedCount int
}

// Phase derives the loop phase; the status endpoint only reports whether a
// topic is in progress.
func (s LoopSnapshot) Phase() LoopPhase {
	switch {
	case !s.Running:
		return PhaseIdle
	case s.Topic != "":
		return PhaseActive
	default:
		return PhaseCooldown
	}
}

// ApplyPush merges a pushed LoopStatus that arrived at arrived. Pushes always
// win unless they arrived before the current state was produced.
func (s LoopState) ApplyPush(e LoopStatus, arrived time.Time) LoopState {
	if arrived.Before(s.LastUpdated) {
		return s
	}
	running := e.Phase != PhaseIdle
	if e.Running != nil {
		running = *e.Running
	}
	next := LoopState{
		Running:        running,
		Phase:          e.Phase,
		Topic:          e.Topic,
		Category:       e.Category,
		CompletedCount: e.CompletedCount,
		LastUpdated:    arrived,
		Source:         SourcePush,
		lastPush:       arrived,
	}
	if next.Phase == PhaseActive && next.Category == "" && next.Topic != "" {
		next.Category = InferCategory(next.Topic)
	}
	if next.CompletedCount < s.CompletedCount {
		next.CompletedCount = s.CompletedCount
	}
	return next
}

// ApplyPull merges a polled snapshot. A pull only backfills: it is ignored
// while the last push is younger than staleAfter, so a snapshot observed
// before a push cannot undo it.
func (s LoopState) ApplyPull(snap LoopSnapshot, arrived time.Time, staleAfter time.Duration) LoopState {
	if arrived.Before(s.LastUpdated) {
		return s
	}
	if !s.lastPush.IsZero() && arrived.Sub(s.lastPush) < staleAfter {
		return s
	}
	next := LoopState{
		Running:        snap.Running,
		Phase:          snap.Phase(),
		Topic:          snap.Topic,
		Category:       snap.Category,
		CompletedCount: snap.CompletedCount,
		LastUpdated:    arrived,
		Source:         SourcePull,
		lastPush:       s.lastPush,
	}
	if next.Phase == PhaseActive && next.Category == "" {
		next.Category = InferCategory(next.Topic)
	}
	return next
}

// PullFunc fetches one loop snapshot.
type PullFunc func(ctx context.Context) (LoopSnapshot, error)

// Poller pulls a LoopSnapshot every interval. A tick that fires while the
// previous pull is still running is skipped. Failed pulls are dropped.
type Poller struct {
	interval time.Duration
	pull     PullFunc
	logger   Logger
	now      func() time.Time

	inFlight atomic.Bool
	skipped  atomic.Int64
}

// PollResult is one successful pull.
type PollResult struct {
	Snapshot LoopSnapshot
	Arrived  time.Time
}

// NewPoller constructs a poller; interval <= 0 uses the default.
func NewPoller(interval time.Duration, pull PullFunc) *Poller {
	if interval <= 0 {
		interval = DefaultConfig().PollInterval
	}
	return &Poller{interval: interval, pull: pull, logger: noopLogger{}, now: time.Now}
}

// SetLogger overrides logger (optional).
func (p *Poller) SetLogger(l Logger) {
	if l != nil {
		p.logger = l
	}
}

// Skipped returns how many ticks were suppressed by an in-flight pull.
func (p *Poller) Skipped() int64 { return p.skipped.Load() }

// Run polls immediately and then on every tick until ctx is done, sending
// results to out. It returns ctx.Err().
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx, out)
		}
	}
}

// Tick starts one pull in the background unless one is already running.
// It reports whether a pull was started.
func (p *Poller) Tick(ctx context.Context, out chan<- PollResult) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		return false
	}
	go func() {
		defer p.inFlight.Store(false)
		snap, err := p.pull(ctx)
		if err != nil {
			p.logger.Debug("status pull failed", map[string]any{"error": err.Error()})
			return
		}
		select {
		case out <- PollResult{Snapshot: snap, Arrived: p.now()}:
		case <-ctx.Done():
		}
	}()
	return true
}
