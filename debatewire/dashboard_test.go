package debatewire

import (
	"context"
	"errors"
	"testing"
	"time"
)

type dashHarness struct {
	d     *Dashboard
	net   *fakeNet
	sched *fakeScheduler
	feed  *fakeConn
	done  chan error
}

func startDashboard(t *testing.T, opts ...Option) *dashHarness {
	t.Helper()
	h := &dashHarness{net: &fakeNet{}, sched: &fakeScheduler{}, done: make(chan error, 1)}
	opts = append([]Option{WithTransport(h.net.dial, h.sched.after)}, opts...)
	h.d = NewDashboard(Config{URL: "ws://backend"}, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.done <- h.d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	select {
	case <-h.d.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("dashboard never became ready")
	}
	h.feed = h.net.await(t, "/api/loop/feed", 1)
	return h
}

func (h *dashHarness) view(t *testing.T) View {
	t.Helper()
	v, err := h.d.Snapshot(context.Background(), FeedFilter{})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return v
}

// until polls the view until cond holds and returns the matching view.
func (h *dashHarness) until(t *testing.T, what string, cond func(View) bool) View {
	t.Helper()
	var v View
	waitFor(t, what, func() bool {
		v = h.view(t)
		return cond(v)
	})
	return v
}

func TestDashboardRoomLifecycle(t *testing.T) {
	h := startDashboard(t)
	ctx := context.Background()

	if err := h.d.OpenRoom(ctx, 5); err != nil {
		t.Fatalf("open room: %v", err)
	}
	room := h.net.await(t, "/api/debates/5/stream", 1)

	h.feed.send(`{"type":"debate_start","agent":"system","content":"Debate started: Will X win?","debate_id":5}`)
	room.send(
		`{"type":"debate_start","agent":"system","content":"Debate started: Will X win?","debate_id":5}`,
		`{"type":"agent_chunk","agent":"A","round":3,"content":"I ","debate_id":5}`,
		`{"type":"agent_chunk","agent":"A","round":3,"content":"think yes","debate_id":5}`,
		`{"type":"debate_end","agent":"system","content":"A carried it","verdict":"pass","verdict_confidence":82,"agent_scores":{"A":8},"debate_id":5}`,
	)
	h.feed.send(`{"type":"debate_end","agent":"system","content":"A carried it","verdict":"pass","verdict_confidence":82,"agent_scores":{"A":8},"debate_id":5}`)

	v := h.until(t, "verdict", func(v View) bool { return v.Verdict != nil && len(v.Feed) == 1 && v.Feed[0].Kind == FeedVerdict })

	if v.Room != 5 || v.Topic != "Will X win?" {
		t.Fatalf("room %d topic %q", v.Room, v.Topic)
	}
	var msgs []TranscriptRow
	for _, r := range v.Transcript {
		if r.Kind == EntryMessage {
			msgs = append(msgs, r)
		}
	}
	if len(msgs) != 1 || msgs[0].Text != "I think yes" || msgs[0].Streaming {
		t.Fatalf("transcript = %+v", v.Transcript)
	}
	if v.Verdict.Outcome != "pass" || v.Verdict.Confidence != "82%" {
		t.Fatalf("verdict = %+v", v.Verdict)
	}
	if v.Feed[0].Category != CategoryPrediction || v.Feed[0].RoomID != 5 {
		t.Fatalf("feed row = %+v", v.Feed[0])
	}
}

func TestDashboardSwitchingRoomsHasNoCrossTalk(t *testing.T) {
	h := startDashboard(t)
	ctx := context.Background()

	if err := h.d.OpenRoom(ctx, 1); err != nil {
		t.Fatalf("open room 1: %v", err)
	}
	first := h.net.await(t, "/api/debates/1/stream", 1)
	first.send(`{"type":"agent_chunk","agent":"A","round":1,"content":"from one"}`)
	h.until(t, "room 1 chunk", func(v View) bool { return len(v.Transcript) == 1 })

	if err := h.d.OpenRoom(ctx, 2); err != nil {
		t.Fatalf("open room 2: %v", err)
	}
	second := h.net.await(t, "/api/debates/2/stream", 1)
	if !first.isClosed() {
		t.Fatalf("room 1 stream left open")
	}
	first.send(`{"type":"agent_chunk","agent":"A","round":1,"content":" late"}`)
	second.send(`{"type":"agent_chunk","agent":"B","round":1,"content":"from two"}`)

	v := h.until(t, "room 2 chunk", func(v View) bool { return len(v.Transcript) > 0 })
	if v.Room != 2 || len(v.Transcript) != 1 || v.Transcript[0].Text != "from two" {
		t.Fatalf("view = %+v", v)
	}
}

func TestDashboardRoomReconnectDoesNotDuplicateHistory(t *testing.T) {
	h := startDashboard(t)
	if err := h.d.OpenRoom(context.Background(), 7); err != nil {
		t.Fatalf("open room: %v", err)
	}
	first := h.net.await(t, "/api/debates/7/stream", 1)
	first.send(
		`{"type":"agent_chunk","agent":"A","round":1,"content":"hello"}`,
		`{"type":"agent_done","agent":"A","round":1,"content":"hello"}`,
	)
	h.until(t, "message complete", func(v View) bool { return len(v.Transcript) == 1 && !v.Transcript[0].Streaming })

	first.drop()
	waitFor(t, "reconnect scheduled", func() bool { return h.sched.count() == 1 })
	h.sched.fire(0)
	second := h.net.await(t, "/api/debates/7/stream", 2)
	second.send(
		`{"type":"historical","agent":"A","round":1,"content":"hello"}`,
		`{"type":"round_start","round":2,"content":"Evidence"}`,
	)

	v := h.until(t, "round after replay", func(v View) bool { return len(v.Transcript) >= 2 })
	var msgs int
	for _, r := range v.Transcript {
		if r.Kind == EntryMessage {
			msgs++
		}
	}
	if msgs != 1 {
		t.Fatalf("message rows after reconnect = %d, want 1: %+v", msgs, v.Transcript)
	}
}

func TestDashboardLeaveRoomKeepsFeed(t *testing.T) {
	h := startDashboard(t)
	ctx := context.Background()

	if err := h.d.OpenRoom(ctx, 3); err != nil {
		t.Fatalf("open room: %v", err)
	}
	room := h.net.await(t, "/api/debates/3/stream", 1)
	if err := h.d.LeaveRoom(ctx); err != nil {
		t.Fatalf("leave room: %v", err)
	}
	if !room.isClosed() {
		t.Fatalf("room stream left open")
	}

	h.feed.send(`{"type":"debate_start","content":"Debate started: Who wins in Monaco?","debate_id":8}`)
	v := h.until(t, "feed item", func(v View) bool { return len(v.Feed) == 1 })
	if v.Room != 0 || v.RoomConn != StateDisconnected || v.Transcript != nil {
		t.Fatalf("room still attached: %+v", v)
	}
	if v.FeedConn != StateConnected {
		t.Fatalf("feed state = %s", v.FeedConn)
	}
}

func TestDashboardRoomDetailSeedsTranscript(t *testing.T) {
	detail := func(ctx context.Context, id RoomID) (RoomDetail, error) {
		return RoomDetail{Topic: "Seeded topic", Participants: []string{"A", "B"}}, nil
	}
	h := startDashboard(t, WithRoomDetail(detail))
	if err := h.d.OpenRoom(context.Background(), 6); err != nil {
		t.Fatalf("open room: %v", err)
	}
	v := h.view(t)
	if v.Room != 6 || v.Topic != "Seeded topic" {
		t.Fatalf("view = %+v", v)
	}
}

func TestDashboardRoomDetailFailureIsNotFatal(t *testing.T) {
	detail := func(ctx context.Context, id RoomID) (RoomDetail, error) {
		return RoomDetail{}, errors.New("not found")
	}
	h := startDashboard(t, WithRoomDetail(detail))
	if err := h.d.OpenRoom(context.Background(), 6); err != nil {
		t.Fatalf("open room: %v", err)
	}
	h.net.await(t, "/api/debates/6/stream", 1)
}

func TestDashboardPollsLoopStatus(t *testing.T) {
	pull := func(ctx context.Context) (LoopSnapshot, error) {
		return LoopSnapshot{Running: true, CompletedCount: 2}, nil
	}
	h := startDashboard(t, WithPull(pull))
	v := h.until(t, "poll applied", func(v View) bool { return v.Loop.Source == SourcePull })
	if v.Banner.Label != "Cooldown · 2 debates run" || !v.Banner.Visible {
		t.Fatalf("banner = %+v", v.Banner)
	}

	h.feed.send(`{"type":"loop_status","status":"debating","topic":"Will X win?","debates_run":2}`)
	v = h.until(t, "push applied", func(v View) bool { return v.Loop.Source == SourcePush })
	if v.Banner.Label != "Debating [prediction]: Will X win?" {
		t.Fatalf("banner = %+v", v.Banner)
	}
}

func TestDashboardCommandsRequireRun(t *testing.T) {
	d := NewDashboard(Config{URL: "ws://backend"})
	if _, err := d.Snapshot(context.Background(), FeedFilter{}); !errors.Is(err, NewError(ErrorNotRunning, "")) {
		t.Fatalf("snapshot before run: %v", err)
	}

	h := startDashboard(t)
	if err := h.d.Run(context.Background()); err == nil {
		t.Fatalf("second Run should fail")
	}
}
