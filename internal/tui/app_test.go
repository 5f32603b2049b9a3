package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
)

type fakeDashboard struct {
	updates  chan struct{}
	view     debatewire.View
	filters  []debatewire.FeedFilter
	left     int
	leaveErr error
}

func (d *fakeDashboard) Updates() <-chan struct{} { return d.updates }

func (d *fakeDashboard) Snapshot(ctx context.Context, filter debatewire.FeedFilter) (debatewire.View, error) {
	d.filters = append(d.filters, filter)
	return d.view, nil
}

func (d *fakeDashboard) LeaveRoom(ctx context.Context) error {
	d.left++
	return d.leaveErr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func roomView() debatewire.View {
	return debatewire.View{
		Banner:   debatewire.LoopBanner{Label: "Debating [prediction]: Will X win?", Visible: true},
		Room:     5,
		Topic:    "Will X win?",
		FeedConn: debatewire.StateConnected,
		RoomConn: debatewire.StateConnected,
		Transcript: []debatewire.TranscriptRow{
			{Kind: debatewire.EntryMessage, Participant: "A", Round: 3, Text: "I think yes"},
		},
		Verdict: &debatewire.VerdictView{Outcome: "pass", Confidence: "82%"},
		Feed: []debatewire.FeedRow{
			{Kind: debatewire.FeedVerdict, RoomID: 5, Topic: "Will X win?", Category: "prediction"},
		},
	}
}

func TestAppModelRendersSnapshot(t *testing.T) {
	d := &fakeDashboard{updates: make(chan struct{}), view: roomView()}
	m := NewAppModel(context.Background(), d, debatewire.FeedFilter{})

	if got := m.View(); got != "Connecting..." {
		t.Fatalf("initial view = %q", got)
	}

	msg := SnapshotCmd(context.Background(), d, m.filter)()
	next, _ := m.Update(msg)
	out := next.(AppModel).View()
	for _, w := range []string{"Debating [prediction]: Will X win?", "room #5", "I think yes", "pass", "82%", "Feed [all]"} {
		if !strings.Contains(out, w) {
			t.Errorf("view missing %q:\n%s", w, out)
		}
	}
}

func TestAppModelCyclesCategory(t *testing.T) {
	d := &fakeDashboard{updates: make(chan struct{}), view: roomView()}
	var model tea.Model = NewAppModel(context.Background(), d, debatewire.FeedFilter{})

	model, cmd := model.Update(key("c"))
	if got := model.(AppModel).filter.Category; got != debatewire.CategoryBreaking {
		t.Fatalf("category = %q", got)
	}
	cmd()
	if last := d.filters[len(d.filters)-1]; last.Category != debatewire.CategoryBreaking {
		t.Fatalf("snapshot filter = %+v", last)
	}

	if got := nextCategory(debatewire.CategoryDefault); got != "all" {
		t.Fatalf("cycle should wrap, got %q", got)
	}
}

func TestAppModelLeaveRoom(t *testing.T) {
	d := &fakeDashboard{updates: make(chan struct{}), view: roomView()}
	var model tea.Model = NewAppModel(context.Background(), d, debatewire.FeedFilter{})
	model, _ = model.Update(ViewMsg{View: d.view})

	_, cmd := model.Update(key("esc"))
	if cmd == nil {
		t.Fatalf("esc should leave the open room")
	}
	if _, ok := cmd().(RoomLeftMsg); !ok || d.left != 1 {
		t.Fatalf("leave not issued")
	}

	d.leaveErr = errors.New("dashboard stopped")
	_, cmd = model.Update(key("esc"))
	model, _ = model.Update(cmd())
	if !strings.Contains(model.View(), "dashboard stopped") {
		t.Fatalf("action error not shown")
	}
	model, _ = model.Update(key("x"))
	if strings.Contains(model.View(), "dashboard stopped") {
		t.Fatalf("error should clear on next key")
	}
}

func TestAppModelQuits(t *testing.T) {
	d := &fakeDashboard{updates: make(chan struct{})}
	_, cmd := NewAppModel(context.Background(), d, debatewire.FeedFilter{}).Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestWaitForUpdateCmd(t *testing.T) {
	updates := make(chan struct{}, 1)
	updates <- struct{}{}
	if _, ok := WaitForUpdateCmd(updates)().(UpdateMsg); !ok {
		t.Fatalf("expected UpdateMsg")
	}
	close(updates)
	if msg := WaitForUpdateCmd(updates)(); msg != nil {
		t.Fatalf("closed channel should end the wait, got %T", msg)
	}
}
