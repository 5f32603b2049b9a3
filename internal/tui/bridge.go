package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
)

// Dashboard is the part of *debatewire.Dashboard the TUI drives.
type Dashboard interface {
	Updates() <-chan struct{}
	Snapshot(ctx context.Context, filter debatewire.FeedFilter) (debatewire.View, error)
	LeaveRoom(ctx context.Context) error
}

// UpdateMsg signals that the dashboard state changed.
type UpdateMsg struct{}

// ViewMsg carries a fresh projection of the dashboard.
type ViewMsg struct {
	View debatewire.View
}

// RoomLeftMsg follows a successful LeaveRoomCmd.
type RoomLeftMsg struct{}

// ErrMsg is a failed action, shown until the next key press.
type ErrMsg struct {
	Err error
}

// WaitForUpdateCmd blocks until the dashboard signals a change.
func WaitForUpdateCmd(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return UpdateMsg{}
	}
}

// SnapshotCmd projects the dashboard with filter.
func SnapshotCmd(ctx context.Context, d Dashboard, filter debatewire.FeedFilter) tea.Cmd {
	return func() tea.Msg {
		v, err := d.Snapshot(ctx, filter)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ViewMsg{View: v}
	}
}

// LeaveRoomCmd detaches the room, keeping the feed.
func LeaveRoomCmd(ctx context.Context, d Dashboard) tea.Cmd {
	return func() tea.Msg {
		if err := d.LeaveRoom(ctx); err != nil {
			return ErrMsg{Err: err}
		}
		return RoomLeftMsg{}
	}
}
