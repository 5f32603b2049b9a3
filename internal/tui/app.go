package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
	"github.com/vovakirdan/debatewire-sdk-go/internal/output"
)

// categoryCycle is the order the filter key steps through.
var categoryCycle = append([]string{"all"}, debatewire.Categories...)

// AppModel renders the live dashboard: loop banner, the open room's
// transcript and verdict, and the global feed.
type AppModel struct {
	dash   Dashboard
	ctx    context.Context
	filter debatewire.FeedFilter

	view   debatewire.View
	loaded bool
	err    error // last failed action, cleared by the next key press
	width  int
	height int
}

func NewAppModel(ctx context.Context, dash Dashboard, filter debatewire.FeedFilter) AppModel {
	if filter.Category == "" {
		filter.Category = "all"
	}
	return AppModel{dash: dash, ctx: ctx, filter: filter}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		SnapshotCmd(m.ctx, m.dash, m.filter),
		WaitForUpdateCmd(m.dash.Updates()),
	)
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case UpdateMsg:
		return m, tea.Batch(SnapshotCmd(m.ctx, m.dash, m.filter), WaitForUpdateCmd(m.dash.Updates()))

	case RoomLeftMsg:
		return m, SnapshotCmd(m.ctx, m.dash, m.filter)

	case ViewMsg:
		m.view = msg.View
		m.loaded = true
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.filter.Category = nextCategory(m.filter.Category)
			return m, SnapshotCmd(m.ctx, m.dash, m.filter)
		case "esc":
			if m.view.Room != 0 {
				return m, LeaveRoomCmd(m.ctx, m.dash)
			}
		}
	}
	return m, nil
}

func nextCategory(cur string) string {
	for i, c := range categoryCycle {
		if c == cur {
			return categoryCycle[(i+1)%len(categoryCycle)]
		}
	}
	return categoryCycle[0]
}

// View implements tea.Model.
func (m AppModel) View() string {
	if !m.loaded {
		return "Connecting..."
	}

	var b strings.Builder
	b.WriteString(output.RenderBanner(m.view.Banner))
	b.WriteString("  ")
	b.WriteString(output.RenderState("feed", m.view.FeedConn))
	if m.view.Room != 0 {
		b.WriteString("  ")
		b.WriteString(output.RenderState(fmt.Sprintf("room #%d", m.view.Room), m.view.RoomConn))
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(output.ErrorStyle.Render("✗ "+m.err.Error()) + "\n")
	}

	feedLines := m.feedLines()
	if m.view.Room != 0 {
		room := m.roomLines()
		// keep the newest transcript rows visible above the feed
		if budget := m.height - len(feedLines) - 4; m.height > 0 && budget > 3 && len(room) > budget {
			room = room[len(room)-budget:]
		}
		b.WriteString(strings.Join(room, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(feedLines, "\n"))
	b.WriteString("\n")
	b.WriteString(output.MutedStyle.Render("c: category  esc: leave room  q: quit"))
	return b.String()
}

func (m AppModel) roomLines() []string {
	lines := []string{output.TitleStyle.Render(m.view.Topic)}
	for _, r := range m.view.Transcript {
		lines = append(lines, strings.Split(m.wrap(output.RenderTranscriptRow(r)), "\n")...)
	}
	if m.view.Verdict != nil {
		lines = append(lines, strings.Split(output.RenderVerdict(*m.view.Verdict), "\n")...)
	}
	return lines
}

func (m AppModel) feedLines() []string {
	lines := []string{output.TitleStyle.Render(fmt.Sprintf("Feed [%s]", m.filter.Category))}
	rows := m.view.Feed
	if limit := m.feedLimit(); limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		lines = append(lines, output.MutedStyle.Render("No activity yet"))
	}
	for _, r := range rows {
		lines = append(lines, output.RenderFeedRow(r))
	}
	return lines
}

// feedLimit gives the feed a third of the screen while a room is open.
func (m AppModel) feedLimit() int {
	if m.height <= 0 {
		return 0
	}
	if m.view.Room != 0 {
		return max(m.height/3, 3)
	}
	return max(m.height-4, 3)
}

func (m AppModel) wrap(s string) string {
	if m.width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(m.width).Render(s)
}
