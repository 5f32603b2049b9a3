package debatewire

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TranscriptRow is one renderable transcript line.
type TranscriptRow struct {
	Kind        EntryKind
	Participant string
	Round       int
	Text        string
	Streaming   bool
	Timestamp   time.Time
}

// ProjectTranscript returns the transcript rows in order.
func ProjectTranscript(t Transcript) []TranscriptRow {
	rows := make([]TranscriptRow, 0, len(t.Entries))
	for _, e := range t.Entries {
		rows = append(rows, TranscriptRow{
			Kind:        e.Kind,
			Participant: e.Participant,
			Round:       e.Round,
			Text:        e.Text,
			Streaming:   !e.Complete,
			Timestamp:   e.Timestamp,
		})
	}
	return rows
}

// VerdictView is the renderable verdict of a closed room.
type VerdictView struct {
	Outcome    string
	Confidence string
	Scores     []ParticipantScore
	Summary    string
}

// ParticipantScore is one participant's score, ordered highest first.
type ParticipantScore struct {
	Participant string
	Score       float64
}

// ProjectVerdict returns the room verdict, or false while the room is open.
func ProjectVerdict(t Transcript) (VerdictView, bool) {
	if t.Verdict == nil {
		return VerdictView{}, false
	}
	return verdictView(t.Verdict), true
}

func verdictView(v *Verdict) VerdictView {
	view := VerdictView{Outcome: v.Outcome, Summary: v.Summary}
	if v.Confidence != nil {
		view.Confidence = fmt.Sprintf("%.0f%%", *v.Confidence)
	}
	for name, score := range v.Scores {
		view.Scores = append(view.Scores, ParticipantScore{Participant: name, Score: score})
	}
	slices.SortFunc(view.Scores, func(a, b ParticipantScore) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Participant, b.Participant)
	})
	return view
}

// FeedFilter narrows ProjectFeed. Zero values match everything.
type FeedFilter struct {
	Category string
	Kinds    []FeedKind
	Limit    int
}

// FeedRow is one renderable feed line.
type FeedRow struct {
	Key          string
	Kind         FeedKind
	RoomID       RoomID
	Topic        string
	Category     string
	Participants []string
	Participant  string
	Content      string
	Verdict      *VerdictView
	Timestamp    time.Time
}

// ProjectFeed returns matching items newest first. Topic and category come
// from the room metadata cache when it knows the room.
func ProjectFeed(f FeedState, filter FeedFilter) []FeedRow {
	rows := make([]FeedRow, 0, len(f.Items))
	for _, it := range f.Items {
		row := FeedRow{
			Key:          it.ID.String(),
			Kind:         it.Kind,
			RoomID:       it.RoomID,
			Topic:        it.Topic,
			Category:     it.Category,
			Participants: slices.Clone(it.Participants),
			Participant:  it.Participant,
			Content:      it.Content,
			Timestamp:    it.Timestamp,
		}
		if m, ok := f.Meta(it.RoomID); ok {
			if m.Topic != "" {
				row.Topic = m.Topic
			}
			if m.Category != "" {
				row.Category = m.Category
			}
			if len(m.Participants) > len(row.Participants) {
				row.Participants = slices.Clone(m.Participants)
			}
		}
		if row.Category == "" {
			row.Category = InferCategory(row.Topic)
		}
		if it.Verdict != nil {
			v := verdictView(it.Verdict)
			row.Verdict = &v
		}
		if !filter.matches(row) {
			continue
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b FeedRow) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows
}

func (filter FeedFilter) matches(row FeedRow) bool {
	if filter.Category != "" && filter.Category != "all" && row.Category != filter.Category {
		return false
	}
	if len(filter.Kinds) > 0 && !slices.Contains(filter.Kinds, row.Kind) {
		return false
	}
	return true
}

// LoopBanner is the header line describing the backend loop.
type LoopBanner struct {
	Label   string
	Visible bool
}

// ProjectLoopBanner describes the loop state; the banner is hidden while the
// loop is idle.
func ProjectLoopBanner(s LoopState) LoopBanner {
	switch {
	case !s.Running || s.Phase == PhaseIdle:
		return LoopBanner{Label: "Loop idle", Visible: false}
	case s.Phase == PhaseActive && s.Topic != "":
		label := "Debating: " + s.Topic
		if s.Category != "" {
			label = fmt.Sprintf("Debating [%s]: %s", s.Category, s.Topic)
		}
		return LoopBanner{Label: label, Visible: true}
	case s.Phase == PhaseCooldown:
		return LoopBanner{Label: fmt.Sprintf("Cooldown · %d debates run", s.CompletedCount), Visible: true}
	default:
		return LoopBanner{Label: fmt.Sprintf("Loop running · %d debates run", s.CompletedCount), Visible: true}
	}
}
