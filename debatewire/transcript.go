package debatewire

import (
	"maps"
	"slices"
	"time"
)

// EntryKind distinguishes transcript rows.
type EntryKind int

const (
	EntryMessage EntryKind = iota
	EntryDivider
	EntrySystem
)

// TranscriptEntry is one row of a room transcript. Dividers and system rows
// are always complete.
type TranscriptEntry struct {
	Kind        EntryKind
	Participant string
	Round       int
	Text        string
	Complete    bool
	Timestamp   time.Time
}

// Verdict is the resolved outcome of a closed room. It is kept beside the
// transcript, not in it.
type Verdict struct {
	Outcome    string
	Confidence *float64
	Scores     map[string]float64
	Summary    string
}

// Transcript is the assembled state of one room. The zero value is an empty
// transcript not yet bound to a room; the first room-scoped event binds it.
type Transcript struct {
	RoomID       RoomID
	Topic        string
	Participants []string
	Entries      []TranscriptEntry
	Verdict      *Verdict
	Closed       bool

	open int // index of the streaming entry, -1 when none
}

// NewTranscript returns an empty transcript bound to id.
func NewTranscript(id RoomID) Transcript {
	return Transcript{RoomID: id, open: -1}
}

// Seed fills static room details fetched before the stream connects. Topic
// and participants already known from the stream win.
func (t Transcript) Seed(topic string, participants []string) Transcript {
	if t.Topic == "" {
		t.Topic = topic
	}
	if len(t.Participants) == 0 {
		t.Participants = slices.Clone(participants)
	}
	return t
}

// OpenEntry returns the index of the entry still receiving chunks, or -1.
func (t Transcript) OpenEntry() int {
	if t.Entries == nil {
		return -1
	}
	return t.open
}

// Apply folds one event into the transcript and returns the result. t is not
// modified. Events for other rooms are ignored, except RoomOpened which
// rebinds the transcript.
func (t Transcript) Apply(ev Event) Transcript {
	scoped, ok := ev.(RoomScoped)
	if !ok {
		return t
	}
	if opened, ok := ev.(RoomOpened); ok {
		next := NewTranscript(opened.RoomID)
		next.Topic = opened.Topic
		if opened.RoomID == t.RoomID {
			next.Participants = t.Participants
		}
		return next
	}
	if t.RoomID == 0 {
		t = NewTranscript(scoped.Room())
	} else if scoped.Room() != t.RoomID {
		return t
	}
	if t.Entries == nil {
		t.open = -1
	}

	t.Entries = slices.Clone(t.Entries)
	switch e := ev.(type) {
	case RoundStarted:
		t = t.finalizeOpen()
		t.Entries = append(t.Entries, TranscriptEntry{
			Kind: EntryDivider, Round: e.Round, Text: e.Label, Complete: true, Timestamp: e.Timestamp,
		})
	case MessageChunk:
		t = t.noteParticipant(e.Participant)
		if t.open >= 0 && t.matchesOpen(e.Participant, e.Round) {
			t.Entries[t.open].Text += e.Text
			break
		}
		t = t.finalizeOpen()
		t.Entries = append(t.Entries, TranscriptEntry{
			Kind: EntryMessage, Participant: e.Participant, Round: e.Round, Text: e.Text, Timestamp: e.Timestamp,
		})
		t.open = len(t.Entries) - 1
	case MessageComplete:
		t = t.noteParticipant(e.Participant)
		if t.open >= 0 && t.matchesOpen(e.Participant, e.Round) {
			if e.Text != "" {
				t.Entries[t.open].Text = e.Text
			}
			t = t.finalizeOpen()
			break
		}
		// every new room connection replays stored history
		if t.hasComplete(e.Participant, e.Round, e.Text) {
			break
		}
		t.Entries = append(t.Entries, TranscriptEntry{
			Kind: EntryMessage, Participant: e.Participant, Round: e.Round, Text: e.Text, Complete: true, Timestamp: e.Timestamp,
		})
	case RoomClosed:
		t = t.finalizeOpen()
		if !t.Closed {
			t.Entries = append(t.Entries, TranscriptEntry{Kind: EntryDivider, Text: "Debate concluded", Complete: true, Timestamp: e.Timestamp})
			if e.Summary != "" {
				t.Entries = append(t.Entries, TranscriptEntry{Kind: EntrySystem, Text: e.Summary, Complete: true, Timestamp: e.Timestamp})
			}
		}
		t.Closed = true
		// a redelivered close without an outcome keeps the one already shown
		if t.Verdict == nil || e.Verdict != nil {
			t.Verdict = verdictFrom(e)
		}
	}
	return t
}

func (t Transcript) matchesOpen(participant string, round int) bool {
	cur := t.Entries[t.open]
	return cur.Participant == participant && cur.Round == round
}

func (t Transcript) hasComplete(participant string, round int, text string) bool {
	return slices.ContainsFunc(t.Entries, func(e TranscriptEntry) bool {
		return e.Kind == EntryMessage && e.Complete &&
			e.Participant == participant && e.Round == round && e.Text == text
	})
}

// finalizeOpen expects t.Entries to be a private copy.
func (t Transcript) finalizeOpen() Transcript {
	if t.open >= 0 && t.open < len(t.Entries) {
		t.Entries[t.open].Complete = true
	}
	t.open = -1
	return t
}

func (t Transcript) noteParticipant(name string) Transcript {
	if name == "" || slices.Contains(t.Participants, name) {
		return t
	}
	t.Participants = append(slices.Clone(t.Participants), name)
	return t
}

func verdictFrom(e RoomClosed) *Verdict {
	if e.Verdict == nil && e.VerdictConfidence == nil && len(e.Scores) == 0 && e.Summary == "" {
		return nil
	}
	v := &Verdict{Confidence: e.VerdictConfidence, Scores: maps.Clone(e.Scores), Summary: e.Summary}
	if e.Verdict != nil {
		v.Outcome = *e.Verdict
	}
	return v
}
