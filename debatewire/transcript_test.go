package debatewire

import (
	"strings"
	"testing"
)

func applyAll(t Transcript, events ...Event) Transcript {
	for _, ev := range events {
		t = t.Apply(ev)
	}
	return t
}

func messages(t Transcript) []TranscriptEntry {
	var out []TranscriptEntry
	for _, e := range t.Entries {
		if e.Kind == EntryMessage {
			out = append(out, e)
		}
	}
	return out
}

func TestChunksConcatenateUntilParticipantChanges(t *testing.T) {
	parts := []string{"The ", "floor ", "is ", "legal."}
	tr := NewTranscript(9)
	for _, p := range parts {
		tr = tr.Apply(MessageChunk{RoomID: 9, Participant: "Regs", Round: 1, Text: p})
		msgs := messages(tr)
		if len(msgs) != 1 {
			t.Fatalf("expected one entry, got %d", len(msgs))
		}
		if msgs[0].Complete {
			t.Fatalf("entry completed while still streaming")
		}
	}
	if got := messages(tr)[0].Text; got != strings.Join(parts, "") {
		t.Fatalf("text = %q", got)
	}

	tr = tr.Apply(MessageChunk{RoomID: 9, Participant: "Rival", Round: 1, Text: "No."})
	msgs := messages(tr)
	if len(msgs) != 2 || !msgs[0].Complete || msgs[1].Complete {
		t.Fatalf("unexpected entries after participant switch: %+v", msgs)
	}
	if tr.OpenEntry() != len(tr.Entries)-1 {
		t.Fatalf("open entry = %d", tr.OpenEntry())
	}
}

func TestChunkForDifferentRoundOpensNewEntry(t *testing.T) {
	tr := applyAll(NewTranscript(1),
		MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "one"},
		MessageChunk{RoomID: 1, Participant: "A", Round: 2, Text: "two"},
	)
	msgs := messages(tr)
	if len(msgs) != 2 || msgs[0].Text != "one" || msgs[1].Text != "two" {
		t.Fatalf("unexpected entries: %+v", msgs)
	}
}

func TestRoundStartResetsOpenEntry(t *testing.T) {
	tr := applyAll(NewTranscript(1),
		MessageChunk{RoomID: 1, Participant: "A", Round: 2, Text: "evidence"},
		RoundStarted{RoomID: 1, Round: 2, Label: "Round 2 again"},
		MessageChunk{RoomID: 1, Participant: "A", Round: 2, Text: "fresh"},
	)
	msgs := messages(tr)
	if len(msgs) != 2 {
		t.Fatalf("chunk after divider appended to stale entry: %+v", msgs)
	}
	if !msgs[0].Complete || msgs[1].Text != "fresh" {
		t.Fatalf("unexpected entries: %+v", msgs)
	}
	if tr.Entries[1].Kind != EntryDivider || tr.Entries[1].Text != "Round 2 again" {
		t.Fatalf("missing divider: %+v", tr.Entries[1])
	}
}

func TestMessageCompleteFinalizesMatchingStream(t *testing.T) {
	tr := applyAll(NewTranscript(1),
		MessageChunk{RoomID: 1, Participant: "A", Round: 3, Text: "I thi"},
		MessageComplete{RoomID: 1, Participant: "A", Round: 3, Text: "I think so."},
	)
	msgs := messages(tr)
	if len(msgs) != 1 || !msgs[0].Complete || msgs[0].Text != "I think so." {
		t.Fatalf("unexpected entries: %+v", msgs)
	}
	if tr.OpenEntry() != -1 {
		t.Fatalf("open entry not cleared")
	}
}

func TestHistoricalMessageLeavesStreamOpen(t *testing.T) {
	tr := applyAll(NewTranscript(1),
		MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "live"},
		MessageComplete{RoomID: 1, Participant: "B", Round: 1, Text: "replayed"},
		MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: " text"},
	)
	msgs := messages(tr)
	if len(msgs) != 2 {
		t.Fatalf("unexpected entries: %+v", msgs)
	}
	if msgs[0].Text != "live text" || msgs[0].Complete {
		t.Fatalf("stream entry = %+v", msgs[0])
	}
	if !msgs[1].Complete {
		t.Fatalf("historical entry should be complete")
	}
}

func TestHistoryReplayAfterReconnectIsIgnored(t *testing.T) {
	live := []Event{
		MessageChunk{RoomID: 7, Participant: "A", Round: 1, Text: "hel"},
		MessageChunk{RoomID: 7, Participant: "A", Round: 1, Text: "lo"},
		MessageComplete{RoomID: 7, Participant: "A", Round: 1, Text: "hello"},
		MessageComplete{RoomID: 7, Participant: "B", Round: 1, Text: "hi"},
	}
	replay := []Event{
		MessageComplete{RoomID: 7, Participant: "A", Round: 1, Text: "hello"},
		MessageComplete{RoomID: 7, Participant: "B", Round: 1, Text: "hi"},
		MessageComplete{RoomID: 7, Participant: "A", Round: 2, Text: "missed while away"},
	}
	tr := applyAll(applyAll(NewTranscript(7), live...), replay...)

	msgs := messages(tr)
	if len(msgs) != 3 {
		t.Fatalf("replayed history duplicated entries: %+v", msgs)
	}
	if msgs[2].Text != "missed while away" || !msgs[2].Complete {
		t.Fatalf("missed message not appended: %+v", msgs[2])
	}
}

func TestRoomClosedFinalizesAndSetsVerdict(t *testing.T) {
	verdict, conf := "pass", 82.0
	tr := applyAll(NewTranscript(5),
		MessageChunk{RoomID: 5, Participant: "A", Round: 3, Text: "done?"},
		RoomClosed{RoomID: 5, Verdict: &verdict, VerdictConfidence: &conf, Summary: "A wins", Scores: map[string]float64{"A": 8}},
	)
	if !tr.Closed {
		t.Fatalf("transcript not closed")
	}
	if msgs := messages(tr); !msgs[0].Complete {
		t.Fatalf("open entry not finalized")
	}
	last := tr.Entries[len(tr.Entries)-1]
	if last.Kind != EntrySystem || last.Text != "A wins" {
		t.Fatalf("summary entry = %+v", last)
	}
	if tr.Verdict == nil || tr.Verdict.Outcome != "pass" || *tr.Verdict.Confidence != 82 {
		t.Fatalf("verdict = %+v", tr.Verdict)
	}

	// redelivery does not duplicate the closing rows
	again := tr.Apply(RoomClosed{RoomID: 5, Summary: "A wins"})
	if len(again.Entries) != len(tr.Entries) {
		t.Fatalf("redelivered RoomClosed appended rows")
	}
	if again.Verdict.Outcome != "pass" {
		t.Fatalf("redelivery dropped verdict")
	}
}

func TestSwitchingRoomsNeverLeaksEntries(t *testing.T) {
	tr := applyAll(Transcript{},
		RoomOpened{RoomID: 1, Topic: "A topic"},
		MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "room one"},
		RoomOpened{RoomID: 2, Topic: "B topic"},
		MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "late room one"},
		MessageComplete{RoomID: 1, Participant: "A", Round: 1, Text: "late room one"},
		MessageChunk{RoomID: 2, Participant: "B", Round: 1, Text: "room two"},
	)
	if tr.RoomID != 2 || tr.Topic != "B topic" {
		t.Fatalf("transcript bound to %d %q", tr.RoomID, tr.Topic)
	}
	for _, e := range tr.Entries {
		if strings.Contains(e.Text, "room one") {
			t.Fatalf("entry from room 1 leaked: %+v", e)
		}
	}
	if len(messages(tr)) != 1 {
		t.Fatalf("unexpected entries: %+v", tr.Entries)
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	before := applyAll(NewTranscript(1), MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "a"})
	after := before.Apply(MessageChunk{RoomID: 1, Participant: "A", Round: 1, Text: "b"})
	if before.Entries[0].Text != "a" {
		t.Fatalf("receiver mutated: %q", before.Entries[0].Text)
	}
	if after.Entries[0].Text != "ab" {
		t.Fatalf("result = %q", after.Entries[0].Text)
	}
}

func TestSeedKeepsStreamedTopic(t *testing.T) {
	tr := NewTranscript(3).Seed("From REST", []string{"A", "B"})
	if tr.Topic != "From REST" || len(tr.Participants) != 2 {
		t.Fatalf("seed = %+v", tr)
	}
	tr = tr.Apply(RoomOpened{RoomID: 3, Topic: "From stream"}).Seed("From REST", nil)
	if tr.Topic != "From stream" {
		t.Fatalf("topic = %q", tr.Topic)
	}
	if len(tr.Participants) != 2 {
		t.Fatalf("participants lost on reopen: %v", tr.Participants)
	}
}
