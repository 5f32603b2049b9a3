package debatewire

import (
	"fmt"
	"strings"
)

// Channel selects which push stream a frame arrived on.
type Channel int

const (
	ChannelRoom Channel = iota
	ChannelFeed
)

// String returns the string representation of a Channel.
func (c Channel) String() string {
	if c == ChannelFeed {
		return "feed"
	}
	return "room"
}

// DecodeFrame parses one payload into an Event. Room-stream frames that omit
// debate_id are attributed to fallback; feed frames must carry it.
//
// Every failure is a *DebateError for which IsFrameError reports true.
func DecodeFrame(ch Channel, fallback RoomID, payload []byte) (Event, error) {
	var f Frame
	if err := UnmarshalFrame(payload, &f); err != nil {
		return nil, WrapError(ErrorSerialization, "failed to unmarshal frame", err)
	}
	return decode(ch, fallback, f)
}

func decode(ch Channel, fallback RoomID, f Frame) (Event, error) {
	switch f.Type {
	case frameTypePing:
		return Heartbeat{}, nil
	case frameTypeLoopStatus:
		return LoopStatus{
			Phase:           parsePhase(f.Status),
			Running:         f.Running,
			Topic:           f.Topic,
			Category:        f.Category,
			CompletedCount:  f.DebatesRun,
			CooldownSeconds: f.CooldownSeconds,
		}, nil
	case "":
		return nil, NewError(ErrorSerialization, "frame without type")
	}

	room, err := frameRoom(ch, fallback, f)
	if err != nil {
		return nil, err
	}
	ts := parseTimestamp(f.Timestamp)

	switch f.Type {
	case frameTypeHistorical, frameTypeAgentDone:
		return MessageComplete{RoomID: room, Participant: f.Agent, Round: f.Round, Text: f.Content, Timestamp: ts}, nil
	case frameTypeAgentChunk:
		return MessageChunk{RoomID: room, Participant: f.Agent, Round: f.Round, Text: f.Content, Timestamp: ts}, nil
	case frameTypeRoundStart:
		return RoundStarted{RoomID: room, Round: f.Round, Label: f.Content, Timestamp: ts}, nil
	case frameTypeDebateStart:
		topic := f.Topic
		if topic == "" {
			topic = strings.TrimPrefix(f.Content, debateStartedPrefix)
		}
		return RoomOpened{RoomID: room, Topic: topic, Timestamp: ts}, nil
	case frameTypeDebateEnd:
		summary := f.Summary
		if summary == "" {
			summary = f.Content
		}
		return RoomClosed{
			RoomID:            room,
			Verdict:           f.Verdict,
			VerdictConfidence: f.VerdictConfidence,
			Scores:            f.AgentScores,
			Summary:           summary,
			Timestamp:         ts,
		}, nil
	default:
		return nil, NewError(ErrorUnknownFrame, fmt.Sprintf("unknown frame type %q", f.Type))
	}
}

func frameRoom(ch Channel, fallback RoomID, f Frame) (RoomID, error) {
	if f.DebateID != nil {
		return RoomID(*f.DebateID), nil
	}
	if ch == ChannelRoom && fallback != 0 {
		return fallback, nil
	}
	return 0, NewError(ErrorMissingRoom, fmt.Sprintf("%s frame %q without debate_id", ch, f.Type))
}

func parsePhase(status string) LoopPhase {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "debating", "active":
		return PhaseActive
	case "cooldown":
		return PhaseCooldown
	default:
		return PhaseIdle
	}
}
