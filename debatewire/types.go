package debatewire

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	frameTypePing        = "ping"
	frameTypeHistorical  = "historical"
	frameTypeAgentChunk  = "agent_chunk"
	frameTypeAgentDone   = "agent_done"
	frameTypeRoundStart  = "round_start"
	frameTypeDebateStart = "debate_start"
	frameTypeDebateEnd   = "debate_end"
	frameTypeLoopStatus  = "loop_status"

	debateStartedPrefix = "Debate started: "
)

// Frame is the JSON envelope sent by the backend, one object per text frame.
// Room streams and the global feed share the same shape; unused fields are omitted.
type Frame struct {
	Type              string             `json:"type"`
	DebateID          *int64             `json:"debate_id,omitempty"`
	Agent             string             `json:"agent,omitempty"`
	Round             int                `json:"round,omitempty"`
	Content           string             `json:"content,omitempty"`
	Timestamp         string             `json:"timestamp,omitempty"`
	Verdict           *string            `json:"verdict,omitempty"`
	VerdictConfidence *float64           `json:"verdict_confidence,omitempty"`
	AgentScores       map[string]float64 `json:"agent_scores,omitempty"`
	Summary           string             `json:"summary,omitempty"`
	Topic             string             `json:"topic,omitempty"`
	Category          string             `json:"category,omitempty"`
	Status            string             `json:"status,omitempty"`
	Running           *bool              `json:"running,omitempty"`
	DebatesRun        int                `json:"debates_run,omitempty"`
	CooldownSeconds   int                `json:"cooldown_seconds,omitempty"`
}

// backend emits naive UTC timestamps via datetime.isoformat()
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when ts is empty or unparseable.
func parseTimestamp(ts string) time.Time {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// UnmarshalFrame decodes a raw payload into a Frame.
func UnmarshalFrame(data []byte, f *Frame) error {
	return json.Unmarshal(data, f)
}
