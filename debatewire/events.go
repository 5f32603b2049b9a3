package debatewire

import "time"

// RoomID identifies one debate on the backend. Its value carries no meaning
// beyond identity.
type RoomID int64

// Event is one decoded inbound frame. The set of implementations is closed.
type Event interface {
	wireEvent()
}

// RoomScoped is implemented by every event that belongs to a single room.
type RoomScoped interface {
	Event
	Room() RoomID
}

// Heartbeat proves liveness. Subscriptions consume it and never forward it.
type Heartbeat struct{}

// RoomOpened is emitted when a debate starts.
type RoomOpened struct {
	RoomID    RoomID
	Topic     string
	Timestamp time.Time
}

// RoundStarted marks the beginning of a debate round.
type RoundStarted struct {
	RoomID    RoomID
	Round     int
	Label     string
	Timestamp time.Time
}

// MessageChunk is an incremental fragment of one participant's message.
type MessageChunk struct {
	RoomID      RoomID
	Participant string
	Round       int
	Text        string
	Timestamp   time.Time
}

// MessageComplete carries a whole message, either replayed history or the
// final text of a streamed message.
type MessageComplete struct {
	RoomID      RoomID
	Participant string
	Round       int
	Text        string
	Timestamp   time.Time
}

// RoomClosed is emitted when a debate ends. Verdict fields are optional.
type RoomClosed struct {
	RoomID            RoomID
	Verdict           *string
	VerdictConfidence *float64
	Scores            map[string]float64
	Summary           string
	Timestamp         time.Time
}

// LoopPhase is the backend loop's coarse state.
type LoopPhase int

const (
	PhaseIdle LoopPhase = iota
	PhaseActive
	PhaseCooldown
)

// String returns the string representation of a LoopPhase.
func (p LoopPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// LoopStatus reports the autonomous loop's state on the global feed.
type LoopStatus struct {
	Phase           LoopPhase
	Running         *bool
	Topic           string
	Category        string
	CompletedCount  int
	CooldownSeconds int
}

func (Heartbeat) wireEvent()       {}
func (RoomOpened) wireEvent()      {}
func (RoundStarted) wireEvent()    {}
func (MessageChunk) wireEvent()    {}
func (MessageComplete) wireEvent() {}
func (RoomClosed) wireEvent()      {}
func (LoopStatus) wireEvent()      {}

func (e RoomOpened) Room() RoomID      { return e.RoomID }
func (e RoundStarted) Room() RoomID    { return e.RoomID }
func (e MessageChunk) Room() RoomID    { return e.RoomID }
func (e MessageComplete) Room() RoomID { return e.RoomID }
func (e RoomClosed) Room() RoomID      { return e.RoomID }
