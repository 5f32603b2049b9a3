package debatewire

// ConnectionState represents the current state of a subscription's connection.
type ConnectionState int

const (
	// StateDisconnected means the subscription has not been opened yet.
	StateDisconnected ConnectionState = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means frames are being read.
	StateConnected

	// StateReconnecting means the transport dropped and a reconnect is scheduled.
	StateReconnecting

	// StateClosed means the subscription has been explicitly closed by the caller.
	StateClosed
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent represents a state change event.
type StateEvent struct {
	Target   Target
	OldState ConnectionState
	NewState ConnectionState
	Error    error // Optional error that caused the state change
}
