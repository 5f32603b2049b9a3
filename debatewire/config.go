package debatewire

import "time"

// Config controls how the SDK connects and how much state it keeps.
type Config struct {
	URL              string // websocket base, e.g. ws://localhost:8000
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // 0 disables; the backend pings every 30s
	ReconnectDelay   time.Duration
	PollInterval     time.Duration
	FeedCapacity     int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      0,
		ReconnectDelay:   3 * time.Second,
		PollInterval:     15 * time.Second,
		FeedCapacity:     200,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.FeedCapacity <= 0 {
		c.FeedCapacity = d.FeedCapacity
	}
	return c
}
