package registry

import "time"

type hubConfig struct {
	evictionInterval time.Duration
	idleTimeout      time.Duration
	mailboxSize      int
}

func defaultHubConfig() hubConfig {
	return hubConfig{
		evictionInterval: 5 * time.Minute,
		idleTimeout:      30 * time.Minute,
		mailboxSize:      64,
	}
}

// Option defines a functional configuration type for the Hub.
type Option func(*Hub)

// WithEvictionInterval configures how often the [JANITOR] runs.
func WithEvictionInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.config.evictionInterval = d
		}
	}
}

// WithIdleTimeout defines the [QUIET_PERIOD] after which a cell without
// viewers is eligible for eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.config.idleTimeout = d
		}
	}
}

// WithMailboxSize sets the [BACKPRESSURE] threshold of each cell.
func WithMailboxSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.config.mailboxSize = size
		}
	}
}
