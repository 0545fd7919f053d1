package decoder

import (
	"net/netip"
	"sync"
	"time"
)

// FragmentRateLimiter caps how many IPv4 fragments one source may feed the reassembler
// within a fixed window. Counts reset when the window rolls over.
type FragmentRateLimiter struct {
	mu           sync.Mutex
	counts       map[netip.Addr]int64
	windowStart  time.Time
	windowSize   time.Duration
	maxPerWindow int64
	rejected     int64
}

// FragmentRateLimiterConfig configures per-source fragment limiting.
type FragmentRateLimiterConfig struct {
	MaxFragsPerIP   int           `mapstructure:"max_frags_per_ip"` // 0 disables limiting
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// NewFragmentRateLimiter returns nil when limiting is disabled.
func NewFragmentRateLimiter(cfg FragmentRateLimiterConfig) *FragmentRateLimiter {
	if cfg.MaxFragsPerIP <= 0 {
		return nil
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = 10 * time.Second
	}
	return &FragmentRateLimiter{
		counts:       make(map[netip.Addr]int64),
		windowSize:   cfg.RateLimitWindow,
		maxPerWindow: int64(cfg.MaxFragsPerIP),
	}
}

// Allow records one fragment from src seen at now and reports whether it may be buffered.
// Windows follow capture time, so replaying an old file limits the same way live traffic
// would have been limited.
func (l *FragmentRateLimiter) Allow(src netip.Addr, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.windowSize {
		clear(l.counts)
		l.windowStart = now
	}
	l.counts[src]++
	if l.counts[src] > l.maxPerWindow {
		l.rejected++
		return false
	}
	return true
}

// Rejected returns the total number of rejected fragments.
func (l *FragmentRateLimiter) Rejected() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rejected
}

// ActiveSources returns the number of distinct sources in the current window.
func (l *FragmentRateLimiter) ActiveSources() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}
