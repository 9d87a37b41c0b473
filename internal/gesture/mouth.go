package gesture

import "time"

// MouthConfig holds the mouth-open detector thresholds.
type MouthConfig struct {
	OpenThreshold float64       // Lip distance above which the mouth is open
	Cooldown      time.Duration // Minimum time between two right clicks
}

// DefaultMouthConfig returns the default mouth-open configuration.
func DefaultMouthConfig() MouthConfig {
	return MouthConfig{
		OpenThreshold: 0.05,
		Cooldown:      time.Second,
	}
}

// MouthDebouncer fires when the mouth is open and the cooldown since the
// previous firing has elapsed. A held-open mouth fires again every cooldown.
type MouthDebouncer struct {
	config MouthConfig
	last   time.Duration
	fired  bool
}

// NewMouthDebouncer creates a debouncer that has never fired.
func NewMouthDebouncer(config MouthConfig) *MouthDebouncer {
	return &MouthDebouncer{config: config}
}

// Update processes one lip distance sample taken at now and reports whether
// a right click fires.
func (m *MouthDebouncer) Update(opening float64, now time.Duration) bool {
	if opening <= m.config.OpenThreshold {
		return false
	}
	if m.fired && now-m.last <= m.config.Cooldown {
		return false
	}

	m.last = now
	m.fired = true
	return true
}

// LastFired returns the time of the last right click and whether one happened.
func (m *MouthDebouncer) LastFired() (time.Duration, bool) {
	return m.last, m.fired
}

// Reset forgets the last firing.
func (m *MouthDebouncer) Reset() {
	m.last = 0
	m.fired = false
}
