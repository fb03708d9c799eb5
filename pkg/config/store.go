package config

import "sync/atomic"

// Store publishes the live SystemConfig to concurrent readers. The watcher
// goroutine swaps in a whole replacement snapshot; readers take one
// snapshot per turn, so a reload mid-turn can never tear a half-written
// struct.
type Store struct {
	v atomic.Pointer[SystemConfig]
}

// NewStore creates a Store seeded with the given config. A nil seed falls
// back to the defaults.
func NewStore(cfg *SystemConfig) *Store {
	if cfg == nil {
		cfg = DefaultSystemConfig()
	}
	s := &Store{}
	s.v.Store(cfg)
	return s
}

// Load returns the current snapshot. Callers must treat it as read-only.
func (s *Store) Load() *SystemConfig {
	return s.v.Load()
}

// Replace publishes a new snapshot. In-flight turns keep the snapshot
// they loaded; the next turn sees the replacement.
func (s *Store) Replace(cfg *SystemConfig) {
	if cfg == nil {
		return
	}
	s.v.Store(cfg)
}
