package settings

import (
	"fmt"

	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/store"
)

// Word addresses in the non-volatile store.
const (
	AddrTracking uint16 = 0x0000
	AddrHome     uint16 = 0x0002
)

// Speed bounds and first-boot defaults.
const (
	MinSpeed = 1
	MaxSpeed = 1000

	DefaultTracking = 1
	DefaultHome     = 100
)

// Field names one of the two adjustable speeds.
type Field int

const (
	FieldTracking Field = iota
	FieldHome
)

// Settings holds the working tracking/home speeds and the last persisted
// snapshot. The working values are only mutated through Adjust; the
// snapshot only through Save (and once at Load). Dirty means at least one
// working value differs from its snapshot.
type Settings struct {
	store store.WordStore

	tracking int
	home     int

	savedTracking int
	savedHome     int
}

// Load reads both speed words. If either word reads back the erase
// sentinel the whole set falls back to built-in defaults: a half-valid
// pair is never trusted. Values are clamped into range either way.
func Load(ws store.WordStore) (*Settings, error) {
	tracking, err := ws.ReadWord(AddrTracking)
	if err != nil {
		return nil, fmt.Errorf("read tracking speed: %w", err)
	}
	home, err := ws.ReadWord(AddrHome)
	if err != nil {
		return nil, fmt.Errorf("read home speed: %w", err)
	}

	s := &Settings{store: ws}
	if tracking == store.Erased || home == store.Erased {
		debug.Info("Speed store uninitialized, using defaults")
		s.tracking = DefaultTracking
		s.home = DefaultHome
	} else {
		s.tracking = clamp(int(tracking))
		s.home = clamp(int(home))
	}
	s.savedTracking = s.tracking
	s.savedHome = s.home

	debug.Value("tracking speed", s.tracking)
	debug.Value("home speed", s.home)
	return s, nil
}

// Adjust adds delta to the named working value and clamps it into range.
// The saved snapshot is untouched.
func (s *Settings) Adjust(f Field, delta int) {
	switch f {
	case FieldTracking:
		s.tracking = clamp(s.tracking + delta)
	case FieldHome:
		s.home = clamp(s.home + delta)
	}
}

// Set replaces the named working value, clamped into range. Used by the
// CLI speed overrides.
func (s *Settings) Set(f Field, value int) {
	switch f {
	case FieldTracking:
		s.tracking = clamp(value)
	case FieldHome:
		s.home = clamp(value)
	}
}

// Save writes both working values to the store, then snapshots both
// together so IsDirty observes both-or-neither.
func (s *Settings) Save() error {
	if err := s.store.WriteWord(AddrTracking, uint16(s.tracking)); err != nil {
		return fmt.Errorf("write tracking speed: %w", err)
	}
	if err := s.store.WriteWord(AddrHome, uint16(s.home)); err != nil {
		return fmt.Errorf("write home speed: %w", err)
	}
	s.savedTracking = s.tracking
	s.savedHome = s.home
	debug.Live("Saved speeds: tracking=%d home=%d", s.tracking, s.home)
	return nil
}

// IsDirty reports whether a working value differs from its snapshot.
func (s *Settings) IsDirty() bool {
	return s.tracking != s.savedTracking || s.home != s.savedHome
}

// TrackingSpeed returns the working tracking speed.
func (s *Settings) TrackingSpeed() int {
	return s.tracking
}

// HomeSpeed returns the working home speed.
func (s *Settings) HomeSpeed() int {
	return s.home
}

func clamp(v int) int {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}
