package motor

import (
	"time"

	"github.com/cjeanneret/EqGo/internal/debug"
)

// State is the motor run mode.
type State int

const (
	Idle State = iota
	Tracking
	Homing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Tracking:
		return "Tracking"
	case Homing:
		return "Homing"
	default:
		return "Unknown"
	}
}

// Driver is the motion primitive. It is stateful across calls and makes no
// progress on its own: the machine must keep calling RunOnce every control
// tick while a motion is held.
type Driver interface {
	SetSpeed(stepsPerSec float64)
	SetAcceleration(accel float64)
	RunOnce(now time.Time) (bool, error)
}

// LimitReader reports whether a travel switch is pressed.
type LimitReader interface {
	IsActive() (bool, error)
}

// Machine owns the Idle/Tracking/Homing run mode and the speed commands to
// the motion primitive. Tracking runs forward at +trackingSpeed; Homing
// runs toward the home switch at -homeSpeed. There is no direct path
// between Tracking and Homing: both pass through Idle.
type Machine struct {
	drv   Driver
	home  LimitReader
	end   LimitReader
	state State
}

// NewMachine wires the motion primitive and the two limit switches.
// accel is applied to the primitive once, up front.
func NewMachine(drv Driver, home, end LimitReader, accel float64) *Machine {
	drv.SetAcceleration(accel)
	return &Machine{drv: drv, home: home, end: end}
}

// State returns the current run mode.
func (m *Machine) State() State {
	return m.state
}

// StartTracking commands forward motion at the given speed. Only valid
// from Idle; returns false otherwise.
func (m *Machine) StartTracking(speed int) bool {
	if m.state != Idle {
		return false
	}
	m.drv.SetSpeed(float64(speed))
	m.state = Tracking
	debug.Motor("Idle", "Tracking", float64(speed))
	return true
}

// StartHoming commands motion toward the home switch at the given speed.
// Only valid from Idle; returns false otherwise.
func (m *Machine) StartHoming(speed int) bool {
	if m.state != Idle {
		return false
	}
	m.drv.SetSpeed(-float64(speed))
	m.state = Homing
	debug.Motor("Idle", "Homing", -float64(speed))
	return true
}

// Stop forces Idle from any state and zeroes the commanded speed.
func (m *Machine) Stop() {
	if m.state == Idle {
		return
	}
	debug.Motor(m.state.String(), "Idle", 0)
	m.drv.SetSpeed(0)
	m.state = Idle
}

// SafetyStop is the edit-mode entry stop: editing a speed while the motor
// runs at the old one is disallowed, so entering edit forces Idle
// unconditionally.
func (m *Machine) SafetyStop() {
	m.Stop()
}

// Toggle implements the start/stop control: Idle starts tracking at the
// given speed, anything running stops.
func (m *Machine) Toggle(trackingSpeed int) {
	if m.state == Idle {
		m.StartTracking(trackingSpeed)
		return
	}
	m.Stop()
}

// Tick is called every control loop iteration while not editing. It
// applies the fail-safe limit stops and keeps the motion primitive
// running. Returns true when the run mode changed (the screen needs a
// refresh).
func (m *Machine) Tick(now time.Time) (bool, error) {
	switch m.state {
	case Tracking:
		active, err := m.end.IsActive()
		if err != nil {
			return false, err
		}
		if active {
			debug.Live("End limit reached, stopping")
			m.Stop()
			return true, nil
		}
	case Homing:
		active, err := m.home.IsActive()
		if err != nil {
			return false, err
		}
		if active {
			debug.Live("Home limit reached, stopping")
			m.Stop()
			return true, nil
		}
	default:
		return false, nil
	}

	if _, err := m.drv.RunOnce(now); err != nil {
		return false, err
	}
	return false, nil
}
