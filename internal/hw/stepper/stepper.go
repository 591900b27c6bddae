package stepper

import (
	"math"
	"time"

	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/hw/gpio"
)

// Config holds the hardware configuration for the platform stepper motor.
type Config struct {
	StepPin   int
	DirPin    int
	EnablePin int     // A4988 ENABLE pin (BCM). 0 = not used. Active LOW (LOW=enabled).
	MaxSpeed  float64 // commanded speed cap in steps/s. If 0, defaults to 1000.
}

// Stepper generates step pulses for a signed target speed with an
// acceleration-limited ramp. It never blocks: RunOnce emits at most one
// pulse per call when one is due, and the caller is expected to keep
// calling in from its control loop — the motor makes no progress between
// calls.
type Stepper struct {
	gpio gpio.Driver
	cfg  Config

	target  float64 // commanded speed, signed steps/s
	current float64 // ramped speed, signed steps/s
	accel   float64 // ramp limit, steps/s^2. 0 = no ramping.

	lastRun  time.Time // previous RunOnce call, for ramp integration
	lastStep time.Time // previous emitted pulse
	dirHigh  bool      // cached DIR level
	dirKnown bool
}

// NewStepper creates a new stepper motor controller.
func NewStepper(g gpio.Driver, cfg Config) *Stepper {
	_ = g.SetupPin(cfg.StepPin, gpio.Output)
	_ = g.SetupPin(cfg.DirPin, gpio.Output)

	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = 1000
	}

	s := &Stepper{
		gpio: g,
		cfg:  cfg,
	}

	// A4988 ENABLE: active LOW. LOW = enabled, HIGH = disabled.
	if cfg.EnablePin > 0 {
		_ = g.SetupPin(cfg.EnablePin, gpio.Output)
		_ = g.WritePin(cfg.EnablePin, gpio.Low) // enable by default
	}

	return s
}

// SetSpeed sets the commanded speed in steps/s. The sign selects the
// direction: positive runs away from home, negative runs toward it.
// The magnitude is capped at MaxSpeed.
func (s *Stepper) SetSpeed(speed float64) {
	if speed > s.cfg.MaxSpeed {
		speed = s.cfg.MaxSpeed
	} else if speed < -s.cfg.MaxSpeed {
		speed = -s.cfg.MaxSpeed
	}
	s.target = speed
	debug.Verbose("Stepper: target speed %.1f steps/s", speed)
}

// SetAcceleration sets the ramp limit in steps/s^2. Zero disables ramping
// (the current speed snaps to the target).
func (s *Stepper) SetAcceleration(accel float64) {
	if accel < 0 {
		accel = 0
	}
	s.accel = accel
}

// Speed returns the current (ramped) speed in steps/s.
func (s *Stepper) Speed() float64 {
	return s.current
}

// RunOnce advances the ramp and emits a single step pulse if one is due at
// the current speed. It returns true when a pulse was emitted.
func (s *Stepper) RunOnce(now time.Time) (bool, error) {
	dt := s.sinceLastRun(now)
	s.lastRun = now

	s.ramp(dt)
	if s.current == 0 {
		return false, nil
	}

	interval := time.Duration(float64(time.Second) / math.Abs(s.current))
	if !s.lastStep.IsZero() && now.Sub(s.lastStep) < interval {
		return false, nil
	}

	dirHigh := s.current > 0
	if !s.dirKnown || dirHigh != s.dirHigh {
		level := gpio.Low
		if dirHigh {
			level = gpio.High
		}
		if err := s.gpio.WritePin(s.cfg.DirPin, level); err != nil {
			return false, err
		}
		s.dirHigh = dirHigh
		s.dirKnown = true
	}

	// The A4988 needs a 1us minimum pulse width; the GPIO write latency
	// through /dev/gpiomem already exceeds that, so no sleep between edges.
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.High); err != nil {
		return false, err
	}
	if err := s.gpio.WritePin(s.cfg.StepPin, gpio.Low); err != nil {
		return false, err
	}
	s.lastStep = now
	return true, nil
}

// sinceLastRun returns the ramp integration window. A stale timestamp
// (loop was idle, motor was not being ticked) counts as zero so the ramp
// restarts from standstill behavior instead of jumping.
func (s *Stepper) sinceLastRun(now time.Time) time.Duration {
	if s.lastRun.IsZero() {
		return 0
	}
	dt := now.Sub(s.lastRun)
	if dt < 0 || dt > 100*time.Millisecond {
		return 0
	}
	return dt
}

// ramp moves the current speed toward the target, bounded by the
// acceleration limit over the elapsed window.
func (s *Stepper) ramp(dt time.Duration) {
	if s.accel <= 0 {
		s.current = s.target
		return
	}
	maxDelta := s.accel * dt.Seconds()
	diff := s.target - s.current
	switch {
	case diff > maxDelta:
		s.current += maxDelta
	case diff < -maxDelta:
		s.current -= maxDelta
	default:
		s.current = s.target
	}
}

// Enable turns on the motor driver (A4988 ENABLE=LOW). The motor holds position.
func (s *Stepper) Enable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.Low)
}

// Disable turns off the motor driver (A4988 ENABLE=HIGH). The motor freewheels.
func (s *Stepper) Disable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.High)
}
