package encoder

import (
	"time"

	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/hw/gpio"
)

// Event is the debounced result of one input poll. At most one button
// press and one rotation detent are reported per poll.
type Event struct {
	Pressed bool
	Rotate  int // -1, 0 or +1
}

// Config holds the encoder wiring and debounce windows.
// All three lines are active LOW with pull-ups: an idle line reads High.
type Config struct {
	ClkPin      int
	DtPin       int
	SwPin       int
	Debounce    time.Duration // push button debounce window
	RotateGuard time.Duration // minimum gap between rotate events
}

// Encoder polls a rotary encoder with an integrated push button.
// Rotation is decoded on the clock line's falling edge: the data line's
// level at that moment selects the direction. No quadrature state machine
// beyond that two-state decode.
type Encoder struct {
	gpio gpio.Driver
	cfg  Config

	lastClk    gpio.Level
	lastSw     gpio.Level
	lastPress  time.Time
	lastRotate time.Time
}

// NewEncoder configures the three input lines with pull-ups.
func NewEncoder(g gpio.Driver, cfg Config) (*Encoder, error) {
	for _, pin := range []int{cfg.ClkPin, cfg.DtPin, cfg.SwPin} {
		if err := g.SetupPin(pin, gpio.InputPullUp); err != nil {
			return nil, err
		}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 5 * time.Millisecond
	}
	if cfg.RotateGuard <= 0 {
		cfg.RotateGuard = 2 * time.Millisecond
	}
	return &Encoder{
		gpio:    g,
		cfg:     cfg,
		lastClk: gpio.High,
		lastSw:  gpio.High,
	}, nil
}

// Poll samples the three lines once and reports debounced events.
func (e *Encoder) Poll(now time.Time) (Event, error) {
	var ev Event

	sw, err := e.gpio.ReadPin(e.cfg.SwPin)
	if err != nil {
		return ev, err
	}
	if sw == gpio.Low && e.lastSw == gpio.High && now.Sub(e.lastPress) >= e.cfg.Debounce {
		ev.Pressed = true
		e.lastPress = now
		debug.Event("button", "pressed")
	}
	e.lastSw = sw

	clk, err := e.gpio.ReadPin(e.cfg.ClkPin)
	if err != nil {
		return ev, err
	}
	if clk == gpio.Low && e.lastClk == gpio.High && now.Sub(e.lastRotate) >= e.cfg.RotateGuard {
		dt, err := e.gpio.ReadPin(e.cfg.DtPin)
		if err != nil {
			return ev, err
		}
		// Data line still High at the clock edge means the clock led:
		// clockwise. Data already Low means the data line led: counter-
		// clockwise.
		if dt == gpio.High {
			ev.Rotate = 1
		} else {
			ev.Rotate = -1
		}
		e.lastRotate = now
		debug.Event("rotate", ev.Rotate)
	}
	e.lastClk = clk

	return ev, nil
}
