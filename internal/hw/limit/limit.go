package limit

import (
	"github.com/cjeanneret/EqGo/internal/hw/gpio"
)

// Switch is a travel limit switch: active LOW with a pull-up, so a read of
// logic Low means the carriage is pressing the switch.
type Switch struct {
	gpio gpio.Driver
	pin  int
	name string
}

// NewSwitch configures the input line with a pull-up.
func NewSwitch(g gpio.Driver, pin int, name string) (*Switch, error) {
	if err := g.SetupPin(pin, gpio.InputPullUp); err != nil {
		return nil, err
	}
	return &Switch{gpio: g, pin: pin, name: name}, nil
}

// IsActive reports whether the switch is currently pressed.
func (s *Switch) IsActive() (bool, error) {
	level, err := s.gpio.ReadPin(s.pin)
	if err != nil {
		return false, err
	}
	return level == gpio.Low, nil
}

// Name returns the label given at construction ("home", "end").
func (s *Switch) Name() string {
	return s.name
}
