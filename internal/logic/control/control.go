package control

import (
	"context"
	"time"

	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/hw/encoder"
	"github.com/cjeanneret/EqGo/internal/logic/menu"
	"github.com/cjeanneret/EqGo/internal/logic/motor"
	"github.com/cjeanneret/EqGo/internal/logic/settings"
)

// InputPoller produces at most one debounced button press and one rotate
// detent per poll.
type InputPoller interface {
	Poll(now time.Time) (encoder.Event, error)
}

// Renderer consumes snapshots and draws frames.
type Renderer interface {
	Frame(s Snapshot) error
}

// Snapshot is everything the renderer needs for one frame.
type Snapshot struct {
	Page        menu.Page
	PageNumber  int
	PageCount   int
	Editing     bool
	BlinkHidden bool
	Motor       motor.State
	Tracking    int
	Home        int
	Dirty       bool
}

// Loop is the single-threaded cooperative control loop. It owns all
// mutable state: input events and the periodic tick are the only mutators,
// and both run from the same goroutine.
type Loop struct {
	cfg    *settings.Settings
	menu   *menu.Model
	motor  *motor.Machine
	input  InputPoller
	render Renderer

	interval    time.Duration
	needsRender bool
}

// New wires the loop. interval paces iterations; 0 uses 1 ms.
func New(cfg *settings.Settings, m *menu.Model, mach *motor.Machine, in InputPoller, r Renderer, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Loop{
		cfg:      cfg,
		menu:     m,
		motor:    mach,
		input:    in,
		render:   r,
		interval: interval,
		// first frame must be drawn before any input arrives
		needsRender: true,
	}
}

// HandleButton dispatches a button press against the current mode and
// page. A press always schedules a render.
func (l *Loop) HandleButton(now time.Time) error {
	defer func() { l.needsRender = true }()

	if l.menu.Editing() {
		l.menu.ExitEdit()
		return nil
	}

	switch page := l.menu.Current(); page {
	case menu.PageTrackingSpeed, menu.PageHomeSpeed:
		// Safety stop before the field opens: the motor must not keep
		// running at a speed that is about to change under it.
		l.motor.SafetyStop()
		l.menu.EnterEdit(now)
	case menu.PageStartStop:
		l.motor.Toggle(l.cfg.TrackingSpeed())
	case menu.PageReturnHome:
		l.motor.StartHoming(l.cfg.HomeSpeed())
	case menu.PageSaveConfig:
		if err := l.cfg.Save(); err != nil {
			return err
		}
		// Saving clears the dirty flag: page 5 just vanished from the
		// cycle, so the selection is forced back into range right away.
		l.menu.Clamp()
	}
	return nil
}

// HandleRotate dispatches a rotation: adjusts the edited field in edit
// mode, advances the page otherwise. Always schedules a render.
func (l *Loop) HandleRotate(dir int) {
	if l.menu.Editing() {
		l.menu.Rotate(dir)
	} else {
		l.menu.Advance(dir)
	}
	l.needsRender = true
}

// Tick runs the per-iteration time-driven work: the blink timer while
// editing, the limit-switch checks and motion continuation otherwise.
func (l *Loop) Tick(now time.Time) error {
	if l.menu.Editing() {
		if l.menu.TickBlink(now) {
			l.needsRender = true
		}
		return nil
	}
	changed, err := l.motor.Tick(now)
	if err != nil {
		return err
	}
	if changed {
		l.needsRender = true
	}
	return nil
}

// Step executes one full loop iteration: poll input, dispatch (button
// before rotate), tick, render if anything observable changed.
func (l *Loop) Step(now time.Time) error {
	ev, err := l.input.Poll(now)
	if err != nil {
		return err
	}
	if ev.Pressed {
		if err := l.HandleButton(now); err != nil {
			return err
		}
	}
	if ev.Rotate != 0 {
		l.HandleRotate(ev.Rotate)
	}
	if err := l.Tick(now); err != nil {
		return err
	}
	if l.needsRender {
		if err := l.render.Frame(l.Snapshot()); err != nil {
			return err
		}
		l.needsRender = false
	}
	return nil
}

// Run drives Step until ctx is cancelled. The motor is stopped on the way
// out so a SIGINT never leaves the platform moving.
func (l *Loop) Run(ctx context.Context) error {
	debug.Section("Control loop")
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.motor.Stop()
			return nil
		case now := <-ticker.C:
			if err := l.Step(now); err != nil {
				l.motor.Stop()
				return err
			}
		}
	}
}

// Snapshot captures the observable state for the renderer.
func (l *Loop) Snapshot() Snapshot {
	return Snapshot{
		Page:        l.menu.Current(),
		PageNumber:  l.menu.PageNumber(),
		PageCount:   l.menu.PageCount(),
		Editing:     l.menu.Editing(),
		BlinkHidden: l.menu.BlinkHidden(),
		Motor:       l.motor.State(),
		Tracking:    l.cfg.TrackingSpeed(),
		Home:        l.cfg.HomeSpeed(),
		Dirty:       l.cfg.IsDirty(),
	}
}
