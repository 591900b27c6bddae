package motor

import (
	"errors"
	"testing"
	"time"
)

// fakeDriver records motion primitive commands.
type fakeDriver struct {
	speed float64
	accel float64
	runs  int
}

func (f *fakeDriver) SetSpeed(s float64)        { f.speed = s }
func (f *fakeDriver) SetAcceleration(a float64) { f.accel = a }
func (f *fakeDriver) RunOnce(now time.Time) (bool, error) {
	f.runs++
	return true, nil
}

// fakeSwitch is a scriptable limit switch.
type fakeSwitch struct {
	active bool
	err    error
}

func (f *fakeSwitch) IsActive() (bool, error) { return f.active, f.err }

func newTestMachine() (*Machine, *fakeDriver, *fakeSwitch, *fakeSwitch) {
	drv := &fakeDriver{}
	home := &fakeSwitch{}
	end := &fakeSwitch{}
	return NewMachine(drv, home, end, 20), drv, home, end
}

func TestNewMachine_AppliesAcceleration(t *testing.T) {
	_, drv, _, _ := newTestMachine()
	if drv.accel != 20 {
		t.Errorf("acceleration = %v, want 20", drv.accel)
	}
}

func TestStartTracking_FromIdle(t *testing.T) {
	m, drv, _, _ := newTestMachine()
	if !m.StartTracking(500) {
		t.Fatal("StartTracking from Idle should succeed")
	}
	if m.State() != Tracking {
		t.Errorf("state = %v, want Tracking", m.State())
	}
	if drv.speed != 500 {
		t.Errorf("commanded speed = %v, want +500", drv.speed)
	}
}

func TestStartHoming_FromIdle(t *testing.T) {
	m, drv, _, _ := newTestMachine()
	if !m.StartHoming(100) {
		t.Fatal("StartHoming from Idle should succeed")
	}
	if m.State() != Homing {
		t.Errorf("state = %v, want Homing", m.State())
	}
	if drv.speed != -100 {
		t.Errorf("commanded speed = %v, want -100", drv.speed)
	}
}

func TestNoDirectPathBetweenTrackingAndHoming(t *testing.T) {
	m, _, _, _ := newTestMachine()

	m.StartTracking(500)
	if m.StartHoming(100) {
		t.Error("StartHoming must be refused while Tracking")
	}
	if m.State() != Tracking {
		t.Errorf("state = %v, want Tracking", m.State())
	}

	m.Stop()
	m.StartHoming(100)
	if m.StartTracking(500) {
		t.Error("StartTracking must be refused while Homing")
	}
	if m.State() != Homing {
		t.Errorf("state = %v, want Homing", m.State())
	}
}

func TestStop_ZeroesSpeed(t *testing.T) {
	m, drv, _, _ := newTestMachine()
	m.StartTracking(500)
	m.Stop()
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
	if drv.speed != 0 {
		t.Errorf("commanded speed = %v, want 0", drv.speed)
	}
}

func TestToggle(t *testing.T) {
	m, _, _, _ := newTestMachine()

	m.Toggle(500)
	if m.State() != Tracking {
		t.Errorf("first toggle: state = %v, want Tracking", m.State())
	}
	m.Toggle(500)
	if m.State() != Idle {
		t.Errorf("second toggle: state = %v, want Idle", m.State())
	}

	// Toggle while homing stops, it never jumps to Tracking.
	m.StartHoming(100)
	m.Toggle(500)
	if m.State() != Idle {
		t.Errorf("toggle while homing: state = %v, want Idle", m.State())
	}
}

func TestSafetyStop_FromAnyState(t *testing.T) {
	cases := []struct {
		name  string
		setup func(m *Machine)
	}{
		{"idle", func(m *Machine) {}},
		{"tracking", func(m *Machine) { m.StartTracking(500) }},
		{"homing", func(m *Machine) { m.StartHoming(100) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, drv, _, _ := newTestMachine()
			tc.setup(m)
			m.SafetyStop()
			if m.State() != Idle {
				t.Errorf("state = %v, want Idle", m.State())
			}
			if drv.speed != 0 {
				t.Errorf("commanded speed = %v, want 0", drv.speed)
			}
		})
	}
}

func TestTick_TrackingRunsPrimitiveEveryCall(t *testing.T) {
	m, drv, _, _ := newTestMachine()
	m.StartTracking(500)

	now := time.Now()
	for i := 0; i < 5; i++ {
		changed, err := m.Tick(now.Add(time.Duration(i) * time.Millisecond))
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if changed {
			t.Fatal("Tick without a limit hit should not report a change")
		}
	}
	if drv.runs != 5 {
		t.Errorf("RunOnce calls = %d, want 5", drv.runs)
	}
}

func TestTick_EndSwitchStopsTracking(t *testing.T) {
	m, drv, _, end := newTestMachine()
	m.StartTracking(500)

	end.active = true
	changed, err := m.Tick(time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !changed {
		t.Error("limit stop should report a change")
	}
	if m.State() != Idle {
		t.Errorf("state = %v, want Idle", m.State())
	}
	if drv.runs != 0 {
		t.Errorf("RunOnce called %d times after limit hit, want 0", drv.runs)
	}

	// Further ticks are inert: no more stepping calls.
	if _, err := m.Tick(time.Now()); err != nil {
		t.Fatal(err)
	}
	if drv.runs != 0 {
		t.Error("Idle ticks must not call the motion primitive")
	}
}

func TestTick_HomeSwitchStopsHoming(t *testing.T) {
	m, _, home, _ := newTestMachine()
	m.StartHoming(100)

	home.active = true
	changed, err := m.Tick(time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !changed || m.State() != Idle {
		t.Errorf("changed=%v state=%v, want true/Idle", changed, m.State())
	}
}

func TestTick_WrongSwitchIgnored(t *testing.T) {
	// The home switch must not stop tracking, nor the end switch homing:
	// each direction only honors its own travel extreme.
	m, drv, home, _ := newTestMachine()
	m.StartTracking(500)

	home.active = true
	changed, err := m.Tick(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if changed || m.State() != Tracking {
		t.Errorf("home switch stopped tracking: changed=%v state=%v", changed, m.State())
	}
	if drv.runs != 1 {
		t.Errorf("RunOnce calls = %d, want 1", drv.runs)
	}
}

func TestTick_SwitchReadErrorPropagates(t *testing.T) {
	m, _, _, end := newTestMachine()
	m.StartTracking(500)

	end.err = errors.New("gpio read failed")
	if _, err := m.Tick(time.Now()); err == nil {
		t.Error("expected switch read error to propagate")
	}
	// State is left as-is: the caller decides what an I/O fault means.
	if m.State() != Tracking {
		t.Errorf("state = %v, want Tracking", m.State())
	}
}

func TestStateString(t *testing.T) {
	cases := []struct {
		s    State
		want string
	}{
		{Idle, "Idle"},
		{Tracking, "Tracking"},
		{Homing, "Homing"},
	}
	for _, tc := range cases {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("%d.String() = %q, want %q", tc.s, got, tc.want)
		}
	}
}
