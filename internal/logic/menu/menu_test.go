package menu

import (
	"testing"
	"time"

	"github.com/cjeanneret/EqGo/internal/logic/settings"
	"github.com/cjeanneret/EqGo/internal/store"
)

func cleanModel(t *testing.T) (*Model, *settings.Settings) {
	t.Helper()
	s, err := settings.Load(store.NewMemStore())
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, 300*time.Millisecond), s
}

func dirtyModel(t *testing.T) (*Model, *settings.Settings) {
	t.Helper()
	m, s := cleanModel(t)
	s.Adjust(settings.FieldTracking, +1)
	if !s.IsDirty() {
		t.Fatal("settings should be dirty")
	}
	return m, s
}

func TestPageCount_DependsOnDirty(t *testing.T) {
	m, s := cleanModel(t)
	if got := m.PageCount(); got != 4 {
		t.Errorf("clean page count = %d, want 4", got)
	}

	s.Adjust(settings.FieldHome, +1)
	if got := m.PageCount(); got != 5 {
		t.Errorf("dirty page count = %d, want 5", got)
	}

	// Back to the saved value: the save page disappears again. The count
	// is recomputed every time, never cached.
	s.Adjust(settings.FieldHome, -1)
	if got := m.PageCount(); got != 4 {
		t.Errorf("clean-again page count = %d, want 4", got)
	}
}

func TestAdvance_CircularClean(t *testing.T) {
	m, _ := cleanModel(t)

	want := []Page{PageHomeSpeed, PageStartStop, PageReturnHome, PageTrackingSpeed}
	for i, w := range want {
		m.Advance(+1)
		if m.Current() != w {
			t.Fatalf("advance %d: page = %v, want %v", i+1, m.Current(), w)
		}
	}

	// And backwards past the first page lands on the last valid one.
	m.Advance(-1)
	if m.Current() != PageReturnHome {
		t.Errorf("retreat from page 1 = %v, want %v", m.Current(), PageReturnHome)
	}
}

func TestAdvance_CircularDirtyIncludesSavePage(t *testing.T) {
	m, _ := dirtyModel(t)

	m.Advance(-1)
	if m.Current() != PageSaveConfig {
		t.Errorf("retreat from page 1 while dirty = %v, want %v", m.Current(), PageSaveConfig)
	}

	m.Advance(+1)
	if m.Current() != PageTrackingSpeed {
		t.Errorf("advance past save page = %v, want wrap to %v", m.Current(), PageTrackingSpeed)
	}
}

func TestClamp_AfterSaveFromSavePage(t *testing.T) {
	m, s := dirtyModel(t)

	// Navigate to the save page (page 5).
	m.Advance(-1)
	if m.Current() != PageSaveConfig {
		t.Fatalf("setup: expected save page, got %v", m.Current())
	}

	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if !m.Clamp() {
		t.Error("Clamp should report the selection moved")
	}
	if m.Current() != PageTrackingSpeed {
		t.Errorf("after save-from-page-5, page = %v, want %v", m.Current(), PageTrackingSpeed)
	}
	if m.PageNumber() != 1 {
		t.Errorf("page number = %d, want 1", m.PageNumber())
	}
}

func TestClamp_NoopWhenInRange(t *testing.T) {
	m, _ := cleanModel(t)
	m.Advance(+1)
	if m.Clamp() {
		t.Error("Clamp on an in-range selection should be a no-op")
	}
	if m.Current() != PageHomeSpeed {
		t.Errorf("Clamp moved the selection to %v", m.Current())
	}
}

func TestEnterEdit_OnlyOnSpeedPages(t *testing.T) {
	cases := []struct {
		advances int
		page     Page
		want     bool
	}{
		{0, PageTrackingSpeed, true},
		{1, PageHomeSpeed, true},
		{2, PageStartStop, false},
		{3, PageReturnHome, false},
	}
	now := time.Now()
	for _, tc := range cases {
		t.Run(tc.page.String(), func(t *testing.T) {
			m, _ := cleanModel(t)
			for i := 0; i < tc.advances; i++ {
				m.Advance(+1)
			}
			if got := m.EnterEdit(now); got != tc.want {
				t.Errorf("EnterEdit on %v = %v, want %v", tc.page, got, tc.want)
			}
			if m.Editing() != tc.want {
				t.Errorf("Editing = %v, want %v", m.Editing(), tc.want)
			}
		})
	}
}

func TestTickBlink_Period(t *testing.T) {
	m, _ := cleanModel(t)
	start := time.Unix(1000, 0)
	m.EnterEdit(start)

	if m.BlinkHidden() {
		t.Error("blink phase must reset on edit entry")
	}

	// 299 ms: nothing yet.
	if m.TickBlink(start.Add(299 * time.Millisecond)) {
		t.Error("blink flipped before the period elapsed")
	}

	// Exactly 300 ms: flip.
	if !m.TickBlink(start.Add(300 * time.Millisecond)) {
		t.Error("blink should flip at exactly one period")
	}
	if !m.BlinkHidden() {
		t.Error("first flip should hide the value")
	}

	// Another period from the flip: flip back.
	if !m.TickBlink(start.Add(600 * time.Millisecond)) {
		t.Error("blink should flip again after another period")
	}
	if m.BlinkHidden() {
		t.Error("second flip should show the value again")
	}
}

func TestTickBlink_NeverOutsideEditMode(t *testing.T) {
	m, _ := cleanModel(t)
	now := time.Unix(1000, 0)
	for i := 0; i < 10; i++ {
		if m.TickBlink(now.Add(time.Duration(i) * time.Second)) {
			t.Fatal("blink flipped while not editing")
		}
	}
	if m.BlinkHidden() {
		t.Error("BlinkHidden must be false outside edit mode")
	}
}

func TestRotate_AdjustsEditedField(t *testing.T) {
	m, s := cleanModel(t)
	now := time.Now()

	// Tracking page: default tracking speed is 1.
	m.EnterEdit(now)
	for i := 0; i < 5; i++ {
		m.Rotate(+1)
	}
	if s.TrackingSpeed() != 6 {
		t.Errorf("tracking = %d, want 6", s.TrackingSpeed())
	}
	m.ExitEdit()

	// Home page.
	m.Advance(+1)
	m.EnterEdit(now)
	m.Rotate(-1)
	if s.HomeSpeed() != settings.DefaultHome-1 {
		t.Errorf("home = %d, want %d", s.HomeSpeed(), settings.DefaultHome-1)
	}
}

func TestRotate_NoopOutsideEditMode(t *testing.T) {
	m, s := cleanModel(t)
	m.Rotate(+1)
	if s.TrackingSpeed() != settings.DefaultTracking {
		t.Errorf("rotate outside edit mode changed tracking to %d", s.TrackingSpeed())
	}
}

func TestPageString(t *testing.T) {
	if PageSaveConfig.String() != "Save Config" {
		t.Errorf("unexpected label %q", PageSaveConfig.String())
	}
	if !PageTrackingSpeed.Editable() || !PageHomeSpeed.Editable() {
		t.Error("speed pages must be editable")
	}
	if PageStartStop.Editable() || PageReturnHome.Editable() || PageSaveConfig.Editable() {
		t.Error("action pages must not be editable")
	}
}
