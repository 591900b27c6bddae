package menu

import (
	"time"

	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/logic/settings"
)

// Page is one screen of the menu cycle.
type Page int

const (
	PageTrackingSpeed Page = iota
	PageHomeSpeed
	PageStartStop
	PageReturnHome
	PageSaveConfig
)

// order is the explicit menu ordering. PageSaveConfig must stay last: it
// only exists in the cycle while the configuration is dirty.
var order = []Page{
	PageTrackingSpeed,
	PageHomeSpeed,
	PageStartStop,
	PageReturnHome,
	PageSaveConfig,
}

func (p Page) String() string {
	switch p {
	case PageTrackingSpeed:
		return "Track Speed"
	case PageHomeSpeed:
		return "Home Speed"
	case PageStartStop:
		return "Start/Stop"
	case PageReturnHome:
		return "Return Home"
	case PageSaveConfig:
		return "Save Config"
	default:
		return "Unknown"
	}
}

// Editable reports whether the page carries a numeric field the encoder
// can adjust.
func (p Page) Editable() bool {
	return p == PageTrackingSpeed || p == PageHomeSpeed
}

// field maps an editable page to its settings field.
func (p Page) field() settings.Field {
	if p == PageHomeSpeed {
		return settings.FieldHome
	}
	return settings.FieldTracking
}

// Model owns the menu position and the edit/blink state. The number of
// valid pages is a function of the configuration's dirty flag and is
// recomputed on every use, never cached.
type Model struct {
	cfg   *settings.Settings
	index int

	editing    bool
	blinkPhase bool
	blinkEvery time.Duration
	lastBlink  time.Time
}

// NewModel creates a menu over the given settings. blinkEvery is the
// edit-mode blink period; 0 uses the 300 ms default.
func NewModel(cfg *settings.Settings, blinkEvery time.Duration) *Model {
	if blinkEvery <= 0 {
		blinkEvery = 300 * time.Millisecond
	}
	return &Model{cfg: cfg, blinkEvery: blinkEvery}
}

// Current returns the selected page.
func (m *Model) Current() Page {
	return order[m.index]
}

// PageCount returns the number of pages in the cycle right now: the save
// page only exists while the configuration is dirty.
func (m *Model) PageCount() int {
	if m.cfg.IsDirty() {
		return len(order)
	}
	return len(order) - 1
}

// PageNumber returns the 1-based position of the selected page, for the
// "n/m" indicator.
func (m *Model) PageNumber() int {
	return m.index + 1
}

// Advance moves the selection by dir (+1 or -1), wrapping circularly over
// the currently valid page range.
func (m *Model) Advance(dir int) {
	count := m.PageCount()
	m.index = (m.index + dir + count) % count
	debug.Page(m.Current().String(), m.PageNumber(), count)
}

// Clamp forces the selection back into the valid range. Needed right after
// a save taken from the save page itself: the page count shrinks to 4 and
// the old index points past the end. Returns true when the selection moved.
func (m *Model) Clamp() bool {
	if m.index < m.PageCount() {
		return false
	}
	m.index = 0
	debug.Page(m.Current().String(), m.PageNumber(), m.PageCount())
	return true
}

// EnterEdit starts editing the selected page's field. Only the two speed
// pages are editable; anything else is refused. The caller must stop the
// motor before entering: editing a speed while the motor runs at the old
// one is disallowed.
func (m *Model) EnterEdit(now time.Time) bool {
	if !m.Current().Editable() {
		return false
	}
	m.editing = true
	m.blinkPhase = false
	m.lastBlink = now
	debug.Live("Edit %s", m.Current())
	return true
}

// ExitEdit leaves edit mode.
func (m *Model) ExitEdit() {
	m.editing = false
	debug.Live("Edit done: tracking=%d home=%d", m.cfg.TrackingSpeed(), m.cfg.HomeSpeed())
}

// Editing reports whether a field is being edited.
func (m *Model) Editing() bool {
	return m.editing
}

// BlinkHidden reports whether the edited value should be hidden this
// frame. Always false outside edit mode.
func (m *Model) BlinkHidden() bool {
	return m.editing && m.blinkPhase
}

// TickBlink flips the blink phase once the period has elapsed and returns
// true on a flip (the screen needs a refresh). It never flips outside edit
// mode. This is the only time-driven transition in the whole system.
func (m *Model) TickBlink(now time.Time) bool {
	if !m.editing {
		return false
	}
	if now.Sub(m.lastBlink) < m.blinkEvery {
		return false
	}
	m.blinkPhase = !m.blinkPhase
	m.lastBlink = now
	return true
}

// Rotate adjusts the edited field by delta while editing.
func (m *Model) Rotate(delta int) {
	if !m.editing {
		return
	}
	m.cfg.Adjust(m.Current().field(), delta)
}
