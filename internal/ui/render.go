package ui

import (
	"fmt"

	"github.com/cjeanneret/EqGo/internal/hw/display"
	"github.com/cjeanneret/EqGo/internal/logic/control"
	"github.com/cjeanneret/EqGo/internal/logic/menu"
	"github.com/cjeanneret/EqGo/internal/logic/motor"
)

// Layout for a 128x64 panel with the 7x13 basicfont face.
const (
	charWidth  = 7
	titleY     = 0
	underlineY = 14
	bodyY      = 20
	hintY      = 36
	footerY    = 50
)

// Renderer turns control snapshots into Sink draw calls. It is a pure
// consumer of the core: all decisions (what page, whether the value blinks
// out this frame, whether save is offered) are made upstream and arrive in
// the snapshot.
type Renderer struct {
	sink  display.Sink
	width int
}

func NewRenderer(sink display.Sink, width int) *Renderer {
	if width <= 0 {
		width = 128
	}
	return &Renderer{sink: sink, width: width}
}

// Frame draws one complete frame and flushes it.
func (r *Renderer) Frame(s control.Snapshot) error {
	r.sink.Clear()

	// Title with a selection underline.
	title := s.Page.String()
	r.sink.SetCursor(0, titleY)
	r.sink.Print(title)
	r.sink.HLine(0, len(title)*charWidth, underlineY)

	switch s.Page {
	case menu.PageTrackingSpeed:
		r.speedBody("Speed:", s.Tracking, s.Editing, s.BlinkHidden)
	case menu.PageHomeSpeed:
		r.speedBody("Speed:", s.Home, s.Editing, s.BlinkHidden)
	case menu.PageStartStop:
		r.sink.SetCursor(0, bodyY)
		r.sink.Print("Motor: " + s.Motor.String())
		r.sink.SetCursor(0, hintY)
		if s.Motor == motor.Idle {
			r.sink.Print("Press to start")
		} else {
			r.sink.Print("Press to stop")
		}
	case menu.PageReturnHome:
		r.sink.SetCursor(0, bodyY)
		r.sink.Print("Motor: " + s.Motor.String())
		r.sink.SetCursor(0, hintY)
		r.sink.Print("Press to home")
	case menu.PageSaveConfig:
		r.sink.SetCursor(0, bodyY)
		r.sink.Print(fmt.Sprintf("T:%d H:%d", s.Tracking, s.Home))
		r.sink.SetCursor(0, hintY)
		r.sink.Print("Press to save")
	}

	// Footer: page indicator, with an unsaved-changes marker.
	footer := fmt.Sprintf("%d/%d", s.PageNumber, s.PageCount)
	if s.Dirty {
		footer += " *"
	}
	r.sink.SetCursor(r.width-len(footer)*charWidth, footerY)
	r.sink.Print(footer)

	return r.sink.Flush()
}

// speedBody draws a numeric field. While editing, the blink phase hides
// the value every other period so the selection is obvious.
func (r *Renderer) speedBody(label string, value int, editing, blinkHidden bool) {
	r.sink.SetCursor(0, bodyY)
	r.sink.Print(label + " ")
	if !blinkHidden {
		r.sink.PrintInt(value)
	}
	if editing {
		r.sink.SetCursor(0, hintY)
		r.sink.Print("Press to set")
	}
}
