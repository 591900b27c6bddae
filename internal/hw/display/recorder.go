package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Op is one recorded draw call.
type Op struct {
	Kind string // "clear", "cursor", "print", "hline", "flush"
	X    int
	Y    int
	Text string
}

// Recorder is a Sink that records draw calls for inspection. It doubles as
// the console display in -mock mode: when Out is set, every flushed frame
// is written there as text.
type Recorder struct {
	Ops     []Op
	Out     io.Writer
	frame   []string
	flushes int
}

func (r *Recorder) Clear() {
	r.Ops = append(r.Ops, Op{Kind: "clear"})
	r.frame = r.frame[:0]
}

func (r *Recorder) SetCursor(x, y int) {
	r.Ops = append(r.Ops, Op{Kind: "cursor", X: x, Y: y})
}

func (r *Recorder) Print(text string) {
	r.Ops = append(r.Ops, Op{Kind: "print", Text: text})
	r.frame = append(r.frame, text)
}

func (r *Recorder) PrintInt(v int) {
	r.Print(strconv.Itoa(v))
}

func (r *Recorder) HLine(x0, x1, y int) {
	r.Ops = append(r.Ops, Op{Kind: "hline", X: x0, Y: y})
}

func (r *Recorder) Flush() error {
	r.Ops = append(r.Ops, Op{Kind: "flush"})
	r.flushes++
	if r.Out != nil {
		fmt.Fprintf(r.Out, "┌─ frame %d ─┐\n│ %s\n└───────────┘\n",
			r.flushes, strings.Join(r.frame, " │ "))
	}
	return nil
}

// Flushes returns how many frames were pushed.
func (r *Recorder) Flushes() int {
	return r.flushes
}

// Printed returns all text drawn since the last Clear, in draw order.
func (r *Recorder) Printed() []string {
	out := make([]string, len(r.frame))
	copy(out, r.frame)
	return out
}

// Contains reports whether text was drawn since the last Clear.
func (r *Recorder) Contains(text string) bool {
	for _, s := range r.frame {
		if strings.Contains(s, text) {
			return true
		}
	}
	return false
}
