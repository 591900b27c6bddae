package display

// Sink is the abstract draw surface the UI renders to. Calls accumulate
// into an off-screen frame; nothing is visible until Flush.
type Sink interface {
	// Clear erases the whole frame.
	Clear()
	// SetCursor places the text cursor at a pixel position.
	SetCursor(x, y int)
	// Print draws text at the cursor and advances it.
	Print(text string)
	// PrintInt draws a decimal integer at the cursor and advances it.
	PrintInt(v int)
	// HLine draws a horizontal line from (x0,y) to (x1,y).
	HLine(x0, x1, y int)
	// Flush pushes the frame to the physical display.
	Flush() error
}
