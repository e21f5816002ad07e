package logparse

// Cursor is a position over the physical lines of a log file. The stream
// builder advances it line by line; multi-line event constructors pull
// their continuation lines from it directly, so those lines are never
// re-classified as separate events.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor creates a cursor over a fully loaded sequence of lines.
func NewCursor(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// Next returns the next physical line and advances the cursor. The second
// return value is false at end of input.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// Pos reports how many lines have been consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len reports the total number of lines behind the cursor.
func (c *Cursor) Len() int {
	return len(c.lines)
}
