// Package segment drives a common-cathode seven segment digit.
package segment

// Blank is the glyph index that turns every segment off.
const Blank = 10

// Segment order in a glyph: a, b, c, d, e, f, g.
const (
	A = iota
	B
	C
	D
	E
	F
	G
	Count
)

// Glyph is the on/off state of each segment, indexed by A..G.
type Glyph [Count]bool

var glyphs = [...]Glyph{
	{true, true, true, true, true, true, false},     // 0
	{false, true, true, false, false, false, false}, // 1
	{true, true, false, true, true, false, true},    // 2
	{true, true, true, true, false, false, true},    // 3
	{false, true, true, false, false, true, true},   // 4
	{true, false, true, true, false, true, true},    // 5
	{true, false, true, true, true, true, true},     // 6
	{true, true, true, false, false, false, false},  // 7
	{true, true, true, true, true, true, true},      // 8
	{true, true, true, true, false, true, true},     // 9
	{},                                              // off
}

// Lookup returns the glyph for digit n. Anything outside 0..9 maps to Blank.
func Lookup(n int) Glyph {
	if n < 0 || n >= Blank {
		return glyphs[Blank]
	}
	return glyphs[n]
}

// Pin is a single digital output. machine.Pin satisfies it.
type Pin interface {
	Set(high bool)
}

// Display writes glyphs to seven output pins wired a..g.
type Display struct {
	pins [Count]Pin
}

// New creates a display from pins in a..g order.
func New(a, b, c, d, e, f, g Pin) *Display {
	return &Display{pins: [Count]Pin{a, b, c, d, e, f, g}}
}

// Show drives the segments for digit n (Blank or out of range clears it).
func (d *Display) Show(n int) {
	glyph := Lookup(n)
	for i, pin := range d.pins {
		pin.Set(glyph[i])
	}
}
