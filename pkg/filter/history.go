package filter

const (
	// DefaultSize is the number of samples averaged by the controller.
	DefaultSize = 10
	// DefaultFill is the "clear" distance the history starts out with (cm).
	DefaultFill = 100
)

// History is a fixed-capacity ring buffer of distance samples (cm).
// It always holds exactly Size samples: it is pre-filled on construction and
// every Push evicts the oldest entry.
type History struct {
	buf  []int
	head int // index of the newest sample
	sum  int64
}

// New creates a history of size samples, all set to fill.
// A non-positive size falls back to DefaultSize.
func New(size, fill int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	h := &History{
		buf:  make([]int, size),
		head: size - 1,
	}
	h.Reset(fill)
	return h
}

// Reset overwrites every entry with fill.
func (h *History) Reset(fill int) {
	for i := range h.buf {
		h.buf[i] = fill
	}
	h.sum = int64(fill) * int64(len(h.buf))
	h.head = len(h.buf) - 1
}

// Push inserts the newest sample, evicts the oldest one and returns the
// filtered distance.
func (h *History) Push(sample int) float32 {
	h.head = (h.head + 1) % len(h.buf)
	h.sum += int64(sample) - int64(h.buf[h.head])
	h.buf[h.head] = sample
	return h.Mean()
}

// Mean returns the arithmetic mean of all entries.
func (h *History) Mean() float32 {
	return float32(h.sum) / float32(len(h.buf))
}

// Size returns the history capacity.
func (h *History) Size() int {
	return len(h.buf)
}

// Samples returns a copy of the history, newest first.
func (h *History) Samples() []int {
	n := len(h.buf)
	out := make([]int, n)
	for i := range n {
		out[i] = h.buf[(h.head-i+n)%n]
	}
	return out
}
