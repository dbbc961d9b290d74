package components

import "github.com/pthm-cable/koipond/vmath"

// HeadingHistory is a bounded ring of recent headings. The oldest entry is
// evicted when full.
type HeadingHistory struct {
	buf   []float64
	start int
	count int
}

// DefaultHistoryCapacity is the capacity a zero-value HeadingHistory takes
// on its first Push. It matches the default physics.oscillation_history;
// koi built by NewKoi use the configured value instead.
const DefaultHistoryCapacity = 10

// NewHeadingHistory creates a history holding at most capacity headings.
func NewHeadingHistory(capacity int) HeadingHistory {
	if capacity < 1 {
		capacity = 1
	}
	return HeadingHistory{buf: make([]float64, capacity)}
}

// Cap returns the maximum number of stored headings.
func (h *HeadingHistory) Cap() int { return len(h.buf) }

// Push appends a heading, evicting the oldest when full. A zero-value
// history is first sized to DefaultHistoryCapacity.
func (h *HeadingHistory) Push(heading float64) {
	if len(h.buf) == 0 {
		*h = NewHeadingHistory(DefaultHistoryCapacity)
	}
	idx := (h.start + h.count) % len(h.buf)
	h.buf[idx] = heading
	if h.count < len(h.buf) {
		h.count++
	} else {
		h.start = (h.start + 1) % len(h.buf)
	}
}

// Len returns the number of stored headings.
func (h *HeadingHistory) Len() int { return h.count }

// Clear drops all headings.
func (h *HeadingHistory) Clear() {
	h.start, h.count = 0, 0
}

// At returns the i-th heading, oldest first.
func (h *HeadingHistory) At(i int) float64 {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Reversals counts sign changes between consecutive heading deltas. Deltas
// are wrapped to [-Pi, Pi]; a zero delta never counts as a reversal.
func (h *HeadingHistory) Reversals() int {
	if h.count < 3 {
		return 0
	}
	reversals := 0
	prev := vmath.NormalizeAngle(h.At(1) - h.At(0))
	for i := 2; i < h.count; i++ {
		d := vmath.NormalizeAngle(h.At(i) - h.At(i-1))
		if d*prev < 0 {
			reversals++
		}
		prev = d
	}
	return reversals
}
