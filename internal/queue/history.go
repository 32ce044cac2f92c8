package queue

// historyCap bounds how far back the play history reaches.
const historyCap = 100

// History is a bounded, bidirectional path of visited track indices.
// The cursor always points at the active element, or sits at 0 while the
// buffer is empty. Pushing while the cursor has forward entries is a
// caller bug; the queue only pushes after draining the forward path.
type History struct {
	entries []int
	cursor  int
}

// NewHistory returns an empty history with the given capacity.
// A capacity below 1 falls back to the default.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = historyCap
	}
	return &History{entries: make([]int, 0, capacity)}
}

// Push appends a visited index and moves the cursor to it.
// Consecutive duplicates are ignored; when full, the oldest entry is
// rotated out.
func (h *History) Push(index int) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == index {
		return
	}

	if len(h.entries) == cap(h.entries) {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}

	h.entries = append(h.entries, index)
	h.cursor = len(h.entries) - 1
}

// Advance moves the cursor forward along a previously retreated path.
// Returns false when there is no forward entry.
func (h *History) Advance() (int, bool) {
	if h.cursor+1 >= len(h.entries) {
		return 0, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Retreat moves the cursor one step back.
// Returns false when there is no earlier entry.
func (h *History) Retreat() (int, bool) {
	if h.cursor == 0 || len(h.entries) == 0 {
		return 0, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Clear empties the history and resets the cursor.
func (h *History) Clear() {
	h.entries = h.entries[:0]
	h.cursor = 0
}

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }
