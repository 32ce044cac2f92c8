package queue

import "testing"

func TestHistory_Push(t *testing.T) {
	h := NewHistory(10)

	h.Push(1)
	h.Push(2)
	h.Push(3)

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
}

func TestHistory_Push_DedupesConsecutive(t *testing.T) {
	h := NewHistory(10)

	h.Push(1)
	h.Push(1)
	h.Push(1)

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}

	h.Push(2)
	h.Push(1)

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (non-consecutive repeats kept)", h.Len())
	}
}

func TestHistory_Push_RotatesWhenFull(t *testing.T) {
	h := NewHistory(3)

	h.Push(1)
	h.Push(2)
	h.Push(3)
	h.Push(4)

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}

	// Walking back must reach 2, not the rotated-out 1.
	if got, ok := h.Retreat(); !ok || got != 3 {
		t.Errorf("Retreat() = %d, %v, want 3, true", got, ok)
	}
	if got, ok := h.Retreat(); !ok || got != 2 {
		t.Errorf("Retreat() = %d, %v, want 2, true", got, ok)
	}
	if _, ok := h.Retreat(); ok {
		t.Error("Retreat() past the oldest entry should fail")
	}
}

func TestHistory_AdvanceRetreatRoundTrip(t *testing.T) {
	h := NewHistory(10)

	h.Push(5)
	h.Push(7)
	h.Push(9)

	if got, ok := h.Retreat(); !ok || got != 7 {
		t.Errorf("Retreat() = %d, %v, want 7, true", got, ok)
	}
	if got, ok := h.Advance(); !ok || got != 9 {
		t.Errorf("Advance() = %d, %v, want 9, true", got, ok)
	}
}

func TestHistory_Advance_AtTail(t *testing.T) {
	h := NewHistory(10)

	if _, ok := h.Advance(); ok {
		t.Error("Advance() on empty history should fail")
	}

	h.Push(1)
	if _, ok := h.Advance(); ok {
		t.Error("Advance() at the tail should fail")
	}
}

func TestHistory_Retreat_Empty(t *testing.T) {
	h := NewHistory(10)

	if _, ok := h.Retreat(); ok {
		t.Error("Retreat() on empty history should fail")
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10)

	h.Push(1)
	h.Push(2)
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	if _, ok := h.Retreat(); ok {
		t.Error("Retreat() after Clear should fail")
	}
}
