package history

import (
	"testing"
)

func TestNew_Valid(t *testing.T) {
	transitions := []ZonalTransition{
		{PosixTime: 100, PreviousTotal: 0, NewTotal: 3600, DaylightSaving: 3600},
		{PosixTime: 200, PreviousTotal: 3600, NewTotal: 0, DaylightSaving: 0},
	}
	h, err := New(0, transitions, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if h.InitialOffset() != 0 {
		t.Errorf("InitialOffset() = %d, want 0", h.InitialOffset())
	}
	if len(h.Transitions()) != 2 {
		t.Fatalf("len(Transitions()) = %d, want 2", len(h.Transitions()))
	}
}

func TestNew_RejectsNonMonotonicTime(t *testing.T) {
	transitions := []ZonalTransition{
		{PosixTime: 200, PreviousTotal: 0, NewTotal: 3600},
		{PosixTime: 100, PreviousTotal: 3600, NewTotal: 0},
	}
	if _, err := New(0, transitions, nil); err == nil {
		t.Fatal("New: expected error for non-increasing posix time, got nil")
	}
}

func TestNew_RejectsDiscontinuity(t *testing.T) {
	transitions := []ZonalTransition{
		{PosixTime: 100, PreviousTotal: 0, NewTotal: 3600},
		{PosixTime: 200, PreviousTotal: 1800, NewTotal: 0}, // should be 3600
	}
	if _, err := New(0, transitions, nil); err == nil {
		t.Fatal("New: expected error for discontinuous previous total, got nil")
	}
}

func TestOffsetAt(t *testing.T) {
	transitions := []ZonalTransition{
		{PosixTime: 100, PreviousTotal: 0, NewTotal: 3600},
		{PosixTime: 200, PreviousTotal: 3600, NewTotal: 7200},
	}
	h, err := New(0, transitions, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	cases := []struct {
		t    int64
		want int
	}{
		{0, 0},
		{99, 0},
		{100, 3600},
		{150, 3600},
		{200, 7200},
		{1000, 7200},
	}
	for _, c := range cases {
		if got := h.OffsetAt(c.t); got != c.want {
			t.Errorf("OffsetAt(%d) = %d, want %d", c.t, got, c.want)
		}
	}
}
