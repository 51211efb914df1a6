package history

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tzforge/tzc/tzdata"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	transitions := []ZonalTransition{
		{PosixTime: -6106060200, PreviousTotal: 0, NewTotal: 3600},
		{PosixTime: 100000, PreviousTotal: 3600, NewTotal: 7200, DaylightSaving: 3600},
		{PosixTime: 200000, PreviousTotal: 7200, NewTotal: 3600},
	}
	recurring := []tzdata.DaylightSavingRule{
		{
			Month:       time.March,
			On:          tzdata.DaySpec{Form: tzdata.DayFormLast, Weekday: time.Sunday},
			At:          tzdata.TimeOfDay{Seconds: 3600, Indicator: tzdata.UTC},
			SaveSeconds: 3600,
			Letter:      "S",
		},
		{
			Month:       time.October,
			On:          tzdata.DaySpec{Form: tzdata.DayFormLast, Weekday: time.Sunday},
			At:          tzdata.TimeOfDay{Seconds: 3600, Indicator: tzdata.UTC},
			SaveSeconds: 0,
		},
	}

	h, err := New(0, transitions, recurring)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := h.Encode(&buf); err != nil {
		t.Fatalf("Encode: unexpected error: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}

	if diff := cmp.Diff(h, got, cmp.AllowUnexported(History{})); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecode_NoTransitions(t *testing.T) {
	h, err := New(3600, nil, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := h.Encode(&buf); err != nil {
		t.Fatalf("Encode: unexpected error: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if got.InitialOffset() != 3600 {
		t.Errorf("InitialOffset() = %d, want 3600", got.InitialOffset())
	}
	if len(got.Transitions()) != 0 {
		t.Errorf("len(Transitions()) = %d, want 0", len(got.Transitions()))
	}
}
