// Package history implements the validated transition-history contract that
// sits between the zone synthesiser and the repository serialiser: given a
// zone's initial UTC offset, its chronological list of transitions, and the
// open-ended recurring rule pattern still in effect after the last one, it
// either returns a History that is provably self-consistent or a structured
// error explaining which invariant failed.
package history

import (
	"fmt"

	"github.com/tzforge/tzc/tzdata"
)

// ZonalTransition is one instant at which a zone's total UTC offset changes.
type ZonalTransition struct {
	// PosixTime is the instant of the transition, in POSIX seconds.
	PosixTime int64
	// PreviousTotal is the total UTC offset (seconds) in effect just before
	// the transition.
	PreviousTotal int
	// NewTotal is the total UTC offset (seconds) in effect from the
	// transition onward.
	NewTotal int
	// DaylightSaving is the portion of NewTotal attributable to daylight
	// saving, in seconds. Zero means standard time.
	DaylightSaving int
}

// ValidationError reports which invariant a candidate History violated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid transition history: " + e.Reason }

// History is a validated, immutable transition history for a single zone.
// The only way to obtain one is New, which enforces the invariants the rest
// of this module relies on: transitions are sorted and each one's
// PreviousTotal agrees with whatever total offset was in effect immediately
// before it.
type History struct {
	initialOffset int
	transitions   []ZonalTransition
	recurring     []tzdata.DaylightSavingRule
}

// New validates and wraps a synthesised transition history. The transitions
// slice is copied; callers may reuse or mutate the slice they passed in.
func New(initialOffset int, transitions []ZonalTransition, recurring []tzdata.DaylightSavingRule) (*History, error) {
	cur := initialOffset
	for i, tr := range transitions {
		if tr.PreviousTotal != cur {
			return nil, &ValidationError{Reason: fmt.Sprintf("transition %d: previous total %d does not match %d in effect beforehand", i, tr.PreviousTotal, cur)}
		}
		if i > 0 && tr.PosixTime <= transitions[i-1].PosixTime {
			return nil, &ValidationError{Reason: fmt.Sprintf("transition %d: posix time %d does not strictly increase over previous transition's %d", i, tr.PosixTime, transitions[i-1].PosixTime)}
		}
		cur = tr.NewTotal
	}

	cp := make([]ZonalTransition, len(transitions))
	copy(cp, transitions)
	rcp := make([]tzdata.DaylightSavingRule, len(recurring))
	copy(rcp, recurring)

	return &History{initialOffset: initialOffset, transitions: cp, recurring: rcp}, nil
}

// InitialOffset is the total UTC offset in effect before the first
// transition (or forever, if there are none).
func (h *History) InitialOffset() int { return h.initialOffset }

// Transitions returns the zone's transitions in chronological order. The
// returned slice must not be modified.
func (h *History) Transitions() []ZonalTransition { return h.transitions }

// Recurring returns the open-ended rule pattern still in effect after the
// last transition, describing how future transitions would be computed.
// It may be empty for a zone whose offset never changes again.
func (h *History) Recurring() []tzdata.DaylightSavingRule { return h.recurring }

// OffsetAt returns the total UTC offset in effect at the given POSIX time.
func (h *History) OffsetAt(t int64) int {
	total := h.initialOffset
	for _, tr := range h.transitions {
		if tr.PosixTime > t {
			break
		}
		total = tr.NewTotal
	}
	return total
}
