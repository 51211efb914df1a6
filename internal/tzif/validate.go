package tzif

import (
	"errors"
	"fmt"
)

// Validate checks that a Block's header counts agree with the sizes of its
// data block's sections, catching a corrupt or hand-assembled Block before
// it's written or acted on.
func Validate(b Block) error {
	h, d := b.Header, b.Data

	var errs []error
	check := func(cond bool, format string, args ...any) {
		if cond {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(h.Isutcnt != 0 && h.Isutcnt != h.Typecnt,
		"isutcnt (%d) must be 0 or equal to typecnt (%d)", h.Isutcnt, h.Typecnt)
	check(len(d.UTLocalFlags) != int(h.Isutcnt),
		"isutcnt mismatch: header=%d data=%d", h.Isutcnt, len(d.UTLocalFlags))

	check(h.Isstdcnt != 0 && h.Isstdcnt != h.Typecnt,
		"isstdcnt (%d) must be 0 or equal to typecnt (%d)", h.Isstdcnt, h.Typecnt)
	check(len(d.StdWallFlags) != int(h.Isstdcnt),
		"isstdcnt mismatch: header=%d data=%d", h.Isstdcnt, len(d.StdWallFlags))

	check(len(d.Leaps) != int(h.Leapcnt),
		"leapcnt mismatch: header=%d data=%d", h.Leapcnt, len(d.Leaps))

	check(len(d.TransitionTimes) != int(h.Timecnt),
		"timecnt mismatch: header=%d data=%d", h.Timecnt, len(d.TransitionTimes))
	check(len(d.TransitionTimes) != len(d.TransitionTypes),
		"transition times/types length mismatch: %d vs %d", len(d.TransitionTimes), len(d.TransitionTypes))

	check(h.Typecnt == 0, "typecnt must not be zero")
	check(len(d.Types) != int(h.Typecnt),
		"typecnt mismatch: header=%d data=%d", h.Typecnt, len(d.Types))

	check(h.Charcnt == 0, "charcnt must not be zero")
	check(len(d.Designations) != int(h.Charcnt),
		"charcnt mismatch: header=%d data=%d", h.Charcnt, len(d.Designations))
	check(h.Charcnt > 0 && len(d.Designations) > 0 && d.Designations[len(d.Designations)-1] != 0,
		"designations must end in a NUL terminator")

	return errors.Join(errs...)
}
