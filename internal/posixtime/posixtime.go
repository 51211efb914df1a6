// Package posixtime converts proleptic Gregorian calendar dates to and from
// POSIX time (seconds since 1970-01-01 00:00:00, ignoring leap seconds).
//
// The forward conversion is the one exercised by the zone-synthesis core and
// deliberately avoids any dependency on time.Location: computing the offset
// data that eventually backs a time.Location using time.Location itself would
// be circular.
package posixtime

import "time"

// FromDateTime returns the POSIX time of the given proleptic Gregorian
// calendar date and time of day. Month is 1-based (January is 1). Hour,
// minute and second may be negative or exceed their usual ranges; the result
// is normalized as if the arguments had first been reduced to their natural
// ranges by carrying the excess into day.
//
// Ported from the Go standard library's time package (internal, unexported
// absolute-time machinery) so that it has no dependency on time.Location.
func FromDateTime(year, month, day, hour, minute, second int) int64 {
	d := daysSinceEpoch(year) + daysSinceStartOfYear(month, year) + int64(day) - 1
	abs := d*secondsPerDay + int64(hour)*secondsPerHour + int64(minute)*secondsPerMinute + int64(second)
	return abs + (absoluteToInternal + internalToUnix)
}

var daysBeforeMonth = [...]int64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// daysSinceStartOfYear returns the number of days between the start of year
// and the start of month (1-based), accounting for the leap day in February.
func daysSinceStartOfYear(month, year int) int64 {
	n := daysBeforeMonth[month-1]
	if month > 2 && isLeapYear(year) {
		n++
	}
	return n
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DateFromUnix returns the proleptic Gregorian calendar date (UTC) for the
// given POSIX time. Unlike FromDateTime this is not part of the
// zone-synthesis core; it backs only the leap-seconds.list NTP-epoch-comment
// decoder (see expiryDate in package tzdata), where reaching for time.Time's own
// calendar breakdown is simpler and carries no circularity concern since no
// time.Location is involved.
func DateFromUnix(sec int64) (year int, month time.Month, day int) {
	t := time.Unix(sec, 0).UTC()
	y, m, d := t.Date()
	return y, m, d
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	daysPer400Years  = 365*400 + 97
	daysPer100Years  = 365*100 + 24
	daysPer4Years    = 365*4 + 1

	absoluteZeroYear         = -292277022399
	internalYear             = 1
	absoluteToInternal int64 = (absoluteZeroYear - internalYear) * 365.2425 * secondsPerDay
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * secondsPerDay
	internalToUnix     int64 = -unixToInternal
)

// daysSinceEpoch returns the number of days from the absolute zero year to
// the start of the given year, accounting for leap days.
func daysSinceEpoch(year int) int64 {
	y := int64(year) - absoluteZeroYear

	n := y / 400
	y -= 400 * n
	d := int64(daysPer400Years) * n

	n = y / 100
	y -= 100 * n
	d += int64(daysPer100Years) * n

	n = y / 4
	y -= 4 * n
	d += int64(daysPer4Years) * n

	n = y
	d += 365 * n

	return d
}
