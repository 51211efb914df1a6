package tzdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tzforge/tzc/internal/posixtime"
)

// Parse reads one IANA tzdata source file and classifies its lines into
// Rule, Zone, Link and Leap lines. name is used only to annotate errors.
//
// Parse keeps going after a bad line so that a single typo does not hide
// every other problem in the file; all accumulated errors are returned
// joined together (errors.Join), and the returned *File holds whatever was
// classified successfully.
func Parse(name string, r io.Reader) (*File, error) {
	var (
		file   File
		errs   []error
		inZone bool
		lineNo int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		if exp, ok := scanExpiryComment(raw); ok {
			y, m, d := expiryDate(exp)
			file.Expiry = &ExpiryDate{Year: y, Month: m, Day: d}
		}

		fields := cleanLine(raw)
		if fields == nil {
			continue
		}

		keyword := fields[0]
		switch {
		case isAbbrev(keyword, "Rule", "R"):
			rl, err := parseRuleLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				continue
			}
			if len(fields) > 4 && fields[4] != "-" {
				file.Warnings = append(file.Warnings, fmt.Sprintf("%s:%d: rule %q has unsupported TYPE constraint %q, skipping the line", name, lineNo, rl.Name, fields[4]))
				inZone = false
				continue
			}
			file.Rules = append(file.Rules, rl)
			inZone = false

		case isAbbrev(keyword, "Zone", "Z"):
			zl, err := parseZoneLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				inZone = false
				continue
			}
			file.Zones = append(file.Zones, zl)
			inZone = true

		case isAbbrev(keyword, "Link", "L"):
			ll, err := parseLinkLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				continue
			}
			file.Links = append(file.Links, ll)
			inZone = false

		case isAbbrev(keyword, "Leap", "Le"):
			lp, err := parseLeapLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				continue
			}
			file.Leaps = append(file.Leaps, lp)
			inZone = false

		case isAbbrev(keyword, "Expires", "Ex"):
			ed, err := parseExpiresLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				continue
			}
			file.Expiry = &ed
			inZone = false

		default:
			if !inZone {
				errs = append(errs, parseErr(name, lineNo, raw, fmt.Errorf("unrecognized line")))
				continue
			}
			zl, err := parseZoneContinuationLine(fields)
			if err != nil {
				errs = append(errs, parseErr(name, lineNo, raw, err))
				continue
			}
			file.Zones = append(file.Zones, zl)
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	return &file, errors.Join(errs...)
}

func expiryDate(unixSeconds int64) (int, time.Month, int) {
	return posixtime.DateFromUnix(unixSeconds)
}

// isAbbrev reports whether s is a case-insensitive prefix of long that is at
// least as long as short, or is exactly the given short alias. This mirrors
// zic's lenient keyword matching ("Zone" can be spelled "Z", "Rule" can be
// spelled just "R", and so on).
func isAbbrev(s, long, short string) bool {
	if strings.EqualFold(s, short) {
		return true
	}
	if len(s) < len(short) || len(s) > len(long) {
		return false
	}
	return strings.EqualFold(s, long[:len(s)])
}

// --- Rule lines ---

func parseRuleLine(f []string) (RuleLine, error) {
	if len(f) < 9 {
		return RuleLine{}, fmt.Errorf("rule line: want 9 fields, got %d", len(f))
	}
	var r RuleLine
	r.Name = f[1]

	from, err := parseYear(f[2])
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule FROM: %w", err)
	}
	r.From = from

	to, err := parseToYear(f[3], from)
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule TO: %w", err)
	}
	r.To = to

	month, err := parseMonth(f[5])
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule IN: %w", err)
	}
	r.Month = month

	day, err := parseDaySpec(f[6])
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule ON: %w", err)
	}
	r.On = day

	at, err := parseTimeOfDay(f[7])
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule AT: %w", err)
	}
	r.At = at

	save, err := parseTimeOfDay(f[8])
	if err != nil {
		return RuleLine{}, fmt.Errorf("rule SAVE: %w", err)
	}
	r.Save = save

	if len(f) > 9 {
		letter := f[9]
		if letter != "-" {
			r.Letter = letter
		}
	}
	return r, nil
}

func parseYear(s string) (int, error) {
	if isAbbrev(s, "minimum", "min") {
		return MinYear, nil
	}
	if isAbbrev(s, "maximum", "max") {
		return MaxYear, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return n, nil
}

func parseToYear(s string, from int) (int, error) {
	if isAbbrev(s, "only", "o") {
		return from, nil
	}
	return parseYear(s)
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("invalid month %q", s)
	}
	for i, name := range monthNames {
		if len(s) <= len(name) && strings.EqualFold(s, name[:len(s)]) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

var weekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func parseWeekday(s string) (time.Weekday, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	for i, name := range weekdayNames {
		if len(s) <= len(name) && strings.EqualFold(s, name[:len(s)]) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// parseDaySpec parses the ON field of a Rule line: a literal day number,
// "lastSunday", "Sun>=8" or "Sun<=25".
func parseDaySpec(s string) (DaySpec, error) {
	if len(s) > 4 && strings.EqualFold(s[:4], "last") {
		wd, err := parseWeekday(s[4:])
		if err != nil {
			return DaySpec{}, err
		}
		return DaySpec{Form: DayFormLast, Weekday: wd}, nil
	}
	if idx := strings.Index(s, ">="); idx > 0 {
		wd, err := parseWeekday(s[:idx])
		if err != nil {
			return DaySpec{}, err
		}
		num, err := strconv.Atoi(s[idx+2:])
		if err != nil {
			return DaySpec{}, fmt.Errorf("invalid day number in %q: %w", s, err)
		}
		return DaySpec{Form: DayFormOnOrAfter, Weekday: wd, Num: num}, nil
	}
	if idx := strings.Index(s, "<="); idx > 0 {
		wd, err := parseWeekday(s[:idx])
		if err != nil {
			return DaySpec{}, err
		}
		num, err := strconv.Atoi(s[idx+2:])
		if err != nil {
			return DaySpec{}, fmt.Errorf("invalid day number in %q: %w", s, err)
		}
		return DaySpec{Form: DayFormOnOrBefore, Weekday: wd, Num: num}, nil
	}
	num, err := strconv.Atoi(s)
	if err != nil {
		return DaySpec{}, fmt.Errorf("invalid day specifier %q", s)
	}
	return DaySpec{Form: DayFormNum, Num: num}, nil
}

// parseTimeOfDay parses a time-of-day field that may carry a trailing
// UTC/standard/wall indicator suffix (AT, SAVE and UNTIL-time fields).
func parseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "" {
		return TimeOfDay{}, nil
	}
	indicator := Wall
	last := s[len(s)-1]
	switch {
	case last == 'w' || last == 'W':
		indicator = Wall
		s = s[:len(s)-1]
	case last == 's' || last == 'S':
		indicator = Standard
		s = s[:len(s)-1]
	case last == 'u' || last == 'U' || last == 'g' || last == 'G' || last == 'z' || last == 'Z':
		indicator = UTC
		s = s[:len(s)-1]
	}
	secs, err := parseHMS(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Seconds: secs, Indicator: indicator}, nil
}

// parseOffset parses a bare offset field with no indicator suffix (the
// STDOFF column).
func parseOffset(s string) (int, error) {
	return parseHMS(s)
}

// parseHMS parses "[-]H[:MM[:SS[.ss]]]" (or a bare "-" meaning zero) into a
// signed count of seconds, truncating any fractional second.
func parseHMS(s string) (int, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time-of-day %q", s)
	}
	var hh, mm int
	var ss float64
	var err error
	hh, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	if len(parts) > 1 {
		mm, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
		}
	}
	if len(parts) > 2 {
		ss, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid second in %q: %w", s, err)
		}
	}
	total := hh*3600 + mm*60 + int(ss)
	if neg {
		total = -total
	}
	return total, nil
}

// --- Zone lines ---

func parseZoneLine(f []string) (ZoneLine, error) {
	if len(f) < 4 {
		return ZoneLine{}, fmt.Errorf("zone line: want at least 4 fields, got %d", len(f))
	}
	name := f[1]
	rest, err := parseZoneBody(f[2:])
	if err != nil {
		return ZoneLine{}, err
	}
	rest.Name = name
	rest.Continuation = false
	return rest, nil
}

func parseZoneContinuationLine(f []string) (ZoneLine, error) {
	if len(f) < 3 {
		return ZoneLine{}, fmt.Errorf("zone continuation line: want at least 3 fields, got %d", len(f))
	}
	rest, err := parseZoneBody(f)
	if err != nil {
		return ZoneLine{}, err
	}
	rest.Continuation = true
	return rest, nil
}

func parseZoneBody(f []string) (ZoneLine, error) {
	var z ZoneLine
	offset, err := parseOffset(f[0])
	if err != nil {
		return ZoneLine{}, fmt.Errorf("zone STDOFF: %w", err)
	}
	z.RawOffset = offset

	rules, err := parseZoneRules(f[1])
	if err != nil {
		return ZoneLine{}, fmt.Errorf("zone RULES: %w", err)
	}
	z.Rules = rules

	z.Format = f[2]

	if len(f) > 3 {
		until, err := parseUntil(f[3:])
		if err != nil {
			return ZoneLine{}, fmt.Errorf("zone UNTIL: %w", err)
		}
		z.Until = until
	}
	return z, nil
}

func parseZoneRules(s string) (ZoneRules, error) {
	if s == "-" {
		return ZoneRules{Form: ZoneRulesStandard}, nil
	}
	// A literal SAVE-style offset always contains a ':' (e.g. "1:00"); a
	// rule bucket name never does, so the separator alone disambiguates the
	// two forms the column can take.
	if strings.Contains(s, ":") {
		secs, err := parseHMS(s)
		if err != nil {
			return ZoneRules{}, err
		}
		return ZoneRules{Form: ZoneRulesFixed, FixedSaving: secs}, nil
	}
	return ZoneRules{Form: ZoneRulesName, Name: s}, nil
}

func parseUntil(f []string) (Until, error) {
	u := Until{Defined: true}

	year, err := parseYear(f[0])
	if err != nil {
		return Until{}, fmt.Errorf("UNTIL year: %w", err)
	}
	u.Year = year
	u.Parts |= UntilYear

	u.Month = time.January
	if len(f) > 1 {
		m, err := parseMonth(f[1])
		if err != nil {
			return Until{}, fmt.Errorf("UNTIL month: %w", err)
		}
		u.Month = m
		u.Parts |= UntilMonth
	}

	u.Day = DaySpec{Form: DayFormNum, Num: 1}
	if len(f) > 2 {
		d, err := parseDaySpec(f[2])
		if err != nil {
			return Until{}, fmt.Errorf("UNTIL day: %w", err)
		}
		u.Day = d
		u.Parts |= UntilDay
	}

	if len(f) > 3 {
		t, err := parseTimeOfDay(f[3])
		if err != nil {
			return Until{}, fmt.Errorf("UNTIL time: %w", err)
		}
		u.Time = t
		u.Parts |= UntilTime
	}

	return u, nil
}

// --- Link lines ---

func parseLinkLine(f []string) (LinkLine, error) {
	if len(f) < 3 {
		return LinkLine{}, fmt.Errorf("link line: want 3 fields, got %d", len(f))
	}
	return LinkLine{Target: f[1], Alias: f[2]}, nil
}

// --- Leap lines ---

func parseLeapLine(f []string) (LeapLine, error) {
	if len(f) < 6 {
		return LeapLine{}, fmt.Errorf("leap line: want at least 6 fields, got %d", len(f))
	}
	year, err := strconv.Atoi(f[1])
	if err != nil {
		return LeapLine{}, fmt.Errorf("leap YEAR: %w", err)
	}
	month, err := parseMonth(f[2])
	if err != nil {
		return LeapLine{}, fmt.Errorf("leap MONTH: %w", err)
	}
	day, err := strconv.Atoi(f[3])
	if err != nil {
		return LeapLine{}, fmt.Errorf("leap DAY: %w", err)
	}

	switch f[4] {
	case "23:59:60":
		// insertion; validated against CORR below
	case "23:59:58":
		// removal; validated against CORR below
	default:
		return LeapLine{}, fmt.Errorf("leap HH:MM:SS must be 23:59:60 or 23:59:58, got %q", f[4])
	}

	var corr LeapCorrection
	switch f[5] {
	case "+":
		corr = LeapInsert
	case "-":
		corr = LeapRemove
	default:
		return LeapLine{}, fmt.Errorf("leap CORR must be + or -, got %q", f[5])
	}
	if corr == LeapInsert && f[4] != "23:59:60" {
		return LeapLine{}, fmt.Errorf("leap insertion must occur at 23:59:60, got %q", f[4])
	}
	if corr == LeapRemove && f[4] != "23:59:58" {
		return LeapLine{}, fmt.Errorf("leap removal must occur at 23:59:58, got %q", f[4])
	}

	if len(f) > 6 {
		rs := f[6]
		if isAbbrev(rs, "rolling", "r") {
			return LeapLine{}, fmt.Errorf("non-stationary (rolling) leap lines are not supported")
		}
		if !isAbbrev(rs, "stationary", "s") {
			return LeapLine{}, fmt.Errorf("leap R/S column must be a prefix of stationary, got %q", rs)
		}
	}

	return LeapLine{Year: year, Month: month, Day: day, Correction: corr}, nil
}

func parseExpiresLine(f []string) (ExpiryDate, error) {
	if len(f) < 4 {
		return ExpiryDate{}, fmt.Errorf("expires line: want at least 4 fields, got %d", len(f))
	}
	year, err := strconv.Atoi(f[1])
	if err != nil {
		return ExpiryDate{}, fmt.Errorf("expires YEAR: %w", err)
	}
	month, err := parseMonth(f[2])
	if err != nil {
		return ExpiryDate{}, fmt.Errorf("expires MONTH: %w", err)
	}
	day, err := strconv.Atoi(f[3])
	if err != nil {
		return ExpiryDate{}, fmt.Errorf("expires DAY: %w", err)
	}
	return ExpiryDate{Year: year, Month: month, Day: day}, nil
}
