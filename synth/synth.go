// Package synth implements the zone-synthesis core: turning a zone's eras
// (Zone lines) and the rule buckets they reference into a validated
// history.History of UTC-offset transitions.
package synth

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tzforge/tzc/history"
	"github.com/tzforge/tzc/internal/dateutil"
	"github.com/tzforge/tzc/internal/posixtime"
	"github.com/tzforge/tzc/tzdata"
)

// farPastYear stands in for "indefinitely far in the past" when a rule
// bucket's earliest FROM is tzdata.MinYear: it keeps the windowed expansion
// finite while staying well outside any year a real tzdata rule ever uses.
const farPastYear = -5000

// horizonYear stands in for "indefinitely far in the future" when neither a
// zone's terminal era nor its rule bucket names a concrete ending year. It
// matches the classic 32-bit epoch horizon the corpus itself expands rules
// to by default.
const horizonYear = 2037

// Options controls the zone-synthesis core's behavior.
type Options struct {
	// IncludeLMT keeps the leading Local Mean Time eras' transitions
	// instead of eliding them. Most consumers want these elided, since an
	// LMT offset is an artifact of 19th-century mapmaking, not a real
	// historical change of law.
	IncludeLMT bool
}

// Zone synthesises the transition history for a single zone from its eras
// (in source order) and the rule buckets named by their RULES columns.
// zoneID is used only to annotate the returned error.
func Zone(zoneID string, eras []tzdata.ZoneLine, rules map[string][]tzdata.RuleLine, opts Options) (*history.History, error) {
	if len(eras) == 0 {
		return nil, fmt.Errorf("synthesize %s: zone has no eras", zoneID)
	}

	var (
		transitions   []history.ZonalTransition
		dstOffset     int
		initialOffset int
	)

	for i, era := range eras {
		if i == 0 {
			var startDst int
			var err error
			startDst, dstOffset, transitions, err = initialEra(era, rules)
			if err != nil {
				return nil, fmt.Errorf("synthesize %s: %w", zoneID, err)
			}
			initialOffset = era.RawOffset + startDst
			continue
		}

		prev := eras[i-1]
		startTime := untilInstant(prev.Until, prev.RawOffset, dstOffset)
		startYear := civilYear(startTime)

		oldTotal := prev.RawOffset + dstOffset
		var newDst int
		switch era.Rules.Form {
		case tzdata.ZoneRulesFixed:
			newDst = era.Rules.FixedSaving
		case tzdata.ZoneRulesName:
			bucket, ok := rules[era.Rules.Name]
			if !ok {
				return nil, fmt.Errorf("synthesize %s: era references unknown rule name %q", zoneID, era.Rules.Name)
			}
			newDst = activeSavingAt(bucket, era, startYear, startTime, dstOffset)
		default:
			newDst = 0
		}
		newTotal := era.RawOffset + newDst

		if oldTotal != newTotal {
			transitions = appendTransition(transitions, startTime, oldTotal, newTotal, newDst)
		}
		dstOffset = newDst

		if era.Rules.Form == tzdata.ZoneRulesName {
			bucket := rules[era.Rules.Name]
			endYear, endTime := eraEnd(era, bucket, era.RawOffset, dstOffset)
			var err error
			dstOffset, transitions, err = addRuleTransitions(bucket, era, startTime, startYear-1, endYear+1, endTime, dstOffset, transitions)
			if err != nil {
				return nil, fmt.Errorf("synthesize %s: %w", zoneID, err)
			}
		}
	}

	recurring := recurringPattern(eras[len(eras)-1], rules)

	if !opts.IncludeLMT {
		initialOffset, transitions = elideLeadingLMT(eras, initialOffset, transitions)
	}

	h, err := history.New(initialOffset, transitions, recurring)
	if err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", zoneID, err)
	}
	return h, nil
}

// initialEra determines the dst offset active before the zone's very first
// transition (startDst), the dst offset active after the era's windowed
// rule expansion (chainDst, used as the basis for the next era), and any
// transitions the expansion produced. A zone's first era has no predecessor
// to inherit a total offset from, so startDst is always the era's
// unmodified saving -- 0 unless the era names a fixed saving.
func initialEra(era tzdata.ZoneLine, rules map[string][]tzdata.RuleLine) (startDst, chainDst int, transitions []history.ZonalTransition, err error) {
	switch era.Rules.Form {
	case tzdata.ZoneRulesFixed:
		return era.Rules.FixedSaving, era.Rules.FixedSaving, nil, nil
	case tzdata.ZoneRulesStandard:
		return 0, 0, nil, nil
	case tzdata.ZoneRulesName:
		bucket, ok := rules[era.Rules.Name]
		if !ok {
			return 0, 0, nil, fmt.Errorf("era references unknown rule name %q", era.Rules.Name)
		}
		if len(bucket) == 0 {
			return 0, 0, nil, nil
		}
		startYear := earliestFrom(bucket)
		if startYear == tzdata.MinYear {
			startYear = farPastYear
		}
		endYear, endTime := eraEnd(era, bucket, era.RawOffset, 0)
		chainDst, transitions, err = addRuleTransitions(bucket, era, math.MinInt64, startYear-1, endYear+1, endTime, 0, nil)
		if err != nil {
			return 0, 0, nil, err
		}
		return 0, chainDst, transitions, nil
	default:
		return 0, 0, nil, nil
	}
}

// addRuleTransitions walks the rule bucket year by year across [loYear,
// hiYear], emitting a transition for each rule that actually fires at or
// after startTime and before endTime. It stops as soon as a firing instant reaches
// endTime, since the bucket is ordered so that firing instants advance
// (within a year) in the same relative order every year.
func addRuleTransitions(bucket []tzdata.RuleLine, era tzdata.ZoneLine, startTime int64, loYear, hiYear int, endTime int64, dstOffset int, transitions []history.ZonalTransition) (int, []history.ZonalTransition, error) {
	sorted := SortBucket(bucket)
	for year := loYear; year <= hiYear; year++ {
		for _, r := range sorted {
			if year < r.From || year > r.To {
				continue
			}
			tt := ruleInstant(r, year, era.RawOffset, dstOffset)
			if tt < startTime {
				continue
			}
			if tt >= endTime {
				return dstOffset, transitions, nil
			}
			newDst := r.Save.Seconds
			newTotal := era.RawOffset + newDst
			oldTotal := era.RawOffset + dstOffset
			transitions = appendTransition(transitions, tt, oldTotal, newTotal, newDst)
			dstOffset = newDst
		}
	}
	return dstOffset, transitions, nil
}

// activeSavingAt finds the saving in effect at an era boundary: the latest
// rule in bucket whose [From,To] contains year and whose realised instant is
// at or before startTime. If none qualifies, the era inherits the
// predecessor era's saving.
func activeSavingAt(bucket []tzdata.RuleLine, era tzdata.ZoneLine, year int, startTime int64, inherited int) int {
	best := inherited
	haveBest := false
	var bestTime int64
	for _, r := range bucket {
		if year < r.From || year > r.To {
			continue
		}
		tt := ruleInstant(r, year, era.RawOffset, inherited)
		if tt > startTime {
			continue
		}
		if !haveBest || tt > bestTime {
			bestTime = tt
			best = r.Save.Seconds
			haveBest = true
		}
	}
	return best
}

// appendTransition applies the append/coalescing policy: a transition at the
// same instant as the last one overrides its (total, dst) while keeping its
// original previous-total; a transition that changes nothing is dropped.
func appendTransition(ts []history.ZonalTransition, tt int64, prevTotal, newTotal, dst int) []history.ZonalTransition {
	if len(ts) > 0 {
		last := &ts[len(ts)-1]
		if last.PosixTime == tt {
			last.NewTotal = newTotal
			last.DaylightSaving = dst
			return ts
		}
		if last.NewTotal == newTotal && last.DaylightSaving == dst {
			return ts
		}
	}
	return append(ts, history.ZonalTransition{PosixTime: tt, PreviousTotal: prevTotal, NewTotal: newTotal, DaylightSaving: dst})
}

// ruleInstant returns the POSIX time a rule fires in the given year, using
// the rule's own indicator and the saving in effect immediately before it
// (basisDst) as the shift basis.
func ruleInstant(r tzdata.RuleLine, year, rawOffset, basisDst int) int64 {
	y, m, d := resolveDaySpec(r.On, year, r.Month)
	local := posixtime.FromDateTime(y, int(m), d, 0, 0, 0) + int64(r.At.Seconds)
	return local - int64(shiftSeconds(r.At.Indicator, rawOffset, basisDst))
}

// untilInstant resolves a Zone era's UNTIL field to a POSIX time, treating
// missing components as their earliest possible value.
func untilInstant(u tzdata.Until, rawOffset, dstOffset int) int64 {
	if !u.Defined {
		return math.MaxInt64
	}
	y, m, d := resolveDaySpec(u.Day, u.Year, u.Month)
	local := posixtime.FromDateTime(y, int(m), d, 0, 0, 0) + int64(u.Time.Seconds)
	return local - int64(shiftSeconds(u.Time.Indicator, rawOffset, dstOffset))
}

func shiftSeconds(ind tzdata.OffsetIndicator, rawOffset, dstOffset int) int {
	switch ind {
	case tzdata.UTC:
		return 0
	case tzdata.Standard:
		return rawOffset
	default: // Wall
		return rawOffset + dstOffset
	}
}

// resolveDaySpec realizes a day specifier for a given year and month,
// spilling into neighboring months/years as needed.
func resolveDaySpec(d tzdata.DaySpec, year int, month time.Month) (int, time.Month, int) {
	switch d.Form {
	case tzdata.DayFormNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		return year, month, dateutil.LastWeekday(year, month, d.Weekday)
	case tzdata.DayFormOnOrAfter:
		return dateutil.OnOrAfter(year, month, d.Num, d.Weekday)
	case tzdata.DayFormOnOrBefore:
		return dateutil.OnOrBefore(year, month, d.Num, d.Weekday)
	default:
		return year, month, d.Num
	}
}

func civilYear(posixTime int64) int {
	// Binary search isn't warranted; a direct approximation followed by
	// adjustment is simpler and exact enough for the small ranges involved
	// here. We estimate via 365.2425-day years from the epoch and correct.
	const secondsPerDayApprox = 86400
	const daysPerYearApprox = 365.2425
	approx := 1970 + int(float64(posixTime)/secondsPerDayApprox/daysPerYearApprox)
	for posixtime.FromDateTime(approx, 1, 1, 0, 0, 0) > posixTime {
		approx--
	}
	for posixtime.FromDateTime(approx+1, 1, 1, 0, 0, 0) <= posixTime {
		approx++
	}
	return approx
}

// prototypeSortYear is the fixed leap-reference year used to order a rule
// bucket by its members' relative in-year firing instant, per the spec's
// "RuleLines sharing a name are stored sorted by their in-year firing
// instant, computed at a fixed leap reference year (2000) with offset 0"
// invariant. It is a sort key, not a year any rule actually governs.
const prototypeSortYear = 2000

// SortBucket orders a rule bucket by each rule's firing instant within
// prototypeSortYear at a zero raw offset and zero basis saving. Since a
// bucket's rules always apply the same relative order every real year they
// both govern, this one computation at a fixed reference year is sufficient
// to order the whole bucket for every year it is later applied to.
func SortBucket(bucket []tzdata.RuleLine) []tzdata.RuleLine {
	sorted := make([]tzdata.RuleLine, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ruleInstant(sorted[i], prototypeSortYear, 0, 0) < ruleInstant(sorted[j], prototypeSortYear, 0, 0)
	})
	return sorted
}

func earliestFrom(bucket []tzdata.RuleLine) int {
	earliest := tzdata.MaxYear
	for _, r := range bucket {
		if r.From < earliest {
			earliest = r.From
		}
	}
	return earliest
}

// eraEnd determines the year and POSIX time through which an era's rule
// expansion should continue: the era's own UNTIL if defined, else the
// latest finite To among its rule bucket, else the synthesis horizon.
func eraEnd(era tzdata.ZoneLine, bucket []tzdata.RuleLine, rawOffset, dstOffset int) (int, int64) {
	if era.Until.Defined {
		return era.Until.Year, untilInstant(era.Until, rawOffset, dstOffset)
	}
	maxTo := 0
	any := false
	for _, r := range bucket {
		if r.To == tzdata.MaxYear {
			continue
		}
		if !any || r.To > maxTo {
			maxTo = r.To
			any = true
		}
	}
	if !any {
		return horizonYear, posixtime.FromDateTime(horizonYear+1, 1, 1, 0, 0, 0)
	}
	return maxTo, posixtime.FromDateTime(maxTo+1, 1, 1, 0, 0, 0)
}

// recurringPattern extracts the open-ended (To == MaxYear) rules from the
// terminal era's bucket, describing how transitions would continue to be
// computed beyond the last synthesised one.
func recurringPattern(terminal tzdata.ZoneLine, rules map[string][]tzdata.RuleLine) []tzdata.DaylightSavingRule {
	if terminal.Rules.Form != tzdata.ZoneRulesName {
		return nil
	}
	var out []tzdata.DaylightSavingRule
	for _, r := range SortBucket(rules[terminal.Rules.Name]) {
		if r.To != tzdata.MaxYear {
			continue
		}
		out = append(out, tzdata.DaylightSavingRule{
			Month:       r.Month,
			On:          r.On,
			At:          r.At,
			SaveSeconds: r.Save.Seconds,
			Letter:      r.Letter,
		})
	}
	return out
}

// elideLeadingLMT discards the leading transitions produced by a zone's
// leading Local Mean Time eras, re-seeding the initial offset from the last
// discarded transition. This is a textual heuristic inherited from the
// source corpus: an era's FORMAT column reading exactly "LMT" identifies it
// as a pre-standardization local-mean-time artifact rather than a real
// historical offset change.
func elideLeadingLMT(eras []tzdata.ZoneLine, initialOffset int, transitions []history.ZonalTransition) (int, []history.ZonalTransition) {
	leading := 0
	for _, e := range eras {
		if e.Format != "LMT" {
			break
		}
		leading++
	}
	if leading == 0 {
		return initialOffset, transitions
	}
	if leading > len(transitions) {
		leading = len(transitions)
	}
	if leading == 0 {
		return initialOffset, transitions
	}
	initialOffset = transitions[leading-1].NewTotal
	return initialOffset, transitions[leading:]
}
