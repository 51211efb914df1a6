package history

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tzforge/tzc/internal/tzif"
	"github.com/tzforge/tzc/tzdata"
)

// Encode serialises h into the repository's opaque per-zone blob format.
//
// The contract only requires a stable encoding; this implementation reuses
// the RFC8536 TZif container (version 2 header, data block and footer) to
// carry the transition table, since it already expresses exactly this shape
// of data: a sorted transition-time array, a small table of distinct
// (offset, is-dst) local time types each transition indexes into, and a
// footer for the open-ended rule that applies after the last transition.
// Local time type 0 is always the type in effect before the first
// transition (h.InitialOffset()), by convention of this encoder -- TZif
// itself has no such field.
//
// TZif's local time type record carries only a UTC offset and a
// standard/DST flag, not the DST portion of that offset, so a small trailer
// (one big-endian int32 per type) is appended after the standard TZif
// bytes to preserve each type's DaylightSaving value exactly.
func (h *History) Encode(w io.Writer) error {
	types, typeIndex := buildTypes(h)

	timecnt := len(h.transitions)
	times := make([]int64, timecnt)
	ttypes := make([]uint8, timecnt)
	for i, tr := range h.transitions {
		times[i] = tr.PosixTime
		ttypes[i] = typeIndex[localType{utoff: tr.NewTotal, dst: tr.DaylightSaving}]
	}

	const designation = "STD\x00DST\x00"

	block := tzif.Block{
		Header: tzif.Header{
			Typecnt: uint32(len(types)),
			Charcnt: uint32(len(designation)),
			Timecnt: uint32(timecnt),
		},
		Data: tzif.DataBlock{
			TransitionTimes: times,
			TransitionTypes: ttypes,
			Types:           types,
			Designations:    []byte(designation),
		},
		Footer: tzif.Footer{Rule: []byte(marshalRecurring(h.recurring))},
	}
	if err := tzif.Validate(block); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := block.Encode(w); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	savings := make([]int32, len(types))
	for lt, idx := range typeIndex {
		savings[idx] = int32(lt.dst)
	}
	return binary.Write(w, binary.BigEndian, savings)
}

// Decode reads a blob written by Encode and returns the validated History it
// represents.
func Decode(r io.Reader) (*History, error) {
	block, err := tzif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if len(block.Data.Types) == 0 {
		return nil, fmt.Errorf("decode history: no local time types")
	}

	savings := make([]int32, len(block.Data.Types))
	if err := binary.Read(r, binary.BigEndian, &savings); err != nil {
		return nil, fmt.Errorf("decode history: reading daylight-saving trailer: %w", err)
	}

	initialOffset := int(block.Data.Types[0].UTOffset)

	transitions := make([]ZonalTransition, len(block.Data.TransitionTimes))
	prev := initialOffset
	for i, t := range block.Data.TransitionTimes {
		typeIdx := block.Data.TransitionTypes[i]
		rec := block.Data.Types[typeIdx]
		transitions[i] = ZonalTransition{
			PosixTime:      t,
			PreviousTotal:  prev,
			NewTotal:       int(rec.UTOffset),
			DaylightSaving: int(savings[typeIdx]),
		}
		prev = int(rec.UTOffset)
	}

	recurring, err := unmarshalRecurring(string(block.Footer.Rule))
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	return New(initialOffset, transitions, recurring)
}

type localType struct {
	utoff int
	dst   int
}

// buildTypes deduplicates the (offset, dst) pairs that appear in h's initial
// offset and transitions into a table of LocalTimeType, with the initial
// offset's type always placed first.
func buildTypes(h *History) ([]tzif.LocalTimeType, map[localType]uint8) {
	var types []tzif.LocalTimeType
	index := make(map[localType]uint8)

	add := func(lt localType) {
		if _, ok := index[lt]; ok {
			return
		}
		index[lt] = uint8(len(types))
		idx := uint8(0)
		if lt.dst != 0 {
			idx = 4 // offset of "DST\x00" within "STD\x00DST\x00"
		}
		types = append(types, tzif.LocalTimeType{
			UTOffset: int32(lt.utoff),
			IsDST:    lt.dst != 0,
			DesigIdx: idx,
		})
	}

	add(localType{utoff: h.initialOffset})
	for _, tr := range h.transitions {
		add(localType{utoff: tr.NewTotal, dst: tr.DaylightSaving})
	}
	return types, index
}

// marshalRecurring encodes a recurring rule pattern list into a compact,
// stable text form carried in the TZif footer's TZ-string slot. It is not
// POSIX TZ syntax; it only needs to round-trip through unmarshalRecurring.
func marshalRecurring(rules []tzdata.DaylightSavingRule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = strings.Join([]string{
			strconv.Itoa(int(r.Month)),
			strconv.Itoa(int(r.On.Form)),
			strconv.Itoa(r.On.Num),
			strconv.Itoa(int(r.On.Weekday)),
			strconv.Itoa(r.At.Seconds),
			strconv.Itoa(int(r.At.Indicator)),
			strconv.Itoa(r.SaveSeconds),
			r.Letter,
		}, ",")
	}
	return strings.Join(parts, "|")
}

func unmarshalRecurring(s string) ([]tzdata.DaylightSavingRule, error) {
	if s == "" {
		return nil, nil
	}
	entries := strings.Split(s, "|")
	rules := make([]tzdata.DaylightSavingRule, len(entries))
	for i, e := range entries {
		fields := strings.Split(e, ",")
		if len(fields) != 8 {
			return nil, fmt.Errorf("malformed recurring rule %q", e)
		}
		month, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule month %q: %w", e, err)
		}
		form, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule day form %q: %w", e, err)
		}
		num, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule day num %q: %w", e, err)
		}
		wd, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule weekday %q: %w", e, err)
		}
		atSecs, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule at-seconds %q: %w", e, err)
		}
		atInd, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule at-indicator %q: %w", e, err)
		}
		save, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, fmt.Errorf("malformed recurring rule save %q: %w", e, err)
		}
		rules[i] = tzdata.DaylightSavingRule{
			Month:       time.Month(month),
			On:          tzdata.DaySpec{Form: tzdata.DayForm(form), Num: num, Weekday: time.Weekday(wd)},
			At:          tzdata.TimeOfDay{Seconds: atSecs, Indicator: tzdata.OffsetIndicator(atInd)},
			SaveSeconds: save,
			Letter:      fields[7],
		}
	}
	return rules, nil
}
