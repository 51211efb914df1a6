// Package compiler orchestrates the full tzdata-to-repository pipeline:
// parsing a release's input files, synthesising every zone's transition
// history, resolving its alias table, and assembling the binary repository.
package compiler

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tzforge/tzc/ianadist"
	"github.com/tzforge/tzc/repository"
	"github.com/tzforge/tzc/synth"
	"github.com/tzforge/tzc/tzdata"
)

// Options controls a single compile run.
type Options struct {
	// IncludeLMT threads through to every zone's synth.Options.IncludeLMT.
	IncludeLMT bool
	// Logger receives structured progress and warning messages. If nil,
	// log/slog's default logger is used.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Compile runs the full pipeline over a release's input files and returns
// the assembled repository, ready to be written with repository.Write.
func Compile(release *ianadist.Release, opts Options) (repository.Repository, error) {
	log := opts.logger()

	merged := tzdata.File{}
	ruleAccum := make(map[string][]tzdata.RuleLine)

	filenames := make([]string, 0, len(release.Files))
	for name := range release.Files {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	for _, name := range filenames {
		f, err := tzdata.Parse(name, strings.NewReader(release.Files[name]))
		if err != nil {
			return repository.Repository{}, fmt.Errorf("compile: %w", err)
		}
		for _, w := range f.Warnings {
			log.Warn("tzdata parse warning", "file", name, "warning", w)
		}
		for _, r := range f.Rules {
			ruleAccum[r.Name] = append(ruleAccum[r.Name], r)
		}
		merged.Zones = append(merged.Zones, f.Zones...)
		merged.Links = append(merged.Links, f.Links...)
		merged.Leaps = append(merged.Leaps, f.Leaps...)
		if f.Expiry != nil {
			merged.Expiry = f.Expiry
		}
	}

	rules := make(map[string][]tzdata.RuleLine, len(ruleAccum))
	for name, bucket := range ruleAccum {
		rules[name] = synth.SortBucket(bucket)
	}

	zoneEras := make(map[string][]tzdata.ZoneLine)
	var zoneOrder []string
	for _, z := range merged.Zones {
		if !z.Continuation {
			if _, ok := zoneEras[z.Name]; !ok {
				zoneOrder = append(zoneOrder, z.Name)
			}
		}
		last := zoneOrder[len(zoneOrder)-1]
		zoneEras[last] = append(zoneEras[last], z)
	}

	zones := make([]repository.Zone, 0, len(zoneOrder))
	zoneIDs := make(map[string]bool, len(zoneOrder))
	for _, name := range zoneOrder {
		h, err := synth.Zone(name, zoneEras[name], rules, synth.Options{IncludeLMT: opts.IncludeLMT})
		if err != nil {
			return repository.Repository{}, fmt.Errorf("compile: %w", err)
		}
		zones = append(zones, repository.Zone{Name: name, History: h})
		zoneIDs[name] = true
		log.Debug("synthesised zone", "zone", name, "transitions", len(h.Transitions()))
	}

	aliases, err := repository.ResolveLinks(merged.Links, zoneIDs)
	if err != nil {
		return repository.Repository{}, fmt.Errorf("compile: %w", err)
	}

	leaps := make([]repository.Leap, 0, len(merged.Leaps))
	for _, l := range merged.Leaps {
		leaps = append(leaps, repository.Leap{
			Year:  int16(l.Year),
			Month: uint8(l.Month),
			Day:   uint8(l.Day),
			Shift: int8(l.Correction),
		})
	}

	var expiry repository.Expiry
	if merged.Expiry != nil {
		expiry = repository.Expiry{
			Year:  int16(merged.Expiry.Year),
			Month: uint8(merged.Expiry.Month),
			Day:   uint8(merged.Expiry.Day),
		}
	}

	return repository.Repository{
		Version: release.Version,
		Zones:   zones,
		Aliases: aliases,
		Leaps:   leaps,
		Expiry:  expiry,
	}, nil
}
