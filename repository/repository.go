// Package repository implements the compiler's binary output container: a
// self-describing file holding every zone's encoded TransitionHistory, an
// alias table resolved to zone indices, and the leap-second table.
package repository

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/tzforge/tzc/history"
	"github.com/tzforge/tzc/tzdata"
)

// magic is the fixed byte sequence identifying a repository file.
var magic = [6]byte{'t', 'z', 'r', 'e', 'p', 'o'}

// Leap is one accepted leap-second entry as it is written to a repository.
type Leap struct {
	Year  int16
	Month uint8
	Day   uint8
	Shift int8
}

// Expiry is the calendar date a repository's leap-second data is valid
// through.
type Expiry struct {
	Year  int16
	Month uint8
	Day   uint8
}

// Zone is one canonical zone's name and encoded transition history, as held
// in memory before serialisation.
type Zone struct {
	Name    string
	History *history.History
}

// Repository is the complete in-memory contents of a compiled binary
// repository file: every canonical zone's history, every alias resolved to
// its canonical zone's name, the leap table, and the expiry date. Write turns
// each alias target into an index into the sorted zone table.
type Repository struct {
	Version string
	Zones   []Zone
	// Aliases maps an alias zone ID to the name of the canonical zone it
	// resolves to (after chain resolution). Every value must name a zone
	// present in Zones.
	Aliases map[string]string
	Leaps   []Leap
	Expiry  Expiry
}

// ResolveLinks follows a chain of LinkLines (alias → target, possibly
// through further aliases) to the canonical zone ID at the end of the
// chain. It returns an error if the chain is cyclic or terminates at a
// name absent from zoneIDs.
func ResolveLinks(links []tzdata.LinkLine, zoneIDs map[string]bool) (map[string]string, error) {
	targets := make(map[string]string, len(links))
	for _, l := range links {
		targets[l.Alias] = l.Target
	}

	resolved := make(map[string]string, len(links))
	for alias := range targets {
		seen := make(map[string]bool)
		cur := alias
		for {
			if zoneIDs[cur] {
				resolved[alias] = cur
				break
			}
			if seen[cur] {
				return nil, fmt.Errorf("resolve link %q: cyclic alias chain", alias)
			}
			seen[cur] = true
			next, ok := targets[cur]
			if !ok {
				return nil, fmt.Errorf("resolve link %q: target %q is neither a zone nor a known alias", alias, cur)
			}
			cur = next
		}
	}
	return resolved, nil
}

// Write serialises r to w in the format specified in spec.md §4.4:
// magic, version, zone count, zone table, alias table, leap table, expiry.
func Write(w io.Writer, r Repository) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := writeString16(bw, r.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	sorted := make([]Zone, len(r.Zones))
	copy(sorted, r.Zones)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if err := binary.Write(bw, binary.BigEndian, uint32(len(sorted))); err != nil {
		return fmt.Errorf("write zone count: %w", err)
	}
	zoneIndex := make(map[string]uint16, len(sorted))
	for i, z := range sorted {
		zoneIndex[z.Name] = uint16(i)
		if err := writeString16(bw, z.Name); err != nil {
			return fmt.Errorf("write zone id %s: %w", z.Name, err)
		}
		var blob bytes.Buffer
		if err := z.History.Encode(&blob); err != nil {
			return fmt.Errorf("encode zone %s: %w", z.Name, err)
		}
		if err := binary.Write(bw, binary.BigEndian, uint32(blob.Len())); err != nil {
			return fmt.Errorf("write blob length for %s: %w", z.Name, err)
		}
		if _, err := bw.Write(blob.Bytes()); err != nil {
			return fmt.Errorf("write blob for %s: %w", z.Name, err)
		}
	}

	aliasNames := make([]string, 0, len(r.Aliases))
	for alias := range r.Aliases {
		aliasNames = append(aliasNames, alias)
	}
	sort.Strings(aliasNames)

	if err := binary.Write(bw, binary.BigEndian, uint16(len(aliasNames))); err != nil {
		return fmt.Errorf("write alias count: %w", err)
	}
	for _, alias := range aliasNames {
		target := r.Aliases[alias]
		idx, ok := zoneIndex[target]
		if !ok {
			return fmt.Errorf("write alias %s: target %s is not a known zone", alias, target)
		}
		if err := writeString16(bw, alias); err != nil {
			return fmt.Errorf("write alias name %s: %w", alias, err)
		}
		if err := binary.Write(bw, binary.BigEndian, idx); err != nil {
			return fmt.Errorf("write alias index for %s: %w", alias, err)
		}
	}

	if err := binary.Write(bw, binary.BigEndian, uint16(len(r.Leaps))); err != nil {
		return fmt.Errorf("write leap count: %w", err)
	}
	for _, l := range r.Leaps {
		if err := binary.Write(bw, binary.BigEndian, l); err != nil {
			return fmt.Errorf("write leap entry: %w", err)
		}
	}

	if err := binary.Write(bw, binary.BigEndian, r.Expiry); err != nil {
		return fmt.Errorf("write expiry: %w", err)
	}

	return bw.Flush()
}

// writeString16 writes a UTF-8 string prefixed by its length as a
// big-endian uint16.
func writeString16(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long to length-prefix with uint16: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString16(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Read deserialises a repository previously written by Write.
func Read(r io.Reader) (Repository, error) {
	var out Repository

	var gotMagic [6]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return out, fmt.Errorf("read magic: %w", err)
	}
	if gotMagic != magic {
		return out, fmt.Errorf("read magic: got %q, want %q", gotMagic, magic)
	}

	version, err := readString16(r)
	if err != nil {
		return out, fmt.Errorf("read version: %w", err)
	}
	out.Version = version

	var zoneCount uint32
	if err := binary.Read(r, binary.BigEndian, &zoneCount); err != nil {
		return out, fmt.Errorf("read zone count: %w", err)
	}

	names := make([]string, zoneCount)
	out.Zones = make([]Zone, zoneCount)
	for i := range out.Zones {
		name, err := readString16(r)
		if err != nil {
			return out, fmt.Errorf("read zone id %d: %w", i, err)
		}
		names[i] = name
		var blobLen uint32
		if err := binary.Read(r, binary.BigEndian, &blobLen); err != nil {
			return out, fmt.Errorf("read blob length for %s: %w", name, err)
		}
		blob := make([]byte, blobLen)
		if _, err := io.ReadFull(r, blob); err != nil {
			return out, fmt.Errorf("read blob for %s: %w", name, err)
		}
		h, err := history.Decode(bytes.NewReader(blob))
		if err != nil {
			return out, fmt.Errorf("decode history for %s: %w", name, err)
		}
		out.Zones[i] = Zone{Name: name, History: h}
	}

	var aliasCount uint16
	if err := binary.Read(r, binary.BigEndian, &aliasCount); err != nil {
		return out, fmt.Errorf("read alias count: %w", err)
	}
	out.Aliases = make(map[string]string, aliasCount)
	for i := uint16(0); i < aliasCount; i++ {
		alias, err := readString16(r)
		if err != nil {
			return out, fmt.Errorf("read alias name %d: %w", i, err)
		}
		var idx uint16
		if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
			return out, fmt.Errorf("read alias index for %s: %w", alias, err)
		}
		if int(idx) >= len(names) {
			return out, fmt.Errorf("read alias %s: index %d out of range", alias, idx)
		}
		out.Aliases[alias] = names[idx]
	}

	var leapCount uint16
	if err := binary.Read(r, binary.BigEndian, &leapCount); err != nil {
		return out, fmt.Errorf("read leap count: %w", err)
	}
	out.Leaps = make([]Leap, leapCount)
	for i := range out.Leaps {
		if err := binary.Read(r, binary.BigEndian, &out.Leaps[i]); err != nil {
			return out, fmt.Errorf("read leap entry %d: %w", i, err)
		}
	}

	if err := binary.Read(r, binary.BigEndian, &out.Expiry); err != nil {
		return out, fmt.Errorf("read expiry: %w", err)
	}

	return out, nil
}
