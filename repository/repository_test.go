package repository

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tzforge/tzc/history"
	"github.com/tzforge/tzc/tzdata"
)

func mustHistory(t *testing.T, initial int, transitions []history.ZonalTransition) *history.History {
	t.Helper()
	h, err := history.New(initial, transitions, nil)
	if err != nil {
		t.Fatalf("history.New: unexpected error: %v", err)
	}
	return h
}

func TestWriteRead_RoundTrip(t *testing.T) {
	zones := []Zone{
		{Name: "Etc/UTC", History: mustHistory(t, 0, nil)},
		{Name: "Europe/Zurich", History: mustHistory(t, 3600, []history.ZonalTransition{
			{PosixTime: 1000, PreviousTotal: 3600, NewTotal: 7200, DaylightSaving: 3600},
		})},
	}
	repo := Repository{
		Version: "2024b",
		Zones:   zones,
		Aliases: map[string]string{"Europe/Vaduz": "Europe/Zurich"},
		Leaps: []Leap{
			{Year: 1972, Month: 6, Day: 30, Shift: 1},
		},
		Expiry: Expiry{Year: 2024, Month: 12, Day: 28},
	}

	var buf bytes.Buffer
	if err := Write(&buf, repo); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}

	if got.Version != repo.Version {
		t.Errorf("Version = %q, want %q", got.Version, repo.Version)
	}
	if len(got.Zones) != 2 {
		t.Fatalf("len(Zones) = %d, want 2", len(got.Zones))
	}
	// Write sorts zones lexicographically.
	if got.Zones[0].Name != "Etc/UTC" || got.Zones[1].Name != "Europe/Zurich" {
		t.Errorf("Zones order = [%s, %s], want [Etc/UTC, Europe/Zurich]", got.Zones[0].Name, got.Zones[1].Name)
	}
	if diff := cmp.Diff(zones[1].History, got.Zones[1].History, cmp.AllowUnexported(history.History{})); diff != "" {
		t.Errorf("Europe/Zurich history mismatch (-want +got):\n%s", diff)
	}
	if got.Aliases["Europe/Vaduz"] != "Europe/Zurich" {
		t.Errorf("Aliases[Europe/Vaduz] = %q, want Europe/Zurich", got.Aliases["Europe/Vaduz"])
	}
	if len(got.Leaps) != 1 || got.Leaps[0] != repo.Leaps[0] {
		t.Errorf("Leaps = %+v, want %+v", got.Leaps, repo.Leaps)
	}
	if got.Expiry != repo.Expiry {
		t.Errorf("Expiry = %+v, want %+v", got.Expiry, repo.Expiry)
	}
}

func TestResolveLinks(t *testing.T) {
	zoneIDs := map[string]bool{"Europe/Zurich": true}
	links := []tzdata.LinkLine{
		{Alias: "Europe/Vaduz", Target: "Europe/Zurich"},
		{Alias: "Europe/Busingen", Target: "Europe/Vaduz"}, // chains through another alias
	}
	resolved, err := ResolveLinks(links, zoneIDs)
	if err != nil {
		t.Fatalf("ResolveLinks: unexpected error: %v", err)
	}
	if resolved["Europe/Vaduz"] != "Europe/Zurich" {
		t.Errorf("Europe/Vaduz -> %q, want Europe/Zurich", resolved["Europe/Vaduz"])
	}
	if resolved["Europe/Busingen"] != "Europe/Zurich" {
		t.Errorf("Europe/Busingen -> %q, want Europe/Zurich", resolved["Europe/Busingen"])
	}
}

func TestResolveLinks_UnknownTarget(t *testing.T) {
	zoneIDs := map[string]bool{"Europe/Zurich": true}
	links := []tzdata.LinkLine{{Alias: "Europe/Nowhere", Target: "Europe/DoesNotExist"}}
	if _, err := ResolveLinks(links, zoneIDs); err == nil {
		t.Fatal("ResolveLinks: expected error for unresolved target, got nil")
	}
}

func TestResolveLinks_Cycle(t *testing.T) {
	zoneIDs := map[string]bool{}
	links := []tzdata.LinkLine{
		{Alias: "A", Target: "B"},
		{Alias: "B", Target: "A"},
	}
	if _, err := ResolveLinks(links, zoneIDs); err == nil {
		t.Fatal("ResolveLinks: expected error for cyclic chain, got nil")
	}
}
