// Command tzrepodiff compares two compiled tzdata.repository files and
// prints the zones, aliases, and leap entries that differ between them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/tzforge/tzc/history"
	"github.com/tzforge/tzc/repository"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		fmt.Println("Usage: tzrepodiff <repository file A> <repository file B>")
		os.Exit(1)
	}

	a, err := readRepository(args[0])
	if err != nil {
		fmt.Println("reading A:", err)
		os.Exit(1)
	}
	b, err := readRepository(args[1])
	if err != nil {
		fmt.Println("reading B:", err)
		os.Exit(1)
	}

	opts := cmp.AllowUnexported(history.History{})

	anyDiff := false
	if a.Version != b.Version {
		fmt.Printf("version differs: %s vs %s\n", a.Version, b.Version)
		anyDiff = true
	}

	zonesA := zoneMap(a)
	zonesB := zoneMap(b)
	for name, za := range zonesA {
		zb, ok := zonesB[name]
		if !ok {
			fmt.Printf("zone %s: only in A\n", name)
			anyDiff = true
			continue
		}
		if diff := cmp.Diff(za, zb, opts); diff != "" {
			fmt.Printf("zone %s differs (-A +B):\n%s\n", name, diff)
			anyDiff = true
		}
	}
	for name := range zonesB {
		if _, ok := zonesA[name]; !ok {
			fmt.Printf("zone %s: only in B\n", name)
			anyDiff = true
		}
	}

	if diff := cmp.Diff(a.Aliases, b.Aliases); diff != "" {
		fmt.Printf("aliases differ (-A +B):\n%s\n", diff)
		anyDiff = true
	}
	if diff := cmp.Diff(a.Leaps, b.Leaps); diff != "" {
		fmt.Printf("leaps differ (-A +B):\n%s\n", diff)
		anyDiff = true
	}
	if a.Expiry != b.Expiry {
		fmt.Printf("expiry differs: %+v vs %+v\n", a.Expiry, b.Expiry)
		anyDiff = true
	}

	if !anyDiff {
		fmt.Println("repositories are identical")
	}
}

func zoneMap(r repository.Repository) map[string]*history.History {
	m := make(map[string]*history.History, len(r.Zones))
	for _, z := range r.Zones {
		m[z.Name] = z.History
	}
	return m
}

func readRepository(path string) (repository.Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return repository.Repository{}, err
	}
	defer f.Close()
	return repository.Read(f)
}
