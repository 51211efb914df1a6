// Command tzrepoinfo prints the contents of a compiled tzdata.repository
// file: its version, zone table, alias table, and leap table.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tzforge/tzc/repository"
)

var printTransitionsFlag = flag.Bool("t", false, "print every zone's transitions in human readable form")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzrepoinfo <tzdata.repository file>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println("opening file:", err)
		os.Exit(1)
	}
	defer f.Close()

	repo, err := repository.Read(f)
	if err != nil {
		fmt.Println("decoding:", err)
		os.Exit(1)
	}

	printRepository(repo)
}

func printRepository(r repository.Repository) {
	fmt.Println("Version:", r.Version)
	fmt.Printf("Zones (%d):\n", len(r.Zones))
	for _, z := range r.Zones {
		fmt.Printf("  %s: initial offset = %s, %d transitions, %d recurring rules\n",
			z.Name, time.Duration(z.History.InitialOffset())*time.Second, len(z.History.Transitions()), len(z.History.Recurring()))
		if *printTransitionsFlag {
			printTransitions(z)
		}
	}

	fmt.Printf("Aliases (%d):\n", len(r.Aliases))
	for alias, target := range r.Aliases {
		fmt.Printf("  %s -> %s\n", alias, target)
	}

	fmt.Printf("Leaps (%d):\n", len(r.Leaps))
	for _, l := range r.Leaps {
		fmt.Printf("  %04d-%02d-%02d shift=%+d\n", l.Year, l.Month, l.Day, l.Shift)
	}

	fmt.Printf("Expiry: %04d-%02d-%02d\n", r.Expiry.Year, r.Expiry.Month, r.Expiry.Day)
}

func printTransitions(z repository.Zone) {
	for _, t := range z.History.Transitions() {
		fmt.Printf("    %s (%d): %s -> %s (dst %s)\n",
			time.Unix(t.PosixTime, 0).UTC().Format(time.RFC1123), t.PosixTime,
			time.Duration(t.PreviousTotal)*time.Second, time.Duration(t.NewTotal)*time.Second,
			time.Duration(t.DaylightSaving)*time.Second)
	}
}
