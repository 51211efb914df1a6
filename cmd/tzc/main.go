// Command tzc compiles an IANA tzdata source release into a compact binary
// repository for offset and transition queries.
package main

import (
	"fmt"
	"os"

	"github.com/tzforge/tzc/cmd/tzc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
