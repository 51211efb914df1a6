// Package cli implements tzc's Cobra command tree: compile, unpack, fetch,
// and version, sharing the --workdir, --version, --lmt and --verbose flags
// spec.md's External Interfaces section names.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	workdir    string
	tzVersion  string
	includeLMT bool
	verbose    bool
)

// Execute builds and runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tzc",
		Short: "Compile IANA tzdata source releases into a binary repository",
	}
	root.PersistentFlags().StringVar(&workdir, "workdir", ".", "directory containing tzdata<version> sources or archives")
	root.PersistentFlags().StringVar(&tzVersion, "version", "", "tzdata version to use; newest available if empty")
	root.PersistentFlags().BoolVar(&includeLMT, "lmt", false, "keep leading Local Mean Time transitions instead of eliding them")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newUnpackCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
