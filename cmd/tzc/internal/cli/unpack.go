package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tzforge/tzc/ianadist"
)

func newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack",
		Short: "Extract tzdata<version>.tar.gz in --workdir into tzdata<version>/",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack()
		},
	}
}

func runUnpack() error {
	log := logger()

	if tzVersion == "" {
		return fmt.Errorf("unpack: --version is required")
	}
	archivePath := filepath.Join(workdir, "tzdata"+tzVersion+".tar.gz")
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	defer f.Close()

	destDir := filepath.Join(workdir, "tzdata"+tzVersion)
	version, err := ianadist.ExtractArchive(f, destDir)
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	log.Info("unpacked archive", "archive", archivePath, "dest", destDir, "version", version)
	return nil
}
