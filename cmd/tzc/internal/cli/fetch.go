package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tzforge/tzc/ianadist"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest tzdata release into --workdir",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context())
		},
	}
}

func runFetch(ctx context.Context) error {
	log := logger()

	release, err := ianadist.Latest(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if release.Version == "" {
		return fmt.Errorf("fetch: latest release carried no version file")
	}

	destDir := filepath.Join(workdir, "tzdata"+release.Version)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("fetch: create %s: %w", destDir, err)
	}
	for name, contents := range release.Files {
		if err := os.WriteFile(filepath.Join(destDir, name), []byte(contents), 0o644); err != nil {
			return fmt.Errorf("fetch: write %s: %w", name, err)
		}
	}
	log.Info("fetched latest tzdata release", "version", release.Version, "dest", destDir, "files", len(release.Files))
	return nil
}
