package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tzforge/tzc/compiler"
	"github.com/tzforge/tzc/ianadist"
	"github.com/tzforge/tzc/repository"
)

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Compile a tzdata release in --workdir into a binary repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile()
		},
	}
}

func runCompile() error {
	log := logger()

	path, version, isArchive, err := resolveSource()
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	log.Info("selected tzdata source", "path", path, "version", version)

	release, err := readRelease(path, isArchive)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	if release.Version == "" {
		release.Version = version
	}

	repo, err := compiler.Compile(release, compiler.Options{IncludeLMT: includeLMT, Logger: log})
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	log.Info("synthesised zones", "count", len(repo.Zones))

	outDir := filepath.Join(workdir, "tzdata"+repo.Version)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("compile: create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, "tzdata.repository")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("compile: create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := repository.Write(f, repo); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("compile: write repository: %w", err)
	}
	log.Info("wrote repository", "path", outPath)
	return nil
}

// resolveSource picks the tzdata source to compile: an explicit --version
// if given, else the newest one discovered in --workdir.
func resolveSource() (path, version string, isArchive bool, err error) {
	if tzVersion == "" {
		return ianadist.DiscoverVersion(workdir)
	}
	dirPath := filepath.Join(workdir, "tzdata"+tzVersion)
	if fi, statErr := os.Stat(dirPath); statErr == nil && fi.IsDir() {
		return dirPath, tzVersion, false, nil
	}
	archivePath := filepath.Join(workdir, "tzdata"+tzVersion+".tar.gz")
	if _, statErr := os.Stat(archivePath); statErr == nil {
		return archivePath, tzVersion, true, nil
	}
	return "", "", false, fmt.Errorf("no tzdata%s directory or archive found in %s", tzVersion, workdir)
}

func readRelease(path string, isArchive bool) (*ianadist.Release, error) {
	if !isArchive {
		return ianadist.ReadDir(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ianadist.ReadArchive(f)
}
