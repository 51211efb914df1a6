// Package ianadist resolves and reads tzdata source releases: selecting the
// newest version available in a working directory (as a subdirectory or a
// tzdata<version>.tar.gz archive), extracting an archive to disk, and
// reading an archive's input files directly into the filename→text map the
// zone-synthesis core consumes. It also fetches the latest release from the
// IANA data server, backing the "tzc fetch" subcommand.
package ianadist

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// InputFiles is the fixed set of tzdata source files the compiler reads;
// everything else in a release or working directory is ignored, per the
// External Interfaces contract.
var InputFiles = []string{
	"africa", "antarctica", "asia", "australasia", "backward",
	"etcetera", "europe", "leapseconds", "leap-seconds.list",
	"northamerica", "southamerica",
}

func isInputFile(name string) bool {
	for _, f := range InputFiles {
		if f == name {
			return true
		}
	}
	return false
}

// Release is a tzdata source release read into memory: its version string
// and its input files as UTF-8 text, keyed by filename.
type Release struct {
	Version string
	Files   map[string]string
}

// versionPattern matches a tzdata version directory or archive name:
// four digits followed by one lowercase letter, e.g. "2023c".
var versionPattern = regexp.MustCompile(`^(\d{4})([a-z])$`)

// entryKind distinguishes a directory release from an archive release when
// both are present for the same version; directories win ties.
type entryKind int

const (
	kindArchive entryKind = iota
	kindDirectory
)

type candidate struct {
	version string
	year    int
	letter  byte
	kind    entryKind
	path    string
}

// SelectVersion applies the comparator from the External Interfaces
// contract to a set of candidate version strings (without any file
// extension) and returns the newest one. Newest means: numerically largest
// year; within the same year, lexicographically largest letter.
func SelectVersion(versions []string) (string, bool) {
	best := ""
	bestYear := -1
	var bestLetter byte
	for _, v := range versions {
		m := versionPattern.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		year := 0
		fmt.Sscanf(m[1], "%d", &year)
		letter := m[2][0]
		if year > bestYear || (year == bestYear && letter > bestLetter) {
			best = v
			bestYear = year
			bestLetter = letter
		}
	}
	return best, best != ""
}

// DiscoverVersion scans workdir for entries named "tzdata<version>"
// (directory) or "tzdata<version>.tar.gz" (archive) and returns the path to
// the newest one, preferring a directory over an archive of the same
// version.
func DiscoverVersion(workdir string) (path string, version string, isArchive bool, err error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return "", "", false, fmt.Errorf("discover tzdata version in %s: %w", workdir, err)
	}

	var candidates []candidate
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir() && len(name) > 6 && name[:6] == "tzdata":
			v := name[6:]
			if versionPattern.MatchString(v) {
				candidates = append(candidates, candidate{version: v, kind: kindDirectory, path: filepath.Join(workdir, name)})
			}
		case !e.IsDir() && len(name) > 6 && name[:6] == "tzdata":
			const suffix = ".tar.gz"
			if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
				v := name[6 : len(name)-len(suffix)]
				if versionPattern.MatchString(v) {
					candidates = append(candidates, candidate{version: v, kind: kindArchive, path: filepath.Join(workdir, name)})
				}
			}
		}
	}
	if len(candidates) == 0 {
		return "", "", false, fmt.Errorf("discover tzdata version in %s: no tzdata<version> entries found", workdir)
	}

	for i := range candidates {
		m := versionPattern.FindStringSubmatch(candidates[i].version)
		fmt.Sscanf(m[1], "%d", &candidates[i].year)
		candidates[i].letter = m[2][0]
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.year != b.year {
			return a.year > b.year
		}
		if a.letter != b.letter {
			return a.letter > b.letter
		}
		// Same version: directory wins over archive.
		return a.kind == kindDirectory && b.kind == kindArchive
	})

	best := candidates[0]
	return best.path, best.version, best.kind == kindArchive, nil
}

// ReadDir reads a release's input files directly from an already-unpacked
// tzdata<version> directory.
func ReadDir(dir string) (*Release, error) {
	files := make(map[string]string)
	for _, name := range InputFiles {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files[name] = string(b)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("read dir %s: no recognised input files found", dir)
	}
	return &Release{Files: files}, nil
}

// ReadArchive reads a release's input files directly out of a gzip-compressed
// tar archive, without extracting it to disk.
func ReadArchive(r io.Reader) (*Release, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	release := &Release{Files: make(map[string]string)}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		name := filepath.Base(header.Name)
		if name == "version" {
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read version file: %w", err)
			}
			release.Version = string(b)
			continue
		}
		if !isInputFile(name) {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		release.Files[name] = string(b)
	}

	if len(release.Files) == 0 {
		return nil, fmt.Errorf("read archive: no recognised input files found")
	}
	return release, nil
}

// ExtractArchive unpacks every recognised input file from a gzip-compressed
// tar archive into destDir, creating it if necessary. It returns the
// release version read from the archive's "version" file, if present.
func ExtractArchive(r io.Reader, destDir string) (string, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	var version string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar: %w", err)
		}
		name := filepath.Base(header.Name)
		if name == "version" {
			b, err := io.ReadAll(tr)
			if err != nil {
				return "", fmt.Errorf("read version file: %w", err)
			}
			version = string(b)
			continue
		}
		if !isInputFile(name) {
			continue
		}
		dest := filepath.Join(destDir, name)
		f, err := os.Create(dest)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", dest, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", dest, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", dest, err)
		}
	}
	return version, nil
}

const (
	baseURL        = "https://data.iana.org/time-zones/"
	latestDataPath = "tzdata-latest.tar.gz"
)

// DefaultClient is the default client used by the package-level Latest
// function.
var DefaultClient = &Client{}

// Client fetches tzdata releases from the IANA data server. The zero value
// is ready to use.
type Client struct {
	// HTTPClient is used for requests; http.DefaultClient if nil.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// Latest downloads and reads the latest tzdata release. It is a wrapper
// around DefaultClient.Latest.
func Latest(ctx context.Context) (*Release, error) {
	return DefaultClient.Latest(ctx)
}

// Latest downloads and reads the latest tzdata release.
func (c *Client) Latest(ctx context.Context) (*Release, error) {
	u, err := url.JoinPath(baseURL, latestDataPath)
	if err != nil {
		return nil, fmt.Errorf("join URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", u, err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %q: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %q: unexpected status: %s", u, resp.Status)
	}
	return ReadArchive(resp.Body)
}
