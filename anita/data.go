package anita

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-anita/internal/config"
)

// DataDirectory returns the root directory holding the given flight's run
// directories, resolved from the ANITA<flight>_ROOT_DATA environment
// variable or an .anitareader.yaml config file. It returns the empty
// string if no directory is configured.
func DataDirectory(flight int) (string, error) {
	return config.Default().DataDirectory(flight)
}

// IsAvailable reports whether data for the given flight is present on the
// local system.
func IsAvailable(flight int) bool {
	dir, err := DataDirectory(flight)
	if err != nil || dir == "" {
		return false
	}
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	return true
}

// AvailableRuns returns the sorted run numbers found under the flight's
// data directory.
func AvailableRuns(flight int) ([]int, error) {
	dir, err := DataDirectory(flight)
	if err != nil {
		return nil, err
	}
	return AvailableRunsIn(dir)
}

// AvailableRunsIn lists run numbers by scanning a data directory for
// run<N> subdirectories.
func AvailableRunsIn(dir string) ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "run*"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var runs []int
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), "run"))
		if err != nil {
			continue
		}
		runs = append(runs, n)
	}
	sort.Ints(runs)

	return runs, nil
}

// runFilePath returns the event file path for a run, following the
// <dir>/run<N>/eventFile<N>.anr convention.
func runFilePath(dir string, run int) string {
	return filepath.Join(dir, fmt.Sprintf("run%d", run), fmt.Sprintf("eventFile%d.anr", run))
}
