package executor

import (
	"os"
	"path/filepath"
	"sort"
)

// ArtifactLocations are the report locations probed after a run. Relative
// paths are resolved against the working directory of the run.
type ArtifactLocations struct {
	// ResultsDir holds raw engine results.
	ResultsDir string `yaml:"resultsDir" json:"resultsDir"`
	// ReportsDir holds one generated report per subdirectory; the
	// lexicographically last one is the most recent.
	ReportsDir string `yaml:"reportsDir" json:"reportsDir"`
	// HistoryFile is the cumulative run history.
	HistoryFile string `yaml:"historyFile" json:"historyFile"`
}

// DefaultArtifactLocations returns the standard report layout.
func DefaultArtifactLocations() ArtifactLocations {
	return ArtifactLocations{
		ResultsDir:  filepath.Join("reports", "allure-results"),
		ReportsDir:  filepath.Join("reports", "html"),
		HistoryFile: filepath.Join("reports", "history.json"),
	}
}

// Discover returns the locations that exist. Missing ones are skipped.
func (a ArtifactLocations) Discover(baseDir string) []string {
	var found []string
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || baseDir == "" {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	if dir := resolve(a.ResultsDir); dir != "" && isDir(dir) {
		found = append(found, dir)
	}

	if dir := resolve(a.ReportsDir); dir != "" {
		if latest := latestSubdir(dir); latest != "" {
			found = append(found, latest)
		}
	}

	if file := resolve(a.HistoryFile); file != "" {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			found = append(found, file)
		}
	}

	return found
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func latestSubdir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1])
}
