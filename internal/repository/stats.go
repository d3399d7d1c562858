package repository

import (
	"os"
	"sort"
	"time"

	"suitectl/internal/parser"
)

// Stats summarises the stored suites.
type Stats struct {
	SuitesDir          string    `json:"suitesDir"`
	BackupDir          string    `json:"backupDir"`
	TotalSuites        int       `json:"totalSuites"`
	InvalidFiles       int       `json:"invalidFiles"`
	TotalScenarioPaths int       `json:"totalScenarioPaths"`
	TotalParameters    int       `json:"totalParameters"`
	UniqueTags         []string  `json:"uniqueTags"`
	TotalSizeBytes     int64     `json:"totalSizeBytes"`
	BackupCount        int       `json:"backupCount"`
	LastModified       time.Time `json:"lastModified,omitempty"`
}

// Stats walks the suites and backup directories.
func (r *Repository) Stats() (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files, err := r.files()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		SuitesDir:  r.suitesDir,
		BackupDir:  r.backupDir,
		UniqueTags: []string{},
	}
	tags := map[string]struct{}{}

	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			stats.TotalSizeBytes += info.Size()
			if info.ModTime().After(stats.LastModified) {
				stats.LastModified = info.ModTime()
			}
		}

		cfg, err := parser.Parse(f)
		if err != nil {
			stats.InvalidFiles++
			continue
		}
		stats.TotalSuites++
		stats.TotalScenarioPaths += len(cfg.ScenarioPaths)
		stats.TotalParameters += len(cfg.Parameters)
		for _, t := range cfg.IncludeTags {
			tags[t] = struct{}{}
		}
		for _, t := range cfg.ExcludeTags {
			tags[t] = struct{}{}
		}
	}

	for t := range tags {
		stats.UniqueTags = append(stats.UniqueTags, t)
	}
	sort.Strings(stats.UniqueTags)

	if entries, err := os.ReadDir(r.backupDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				stats.BackupCount++
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fsError("list", r.backupDir, err)
	}

	return stats, nil
}
