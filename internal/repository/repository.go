package repository

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"suitectl/internal/parser"
	"suitectl/internal/suite"
	"suitectl/internal/validation"
	"suitectl/pkg/logging"
)

const (
	fileExtension   = ".xml"
	backupTimestamp = "20060102_150405"
)

// Repository stores suites as XML documents, one file per suite, in a
// single directory. Backups go to a separate directory.
type Repository struct {
	mu        sync.RWMutex
	suitesDir string
	backupDir string
	validator *validation.Validator
	now       func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the clock used for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithValidator sets the validator applied to written files. The default
// validator does not check scenario-path existence.
func WithValidator(v *validation.Validator) Option {
	return func(r *Repository) {
		r.validator = v
	}
}

// New creates a repository. An empty backupDir means "<suitesDir>/backups".
func New(suitesDir, backupDir string, opts ...Option) *Repository {
	if backupDir == "" {
		backupDir = filepath.Join(suitesDir, "backups")
	}
	r := &Repository{
		suitesDir: suitesDir,
		backupDir: backupDir,
		validator: validation.New(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SuitesDir returns the directory holding suite files.
func (r *Repository) SuitesDir() string {
	return r.suitesDir
}

// BackupDir returns the directory holding backups.
func (r *Repository) BackupDir() string {
	return r.backupDir
}

// Path returns the file backing the named suite.
func (r *Repository) Path(name string) string {
	return filepath.Join(r.suitesDir, SanitizeName(name)+fileExtension)
}

// Exists reports whether the named suite has a backing file.
func (r *Repository) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exists(name)
}

func (r *Repository) exists(name string) bool {
	_, err := os.Stat(r.Path(name))
	return err == nil
}

// Save writes cfg, replacing any existing suite of the same name.
func (r *Repository) Save(cfg *suite.Configuration) error {
	if err := checkMinimal(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(cfg, r.Path(cfg.Name))
}

// Create writes cfg, failing with *AlreadyExistsError if the name is taken.
func (r *Repository) Create(cfg *suite.Configuration) error {
	if err := checkMinimal(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exists(cfg.Name) {
		return &AlreadyExistsError{Name: cfg.Name}
	}
	return r.write(cfg, r.Path(cfg.Name))
}

// Update replaces an existing suite, failing with *NotFoundError if it does not exist.
func (r *Repository) Update(cfg *suite.Configuration) error {
	if err := checkMinimal(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists(cfg.Name) {
		return &NotFoundError{Name: cfg.Name}
	}
	return r.write(cfg, r.Path(cfg.Name))
}

// Load reads the named suite. A suite that does not exist yields (nil, nil).
func (r *Repository) Load(name string) (*suite.Configuration, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	path := r.Path(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fsError("stat", path, err)
	}

	cfg, err := parser.Parse(path)
	if err != nil {
		return nil, fsError("parse", path, err)
	}

	logging.Debug("Repository", "Loaded suite %s from %s", name, path)
	return cfg, nil
}

// Delete removes the named suite. It returns false when there was nothing to delete.
func (r *Repository) Delete(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.Path(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fsError("delete", path, err)
	}

	logging.Info("Repository", "Deleted suite %s from %s", name, path)
	return true, nil
}

// Backup copies the named suite into the backup directory under a
// timestamped name and returns the backup path. Existing backups are never
// overwritten.
func (r *Repository) Backup(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.Path(name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Name: name}
		}
		return "", fsError("stat", src, err)
	}

	if err := os.MkdirAll(r.backupDir, 0755); err != nil {
		return "", fsError("mkdir", r.backupDir, err)
	}

	dst, err := r.backupPath(name)
	if err != nil {
		return "", err
	}
	if err := copyFile(src, dst); err != nil {
		return "", fsError("backup", dst, err)
	}

	logging.Info("Repository", "Backed up suite %s to %s", name, dst)
	return dst, nil
}

func (r *Repository) backupPath(name string) (string, error) {
	now := r.now()
	base := SanitizeName(name) + "_" + now.Format(backupTimestamp)
	candidates := []string{base, fmt.Sprintf("%s_%09d", base, now.Nanosecond())}

	for _, c := range candidates {
		path := filepath.Join(r.backupDir, c+fileExtension)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	for i := 1; i < 1000; i++ {
		path := filepath.Join(r.backupDir, fmt.Sprintf("%s_%09d_%d%s", base, now.Nanosecond(), i, fileExtension))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fsError("backup", filepath.Join(r.backupDir, base+fileExtension), errors.New("no free backup file name"))
}

// Backups returns the backup files of the named suite, oldest first.
func (r *Repository) Backups(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern := filepath.Join(r.backupDir, SanitizeName(name)+"_*"+fileExtension)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fsError("list", r.backupDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Names returns the names of all suite files, sorted. Names are derived
// from file names and may differ from the suite name inside the file.
func (r *Repository) Names() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files, err := r.files()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), fileExtension))
	}
	return names, nil
}

// List parses every suite file. Files that cannot be parsed are skipped.
func (r *Repository) List() ([]*suite.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files, err := r.files()
	if err != nil {
		return nil, err
	}

	suites := make([]*suite.Configuration, 0, len(files))
	for _, f := range files {
		cfg, err := parser.Parse(f)
		if err != nil {
			logging.Warn("Repository", "Skipping unreadable suite file %s: %v", f, err)
			continue
		}
		suites = append(suites, cfg)
	}

	logging.Debug("Repository", "Listed %d suites from %s", len(suites), r.suitesDir)
	return suites, nil
}

func (r *Repository) files() ([]string, error) {
	if _, err := os.Stat(r.suitesDir); os.IsNotExist(err) {
		return []string{}, nil
	}
	matches, err := filepath.Glob(filepath.Join(r.suitesDir, "*"+fileExtension))
	if err != nil {
		return nil, fsError("list", r.suitesDir, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if !strings.HasPrefix(filepath.Base(m), ".") {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ImportFrom reads and validates a suite document from an arbitrary path.
// The suite is not stored.
func (r *Repository) ImportFrom(path string) (*suite.Configuration, error) {
	result, cfg, err := r.validator.ValidateFile(path)
	if err != nil {
		if parser.IsStructureError(err) {
			return nil, err
		}
		return nil, fsError("import", path, err)
	}
	if !result.Valid {
		return nil, &ValidationError{Name: cfg.Name, Result: result}
	}
	logging.Info("Repository", "Imported suite %s from %s", cfg.Name, path)
	return cfg, nil
}

// ExportTo writes the named suite to path.
func (r *Repository) ExportTo(name, path string) error {
	cfg, err := r.Load(name)
	if err != nil {
		return err
	}
	if cfg == nil {
		return &NotFoundError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(cfg, path)
}

// write exports cfg to a temporary file next to path, validates what was
// written and only then moves it into place.
func (r *Repository) write(cfg *suite.Configuration, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fsError("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".suite-*"+fileExtension)
	if err != nil {
		return fsError("write", path, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := parser.Export(cfg, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fsError("write", path, err)
	}

	result, _, err := r.validator.ValidateFile(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fsError("verify", path, err)
	}
	if !result.Valid {
		_ = os.Remove(tmpPath)
		return &ValidationError{Name: cfg.Name, Result: result}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fsError("write", path, err)
	}

	logging.Info("Repository", "Saved suite %s to %s", cfg.Name, path)
	return nil
}

func checkMinimal(cfg *suite.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("suite configuration cannot be nil")
	}
	result := validation.NewResult()
	errs, _ := validation.ValidateName(cfg.Name)
	for _, e := range errs {
		result.AddError(e.Field, e.Message, e.Value)
	}
	if !cfg.HasContent() {
		result.AddError("scenarioPaths", "at least one scenario path or include tag is required")
	}
	if !result.Valid {
		return &ValidationError{Name: cfg.Name, Result: result}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// SanitizeName maps a suite name to its file base name: spaces and
// underscores become hyphens and path characters are dropped.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch r {
		case ' ', '_':
			b.WriteRune('-')
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '.':
		default:
			b.WriteRune(r)
		}
	}

	sanitized := strings.Trim(b.String(), "-")

	if sanitized == "" {
		sanitized = "unnamed"
	}
	return sanitized
}
