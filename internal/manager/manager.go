package manager

import (
	"fmt"
	"strings"

	"suitectl/internal/repository"
	"suitectl/internal/suite"
	"suitectl/internal/validation"
	"suitectl/pkg/logging"
)

// DeletionGuardThreshold is the number of scenario paths above which a
// suite is only deleted with force.
const DeletionGuardThreshold = 10

// Store is the persistence the manager works on.
type Store interface {
	Create(cfg *suite.Configuration) error
	Update(cfg *suite.Configuration) error
	Save(cfg *suite.Configuration) error
	Load(name string) (*suite.Configuration, error)
	Delete(name string) (bool, error)
	Backup(name string) (string, error)
	List() ([]*suite.Configuration, error)
	Exists(name string) bool
	ImportFrom(path string) (*suite.Configuration, error)
	ExportTo(name, path string) error
	Stats() (*repository.Stats, error)
}

// Manager applies the suite business rules on top of a Store.
type Manager struct {
	store     Store
	validator *validation.Validator
}

// New creates a manager. The validator is used by Validate and should
// check scenario-path existence.
func New(store Store, validator *validation.Validator) *Manager {
	if validator == nil {
		validator = validation.New(nil)
	}
	return &Manager{store: store, validator: validator}
}

// CheckInvariants returns the rules every stored suite must satisfy: a
// name, some content, disjoint tag sets and named parameters.
func CheckInvariants(cfg *suite.Configuration) *validation.Result {
	result := validation.NewResult()
	if cfg == nil {
		result.AddError("", "suite configuration is missing")
		return result
	}
	if strings.TrimSpace(cfg.Name) == "" {
		result.AddError("name", "is required")
	}
	if !cfg.HasContent() {
		result.AddError("scenarioPaths", "at least one scenario path or include tag is required")
	}
	if conflicts := cfg.TagConflicts(); len(conflicts) > 0 {
		result.AddError("tags", fmt.Sprintf("tags both included and excluded: %s", strings.Join(conflicts, ", ")), conflicts)
	}
	for key := range cfg.Parameters {
		if strings.TrimSpace(key) == "" {
			result.AddError("parameters", "parameter names must not be empty")
			break
		}
	}
	return result
}

func checkInvariants(cfg *suite.Configuration) error {
	result := CheckInvariants(cfg)
	if result.Valid {
		return nil
	}
	name := ""
	if cfg != nil {
		name = cfg.Name
	}
	return &InvariantError{Name: name, Result: result}
}

// Create stores a new suite. It fails if the name is taken.
func (m *Manager) Create(cfg *suite.Configuration) error {
	if err := checkInvariants(cfg); err != nil {
		return err
	}
	cfg.Normalize()
	if err := m.store.Create(cfg); err != nil {
		return err
	}
	logging.Info("Manager", "Created suite %s", cfg.Name)
	return nil
}

// Get loads a suite, failing with *repository.NotFoundError if it does not exist.
func (m *Manager) Get(name string) (*suite.Configuration, error) {
	cfg, err := m.store.Load(name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &repository.NotFoundError{Name: name}
	}
	return cfg, nil
}

// Exists reports whether the named suite exists.
func (m *Manager) Exists(name string) bool {
	return m.store.Exists(name)
}

// Update replaces an existing suite with cfg.
func (m *Manager) Update(cfg *suite.Configuration) error {
	if err := checkInvariants(cfg); err != nil {
		return err
	}
	cfg.Normalize()
	if err := m.store.Update(cfg); err != nil {
		return err
	}
	logging.Info("Manager", "Updated suite %s", cfg.Name)
	return nil
}

// Delete removes a suite after backing it up and returns the backup path.
// Without force, suites with more than DeletionGuardThreshold scenario
// paths are refused, and so is any deletion whose backup failed.
func (m *Manager) Delete(name string, force bool) (string, error) {
	cfg, err := m.Get(name)
	if err != nil {
		return "", err
	}

	if !force && len(cfg.ScenarioPaths) > DeletionGuardThreshold {
		return "", &DeletionRefusedError{
			Name:   name,
			Reason: fmt.Sprintf("suite has %d scenario paths (more than %d), use force", len(cfg.ScenarioPaths), DeletionGuardThreshold),
		}
	}

	backupPath, err := m.store.Backup(name)
	if err != nil {
		if !force {
			return "", &DeletionRefusedError{Name: name, Reason: "backup failed", Err: err}
		}
		logging.Warn("Manager", "Backup of suite %s failed, deleting anyway: %v", name, err)
		backupPath = ""
	}

	if _, err := m.store.Delete(name); err != nil {
		return backupPath, err
	}

	logging.Info("Manager", "Deleted suite %s", name)
	return backupPath, nil
}

// Duplicate copies src to a new suite dst. An empty description becomes
// "Copy of <src>".
func (m *Manager) Duplicate(src, dst, description string) (*suite.Configuration, error) {
	source, err := m.Get(src)
	if err != nil {
		return nil, err
	}
	if m.store.Exists(dst) {
		return nil, &repository.AlreadyExistsError{Name: dst}
	}

	dup := source.Clone()
	dup.Name = dst
	dup.Description = description
	if dup.Description == "" {
		dup.Description = "Copy of " + src
	}

	if err := m.Create(dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// Import reads a suite document and stores it. With overwrite an existing
// suite of the same name is replaced, otherwise the import fails.
func (m *Manager) Import(path string, overwrite bool) (*suite.Configuration, error) {
	cfg, err := m.store.ImportFrom(path)
	if err != nil {
		return nil, err
	}
	if err := checkInvariants(cfg); err != nil {
		return nil, err
	}

	if overwrite {
		err = m.store.Save(cfg)
	} else {
		err = m.store.Create(cfg)
	}
	if err != nil {
		return nil, err
	}

	logging.Info("Manager", "Imported suite %s from %s", cfg.Name, path)
	return cfg, nil
}

// Export writes the named suite to path.
func (m *Manager) Export(name, path string) error {
	return m.store.ExportTo(name, path)
}

// Backup copies the named suite into the backup area.
func (m *Manager) Backup(name string) (string, error) {
	return m.store.Backup(name)
}

// Stats returns repository statistics.
func (m *Manager) Stats() (*repository.Stats, error) {
	return m.store.Stats()
}

// Validate runs the semantic checks, including scenario-path existence, on a stored suite.
func (m *Manager) Validate(name string) (*validation.Result, error) {
	cfg, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return m.validator.Validate(cfg), nil
}

// ValidateConfiguration runs the semantic checks on cfg.
func (m *Manager) ValidateConfiguration(cfg *suite.Configuration) *validation.Result {
	return m.validator.Validate(cfg)
}
