package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"suitectl/internal/repository"
	"suitectl/internal/scenario"
	"suitectl/internal/suite"
	"suitectl/internal/validation"
)

// mockBackupStore is a real repository whose Backup is mocked.
type mockBackupStore struct {
	*repository.Repository
	mock.Mock
}

func (m *mockBackupStore) Backup(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func newTestManager(t *testing.T) (*Manager, *repository.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo := repository.New(filepath.Join(dir, "suites"), filepath.Join(dir, "backups"))
	return New(repo, nil), repo
}

func smokeSuite(name string) *suite.Configuration {
	cfg := suite.New(name)
	cfg.ScenarioPaths = []string{"tests.login"}
	cfg.IncludeTags = []string{"smoke"}
	return cfg
}

func TestCheckInvariants(t *testing.T) {
	cfg := suite.New("")
	cfg.IncludeTags = []string{"slow"}
	cfg.ExcludeTags = []string{"slow"}
	cfg.Parameters[""] = "x"

	result := CheckInvariants(cfg)

	require.False(t, result.Valid)
	assert.Equal(t, []string{"name", "tags", "parameters"}, result.Errors.Fields())

	assert.False(t, CheckInvariants(nil).Valid)
	assert.True(t, CheckInvariants(smokeSuite("ok-suite")).Valid)
}

func TestCreate(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Create(smokeSuite("smoke-tests")))
	assert.True(t, m.Exists("smoke-tests"))

	err := m.Create(smokeSuite("smoke-tests"))
	assert.True(t, repository.IsAlreadyExists(err))

	err = m.Create(suite.New("empty-suite"))
	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "empty-suite", invErr.Name)
	assert.True(t, IsInvariantError(err))
	assert.False(t, m.Exists("empty-suite"))
}

func TestGetAndUpdate(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get("missing")
	assert.True(t, repository.IsNotFound(err))

	err = m.Update(smokeSuite("missing"))
	assert.True(t, repository.IsNotFound(err))

	require.NoError(t, m.Create(smokeSuite("smoke-tests")))
	updated := smokeSuite("smoke-tests")
	updated.ExcludeTags = []string{"wip"}
	require.NoError(t, m.Update(updated))

	got, err := m.Get("smoke-tests")
	require.NoError(t, err)
	assert.Equal(t, []string{"wip"}, got.ExcludeTags)

	bad := smokeSuite("smoke-tests")
	bad.ExcludeTags = []string{"smoke"}
	assert.True(t, IsInvariantError(m.Update(bad)))
}

func TestDelete(t *testing.T) {
	m, repo := newTestManager(t)
	require.NoError(t, m.Create(smokeSuite("doomed")))

	backup, err := m.Delete("doomed", false)
	require.NoError(t, err)
	assert.FileExists(t, backup)
	assert.False(t, repo.Exists("doomed"))

	_, err = m.Delete("doomed", false)
	assert.True(t, repository.IsNotFound(err))
}

func TestDeleteGuardsLargeSuites(t *testing.T) {
	m, repo := newTestManager(t)
	big := suite.New("big-suite")
	for i := 0; i < DeletionGuardThreshold+1; i++ {
		big.ScenarioPaths = append(big.ScenarioPaths, fmt.Sprintf("tests.area%d", i))
	}
	require.NoError(t, m.Create(big))

	_, err := m.Delete("big-suite", false)
	var refused *DeletionRefusedError
	require.ErrorAs(t, err, &refused)
	assert.Contains(t, refused.Reason, "11 scenario paths")
	assert.True(t, repo.Exists("big-suite"))

	_, err = m.Delete("big-suite", true)
	require.NoError(t, err)
	assert.False(t, repo.Exists("big-suite"))
}

func TestDeleteBackupFailure(t *testing.T) {
	dir := t.TempDir()
	store := &mockBackupStore{Repository: repository.New(filepath.Join(dir, "suites"), "")}
	backupErr := errors.New("disk full")
	store.On("Backup", "fragile").Return("", backupErr)

	m := New(store, nil)
	require.NoError(t, m.Create(smokeSuite("fragile")))

	_, err := m.Delete("fragile", false)
	var refused *DeletionRefusedError
	require.ErrorAs(t, err, &refused)
	assert.ErrorIs(t, err, backupErr)
	assert.True(t, store.Exists("fragile"))

	backup, err := m.Delete("fragile", true)
	require.NoError(t, err)
	assert.Empty(t, backup)
	assert.False(t, store.Exists("fragile"))

	store.AssertNumberOfCalls(t, "Backup", 2)
}

func TestDuplicate(t *testing.T) {
	m, _ := newTestManager(t)
	src := smokeSuite("source")
	src.Description = "original"
	src.Parameters["base_url"] = "http://x"
	require.NoError(t, m.Create(src))

	dup, err := m.Duplicate("source", "copy", "")
	require.NoError(t, err)
	assert.Equal(t, "Copy of source", dup.Description)
	assert.Equal(t, src.Parameters, dup.Parameters)

	stored, err := m.Get("copy")
	require.NoError(t, err)
	assert.Equal(t, "copy", stored.Name)

	dup, err = m.Duplicate("source", "copy-two", "custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", dup.Description)

	_, err = m.Duplicate("source", "copy", "")
	assert.True(t, repository.IsAlreadyExists(err))

	_, err = m.Duplicate("missing", "other", "")
	assert.True(t, repository.IsNotFound(err))
}

func TestImportExport(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Create(smokeSuite("portable")))

	out := filepath.Join(t.TempDir(), "portable.xml")
	require.NoError(t, m.Export("portable", out))

	_, err := m.Import(out, false)
	assert.True(t, repository.IsAlreadyExists(err))

	cfg, err := m.Import(out, true)
	require.NoError(t, err)
	assert.Equal(t, "portable", cfg.Name)

	other, _ := newTestManager(t)
	cfg, err = other.Import(out, false)
	require.NoError(t, err)
	assert.True(t, other.Exists(cfg.Name))
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	feature := filepath.Join(root, "tests", "login", "a.feature")
	require.NoError(t, os.MkdirAll(filepath.Dir(feature), 0755))
	require.NoError(t, os.WriteFile(feature, []byte("Feature: a\n"), 0644))

	dir := t.TempDir()
	repo := repository.New(filepath.Join(dir, "suites"), "")
	m := New(repo, validation.New(scenario.NewResolver(root, "")))

	require.NoError(t, m.Create(smokeSuite("smoke-tests")))
	result, err := m.Validate("smoke-tests")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	broken := smokeSuite("broken-paths")
	broken.ScenarioPaths = []string{"tests.nowhere"}
	require.NoError(t, m.Create(broken))
	result, err = m.Validate("broken-paths")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	_, err = m.Validate("missing")
	assert.True(t, repository.IsNotFound(err))
}

func TestListAndSearch(t *testing.T) {
	m, _ := newTestManager(t)

	api := smokeSuite("API-Regression")
	api.IncludeTags = []string{"api", "regression"}
	api.ExcludeTags = []string{"slow"}
	api.Parameters["env"] = "staging"
	require.NoError(t, m.Create(api))

	web := smokeSuite("web-smoke")
	web.Parameters["env"] = "prod"
	require.NoError(t, m.Create(web))

	nightly := smokeSuite("nightly")
	nightly.ExcludeTags = []string{"slow"}
	require.NoError(t, m.Create(nightly))

	all, err := m.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "API-Regression", all[0].Name)
	assert.Equal(t, "(api or regression) and not slow", all[0].TagsExpression)

	tests := []struct {
		name     string
		criteria SearchCriteria
		expected []string
	}{
		{name: "no criteria", criteria: SearchCriteria{}, expected: []string{"API-Regression", "nightly", "web-smoke"}},
		{name: "name substring", criteria: SearchCriteria{Name: "regression"}, expected: []string{"API-Regression"}},
		{name: "include tag", criteria: SearchCriteria{IncludeTag: "smoke"}, expected: []string{"nightly", "web-smoke"}},
		{name: "exclude tag", criteria: SearchCriteria{ExcludeTag: "slow"}, expected: []string{"API-Regression", "nightly"}},
		{name: "parameter value", criteria: SearchCriteria{ParameterValue: "prod"}, expected: []string{"web-smoke"}},
		{name: "parameter name", criteria: SearchCriteria{ParameterName: "env"}, expected: []string{"API-Regression", "web-smoke"}},
		{name: "parameter pair", criteria: SearchCriteria{ParameterName: "env", ParameterValue: "staging"}, expected: []string{"API-Regression"}},
		{name: "criteria are combined", criteria: SearchCriteria{ExcludeTag: "slow", IncludeTag: "smoke"}, expected: []string{"nightly"}},
		{name: "no match", criteria: SearchCriteria{Name: "zzz"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := m.Search(tt.criteria)
			require.NoError(t, err)
			names := []string{}
			for _, d := range found {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	details, err := m.Details("nightly")
	require.NoError(t, err)
	assert.Equal(t, 3600, details.TimeoutSeconds)
	assert.Equal(t, 1, details.MaxAttempts)
}

func TestStatsAndBackup(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Create(smokeSuite("one")))

	path, err := m.Backup("one")
	require.NoError(t, err)
	assert.FileExists(t, path)

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSuites)
	assert.Equal(t, 1, stats.BackupCount)
}
