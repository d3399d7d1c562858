package cmd

import (
	"fmt"
	"strings"

	"suitectl/internal/config"
	"suitectl/internal/executor"
	"suitectl/internal/manager"
	"suitectl/internal/repository"
	"suitectl/internal/scenario"
	"suitectl/internal/validation"
)

// workspace wires the components a command needs from the tool configuration.
type workspace struct {
	config     config.SuitectlConfig
	repository *repository.Repository
	validator  *validation.Validator
	manager    *manager.Manager
	executor   *executor.Executor
}

func newWorkspace(cfg config.SuitectlConfig) *workspace {
	execCfg := cfg.ExecutorConfig()
	resolver := scenario.NewResolver(execCfg.ScenarioRoot, execCfg.ScenarioExtension)
	validator := validation.New(resolver)

	repo := repository.New(cfg.Storage.SuitesDir, cfg.Storage.BackupDir)
	mgr := manager.New(repo, validator)

	return &workspace{
		config:     cfg,
		repository: repo,
		validator:  validator,
		manager:    mgr,
		executor:   executor.New(execCfg, executor.WithSuiteSource(mgr)),
	}
}

func loadWorkspace() (*workspace, error) {
	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newWorkspace(cfg), nil
}

// parseKeyValues turns key=value flag values into a map.
func parseKeyValues(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", kv)
		}
		out[key] = value
	}
	return out, nil
}
