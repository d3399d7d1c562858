package config

import (
	"path/filepath"

	"suitectl/internal/ci"
	"suitectl/internal/executor"
)

// ExecutorConfig returns the executor settings for c.
func (c SuitectlConfig) ExecutorConfig() executor.Config {
	root := c.Engine.ScenarioRoot
	if root == "" {
		root = c.Engine.WorkDir
	}
	return executor.Config{
		Command:           append([]string{}, c.Engine.Command...),
		WorkDir:           c.Engine.WorkDir,
		ScenarioRoot:      root,
		ScenarioExtension: c.Engine.ScenarioExtension,
		LogLevel:          c.Engine.LogLevel,
		Artifacts: executor.ArtifactLocations{
			ResultsDir:  c.Engine.Artifacts.ResultsDir,
			ReportsDir:  c.Engine.Artifacts.ReportsDir,
			HistoryFile: c.Engine.Artifacts.HistoryFile,
		},
	}
}

// CIConfig returns the CI integrator settings for c. The output directory
// is resolved against the engine work directory.
func (c SuitectlConfig) CIConfig() ci.Config {
	outputDir := c.CI.OutputDir
	if outputDir != "" && !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(c.Engine.WorkDir, outputDir)
	}
	vars := make(map[string]string, len(c.CI.Variables))
	for k, v := range c.CI.Variables {
		vars[k] = v
	}
	return ci.Config{
		RetryCount:           c.CI.RetryCount,
		RetryDelay:           c.CI.RetryDelay,
		FailOnAnyFailure:     c.CI.FailOnAnyFailure,
		ContinueOnError:      c.CI.ContinueOnError,
		OutputDir:            outputDir,
		OutputFormats:        append([]string{}, c.CI.OutputFormats...),
		ArtifactDirs:         append([]string{}, c.CI.ArtifactDirs...),
		Webhooks:             append([]string{}, c.CI.Webhooks...),
		Variables:            vars,
		NotificationTemplate: c.CI.NotificationTemplate,
		NotifyTimeout:        c.CI.NotifyTimeout,
		EngineConfigFiles:    append([]string{}, c.Engine.ConfigFiles...),
		WorkDir:              c.Engine.WorkDir,
	}
}
