package config

import (
	"time"

	"suitectl/internal/ci"
	"suitectl/internal/executor"
	"suitectl/internal/scenario"
)

const (
	// DefaultSuitesDir is relative to the configuration directory.
	DefaultSuitesDir = "suites"
	// DefaultCIOutputDir is relative to the engine work directory.
	DefaultCIOutputDir = "ci-results"
)

// GetDefaultConfig returns the configuration used when config.yaml is absent.
func GetDefaultConfig() SuitectlConfig {
	artifacts := executor.DefaultArtifactLocations()
	return SuitectlConfig{
		Storage: StorageConfig{
			SuitesDir: DefaultSuitesDir,
		},
		Engine: EngineConfig{
			Command:           []string{executor.DefaultEngineCommand},
			ScenarioExtension: scenario.DefaultExtension,
			ConfigFiles:       append([]string{}, ci.DefaultEngineConfigFiles...),
			Artifacts: ArtifactsConfig{
				ResultsDir:  artifacts.ResultsDir,
				ReportsDir:  artifacts.ReportsDir,
				HistoryFile: artifacts.HistoryFile,
			},
		},
		CI: CIConfig{
			RetryDelay:    5 * time.Second,
			OutputDir:     DefaultCIOutputDir,
			OutputFormats: []string{ci.FormatJSON, ci.FormatJUnit},
			NotifyTimeout: ci.DefaultNotifyTimeout,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
