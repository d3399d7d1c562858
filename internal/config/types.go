package config

import "time"

// SuitectlConfig is the top-level configuration structure for suitectl.
type SuitectlConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	CI      CIConfig      `yaml:"ci"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates suite files. Relative paths are resolved against
// the configuration directory.
type StorageConfig struct {
	SuitesDir string `yaml:"suitesDir"`
	BackupDir string `yaml:"backupDir,omitempty"` // default: <suitesDir>/backups
}

// EngineConfig describes the test engine installation.
type EngineConfig struct {
	Command           []string        `yaml:"command"`
	WorkDir           string          `yaml:"workDir,omitempty"`
	ScenarioRoot      string          `yaml:"scenarioRoot,omitempty"` // default: workDir
	ScenarioExtension string          `yaml:"scenarioExtension"`
	ConfigFiles       []string        `yaml:"configFiles"`
	LogLevel          string          `yaml:"logLevel,omitempty"`
	Artifacts         ArtifactsConfig `yaml:"artifacts"`
}

// ArtifactsConfig locates the engine's report output, relative to the work directory.
type ArtifactsConfig struct {
	ResultsDir  string `yaml:"resultsDir"`
	ReportsDir  string `yaml:"reportsDir"`
	HistoryFile string `yaml:"historyFile"`
}

// CIConfig holds the settings used by `suitectl ci run`.
type CIConfig struct {
	RetryCount           int               `yaml:"retryCount"`
	RetryDelay           time.Duration     `yaml:"retryDelay"`
	FailOnAnyFailure     bool              `yaml:"failOnAnyFailure"`
	ContinueOnError      bool              `yaml:"continueOnError"`
	OutputDir            string            `yaml:"outputDir"`
	OutputFormats        []string          `yaml:"outputFormats"`
	ArtifactDirs         []string          `yaml:"artifactDirs,omitempty"`
	Webhooks             []string          `yaml:"webhooks,omitempty"`
	Variables            map[string]string `yaml:"variables,omitempty"`
	NotificationTemplate string            `yaml:"notificationTemplate,omitempty"`
	NotifyTimeout        time.Duration     `yaml:"notifyTimeout"`
}

// LoggingConfig sets the defaults for --log-level and --log-format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
