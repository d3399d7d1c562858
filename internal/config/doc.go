// Package config loads the suitectl tool configuration.
//
// Configuration is read from config.yaml in a single directory. The
// default directory is ~/.config/suitectl; commands accept --config-path
// to use another one. A missing config.yaml means the defaults from
// GetDefaultConfig.
//
// # File Format
//
//	storage:
//	  suitesDir: suites          # relative to the config directory
//	  backupDir: suites/backups
//	engine:
//	  command: [behave]
//	  workDir: /srv/acceptance
//	  scenarioExtension: feature
//	  configFiles: [behave.ini, .behaverc, setup.cfg, tox.ini]
//	  artifacts:
//	    resultsDir: reports/allure-results
//	    reportsDir: reports/html
//	    historyFile: reports/history.json
//	ci:
//	  retryCount: 1
//	  retryDelay: 10s
//	  failOnAnyFailure: true
//	  outputDir: ci-results
//	  outputFormats: [json, junit]
//	  webhooks: [https://hooks.example.com/suitectl]
//	  notificationTemplate: '{{ .suite }}: {{ if .success }}ok{{ else }}failed{{ end }}'
//	logging:
//	  level: warn
//	  format: text
//
// Every problem found in the file is reported together in a
// ConfigurationErrorCollection.
package config
