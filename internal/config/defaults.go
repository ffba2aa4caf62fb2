package config

import "time"

// DefaultSuiteName is the suite name offered when profiling the first data asset.
const DefaultSuiteName = "warning"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# gxctl configuration
# Environment variables override these values: GXCTL_LOG_LEVEL, GXCTL_PROFILER__MAX_COLUMNS, ...

default_suite_name: warning            # Suite name offered for the first expectation suite
log_level: warn                        # debug | info | warn | error
no_color: false                        # Disable colored output

datasource:
  probe_timeout: 10s                   # Connection check before a datasource is saved

profiler:
  max_columns: 2                       # Columns that receive column-level expectations
  sample_rows: 1000                    # Rows read from the data asset

data_docs:
  open_command: ""                     # Browser command (empty = platform default)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"default_suite_name":       DefaultSuiteName,
		"log_level":                "warn",
		"no_color":                 false,
		"datasource.probe_timeout": (10 * time.Second).String(),
		"profiler.max_columns":     2,
		"profiler.sample_rows":     1000,
		"data_docs.open_command":   "",
	}
}
