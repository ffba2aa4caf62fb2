package errors

import "fmt"

// Common error messages for the gxctl CLI.
// These templates ensure consistent, actionable error messages: each one
// names the step that failed and what the user can do about it.

// InvalidDirectory creates an error for an unusable --directory value.
func InvalidDirectory(path string) *CLIError {
	return New(Argument, "resolving the project directory",
		fmt.Sprintf("cannot use %s as a project directory", path),
		"Check that the path exists and is a directory",
		"Or omit --directory to initialize in the current directory",
	)
}

// SettingsInvalid creates an error for tool settings that fail to load.
func SettingsInvalid(path string) *CLIError {
	return New(Configuration, "loading gxctl settings",
		fmt.Sprintf("settings could not be loaded from %s", path),
		"Check the file for YAML syntax errors",
		"Check GXCTL_* environment variables for invalid values",
	)
}

// ProjectConfigUnreadable creates an error when great_expectations.yml cannot be parsed.
func ProjectConfigUnreadable(path string) *CLIError {
	return New(Configuration, "reading the project configuration",
		fmt.Sprintf("%s is not a valid project configuration", path),
		"Fix the YAML syntax error reported in the log (run with --verbose)",
		"Restore the file from version control if it was edited by hand",
	)
}

// ScaffoldConflict creates an error when a project directory already exists.
func ScaffoldConflict(dir string) *CLIError {
	return New(Scaffold, "creating the project scaffold",
		fmt.Sprintf("a project already exists at %s", dir),
		"Run 'gxctl init' again: the existing project will be detected",
		"Or choose a different directory with --directory",
	)
}

// ConnectionFailed creates an error when a datasource probe fails and the user stops retrying.
func ConnectionFailed(datasource string) *CLIError {
	return New(Connection, "connecting to the datasource",
		fmt.Sprintf("could not connect to datasource '%s'", datasource),
		"Check the connection URL, credentials and network access",
		"Run 'gxctl init' again to retry; nothing was added to the project",
	)
}

// DuplicateDatasource creates an error when a datasource name is already taken.
func DuplicateDatasource(name string) *CLIError {
	return New(Conflict, "registering the datasource",
		fmt.Sprintf("a datasource named '%s' already exists", name),
		"Run 'gxctl init' again and choose a different name",
		"Or answer yes to overwrite the existing datasource",
	)
}

// DuplicateSuite creates an error when an expectation suite key is already taken.
func DuplicateSuite(key string) *CLIError {
	return New(Conflict, "saving the expectation suite",
		fmt.Sprintf("expectation suite %s already exists", key),
		"Run 'gxctl init' again and choose a different suite name",
	)
}

// ProfilingFailed creates an error when the profiler cannot produce a suite.
func ProfilingFailed(asset string) *CLIError {
	return New(Profiling, "profiling the data asset",
		fmt.Sprintf("profiling %s did not produce an expectation suite", asset),
		"Check that the data asset is readable and not empty",
		"Run with --verbose to see the profiler's error",
		"The datasource was kept; run 'gxctl init' again to retry profiling",
	)
}

// SuiteNotDiscoverable creates an error when a freshly created suite cannot be found.
func SuiteNotDiscoverable(key string) *CLIError {
	return New(Profiling, "verifying the expectation suite",
		fmt.Sprintf("expectation suite %s was not found after profiling", key),
		"Check the expectations store base_directory in great_expectations.yml",
		"Run 'gxctl init' again to retry profiling",
	)
}

// PersistenceFailed creates an error when writing project files fails.
func PersistenceFailed(step string) *CLIError {
	return New(Persistence, step,
		"the project files could not be written; previous state was kept",
		"Check that the project directory is writable and the disk is not full",
	)
}

// DocsBuildFailed creates an error when data docs cannot be built.
func DocsBuildFailed() *CLIError {
	return New(Runtime, "building Data Docs",
		"Data Docs could not be built",
		"Check that uncommitted/data_docs/ is writable",
		"Run with --verbose to see the renderer's error",
	)
}

// Internal creates an error for unexpected failures.
func Internal(step string) *CLIError {
	return New(Runtime, step,
		"an unexpected error occurred",
		"Run with --verbose for details",
	)
}
