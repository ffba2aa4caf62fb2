// Package project owns the on-disk layout of a data context and the
// great_expectations.yml document that describes it.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DirName is the directory created under the user's root.
	DirName = "great_expectations"

	// ConfigFileName is the project configuration file; its presence marks
	// an initialized project.
	ConfigFileName = "great_expectations.yml"

	// ConfigVariablesPath holds values substituted into ${var} references.
	ConfigVariablesPath = "uncommitted/config_variables.yml"

	PluginsDir       = "plugins/"
	DatasourcesDir   = "datasources"
	ExpectationsDir  = "expectations/"
	ValidationsDir   = "uncommitted/validations/"
	DataDocsDir      = "uncommitted/data_docs/"
	SamplesDir       = "uncommitted/samples/"
	LocalSiteName    = "local_site"
	NotebooksDir     = "notebooks"
	CustomDocsDir    = "plugins/custom_data_docs"
	ExpectationsName = "expectations_store"
	ValidationsName  = "validations_store"

	// GeneratorName is the namespace segment of every suite key.
	GeneratorName = "default"

	// ConfigVersion is written into new project configs.
	ConfigVersion = 1.0
)

// Dir returns the project directory for root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigPath returns the path of the project configuration file under root.
func ConfigPath(root string) string {
	return filepath.Join(Dir(root), ConfigFileName)
}

// Exists reports whether root already holds an initialized project.
func Exists(root string) (bool, error) {
	info, err := os.Stat(ConfigPath(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking project config: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", ConfigPath(root))
	}
	return true, nil
}
