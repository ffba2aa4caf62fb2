package datasource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expectation-labs/gxctl/internal/project"
)

// DefaultSparkMaster is used when a spark datasource names no master.
const DefaultSparkMaster = "local[*]"

// FilesystemParams configures a KindFilesystem datasource.
type FilesystemParams struct {
	BaseDirectory string `validate:"required"`
}

// SparkParams configures a KindSpark datasource.
type SparkParams struct {
	BaseDirectory string `validate:"required"`
	Master        string `validate:"required"`
}

// SQLParams configures a KindSQL datasource. The URL is kept out of the
// project config and stored as a config variable named after the datasource.
type SQLParams struct {
	URL string `validate:"required"`
}

// Descriptor is a datasource as the tool sees it. Exactly one of the params
// fields is set, matching Kind.
type Descriptor struct {
	Name       string            `validate:"required,max=100,datasource_name"`
	Kind       BackendKind       `validate:"required"`
	Filesystem *FilesystemParams
	SQL        *SQLParams
	Spark      *SparkParams
}

// NewFilesystem describes a pandas datasource reading from baseDir.
func NewFilesystem(name, baseDir string) Descriptor {
	return Descriptor{Name: name, Kind: KindFilesystem, Filesystem: &FilesystemParams{BaseDirectory: baseDir}}
}

// NewSpark describes a spark datasource. An empty master selects
// DefaultSparkMaster.
func NewSpark(name, baseDir, master string) Descriptor {
	if master == "" {
		master = DefaultSparkMaster
	}
	return Descriptor{Name: name, Kind: KindSpark, Spark: &SparkParams{BaseDirectory: baseDir, Master: master}}
}

// NewSQL describes a SQL datasource reached through url.
func NewSQL(name, url string) Descriptor {
	return Descriptor{Name: name, Kind: KindSQL, SQL: &SQLParams{URL: url}}
}

// BaseDirectory returns the data directory of file-backed kinds.
func (d Descriptor) BaseDirectory() string {
	switch d.Kind {
	case KindFilesystem:
		if d.Filesystem != nil {
			return d.Filesystem.BaseDirectory
		}
	case KindSpark:
		if d.Spark != nil {
			return d.Spark.BaseDirectory
		}
	}
	return ""
}

// assetType is the data_asset_type entry.
type assetType struct {
	ClassName string `yaml:"class_name"`
}

// record is the on-disk shape of a datasource entry in great_expectations.yml.
type record struct {
	ClassName     string    `yaml:"class_name"`
	DataAssetType assetType `yaml:"data_asset_type"`
	BaseDirectory string    `yaml:"base_directory,omitempty"`
	SparkMaster   string    `yaml:"spark_master,omitempty"`
	Credentials   string    `yaml:"credentials,omitempty"`
}

// toRecord renders d for the project config rooted at projectDir. Base
// directories inside the project's parent are stored relative to the
// project directory.
func toRecord(d Descriptor, projectDir string) record {
	r := record{
		ClassName:     d.Kind.ClassName(),
		DataAssetType: assetType{ClassName: d.Kind.AssetClassName()},
	}
	switch d.Kind {
	case KindFilesystem:
		r.BaseDirectory = relativeTo(projectDir, d.Filesystem.BaseDirectory)
	case KindSpark:
		r.BaseDirectory = relativeTo(projectDir, d.Spark.BaseDirectory)
		r.SparkMaster = d.Spark.Master
	case KindSQL:
		r.Credentials = project.VariableRef(d.Name)
	}
	return r
}

func fromRecord(name string, r record, store *project.ConfigStore) (Descriptor, error) {
	kind, ok := KindFromClassName(r.ClassName)
	if !ok {
		return Descriptor{}, fmt.Errorf("datasource %q has unsupported class_name %q", name, r.ClassName)
	}

	d := Descriptor{Name: name, Kind: kind}
	switch kind {
	case KindFilesystem:
		d.Filesystem = &FilesystemParams{BaseDirectory: resolveFrom(store.Dir(), r.BaseDirectory)}
	case KindSpark:
		master := r.SparkMaster
		if master == "" {
			master = DefaultSparkMaster
		}
		d.Spark = &SparkParams{BaseDirectory: resolveFrom(store.Dir(), r.BaseDirectory), Master: master}
	case KindSQL:
		url, err := store.Substitute(r.Credentials)
		if err != nil {
			return Descriptor{}, fmt.Errorf("datasource %q credentials: %w", name, err)
		}
		d.SQL = &SQLParams{URL: url}
	}
	return d, nil
}

func relativeTo(projectDir, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	projectAbs, err := filepath.Abs(projectDir)
	if err != nil {
		return abs
	}

	rel, err := filepath.Rel(projectAbs, abs)
	if err != nil {
		return abs
	}
	// Only paths under the project's parent stay relative.
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)+"..") {
		return abs
	}
	return filepath.ToSlash(rel)
}

func resolveFrom(projectDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, filepath.FromSlash(path))
}
