package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	yamlutil "github.com/expectation-labs/gxctl/internal/yaml"
)

// StoreBackend locates a store on disk.
type StoreBackend struct {
	ClassName     string `yaml:"class_name,omitempty"`
	BaseDirectory string `yaml:"base_directory"`
}

// StoreConfig is one entry of the "stores" section.
type StoreConfig struct {
	ClassName    string       `yaml:"class_name"`
	StoreBackend StoreBackend `yaml:"store_backend"`
}

// SiteConfig is one entry of the "data_docs_sites" section.
type SiteConfig struct {
	Name             string            `yaml:"-"`
	ClassName        string            `yaml:"class_name"`
	StoreBackend     StoreBackend      `yaml:"store_backend"`
	SiteIndexBuilder map[string]string `yaml:"site_index_builder,omitempty"`
}

// ConfigStore is the single reader/writer of great_expectations.yml. The
// document is held as a yaml.v3 node tree so that keys an operation does
// not touch keep their values, order and comments.
type ConfigStore struct {
	dir  string
	path string
	doc  *yaml.Node
}

// Open loads the project config from projectDir (the great_expectations
// directory). It returns ErrNotInitialized when the file does not exist.
func Open(projectDir string) (*ConfigStore, error) {
	path := filepath.Join(projectDir, ConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	if verr := yamlutil.ValidateBytes(data, path); verr != nil {
		return nil, &ConfigError{Path: path, Line: verr.Line, Message: verr.Message}
	}

	doc, err := yamlutil.ParseDocument(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	return &ConfigStore{dir: projectDir, path: path, doc: doc}, nil
}

// OpenRoot loads the project config of the project under root.
func OpenRoot(root string) (*ConfigStore, error) {
	return Open(Dir(root))
}

// Dir returns the project directory.
func (s *ConfigStore) Dir() string {
	return s.dir
}

// Path returns the path of great_expectations.yml.
func (s *ConfigStore) Path() string {
	return s.path
}

func (s *ConfigStore) root() *yaml.Node {
	return yamlutil.Root(s.doc)
}

// DatasourceNames returns the configured datasource names, sorted.
func (s *ConfigStore) DatasourceNames() []string {
	names := yamlutil.Keys(yamlutil.Get(s.root(), "datasources"))
	sort.Strings(names)
	return names
}

// Datasource decodes the named datasource entry into out. It reports
// whether the entry exists.
func (s *ConfigStore) Datasource(name string, out interface{}) (bool, error) {
	node := yamlutil.Get(yamlutil.Get(s.root(), "datasources"), name)
	if node == nil {
		return false, nil
	}
	if err := node.Decode(out); err != nil {
		return true, &ConfigError{Path: s.path, Line: node.Line, Message: fmt.Sprintf("datasource %q: %v", name, err)}
	}
	return true, nil
}

// SetDatasource stores v under datasources.<name> in memory, replacing any
// existing entry. Call Save to persist.
func (s *ConfigStore) SetDatasource(name string, v interface{}) error {
	node, err := yamlutil.ToNode(v)
	if err != nil {
		return fmt.Errorf("encoding datasource %q: %w", name, err)
	}
	yamlutil.Set(yamlutil.EnsureMapping(s.root(), "datasources"), name, node)
	return nil
}

// Checkpoint returns a function that resets the in-memory document to its
// current content, for undoing edits whose Save failed.
func (s *ConfigStore) Checkpoint() (func(), error) {
	data, err := yamlutil.Encode(s.doc)
	if err != nil {
		return nil, &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	return func() {
		if doc, err := yamlutil.ParseDocument(data); err == nil {
			s.doc = doc
		}
	}, nil
}

// Save writes the whole document atomically.
func (s *ConfigStore) Save() error {
	data, err := yamlutil.Encode(s.doc)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	if err := WriteFileAtomic(s.path, data, 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Store returns the named entry of the "stores" section.
func (s *ConfigStore) Store(name string) (StoreConfig, bool) {
	var cfg StoreConfig
	node := yamlutil.Get(yamlutil.Get(s.root(), "stores"), name)
	if node == nil || node.Decode(&cfg) != nil {
		return StoreConfig{}, false
	}
	return cfg, true
}

// ExpectationsDir returns the absolute base directory of the expectations
// store, falling back to the default layout.
func (s *ConfigStore) ExpectationsDir() string {
	return s.storeDir("expectations_store_name", ExpectationsName, ExpectationsDir)
}

// ValidationsDir returns the absolute base directory of the validations store.
func (s *ConfigStore) ValidationsDir() string {
	return s.storeDir("validations_store_name", ValidationsName, ValidationsDir)
}

func (s *ConfigStore) storeDir(nameKey, defaultName, defaultDir string) string {
	name := defaultName
	if n := yamlutil.Get(s.root(), nameKey); n != nil && n.Value != "" {
		name = n.Value
	}
	base := defaultDir
	if cfg, ok := s.Store(name); ok && cfg.StoreBackend.BaseDirectory != "" {
		base = cfg.StoreBackend.BaseDirectory
	}
	return s.resolve(base)
}

// DataDocsSites returns the configured data docs sites sorted by name.
// Site base directories are resolved to absolute paths.
func (s *ConfigStore) DataDocsSites() ([]SiteConfig, error) {
	sitesNode := yamlutil.Get(s.root(), "data_docs_sites")
	names := yamlutil.Keys(sitesNode)
	sort.Strings(names)

	sites := make([]SiteConfig, 0, len(names))
	for _, name := range names {
		node := yamlutil.Get(sitesNode, name)
		var site SiteConfig
		if err := node.Decode(&site); err != nil {
			return nil, &ConfigError{Path: s.path, Line: node.Line, Message: fmt.Sprintf("data docs site %q: %v", name, err)}
		}
		site.Name = name
		if site.StoreBackend.BaseDirectory == "" {
			site.StoreBackend.BaseDirectory = DataDocsDir + name + "/"
		}
		site.StoreBackend.BaseDirectory = s.resolve(site.StoreBackend.BaseDirectory)
		sites = append(sites, site)
	}
	return sites, nil
}

// VariablesPath returns the absolute path of the config variables file.
func (s *ConfigStore) VariablesPath() string {
	rel := ConfigVariablesPath
	if n := yamlutil.Get(s.root(), "config_variables_file_path"); n != nil && n.Value != "" {
		rel = n.Value
	}
	return s.resolve(rel)
}

func (s *ConfigStore) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.dir, filepath.FromSlash(p))
}
