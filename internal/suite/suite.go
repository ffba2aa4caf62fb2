// Package suite stores expectation suites as JSON files under the project's
// expectations store: <base>/<datasource>/<generator>/<asset>/<suite>.json.
package suite

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expectation-labs/gxctl/internal/project"
)

// Key identifies a suite.
type Key struct {
	Datasource string
	Generator  string
	Asset      string
	Suite      string
}

// NewKey builds a key in the default generator namespace.
func NewKey(datasource, asset, suiteName string) Key {
	return Key{Datasource: datasource, Generator: project.GeneratorName, Asset: asset, Suite: suiteName}
}

func (k Key) String() string {
	return strings.Join([]string{k.Datasource, k.Generator, k.Asset, k.Suite}, "/")
}

// DataAssetName is the normalized asset name, "<datasource>/<generator>/<asset>".
func (k Key) DataAssetName() string {
	return strings.Join([]string{k.Datasource, k.Generator, k.Asset}, "/")
}

// RelPath is the key's path below a store base directory, without extension.
func (k Key) RelPath() string {
	return filepath.Join(k.Datasource, k.Generator, k.Asset, k.Suite)
}

// Validate checks that every segment is usable as a directory name.
func (k Key) Validate() error {
	segments := map[string]string{
		"datasource": k.Datasource,
		"generator":  k.Generator,
		"asset":      k.Asset,
		"suite":      k.Suite,
	}
	for _, name := range []string{"datasource", "generator", "asset", "suite"} {
		v := segments[name]
		if v == "" {
			return fmt.Errorf("suite key %s is empty", name)
		}
		if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
			return fmt.Errorf("suite key %s %q must not contain path separators", name, v)
		}
	}
	return nil
}

// Expectation is one assertion of a suite.
type Expectation struct {
	ExpectationType string                 `json:"expectation_type"`
	Kwargs          map[string]interface{} `json:"kwargs"`
	Meta            map[string]interface{} `json:"meta,omitempty"`
}

// Suite is a named, ordered list of expectations about one data asset.
type Suite struct {
	Key           Key                    `json:"-"`
	Name          string                 `json:"expectation_suite_name"`
	DataAssetName string                 `json:"data_asset_name"`
	DataAssetType string                 `json:"data_asset_type,omitempty"`
	Expectations  []Expectation          `json:"expectations"`
	Meta          map[string]interface{} `json:"meta"`
}

// New returns an empty suite for key.
func New(key Key, assetType, toolVersion string) *Suite {
	return &Suite{
		Key:           key,
		Name:          key.Suite,
		DataAssetName: key.DataAssetName(),
		DataAssetType: assetType,
		Expectations:  []Expectation{},
		Meta:          map[string]interface{}{"great_expectations.__version__": toolVersion},
	}
}

// Add appends an expectation.
func (s *Suite) Add(expectationType string, kwargs map[string]interface{}) {
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	s.Expectations = append(s.Expectations, Expectation{ExpectationType: expectationType, Kwargs: kwargs})
}
