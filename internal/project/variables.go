package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	yamlutil "github.com/expectation-labs/gxctl/internal/yaml"
)

var variablePattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// VariableRef returns the ${name} reference stored in the project config in
// place of a secret kept in the config variables file.
func VariableRef(name string) string {
	return "${" + name + "}"
}

// Variable returns the value stored under name in the config variables file.
func (s *ConfigStore) Variable(name string) (string, bool, error) {
	doc, err := s.loadVariables()
	if err != nil {
		return "", false, err
	}
	node := yamlutil.Get(yamlutil.Root(doc), name)
	if node == nil {
		return "", false, nil
	}
	return node.Value, true, nil
}

// SetVariable stores value under name in the config variables file and
// writes it atomically. Other entries and comments are preserved.
func (s *ConfigStore) SetVariable(name, value string) error {
	doc, err := s.loadVariables()
	if err != nil {
		return err
	}

	yamlutil.Set(yamlutil.Root(doc), name, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	})
	return s.writeVariables(doc)
}

// DeleteVariable removes name from the config variables file. A missing
// entry is not an error.
func (s *ConfigStore) DeleteVariable(name string) error {
	doc, err := s.loadVariables()
	if err != nil {
		return err
	}
	if !yamlutil.Delete(yamlutil.Root(doc), name) {
		return nil
	}
	return s.writeVariables(doc)
}

func (s *ConfigStore) writeVariables(doc *yaml.Node) error {
	path := s.VariablesPath()
	data, err := yamlutil.Encode(doc)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	// Secrets live here, so keep the file private.
	if err := WriteFileAtomic(path, data, 0o600); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Substitute replaces ${name} references in value. Environment variables
// take precedence over entries in the config variables file. An unresolved
// reference is an error.
func (s *ConfigStore) Substitute(value string) (string, error) {
	if !variablePattern.MatchString(value) {
		return value, nil
	}

	doc, err := s.loadVariables()
	if err != nil {
		return "", err
	}
	vars := yamlutil.Root(doc)

	var missing []string
	out := variablePattern.ReplaceAllStringFunc(value, func(ref string) string {
		name := variablePattern.FindStringSubmatch(ref)[1]
		if env, ok := os.LookupEnv(name); ok {
			return env
		}
		if n := yamlutil.Get(vars, name); n != nil {
			return n.Value
		}
		missing = append(missing, name)
		return ref
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved config variable %q", missing[0])
	}
	return out, nil
}

func (s *ConfigStore) loadVariables() (*yaml.Node, error) {
	path := s.VariablesPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return yamlutil.NewDocument(), nil
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	doc, err := yamlutil.ParseDocument(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	return doc, nil
}
