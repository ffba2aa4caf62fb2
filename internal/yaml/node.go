// Package yaml holds the YAML helpers shared by the project config store:
// syntax validation with line information and in-place editing of
// yaml.v3 mapping nodes, so that keys an operation does not touch keep
// their order, style and comments when the document is written back.
package yaml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument parses data into a document node whose single child is a
// mapping. Empty input yields an empty mapping document.
func ParseDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 {
		return NewDocument(), nil
	}
	// A comment-only document decodes to an empty or null body.
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && isNull(doc.Content[0]) {
		null := doc.Content[0]
		doc.Content[0] = &yaml.Node{
			Kind:        yaml.MappingNode,
			Tag:         "!!map",
			HeadComment: null.HeadComment,
			FootComment: null.FootComment,
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level of the document must be a mapping")
	}
	return &doc, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "")
}

// NewDocument returns a document node holding an empty mapping.
func NewDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

// Root returns the top-level mapping of a document node.
func Root(doc *yaml.Node) *yaml.Node {
	return doc.Content[0]
}

// Encode renders a document with two-space indentation.
func Encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Get returns the value node stored under key in mapping m, or nil.
func Get(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Set stores value under key in mapping m, replacing an existing value in
// place or appending a new pair at the end.
func Set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// Delete removes key from mapping m. It reports whether the key was present.
func Delete(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys of mapping m in document order.
func Keys(m *yaml.Node) []string {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

// EnsureMapping returns the mapping stored under key in m, creating it (or
// replacing a null/empty scalar such as "datasources: {}") when needed.
func EnsureMapping(m *yaml.Node, key string) *yaml.Node {
	if existing := Get(m, key); existing != nil && existing.Kind == yaml.MappingNode {
		existing.Style = 0
		return existing
	}
	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	Set(m, key, child)
	return child
}

// ToNode converts a Go value into a yaml node via its yaml tags.
func ToNode(v interface{}) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}
