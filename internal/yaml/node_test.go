package yaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDocument(t *testing.T) {
	tests := map[string]struct {
		input    string
		wantKeys []string
		wantErr  bool
	}{
		"empty input": {
			input:    "",
			wantKeys: []string{},
		},
		"mapping keeps order": {
			input:    "zeta: 1\nalpha: 2\nmid: 3\n",
			wantKeys: []string{"zeta", "alpha", "mid"},
		},
		"top level sequence": {
			input:   "- a\n- b\n",
			wantErr: true,
		},
		"invalid syntax": {
			input:   "a: [1, 2\n",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, Keys(Root(doc)))
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	doc, err := ParseDocument([]byte("first: 1\nsecond: 2\n"))
	require.NoError(t, err)
	root := Root(doc)

	Set(root, "second", &yaml.Node{Kind: yaml.ScalarNode, Value: "two"})
	Set(root, "third", &yaml.Node{Kind: yaml.ScalarNode, Value: "3"})

	assert.Equal(t, []string{"first", "second", "third"}, Keys(root))
	assert.Equal(t, "two", Get(root, "second").Value)
	assert.Nil(t, Get(root, "missing"))

	assert.True(t, Delete(root, "first"))
	assert.False(t, Delete(root, "first"))
	assert.Equal(t, []string{"second", "third"}, Keys(root))
}

func TestEnsureMapping(t *testing.T) {
	tests := map[string]struct {
		input string
	}{
		"missing key":        {input: "other: 1\n"},
		"null value":         {input: "datasources:\n"},
		"empty flow map":     {input: "datasources: {}\n"},
		"existing mapping":   {input: "datasources:\n  a: 1\n"},
		"scalar is replaced": {input: "datasources: oops\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.input))
			require.NoError(t, err)

			m := EnsureMapping(Root(doc), "datasources")
			require.Equal(t, yaml.MappingNode, m.Kind)
			Set(m, "added", &yaml.Node{Kind: yaml.ScalarNode, Value: "x"})

			out, err := Encode(doc)
			require.NoError(t, err)
			assert.Contains(t, string(out), "added: x")
		})
	}
}

func TestEncodePreservesComments(t *testing.T) {
	input := "# project settings\nconfig_version: 2 # keep me\nplugins_directory: plugins/\n"
	doc, err := ParseDocument([]byte(input))
	require.NoError(t, err)

	Set(Root(doc), "extra", &yaml.Node{Kind: yaml.ScalarNode, Value: "yes"})
	out, err := Encode(doc)
	require.NoError(t, err)

	assert.Contains(t, string(out), "# project settings")
	assert.Contains(t, string(out), "# keep me")
	assert.Contains(t, string(out), "plugins_directory: plugins/")
}

func TestToNode(t *testing.T) {
	type pair struct {
		Name  string `yaml:"name"`
		Count int    `yaml:"count,omitempty"`
	}

	n, err := ToNode(pair{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, yaml.MappingNode, n.Kind)
	assert.Equal(t, []string{"name"}, Keys(n))
	assert.Equal(t, "a", Get(n, "name").Value)
}
