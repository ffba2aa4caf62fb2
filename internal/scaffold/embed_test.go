package scaffold

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yamlutil "github.com/expectation-labs/gxctl/internal/yaml"
)

func TestTemplates_YAMLParses(t *testing.T) {
	for _, name := range []string{"great_expectations.yml", "config_variables.yml"} {
		t.Run(name, func(t *testing.T) {
			data, err := Template(name)
			require.NoError(t, err)
			assert.Nil(t, yamlutil.ValidateBytes(data, name))

			_, err = yamlutil.ParseDocument(data)
			assert.NoError(t, err)
		})
	}
}

func TestTemplates_Notebooks(t *testing.T) {
	files, err := notebookFiles()
	require.NoError(t, err)
	assert.Len(t, files, 6)

	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			data, err := Template(name)
			require.NoError(t, err)

			var nb map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &nb), "notebook must be valid JSON")
			assert.EqualValues(t, 4, nb["nbformat"])
		})
	}
}
