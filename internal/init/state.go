package initpkg

import (
	"context"
	"fmt"

	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/suite"
)

// State is the classification of a project root.
type State int

const (
	// NoProject means great_expectations/great_expectations.yml is absent.
	NoProject State = iota + 1
	// NewEmptyProject is the tree scaffolded during this run, before a
	// datasource is added. Classify never returns it.
	NewEmptyProject
	// HasZeroDatasources is a project with no configured datasource.
	HasZeroDatasources
	// HasUnprofiledDatasource is a project whose datasources have no suites.
	HasUnprofiledDatasource
	// HasCompleteProject is a project with at least one datasource that has a suite.
	HasCompleteProject
)

func (s State) String() string {
	switch s {
	case NoProject:
		return "no_project"
	case NewEmptyProject:
		return "new_empty_project"
	case HasZeroDatasources:
		return "has_zero_datasources"
	case HasUnprofiledDatasource:
		return "has_unprofiled_datasource"
	case HasCompleteProject:
		return "has_complete_project"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StoreOpener opens the project config of a project directory.
type StoreOpener func(projectDir string) (*project.ConfigStore, error)

// Classify determines the state of the project under root. The opened
// config store is returned for every state but NoProject.
func Classify(ctx context.Context, root string, open StoreOpener) (State, *project.ConfigStore, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	exists, err := project.Exists(root)
	if err != nil {
		return 0, nil, err
	}
	if !exists {
		return NoProject, nil, nil
	}

	store, err := open(project.Dir(root))
	if err != nil {
		return 0, nil, err
	}

	names := store.DatasourceNames()
	if len(names) == 0 {
		return HasZeroDatasources, store, nil
	}

	keys, err := suite.NewRegistry(store).ListKeys(ctx)
	if err != nil {
		return 0, nil, err
	}

	// Suites left behind by a removed datasource do not count.
	configured := make(map[string]bool, len(names))
	for _, n := range names {
		configured[n] = true
	}
	for _, k := range keys {
		if configured[k.Datasource] {
			return HasCompleteProject, store, nil
		}
	}
	return HasUnprofiledDatasource, store, nil
}
