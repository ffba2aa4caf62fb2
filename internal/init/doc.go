// Package initpkg implements 'gxctl init': it classifies the state of a
// data-context project under a root directory and walks the user through
// the steps still missing, from scaffolding the project tree to adding a
// datasource, profiling a data asset into an expectation suite and
// building Data Docs.
//
// The directory is named init; import it as initpkg:
//
//	import initpkg "github.com/expectation-labs/gxctl/internal/init"
//
// Every collaborator (scaffold builder, profiler, docs builder, prompt
// asker, datasource prober) is injected through Options, so the flow can be
// driven end to end from tests with a scripted asker.
//
// Each mutating step is atomic on its own. Stopping part way (declining a
// prompt, closing input, Ctrl-C) leaves later steps untouched and keeps
// earlier ones. Running init again picks up from the recorded state.
package initpkg
