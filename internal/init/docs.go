package initpkg

import (
	"context"
	"fmt"

	"github.com/expectation-labs/gxctl/internal/docs"
	"github.com/expectation-labs/gxctl/internal/output"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/prompt"
)

// offerDocs asks whether to build Data Docs and builds every configured
// site. With view set, each built site is opened; failures to open are
// only reported.
func (o *Orchestrator) offerDocs(ctx context.Context, store *project.ConfigStore, view bool) error {
	ans, err := o.ask(ctx, prompt.YesNo("Would you like to build & view this project's Data Docs?", true))
	if err != nil {
		return err
	}
	if !ans.Confirmed {
		return nil
	}

	output.PrintStep(o.out, "Building Data Docs...")
	o.spinner.Start("Building Data Docs")
	sites, err := o.sites.Build(ctx, docs.BuildRequest{ProjectDir: store.Dir(), Config: store})
	if err != nil {
		o.spinner.Fail("")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StepError{Step: StepBuildDocs, Err: err}
	}
	o.spinner.Succeed("")

	fmt.Fprintln(o.out, "\nThe following Data Docs sites were built:")
	for _, s := range sites {
		fmt.Fprintf(o.out, "- %s: %s\n", s.Name, s.URL)
	}
	o.logger.Info("data docs built", "sites", len(sites))

	if !view || o.viewer == nil {
		return nil
	}
	for _, s := range sites {
		if err := o.viewer.Open(ctx, s.URL); err != nil {
			output.PrintWarning(o.out, fmt.Sprintf("Could not open %s in a browser. Open it manually: %s", s.Name, s.URL))
			o.logger.Debug("opening data docs failed", "site", s.Name, "error", err)
		}
	}
	return nil
}
