package commands

import (
	"fmt"

	"git.home.luguber.info/inful/raywasm/internal/build"
	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/toolchain"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Resolve(root.Config, b.Overrides())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := newService(g).Run(ctx, build.BuildRequest{Config: cfg, Trigger: "cli"})
	if err != nil {
		return err
	}

	if res.Page != nil && len(res.Page.Skipped) > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "Built %s (%d page edits skipped)\n", res.Artifact, len(res.Page.Skipped))
		return nil
	}
	_, _ = fmt.Fprintf(g.Stdout, "Built %s\n", res.Artifact)
	return nil
}

// newService wires a build service whose compiler output goes to the command's writers.
func newService(g *Global) *build.DefaultBuildService {
	runner := toolchain.NewExecRunner()
	runner.Stdout = g.Stdout
	runner.Stderr = g.Stderr
	return build.NewBuildService().WithRunner(runner).WithLogger(g.Logger)
}
