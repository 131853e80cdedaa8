package commands

import (
	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/serve"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Dir  string `short:"d" help:"Directory to serve (default: the configured output directory)" type:"path"`
	Addr string `short:"a" help:"Listen address" default:"${default_addr}"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Resolve(root.Config, config.Overrides{OutputDir: s.Dir})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return serve.New(cfg.OutputDir, s.Addr).WithLogger(g.Logger).ListenAndServe(ctx)
}
