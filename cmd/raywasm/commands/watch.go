package commands

import (
	"os"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/metrics"
	"git.home.luguber.info/inful/raywasm/internal/serve"
	"git.home.luguber.info/inful/raywasm/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags `embed:""`

	Serve bool   `short:"s" help:"Also serve the output directory (and build metrics on /metrics) while watching"`
	Addr  string `short:"a" help:"Listen address used with --serve" default:"${default_addr}"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Resolve(root.Config, w.Overrides())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	svc := newService(g)
	serveErr := make(chan error, 1)
	if w.Serve {
		// The server starts before the first build has created the directory.
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext("path", cfg.OutputDir).
				Build()
		}
		reg := prom.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
		srv := serve.New(cfg.OutputDir, w.Addr).
			WithLogger(g.Logger).
			WithMetrics(metrics.HTTPHandler(reg))
		go func() {
			err := srv.ListenAndServe(ctx)
			if err != nil {
				cancel()
			}
			serveErr <- err
		}()
	} else {
		close(serveErr)
	}

	watchErr := watch.New(cfg, svc).WithLogger(g.Logger).Run(ctx)
	cancel()
	if err := <-serveErr; err != nil {
		return err
	}
	return watchErr
}
