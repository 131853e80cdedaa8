package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/raywasm/internal/build"
	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/logfields"
)

// Trigger values recorded on build requests.
const (
	TriggerInitial = "watch-initial"
	TriggerChange  = "watch"
)

// Watcher runs an initial build and then rebuilds on every change under the
// input directory.
type Watcher struct {
	cfg      *config.Config
	svc      build.BuildService
	filter   *Filter
	logger   *slog.Logger
	debounce time.Duration

	// OnBuild, when set, is called after every build with its outcome.
	OnBuild func(*build.BuildResult, error)
}

// New creates a Watcher for cfg using svc to run builds.
func New(cfg *config.Config, svc build.BuildService) *Watcher {
	return &Watcher{
		cfg:      cfg,
		svc:      svc,
		filter:   NewFilter(cfg.OutputDir),
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
}

// WithDebounce overrides the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	w.logger = l
	return w
}

// Run blocks until ctx is cancelled. Build failures are logged and do not stop
// the loop; only watcher setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	root := w.cfg.InputDir
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return errors.NotFoundError("input directory not found or not a directory").
			WithContext("path", root).
			Build()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()
	w.addDirsRecursive(fw, root)

	w.rebuild(ctx, TriggerInitial)

	deb := newDebouncer(w.debounce)
	defer deb.Stop()

	workerCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(workerCtx, deb.C())
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	w.logger.Info("Watching for changes", logfields.Path(root))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, deb.Trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// worker runs one build per request. The request channel holds at most one
// pending signal, so changes during a build collapse into one follow-up build.
func (w *Watcher) worker(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			w.logger.Info("Change detected; rebuilding")
			w.rebuild(ctx, TriggerChange)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, trigger string) {
	res, err := w.svc.Run(ctx, build.BuildRequest{Config: w.cfg, Trigger: trigger})
	if err != nil && ctx.Err() == nil {
		w.logger.Warn("Rebuild failed", logfields.Error(err))
	}
	if w.OnBuild != nil {
		w.OnBuild(res, err)
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.filter.Ignore(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.filter.Ignore(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}
