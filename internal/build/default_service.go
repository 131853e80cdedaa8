package build

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/logfields"
	"git.home.luguber.info/inful/raywasm/internal/metrics"
	"git.home.luguber.info/inful/raywasm/internal/page"
	"git.home.luguber.info/inful/raywasm/internal/toolchain"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	runner   toolchain.Runner
	logger   *slog.Logger
	recorder metrics.Recorder
	newID    func() string
}

// NewBuildService creates a service that runs emcc as a child process.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		runner:   toolchain.NewExecRunner(),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		newID:    func() string { return uuid.NewString() },
	}
}

// WithRunner replaces the toolchain runner (for testing).
func (s *DefaultBuildService) WithRunner(r toolchain.Runner) *DefaultBuildService {
	s.runner = r
	return s
}

// WithLogger sets the logger used for stage progress.
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	s.logger = l
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	s.recorder = r
	return s
}

// WithIDGenerator replaces the run ID generator (for testing).
func (s *DefaultBuildService) WithIDGenerator(fn func() string) *DefaultBuildService {
	s.newID = fn
	return s
}

// run carries per-build state between stages.
type run struct {
	cfg         *config.Config
	logger      *slog.Logger
	transformer *page.Transformer
	result      *BuildResult
}

// Run executes the pipeline. The returned result is never nil.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result := &BuildResult{
		RunID:     s.newID(),
		Status:    BuildStatusFailed,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		s.recorder.ObserveBuildDuration(result.Duration)
		s.recorder.IncBuildOutcome(string(result.Status))
		s.recorder.SetLastBuild(result.EndTime)
	}()

	if req.Config == nil {
		return result, errors.InternalError("build request has no configuration").Build()
	}
	cfg := req.Config
	result.Artifact = cfg.ArtifactPath()

	r := &run{
		cfg:    cfg,
		logger: s.logger.With(logfields.RunID(result.RunID)),
		result: result,
	}
	r.logger.Info("Starting build",
		slog.String("trigger", req.Trigger),
		slog.String("input", cfg.InputDir),
		logfields.Path(result.Artifact))

	stages := []struct {
		name StageName
		skip bool
		fn   func(context.Context, *run) error
	}{
		{StageValidate, false, s.validate},
		{StageCompile, cfg.NoBuild, s.compile},
		{StageTransform, cfg.NoClean, s.transform},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			result.Status = BuildStatusCancelled
			return result, errors.WrapError(err, errors.CategoryRuntime, "build cancelled").
				WithContext("stage", string(st.name)).
				Build()
		}
		if st.skip {
			result.Stages = append(result.Stages, StageResult{Name: st.name, Status: BuildStatusSkipped})
			s.recorder.IncStageResult(string(st.name), string(BuildStatusSkipped))
			r.logger.Info("Stage skipped", logfields.Stage(string(st.name)))
			continue
		}

		start := time.Now()
		err := st.fn(ctx, r)
		sr := StageResult{Name: st.name, Status: BuildStatusSuccess, Duration: time.Since(start), Err: err}
		if err != nil {
			sr.Status = BuildStatusFailed
		}
		result.Stages = append(result.Stages, sr)
		s.recorder.ObserveStageDuration(string(st.name), sr.Duration)
		s.recorder.IncStageResult(string(st.name), string(sr.Status))
		r.logger.Debug("Stage finished",
			logfields.Stage(string(st.name)),
			logfields.Status(string(sr.Status)),
			logfields.DurationMS(float64(sr.Duration.Milliseconds())))
		if err != nil {
			return result, err
		}
	}

	result.Status = BuildStatusSuccess
	r.logger.Info("Build completed",
		logfields.Path(result.Artifact),
		logfields.DurationMS(float64(time.Since(result.StartTime).Milliseconds())))
	return result, nil
}

// validate resolves everything that can fail before the output directory is touched.
func (s *DefaultBuildService) validate(_ context.Context, r *run) error {
	if !r.cfg.NoClean {
		mode, err := page.ParseMode(r.cfg.Page.Mode)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid page mode").
				WithContext("mode", r.cfg.Page.Mode).
				Build()
		}
		policy := page.SkipMissing
		if r.cfg.Page.Strict {
			policy = page.FailOnMissing
		}
		tr, err := page.NewTransformer(page.Options{
			Mode:   mode,
			Title:  r.cfg.Name,
			Color:  r.cfg.Color,
			Policy: policy,
			Logger: r.logger,
		})
		if err != nil {
			return err
		}
		r.transformer = tr
	}

	src := r.cfg.SourcePath()
	info, err := os.Stat(src)
	if err != nil || info.IsDir() {
		b := errors.NotFoundError("input path does not exist").WithContext("path", src)
		if err != nil {
			b = b.WithCause(err)
		}
		return b.Build()
	}
	return nil
}

func (s *DefaultBuildService) compile(ctx context.Context, r *run) error {
	opts := toolchain.Options{
		Compiler:    r.cfg.Toolchain.Compiler,
		SDKRoot:     r.cfg.Toolchain.SDKRoot,
		Source:      r.cfg.SourcePath(),
		Output:      r.cfg.ArtifactPath(),
		MemoryBytes: r.cfg.Toolchain.MemoryBytes,
		ExtraArgs:   r.cfg.Toolchain.ExtraArgs,
	}

	if r.cfg.Resources.Pack {
		resources, err := toolchain.DiscoverResources(r.cfg.ResourcesPath(), r.cfg.Resources.StripPrefix)
		if err != nil {
			return err
		}
		if len(resources) == 0 {
			r.logger.Warn("Resource packing enabled but no files found", logfields.Path(r.cfg.ResourcesPath()))
		}
		opts.Resources = resources
		r.result.Resources = len(resources)
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", r.cfg.OutputDir).
			Build()
	}

	cmd := toolchain.NewCommand(opts)
	cmd.Dir = r.cfg.InputDir
	r.logger.Info("Compiling with emscripten",
		logfields.Command(cmd.String()),
		logfields.Resources(len(opts.Resources)))
	return s.runner.Run(ctx, cmd)
}

func (s *DefaultBuildService) transform(_ context.Context, r *run) error {
	res, err := r.transformer.TransformFile(r.cfg.ArtifactPath())
	r.result.Page = res
	return err
}
