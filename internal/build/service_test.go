package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/toolchain"
)

// fakeRunner stands in for emcc: it records the command and writes the shell page.
type fakeRunner struct {
	calls []*toolchain.Command
	shell []byte
	err   error
}

func (f *fakeRunner) Run(_ context.Context, cmd *toolchain.Command) error {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return f.err
	}
	args := cmd.Args()
	return os.WriteFile(args[1], f.shell, 0o644) // "-o <output>"
}

func newFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	shell, err := os.ReadFile(filepath.Join("testdata", "shell.html"))
	require.NoError(t, err)
	return &fakeRunner{shell: shell}
}

type testRecorder struct {
	stageResults map[string]int
	outcomes     map[string]int
	builds       int
	lastBuild    time.Time
}

func newTestRecorder() *testRecorder {
	return &testRecorder{stageResults: map[string]int{}, outcomes: map[string]int{}}
}

func (r *testRecorder) ObserveStageDuration(string, time.Duration) {}
func (r *testRecorder) ObserveBuildDuration(time.Duration)         { r.builds++ }
func (r *testRecorder) IncStageResult(stage, result string)        { r.stageResults[stage+"/"+result]++ }
func (r *testRecorder) IncBuildOutcome(outcome string)             { r.outcomes[outcome]++ }
func (r *testRecorder) SetLastBuild(t time.Time)                   { r.lastBuild = t }

// gameDir creates an input directory with main.c and returns a config for it.
func gameDir(t *testing.T) *config.Config {
	t.Helper()
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, config.SourceFile), []byte("int main(void){return 0;}\n"), 0o644))

	cfg := config.Default()
	cfg.InputDir = in
	cfg.OutputDir = filepath.Join(t.TempDir(), "web")
	cfg.Resources.StripPrefix = in
	cfg.Color = "#336699"
	cfg.Name = "Asteroids"
	return cfg
}

func newService(r toolchain.Runner) *DefaultBuildService {
	return NewBuildService().WithRunner(r).WithIDGenerator(func() string { return "run-1" })
}

func TestBuildStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   BuildStatus
		expected bool
	}{
		{BuildStatusSuccess, true},
		{BuildStatusSkipped, true},
		{BuildStatusFailed, false},
		{BuildStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsSuccess(); got != tt.expected {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.expected)
			}
			if !tt.status.IsTerminal() {
				t.Errorf("IsTerminal() = false for %s", tt.status)
			}
		})
	}
}

func TestNewBuildService(t *testing.T) {
	svc := NewBuildService()
	require.NotNil(t, svc)
	assert.NotNil(t, svc.runner)
	assert.NotNil(t, svc.logger)
	assert.NotEmpty(t, svc.newID())
	assert.NotEqual(t, svc.newID(), svc.newID())
}

func TestRun_NilConfig(t *testing.T) {
	res, err := newService(&fakeRunner{}).Run(context.Background(), BuildRequest{})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, BuildStatusFailed, res.Status)
	assert.True(t, errors.HasCategory(err, errors.CategoryInternal))
}

func TestRun_CompileAndTransform(t *testing.T) {
	cfg := gameDir(t)
	runner := newFakeRunner(t)

	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg, Trigger: "cli"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, BuildStatusSuccess, res.Status)
	assert.Equal(t, cfg.ArtifactPath(), res.Artifact)
	require.Len(t, res.Stages, 3)
	for _, st := range res.Stages {
		assert.Equal(t, BuildStatusSuccess, st.Status, st.Name)
	}
	require.NotNil(t, res.Page)
	assert.Empty(t, res.Page.Skipped)

	require.Len(t, runner.calls, 1)
	cmd := runner.calls[0]
	assert.Equal(t, config.DefaultCompiler, cmd.Path)
	assert.Equal(t, cfg.InputDir, cmd.Dir)
	assert.Equal(t, []string{"-o", cfg.ArtifactPath(), cfg.SourcePath()}, cmd.Args()[:3])

	html, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Asteroids</title>")
	assert.Contains(t, string(html), "background-color: #336699}")
	assert.NotContains(t, string(html), "powered by raylib")
}

func TestRun_MissingSourceTouchesNothing(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = filepath.Join(t.TempDir(), "web")
	runner := newFakeRunner(t)

	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.Contains(t, err.Error(), "input path does not exist")

	assert.Empty(t, runner.calls, "toolchain must not be invoked")
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")

	require.Len(t, res.Stages, 1)
	assert.Equal(t, StageValidate, res.Stages[0].Name)
	assert.Equal(t, BuildStatusFailed, res.Stages[0].Status)
}

func TestRun_SourceIsDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cfg.InputDir, config.SourceFile), 0o755))

	_, err := newService(newFakeRunner(t)).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestRun_NoBuildTransformsExistingArtifact(t *testing.T) {
	cfg := gameDir(t)
	cfg.NoBuild = true
	cfg.Page.Mode = "minimal"
	runner := newFakeRunner(t)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(cfg.ArtifactPath(), runner.shell, 0o644))

	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Empty(t, runner.calls)

	compile, ok := res.Stage(StageCompile)
	require.True(t, ok)
	assert.Equal(t, BuildStatusSkipped, compile.Status)

	html, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Contains(t, string(html), `style="background-color: #336699;"`)
	assert.Contains(t, string(html), "powered by raylib", "minimal mode keeps the link")
}

func TestRun_NoBuildWithoutArtifact(t *testing.T) {
	cfg := gameDir(t)
	cfg.NoBuild = true

	_, err := newService(newFakeRunner(t)).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArtifact))
}

func TestRun_NoCleanLeavesArtifactAlone(t *testing.T) {
	cfg := gameDir(t)
	cfg.NoClean = true
	cfg.Page.Mode = "not-a-mode" // ignored when the transform is off
	runner := newFakeRunner(t)

	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Nil(t, res.Page)

	html, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Equal(t, string(runner.shell), string(html))
}

func TestRun_ToolchainFailureSkipsTransform(t *testing.T) {
	cfg := gameDir(t)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	stale := []byte("<html><head><title>stale</title></head><body></body></html>")
	require.NoError(t, os.WriteFile(cfg.ArtifactPath(), stale, 0o644))

	runner := &fakeRunner{err: errors.ToolchainError("compiler failed").WithContext("exit_code", 1).Build()}
	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryToolchain))
	assert.Equal(t, BuildStatusFailed, res.Status)

	_, reached := res.Stage(StageTransform)
	assert.False(t, reached)

	html, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Equal(t, stale, html)
}

func TestRun_InvalidModeFailsBeforeCompile(t *testing.T) {
	cfg := gameDir(t)
	cfg.Page.Mode = "sideways"
	runner := newFakeRunner(t)

	_, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Empty(t, runner.calls)
}

func TestRun_StrictModeReportsMissingElements(t *testing.T) {
	cfg := gameDir(t)
	cfg.Page.Strict = true
	runner := newFakeRunner(t)
	runner.shell = []byte("<html><head></head><body><canvas></canvas></body></html>")

	_, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArtifact))
	assert.Contains(t, err.Error(), `"div"`)
}

func TestRun_PacksResources(t *testing.T) {
	cfg := gameDir(t)
	cfg.Resources.Pack = true
	for _, name := range []string{"ship.png", filepath.Join("sfx", "laser.wav")} {
		p := filepath.Join(cfg.ResourcesPath(), name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	runner := newFakeRunner(t)

	res, err := newService(runner).Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Resources)

	require.Len(t, runner.calls, 1)
	joined := strings.Join(runner.calls[0].Args(), "\n")
	assert.Contains(t, joined, toolchain.EmbedFlag+"\n"+filepath.ToSlash(filepath.Join(cfg.ResourcesPath(), "sfx", "laser.wav"))+"@resources/sfx/laser.wav")
	assert.Contains(t, joined, "@resources/ship.png")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := gameDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := newFakeRunner(t)

	res, err := newService(runner).Run(ctx, BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BuildStatusCancelled, res.Status)
	assert.Empty(t, runner.calls)
}

func TestRun_RecordsMetrics(t *testing.T) {
	rec := newTestRecorder()

	cfg := gameDir(t)
	cfg.NoClean = true
	_, err := newService(newFakeRunner(t)).WithRecorder(rec).Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)

	missing := config.Default()
	missing.InputDir = t.TempDir()
	_, err = newService(newFakeRunner(t)).WithRecorder(rec).Run(context.Background(), BuildRequest{Config: missing})
	require.Error(t, err)

	assert.Equal(t, 2, rec.builds)
	assert.Equal(t, map[string]int{"success": 1, "failed": 1}, rec.outcomes)
	assert.Equal(t, map[string]int{
		"validate/success":  1,
		"compile/success":   1,
		"transform/skipped": 1,
		"validate/failed":   1,
	}, rec.stageResults)
	assert.False(t, rec.lastBuild.IsZero())
}
