package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
)

// isolate runs the test from an empty directory with no RAYWASM_* variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{EnvSDKRoot, EnvCompiler, EnvMemory} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolve_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Resolve("", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultName, cfg.Name)
	assert.Equal(t, DefaultColor, cfg.Color)
	assert.Equal(t, DefaultPageMode, cfg.Page.Mode)
	assert.Equal(t, DefaultCompiler, cfg.Toolchain.Compiler)
	assert.Equal(t, DefaultSDKRoot, cfg.Toolchain.SDKRoot)
	assert.EqualValues(t, DefaultMemoryBytes, cfg.Toolchain.MemoryBytes)
	assert.False(t, cfg.NoBuild)
	assert.False(t, cfg.NoClean)

	wd, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotIn, err := filepath.EvalSymlinks(cfg.InputDir)
	require.NoError(t, err)
	assert.Equal(t, wd, gotIn)
	assert.Equal(t, cfg.InputDir, cfg.Resources.StripPrefix)
	assert.Equal(t, filepath.Join(cfg.InputDir, SourceFile), cfg.SourcePath())
	assert.Equal(t, filepath.Join(cfg.OutputDir, ArtifactFile), cfg.ArtifactPath())
}

func TestResolve_Layering(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultConfigFile), `
name: From File
color: "102030"
output: out
page:
  mode: minimal
toolchain:
  compiler: em++
  sdk_root: /file/raylib/src
resources:
  pack: true
  dir: assets
`)
	t.Setenv(EnvSDKRoot, "/env/raylib/src")

	cfg, err := Resolve("", Overrides{Name: ptr("From Flag"), NoClean: true})
	require.NoError(t, err)

	assert.Equal(t, "From Flag", cfg.Name, "flags win over the file")
	assert.Equal(t, "#102030", cfg.Color, "file color is normalized")
	assert.Equal(t, "minimal", cfg.Page.Mode)
	assert.Equal(t, "em++", cfg.Toolchain.Compiler)
	assert.Equal(t, "/env/raylib/src", cfg.Toolchain.SDKRoot, "env wins over the file")
	assert.True(t, cfg.Resources.Pack)
	assert.Equal(t, "assets", cfg.Resources.Dir)
	assert.True(t, cfg.NoClean)
	assert.True(t, filepath.IsAbs(cfg.OutputDir))
	assert.Equal(t, "out", filepath.Base(cfg.OutputDir))
	assert.Equal(t, filepath.Join(cfg.InputDir, "assets"), cfg.ResourcesPath())
}

func TestResolve_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "RAYWASM_SDK_ROOT=/dotenv/src\nRAYWASM_COMPILER=dotenv-emcc\n")
	t.Setenv(EnvCompiler, "process-emcc")

	cfg, err := Resolve("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/src", cfg.Toolchain.SDKRoot)
	assert.Equal(t, "process-emcc", cfg.Toolchain.Compiler)
}

func TestResolve_BadColorIsUsageError(t *testing.T) {
	dir := isolate(t)

	_, err := Resolve("", Overrides{Color: "FFF", OutputDir: filepath.Join(dir, "out")})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "resolving a bad color must not write anything")
}

func TestResolve_ExplicitConfigMustExist(t *testing.T) {
	isolate(t)

	_, err := Resolve("missing.yaml", Overrides{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolve_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	writeFile(t, path, "name: [unterminated\n")

	_, err := Resolve(path, Overrides{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolve_InvalidMemory(t *testing.T) {
	isolate(t)
	t.Setenv(EnvMemory, "0")

	_, err := Resolve("", Overrides{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestLoad_ExpandsEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("GAME_TITLE", "Expanded")
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, "name: ${GAME_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Expanded", cfg.Name)
	assert.Equal(t, DefaultCompiler, cfg.Toolchain.Compiler, "unset fields keep defaults")
}

func TestInit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, DefaultConfigFile)

	require.NoError(t, Init(path, false))
	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(path, true))

	cfg, err := Resolve(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "My raylib game", cfg.Name)
	assert.Equal(t, "#1E1E2E", cfg.Color)
	assert.True(t, cfg.Resources.Pack)
}

func ptr[T any](v T) *T { return &v }

func TestResolve_EmptyNameIsKept(t *testing.T) {
	isolate(t)

	cfg, err := Resolve("", Overrides{Name: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, cfg.Name)

	cfg, err = Resolve("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, cfg.Name)
}
