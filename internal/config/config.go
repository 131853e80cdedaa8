package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
)

const (
	// DefaultName is the page title used when none is configured.
	DefaultName = "Game"
	// DefaultColor is the sentinel background color; it bypasses length validation.
	DefaultColor = "#FFFFFF"
	// DefaultConfigFile is looked up in the working directory when --config is not given.
	DefaultConfigFile = "raywasm.yaml"

	// SourceFile is the program compiled from the input directory.
	SourceFile = "main.c"
	// ArtifactFile is the page emcc writes into the output directory.
	ArtifactFile = "game.html"

	DefaultCompiler     = "emcc"
	DefaultSDKRoot      = "C:/raylib/raylib/src"
	DefaultMemoryBytes  = 67108864
	DefaultResourcesDir = "resources"
	DefaultPageMode     = "full"
)

// Config is the resolved set of options for one invocation.
type Config struct {
	Name      string          `yaml:"name"`
	Color     string          `yaml:"color"`
	InputDir  string          `yaml:"input"`
	OutputDir string          `yaml:"output"`
	NoBuild   bool            `yaml:"no_build,omitempty"`
	NoClean   bool            `yaml:"no_clean,omitempty"`
	Page      PageConfig      `yaml:"page"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Resources ResourcesConfig `yaml:"resources"`
}

// PageConfig controls HTML post-processing.
type PageConfig struct {
	Mode   string `yaml:"mode"`             // full | minimal
	Strict bool   `yaml:"strict,omitempty"` // fail instead of skipping missing elements
}

// ToolchainConfig describes the external compiler invocation.
type ToolchainConfig struct {
	Compiler    string   `yaml:"compiler"`
	SDKRoot     string   `yaml:"sdk_root"`
	MemoryBytes int64    `yaml:"memory_bytes"`
	ExtraArgs   []string `yaml:"extra_args,omitempty"`
}

// ResourcesConfig enables packing of game assets into the bundle.
type ResourcesConfig struct {
	Pack        bool   `yaml:"pack"`
	Dir         string `yaml:"dir"`
	StripPrefix string `yaml:"strip_prefix,omitempty"` // defaults to the input directory
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		Name:      DefaultName,
		Color:     DefaultColor,
		InputDir:  ".",
		OutputDir: ".",
		Page:      PageConfig{Mode: DefaultPageMode},
		Toolchain: ToolchainConfig{
			Compiler:    DefaultCompiler,
			SDKRoot:     DefaultSDKRoot,
			MemoryBytes: DefaultMemoryBytes,
		},
		Resources: ResourcesConfig{Dir: DefaultResourcesDir},
	}
}

// SourcePath is the path of main.c inside the input directory.
func (c *Config) SourcePath() string {
	return filepath.Join(c.InputDir, SourceFile)
}

// ArtifactPath is the path of the generated page.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.OutputDir, ArtifactFile)
}

// ResourcesPath is the directory scanned for assets when packing is enabled.
func (c *Config) ResourcesPath() string {
	return filepath.Join(c.InputDir, c.Resources.Dir)
}

// Load reads a YAML configuration file on top of the defaults.
// Environment variables referenced as ${VAR} in the file are expanded.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WrapError(err, errors.CategoryConfig, "configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// Init writes a starter configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Name = "My raylib game"
	example.Color = "1E1E2E"
	example.OutputDir = "build"
	example.Resources.Pack = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# raywasm configuration. CLI flags override every value below.\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
