package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
)

// Overrides carries values given on the command line. Zero values mean "not set",
// except Name, where a nil pointer means "not set" and an empty string is an
// empty page title.
type Overrides struct {
	Name         *string
	Color        string
	InputDir     string
	OutputDir    string
	Mode         string
	SDKRoot      string
	Compiler     string
	ResourcesDir string
	NoBuild      bool
	NoClean      bool
	Strict       bool
	Pack         bool
}

// Resolve layers defaults, the YAML file, environment variables and CLI
// overrides, then validates and normalizes the result. It performs no writes.
//
// An empty configPath selects DefaultConfigFile, which may be absent. An
// explicitly named file must exist.
func Resolve(configPath string, o Overrides) (*Config, error) {
	LoadEnvFiles()

	cfg := Default()
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}
	if _, err := os.Stat(configPath); err == nil || explicit {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	cfg.apply(o)

	color, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	cfg.Color = color

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.absolutize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.Name != nil {
		c.Name = *o.Name
	}
	setString(&c.Color, o.Color)
	setString(&c.InputDir, o.InputDir)
	setString(&c.OutputDir, o.OutputDir)
	setString(&c.Page.Mode, o.Mode)
	setString(&c.Toolchain.SDKRoot, o.SDKRoot)
	setString(&c.Toolchain.Compiler, o.Compiler)
	setString(&c.Resources.Dir, o.ResourcesDir)
	c.NoBuild = c.NoBuild || o.NoBuild
	c.NoClean = c.NoClean || o.NoClean
	c.Page.Strict = c.Page.Strict || o.Strict
	c.Resources.Pack = c.Resources.Pack || o.Pack
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks fields that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Toolchain.Compiler == "" {
		return errors.ValidationError("toolchain compiler must not be empty").Build()
	}
	if c.Toolchain.SDKRoot == "" {
		return errors.ValidationError("toolchain sdk_root must not be empty").Build()
	}
	if c.Toolchain.MemoryBytes <= 0 {
		return errors.ValidationError("toolchain memory_bytes must be positive").
			WithContext("memory_bytes", c.Toolchain.MemoryBytes).
			Build()
	}
	if c.Resources.Pack && c.Resources.Dir == "" {
		return errors.ValidationError("resources dir must not be empty when packing").Build()
	}
	return nil
}

func (c *Config) absolutize() error {
	for _, p := range []*string{&c.InputDir, &c.OutputDir} {
		if *p == "" {
			*p = "."
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "cannot resolve directory").
				WithContext("path", *p).
				Build()
		}
		*p = abs
	}
	if c.Resources.StripPrefix == "" {
		c.Resources.StripPrefix = c.InputDir
		return nil
	}
	abs, err := filepath.Abs(c.Resources.StripPrefix)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "cannot resolve resources strip_prefix").
			WithContext("path", c.Resources.StripPrefix).
			Build()
	}
	c.Resources.StripPrefix = abs
	return nil
}
