package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables consulted after the config file and before CLI flags.
const (
	EnvSDKRoot  = "RAYWASM_SDK_ROOT"
	EnvCompiler = "RAYWASM_COMPILER"
	EnvMemory   = "RAYWASM_MEMORY_BYTES"
	EnvLogLevel = "RAYWASM_LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads .env and .env.local from the working directory when present.
// Variables already set in the process environment are never overwritten.
func LoadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "path", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", name)
	}
}

// ApplyEnv overlays RAYWASM_* environment variables onto c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSDKRoot); v != "" {
		c.Toolchain.SDKRoot = v
	}
	if v := os.Getenv(EnvCompiler); v != "" {
		c.Toolchain.Compiler = v
	}
	if v := os.Getenv(EnvMemory); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			slog.Warn("Ignoring invalid memory size", "env", EnvMemory, "value", v)
			return
		}
		c.Toolchain.MemoryBytes = n
	}
}
