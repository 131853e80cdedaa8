package watch

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/raywasm/internal/config"
)

// artifactPrefix matches game.html and the game.js/game.wasm/game.data files
// emcc writes next to it.
var artifactPrefix = strings.TrimSuffix(config.ArtifactFile, filepath.Ext(config.ArtifactFile)) + "."

// Filter decides which filesystem events trigger a rebuild.
type Filter struct {
	outputDir string
}

// NewFilter returns a Filter that ignores the build outputs in outputDir.
func NewFilter(outputDir string) *Filter {
	return &Filter{outputDir: filepath.Clean(outputDir)}
}

// Ignore returns true for paths that must not trigger a rebuild.
func (f *Filter) Ignore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if base == "Thumbs.db" || base == "4913" { // 4913 is vim's write probe
		return true
	}

	// Our own outputs would otherwise retrigger the build forever.
	if filepath.Dir(filepath.Clean(path)) == f.outputDir && strings.HasPrefix(base, artifactPrefix) {
		return true
	}
	return false
}
