package watch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterIgnore(t *testing.T) {
	in := filepath.Join(string(filepath.Separator), "games", "asteroids")
	out := filepath.Join(in, "web")
	f := NewFilter(out)

	tests := []struct {
		name   string
		path   string
		ignore bool
	}{
		{"source file", filepath.Join(in, "main.c"), false},
		{"header", filepath.Join(in, "functions.h"), false},
		{"resource", filepath.Join(in, "resources", "ship.png"), false},
		{"hidden file", filepath.Join(in, ".main.c.swp"), true},
		{"hidden dir", filepath.Join(in, ".git"), true},
		{"vim swap", filepath.Join(in, "main.c.swp"), true},
		{"backup", filepath.Join(in, "main.c~"), true},
		{"emacs autosave", filepath.Join(in, "#main.c#"), true},
		{"vim probe", filepath.Join(in, "4913"), true},
		{"artifact html", filepath.Join(out, "game.html"), true},
		{"artifact js", filepath.Join(out, "game.js"), true},
		{"artifact wasm", filepath.Join(out, "game.wasm"), true},
		{"artifact data", filepath.Join(out, "game.data"), true},
		{"other file in output", filepath.Join(out, "index.html"), false},
		{"game.html outside output", filepath.Join(in, "game.html"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ignore, f.Ignore(tt.path))
		})
	}
}

func TestFilterIgnore_OutputEqualsInput(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "games", "pong")
	f := NewFilter(dir)

	assert.True(t, f.Ignore(filepath.Join(dir, "game.html")))
	assert.True(t, f.Ignore(filepath.Join(dir, "game.wasm")))
	assert.False(t, f.Ignore(filepath.Join(dir, "main.c")))
}
