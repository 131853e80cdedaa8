package toolchain

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
)

// EmbedFlag is the emcc option used to bundle one asset into the build.
const EmbedFlag = "--embed-file"

// Resource maps an asset on disk to its path inside the emscripten filesystem.
type Resource struct {
	Source string
	Target string
}

// Arg renders the resource as emcc's "source@target" form. A literal '@' is
// written as "@@".
func (r Resource) Arg() string {
	return escapeAt(filepath.ToSlash(r.Source)) + "@" + escapeAt(r.Target)
}

func escapeAt(s string) string {
	return strings.ReplaceAll(s, "@", "@@")
}

// DiscoverResources walks root recursively and returns one Resource per regular
// file, in lexical order. Targets are the file paths relative to stripPrefix,
// slash separated. Hidden files and directories are skipped. A missing root
// yields no resources.
func DiscoverResources(root, stripPrefix string) ([]Resource, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot read resources directory").
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ValidationError("resources path is not a directory").
			WithContext("path", root).
			Build()
	}

	var out []Resource
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(stripPrefix, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.ValidationError("resource is outside the strip prefix").
				WithContext("path", p).
				WithContext("strip_prefix", stripPrefix).
				Build()
		}
		out = append(out, Resource{Source: p, Target: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk resources directory").
			WithContext("path", root).
			Build()
	}
	return out, nil
}
