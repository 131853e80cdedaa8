package page

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/logfields"
)

// HiddenStyle is the inline style applied to hidden widgets.
const HiddenStyle = "display: none;"

// staticHead is appended to the head after the generated title.
const staticHead = `<meta charset="utf-8"/>` +
	`<meta content="text/html; charset=utf-8" http-equiv="Content-Type"/>` +
	`<meta content="width=device-width" name="viewport"/>`

// Options configures a Transformer.
type Options struct {
	Mode   Mode
	Title  string
	Color  string // normalized "#RRGGBB"
	Policy MissingPolicy
	Logger *slog.Logger
}

// Result describes what a transformation did.
type Result struct {
	Mode    Mode
	Applied []string
	Skipped []*MissingElementError
}

// Transformer applies the configured edit set to shell pages.
type Transformer struct {
	opts   Options
	logger *slog.Logger
}

// NewTransformer validates opts and returns a Transformer.
func NewTransformer(opts Options) (*Transformer, error) {
	if opts.Mode == "" {
		opts.Mode = ModeFullHead
	}
	if opts.Mode != ModeFullHead && opts.Mode != ModeMinimal {
		return nil, errors.ValidationError("unknown page mode").
			WithContext("mode", string(opts.Mode)).
			Build()
	}
	if opts.Color == "" {
		return nil, errors.ValidationError("background color is required").Build()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{opts: opts, logger: logger}, nil
}

// BodyStyle returns the inline body style used by ModeMinimal.
func BodyStyle(color string) string {
	return "background-color: " + color + ";"
}

// HeadStyle returns the stylesheet injected by ModeFullHead.
func HeadStyle(color string) string {
	return "body{font-family: arial; margin: 0; padding: none; background-color: " + color + "}" +
		".emscripten{padding-right: 0; margin-left: auto; margin-right: auto; display: block}" +
		"div.emscripten{text-align: center}" +
		"div.emscripten_border{border: none;}" +
		"canvas.emscripten{border: 0 none; background: #000; width: min(100vw, 100vh);}"
}

// Transform edits doc in place.
func (t *Transformer) Transform(doc *Document) (*Result, error) {
	res := &Result{Mode: t.opts.Mode}

	var err error
	switch t.opts.Mode {
	case ModeMinimal:
		err = t.minimal(doc, res)
	default:
		err = t.fullHead(doc, res)
	}
	return res, err
}

func (t *Transformer) fullHead(doc *Document, res *Result) error {
	steps := []struct {
		selector string
		edit     string
		apply    func(*html.Node) error
	}{
		{"head", "replace head", func(head *html.Node) error {
			ClearChildren(head)
			title := NewElement("title")
			SetText(title, t.opts.Title)
			head.AppendChild(title)
			if err := AppendFragment(head, staticHead); err != nil {
				return err
			}
			style := NewElement("style")
			SetText(style, HeadStyle(t.opts.Color))
			head.AppendChild(style)
			return nil
		}},
		{"div", "hide status div", func(n *html.Node) error {
			SetAttr(n, "style", HiddenStyle)
			return nil
		}},
		{"textarea", "hide output textarea", func(n *html.Node) error {
			SetAttr(n, "style", HiddenStyle)
			return nil
		}},
		{"a", "remove attribution link", func(n *html.Node) error {
			Remove(n)
			return nil
		}},
	}

	for _, s := range steps {
		if err := t.apply(doc, res, s.selector, s.edit, s.apply); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transformer) minimal(doc *Document, res *Result) error {
	if err := t.apply(doc, res, "title", "set title", func(n *html.Node) error {
		SetText(n, t.opts.Title)
		return nil
	}); err != nil {
		return err
	}
	return t.apply(doc, res, "body", "set background color", func(n *html.Node) error {
		SetAttr(n, "style", BodyStyle(t.opts.Color))
		return nil
	})
}

// apply looks up selector and runs fn on the match, honouring the missing-element policy.
func (t *Transformer) apply(doc *Document, res *Result, selector, edit string, fn func(*html.Node) error) error {
	n, ok := doc.First(selector)
	if !ok {
		missing := &MissingElementError{Selector: selector, Edit: edit}
		if t.opts.Policy == FailOnMissing {
			return errors.WrapError(missing, errors.CategoryArtifact, "malformed artifact").
				WithContext("selector", selector).
				Build()
		}
		t.logger.Warn("Expected element not found; skipping edit",
			logfields.Selector(selector),
			slog.String("edit", edit))
		res.Skipped = append(res.Skipped, missing)
		return nil
	}
	if err := fn(n); err != nil {
		return errors.WrapError(err, errors.CategoryArtifact, "apply page edit").
			WithContext("selector", selector).
			Build()
	}
	res.Applied = append(res.Applied, edit)
	return nil
}

// TransformReader parses r, transforms it and writes the rendered page to w.
func (t *Transformer) TransformReader(r io.Reader, w io.Writer) (*Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryArtifact, "failed to parse HTML").Build()
	}
	res, err := t.Transform(doc)
	if err != nil {
		return res, err
	}
	if err := doc.Render(w); err != nil {
		return res, errors.WrapError(err, errors.CategoryArtifact, "failed to render HTML").Build()
	}
	return res, nil
}

// TransformFile rewrites the page at path in place, keeping its permissions.
func (t *Transformer) TransformFile(path string) (*Result, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryArtifact, "HTML artifact not found").
			WithContext("path", path).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read HTML artifact").
			WithContext("path", path).
			Build()
	}

	var out bytes.Buffer
	res, err := t.TransformReader(bytes.NewReader(data), &out)
	if err != nil {
		return res, withPath(err, path)
	}

	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to write HTML artifact").
			WithContext("path", path).
			Build()
	}

	t.logger.Info("Page transformed",
		logfields.Path(path),
		logfields.Mode(string(res.Mode)),
		slog.Int("applied", len(res.Applied)),
		slog.Int("skipped", len(res.Skipped)))
	if len(res.Skipped) > 0 {
		t.logger.Debug("Skipped page edits", slog.String("selectors", skippedSelectors(res)))
	}
	return res, nil
}

func withPath(err error, path string) error {
	if classified, ok := errors.AsClassified(err); ok {
		return classified.WithContext("path", path)
	}
	return err
}

func skippedSelectors(res *Result) string {
	sel := make([]string, 0, len(res.Skipped))
	for _, m := range res.Skipped {
		sel = append(sel, m.Selector)
	}
	return strings.Join(sel, ",")
}
