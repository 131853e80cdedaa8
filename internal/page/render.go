package page

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// indentUnit is written once per nesting level.
const indentUnit = " "

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Raw text elements: the parser keeps their content as one unescaped text node.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"noembed": true, "noframes": true, "xmp": true,
}

// Content of these elements is written on the tag's line, never trimmed.
var verbatimElements = map[string]bool{
	"title": true, "textarea": true, "pre": true,
}

// Render writes the document with one element per line, indented by depth.
//
// Whitespace-only text between elements is dropped, so rendering a page parsed
// from previous Render output yields the same layout. Elements whose children
// are all text keep that text on the tag's line unchanged, and title text is
// never trimmed, even when it is empty or only whitespace.
func (d *Document) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, 0)
	}
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

// String renders the document, returning "" on write failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

type printer struct {
	w   *bufio.Writer
	err error
}

func (p *printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = p.w.WriteString(s)
}

func (p *printer) line(depth int, s string) {
	p.write(strings.Repeat(indentUnit, depth))
	p.write(s)
	p.write("\n")
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DoctypeNode:
		var b strings.Builder
		if err := html.Render(&b, n); err != nil {
			p.err = err
			return
		}
		p.line(depth, b.String())
	case html.CommentNode:
		p.line(depth, "<!--"+n.Data+"-->")
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			p.line(depth, html.EscapeString(text))
		}
	case html.ElementNode:
		p.element(n, depth)
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.node(c, depth)
		}
	}
}

func (p *printer) element(n *html.Node, depth int) {
	open := startTag(n)
	if voidElements[n.Data] {
		p.line(depth, strings.TrimSuffix(open, ">")+"/>")
		return
	}
	closeTag := "</" + n.Data + ">"

	if rawTextElements[n.Data] || verbatimElements[n.Data] {
		p.line(depth, open+verbatimContent(n)+closeTag)
		return
	}

	if n.FirstChild == nil {
		p.line(depth, open+closeTag)
		return
	}

	if text, ok := inlineText(n); ok {
		p.line(depth, open+html.EscapeString(text)+closeTag)
		return
	}

	p.line(depth, open)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, depth+1)
	}
	p.line(depth, closeTag)
}

// inlineText returns the text of an element whose children are only text nodes
// carrying at least one non-space character.
func inlineText(n *html.Node) (string, bool) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", false
		}
		b.WriteString(c.Data)
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func verbatimContent(n *html.Node) string {
	var b strings.Builder
	raw := rawTextElements[n.Data]
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if raw {
				b.WriteString(c.Data)
			} else {
				b.WriteString(html.EscapeString(c.Data))
			}
			continue
		}
		_ = html.Render(&b, c)
	}
	content := b.String()
	// The parser drops one leading newline inside pre and textarea.
	if (n.Data == "pre" || n.Data == "textarea") && strings.HasPrefix(content, "\n") {
		content = "\n" + content
	}
	return content
}

func startTag(n *html.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteString(" ")
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteString(":")
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}
