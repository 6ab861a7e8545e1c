package extract

import (
	"io"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
)

// ExtractMarkdownFile extracts all link destinations from a Markdown file.
// Used when the include patterns select markdown sources alongside the
// generated HTML tree.
func ExtractMarkdownFile(mdPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(mdPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open markdown file").WithContext("path", mdPath)
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractMarkdown(file, mdPath)
}

// ExtractMarkdown parses Markdown from r and returns every link, image,
// and autolink destination, classified by the same rules as HTML hrefs.
// Reference-style links are resolved by goldmark to their destinations;
// reference definitions are also reported from the parse context so a
// definition pointing at a missing target is caught even when unused.
func ExtractMarkdown(r io.Reader, sourceFile string) ([]Link, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read markdown").WithContext("path", sourceFile)
	}

	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	appendDest := func(dest, label string) {
		if dest == "" || hasScheme(dest, hrefSchemesSkipped) || hasScheme(dest, srcSchemesSkipped) {
			return
		}
		if label == "" {
			label = dest
		}
		links = append(links, Link{
			Href:       dest,
			Text:       label,
			SourceFile: sourceFile,
			Type:       Classify(dest),
		})
	}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			appendDest(string(node.URL(body)), "")
		case *gmast.Image:
			appendDest(string(node.Destination), string(node.Title))
		case *gmast.Link:
			appendDest(string(node.Destination), nodeText(node, body))
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not the AST.
	for _, ref := range ctx.References() {
		appendDest(string(ref.Destination()), string(ref.Label()))
	}

	return links, nil
}

// nodeText collects the plain text content of an inline node.
func nodeText(n gmast.Node, source []byte) string {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
		}
	}
	return string(out)
}
