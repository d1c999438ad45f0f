package renderer

import (
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkTransformer rewrites relative links to markdown sources so they point at
// the generated .html files.
type linkTransformer struct{}

func (t *linkTransformer) Transform(node *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(RewriteLink(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// RewriteLink maps a link destination to its output form. Relative links to
// .md or .markdown files become .html links; everything else is returned
// unchanged.
func RewriteLink(dest string) string {
	if dest == "" || strings.HasPrefix(dest, "#") || isExternalLink(dest) {
		return dest
	}

	target, suffix := dest, ""
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		target, suffix = dest[:i], dest[i:]
	}

	ext := path.Ext(target)
	if !isMarkdownExt(ext) {
		return dest
	}
	return strings.TrimSuffix(target, ext) + ".html" + suffix
}

// isMarkdownExt reports whether ext (including the dot) marks a markdown source.
func isMarkdownExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

func isExternalLink(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	scheme, _, ok := strings.Cut(dest, ":")
	if !ok || scheme == "" {
		return false
	}
	// A colon before any slash means a URL scheme such as https: or mailto:.
	return !strings.Contains(scheme, "/")
}
