// Package renderer converts markdown bodies to HTML fragments.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/anchor"

	d2renderer "github.com/euforicio/mdsite/internal/renderer/d2"
	"github.com/euforicio/mdsite/internal/renderer/transform"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github-dark"

// Options control which markdown features are enabled.
type Options struct {
	// Diagrams compiles ```d2 fences to inline SVG when non-nil.
	Diagrams *d2renderer.Renderer
	// HighlightStyle names the chroma style for fenced code. Empty disables
	// highlighting.
	HighlightStyle string
	HeadingIDs     bool
	Anchors        bool
	// Unsafe lets raw HTML in the source through to the output.
	Unsafe bool
}

// Service renders markdown into HTML.
// It uses Goldmark with GitHub-flavored markdown extensions, optional syntax
// highlighting, and rewriting of relative .md links to their .html outputs.
// A Service holds no per-document state and is reused across a build.
type Service struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewService constructs a markdown renderer. If logger is nil, the default
// slog logger is used.
func NewService(logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "renderer")

	extensions := []goldmark.Extender{extension.GFM}
	if opts.HighlightStyle != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
			highlighting.WithFormatOptions(
				html.WithLineNumbers(false),
				html.WithClasses(true),
			),
			highlighting.WithWrapperRenderer(transform.MermaidWrapper()),
		))
	}
	if opts.Anchors {
		extensions = append(extensions, &anchor.Extender{
			Position: anchor.After,
		})
	}

	transformers := []util.PrioritizedValue{
		util.Prioritized(&linkTransformer{}, 100),
	}
	if opts.Diagrams != nil {
		transformers = append(transformers, util.Prioritized(transform.NewD2Transformer(opts.Diagrams, logger), 200))
	}

	parserOpts := []parser.Option{
		parser.WithAttribute(),
		parser.WithASTTransformers(transformers...),
	}
	// Anchors need ids to link to.
	if opts.HeadingIDs || opts.Anchors {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	rendererOpts := []renderer.Option{
		htmlrenderer.WithXHTML(),
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, htmlrenderer.WithUnsafe())
	}
	var nodeRenderers []util.PrioritizedValue
	if opts.HighlightStyle == "" {
		// The highlighter owns fenced code otherwise.
		nodeRenderers = append(nodeRenderers, util.Prioritized(transform.NewFencedCodeRenderer(), 200))
	}
	if opts.Diagrams != nil {
		nodeRenderers = append(nodeRenderers, util.Prioritized(transform.NewD2BlockRenderer(), 100))
	}
	if len(nodeRenderers) > 0 {
		rendererOpts = append(rendererOpts, renderer.WithNodeRenderers(nodeRenderers...))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	return &Service{
		md:     md,
		logger: logger,
	}
}

// Render converts a markdown body to an HTML fragment. relPath identifies the
// document in log output.
func (s *Service) Render(ctx context.Context, relPath string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	pc := transform.WithRequestContext(ctx, parser.NewContext())
	if err := s.md.Convert(body, buf, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.logger.Debug("rendered markdown", slog.String("path", relPath), slog.Int("bytes", buf.Len()))
	return buf.String(), nil
}

// WriteStyleCSS writes the stylesheet matching the classes emitted for the
// named chroma style.
func WriteStyleCSS(w io.Writer, style string) error {
	if style == "" {
		style = DefaultHighlightStyle
	}
	st, ok := styles.Registry[style]
	if !ok {
		return fmt.Errorf("unknown highlight style %q", style)
	}
	formatter := html.New(
		html.WithClasses(true),
	)
	if err := formatter.WriteCSS(w, st); err != nil {
		return fmt.Errorf("write chroma css: %w", err)
	}
	return nil
}
