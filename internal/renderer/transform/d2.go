package transform

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	d2renderer "github.com/euforicio/mdsite/internal/renderer/d2"
)

const d2Language = "d2"

var requestContextKey = parser.NewContextKey()

// WithRequestContext stores ctx in pc so diagram compilation stops when the
// render that parses the document is cancelled.
func WithRequestContext(ctx context.Context, pc parser.Context) parser.Context {
	pc.Set(requestContextKey, ctx)
	return pc
}

func requestContext(pc parser.Context) context.Context {
	if pc != nil {
		if ctx, ok := pc.Get(requestContextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// D2Transformer replaces fenced ```d2 blocks with rendered diagram nodes.
type D2Transformer struct {
	renderer *d2renderer.Renderer
	logger   *slog.Logger
}

// NewD2Transformer constructs an AST transformer. A nil renderer makes the
// transformer a no-op.
func NewD2Transformer(renderer *d2renderer.Renderer, logger *slog.Logger) parser.ASTTransformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &D2Transformer{
		renderer: renderer,
		logger:   logger,
	}
}

// Transform implements parser.ASTTransformer.
func (t *D2Transformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	if t.renderer == nil || node == nil {
		return
	}
	t.walk(requestContext(pc), node, reader)
}

func (t *D2Transformer) walk(ctx context.Context, parent ast.Node, reader text.Reader) {
	for child := parent.FirstChild(); child != nil; {
		next := child.NextSibling()

		if block, ok := child.(*ast.FencedCodeBlock); ok && isD2Block(block, reader.Source()) {
			replacement := t.renderBlock(ctx, block, reader)
			replacement.SetBlankPreviousLines(block.HasBlankPreviousLines())
			parent.ReplaceChild(parent, block, replacement)
			child = next
			continue
		}

		if child.HasChildren() {
			t.walk(ctx, child, reader)
		}
		child = next
	}
}

func (t *D2Transformer) renderBlock(ctx context.Context, block *ast.FencedCodeBlock, reader text.Reader) *D2Block {
	source := blockSource(block, reader)
	svg, err := t.renderer.Render(ctx, source)
	if err != nil {
		t.logger.Warn("d2 render failed", slog.Any("err", err))
		return &D2Block{Source: source, Error: err.Error()}
	}
	return &D2Block{Source: source, SVG: svg}
}

func isD2Block(block *ast.FencedCodeBlock, source []byte) bool {
	lang := strings.TrimSpace(string(block.Language(source)))
	return strings.EqualFold(lang, d2Language)
}

func blockSource(block *ast.FencedCodeBlock, reader text.Reader) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(reader.Source()))
	}
	return buf.String()
}

// D2Block is a compiled diagram, or the error that prevented compiling it.
type D2Block struct {
	ast.BaseBlock
	Source string
	SVG    string
	Error  string
}

// KindD2Block is the node kind of D2Block.
var KindD2Block = ast.NewNodeKind("D2Block")

// Kind implements ast.Node.
func (b *D2Block) Kind() ast.NodeKind {
	return KindD2Block
}

// IsRaw implements ast.Node.
func (b *D2Block) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (b *D2Block) Dump(source []byte, level int) {
	info := map[string]string{
		"Source": fmt.Sprintf("%d bytes", len(b.Source)),
	}
	if b.Error != "" {
		info["Error"] = fmt.Sprintf("%q", b.Error)
	}
	ast.DumpHelper(b, source, level, info, nil)
}

// D2BlockRenderer writes D2Block nodes as HTML.
type D2BlockRenderer struct{}

// NewD2BlockRenderer returns a renderer for D2 nodes.
func NewD2BlockRenderer() renderer.NodeRenderer {
	return &D2BlockRenderer{}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *D2BlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindD2Block, r.renderD2Block)
}

func (r *D2BlockRenderer) renderD2Block(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	block, ok := node.(*D2Block)
	if !ok {
		return ast.WalkContinue, nil
	}

	body := block.SVG
	if block.Error != "" {
		body = `<div class="d2-error">` + html.EscapeString(block.Error) + `</div>`
	}
	if _, err := w.WriteString(`<div class="d2-block">` + body + "</div>\n"); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
