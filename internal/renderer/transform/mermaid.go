// Package transform holds goldmark hooks that change how fenced code renders.
package transform

import (
	"bytes"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const mermaidLanguage = "mermaid"

// MermaidWrapper returns a wrapper renderer that emits ```mermaid fences as
// <div class="mermaid"> for client-side hydration. Other fences that the
// highlighter could not tokenize get a plain <pre><code> wrapper carrying
// their language class.
func MermaidWrapper() highlighting.WrapperRenderer {
	return func(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
		if ctx.Highlighted() {
			return
		}

		lang, _ := ctx.Language()
		if isMermaid(lang) {
			writeMermaid(w, entering)
			return
		}
		writePlain(w, lang, entering)
	}
}

// FencedCodeRenderer renders fenced code when highlighting is disabled:
// ```mermaid fences become <div class="mermaid"> as they do under
// MermaidWrapper, other fences a <pre><code> carrying their language class.
type FencedCodeRenderer struct{}

// NewFencedCodeRenderer returns a renderer for ast.KindFencedCodeBlock.
func NewFencedCodeRenderer() renderer.NodeRenderer {
	return &FencedCodeRenderer{}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *FencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *FencedCodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block, ok := node.(*ast.FencedCodeBlock)
	if !ok {
		return ast.WalkContinue, nil
	}

	lang := block.Language(source)
	wrap := writePlain
	if isMermaid(lang) {
		wrap = func(w util.BufWriter, _ []byte, entering bool) { writeMermaid(w, entering) }
	}
	wrap(w, lang, true)
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	wrap(w, lang, false)
	return ast.WalkSkipChildren, nil
}

func isMermaid(lang []byte) bool {
	return strings.EqualFold(strings.TrimSpace(string(lang)), mermaidLanguage)
}

func writeMermaid(w util.BufWriter, entering bool) {
	if entering {
		_, _ = w.WriteString(`<div class="mermaid">`)
		return
	}
	_, _ = w.WriteString("</div>\n")
}

func writePlain(w util.BufWriter, lang []byte, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	_, _ = w.WriteString("<pre><code")
	if lang = bytes.TrimSpace(lang); len(lang) > 0 {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML(lang))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}
