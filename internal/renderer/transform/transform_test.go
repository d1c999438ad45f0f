package transform

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	d2renderer "github.com/euforicio/mdsite/internal/renderer/d2"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func convert(ctx context.Context, t *testing.T, md goldmark.Markdown, src string) string {
	t.Helper()
	var buf bytes.Buffer
	pc := WithRequestContext(ctx, parser.NewContext())
	require.NoError(t, md.Convert([]byte(src), &buf, parser.WithContext(pc)))
	return buf.String()
}

func TestRequestContextDefaultsToBackground(t *testing.T) {
	t.Parallel()
	require.Equal(t, context.Background(), requestContext(nil))
	require.Equal(t, context.Background(), requestContext(parser.NewContext()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Equal(t, ctx, requestContext(WithRequestContext(ctx, parser.NewContext())))
}

func TestD2TransformerUsesRenderContext(t *testing.T) {
	t.Parallel()
	logger := quietLogger()
	md := goldmark.New(
		goldmark.WithParserOptions(parser.WithASTTransformers(
			util.Prioritized(NewD2Transformer(d2renderer.New(logger, 0), logger), 200),
		)),
		goldmark.WithRendererOptions(renderer.WithNodeRenderers(
			util.Prioritized(NewD2BlockRenderer(), 100),
		)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := convert(ctx, t, md, "```d2\na -> b\n```\n")
	require.Equal(t, "<div class=\"d2-block\"><div class=\"d2-error\">context canceled</div></div>\n", out)
}

func TestFencedCodeRenderer(t *testing.T) {
	t.Parallel()
	md := goldmark.New(goldmark.WithRendererOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewFencedCodeRenderer(), 200),
	)))

	out := convert(context.Background(), t, md, "```mermaid\nA-->B\n```\n\n```go\nx := \"<\"\n```\n\n```\nplain\n```\n")
	require.Equal(t,
		"<div class=\"mermaid\">A--&gt;B\n</div>\n"+
			"<pre><code class=\"language-go\">x := &quot;&lt;&quot;\n</code></pre>\n"+
			"<pre><code>plain\n</code></pre>\n",
		out)
}
