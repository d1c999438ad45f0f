package d2

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderEmptyDiagram(t *testing.T) {
	t.Parallel()
	_, err := New(nil, 0).Render(context.Background(), "  \n")
	require.ErrorIs(t, err, ErrEmptyDiagram)
}

func TestRenderProducesSVG(t *testing.T) {
	t.Parallel()
	svg, err := New(nil, 0).Render(context.Background(), "a -> b\n")
	require.NoError(t, err)
	require.Contains(t, svg, "<svg")
}

func TestRenderStopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, 0).Render(ctx, "a -> b\n")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLayoutResolverRejectsUnknownEngine(t *testing.T) {
	t.Parallel()
	_, err := layoutResolver("tala")
	require.Error(t, err)

	layout, err := layoutResolver("")
	require.NoError(t, err)
	require.NotNil(t, layout)
}
