package builderr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesKindPathAndCause(t *testing.T) {
	err := Parse("split front matter", "posts/a.md", errors.New("missing closing delimiter"))
	require.Equal(t, "parse error: posts/a.md: split front matter: missing closing delimiter", err.Error())
}

func TestKindOf_FindsClassificationThroughWrapping(t *testing.T) {
	inner := IO("read", "index.md", fs.ErrPermission)
	wrapped := fmt.Errorf("build: %w", inner)

	require.Equal(t, KindIO, KindOf(wrapped))
	require.True(t, Is(wrapped, KindIO))
	require.False(t, Is(wrapped, KindParse))
	require.ErrorIs(t, wrapped, fs.ErrPermission)
}

func TestKindOf_UnclassifiedIsEmpty(t *testing.T) {
	require.Equal(t, Kind(""), KindOf(errors.New("plain")))
	require.False(t, Is(nil, KindIO))
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("plain"), ExitUnclassified},
		{Config("output root %q contains content root", "/x"), ExitConfig},
		{IO("write", "a.html", fs.ErrPermission), ExitIO},
		{Parse("decode front matter", "a.md", errors.New("bad")), ExitParse},
		{Template("render", "a.md", errors.New("missing")), ExitTemplate},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ExitCode(tc.err), "err: %v", tc.err)
	}
}
