package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nkey: value\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestSplit_LeadingBOMIsIgnored(t *testing.T) {
	fm, body, had, err := Split(append([]byte{0xEF, 0xBB, 0xBF}, []byte("---\na: b\n---\nbody")...))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("a: b\n"), fm)
	require.Equal(t, []byte("body"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	for _, input := range []string{
		"---\nkey: value\n# Title\n",
		"---\n",
		"---",
	} {
		_, _, had, err := Split([]byte(input))
		require.ErrorIs(t, err, ErrMissingClosingDelimiter, "input %q", input)
		require.False(t, had)
	}
}

func TestSplit_DelimiterMustBeWholeLine(t *testing.T) {
	input := []byte("--- not front matter\n---\n")

	_, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Equal(t, input, body)
}

func TestParse_DecodesScalarsAndLists(t *testing.T) {
	input := []byte("---\n" +
		"title: Hello World\n" +
		"template: home\n" +
		"draft: true\n" +
		"date: 2024-01-02\n" +
		"summary:\n" +
		"tags:\n  - go\n  - web\n" +
		"---\n# Hi\n")

	m, body, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, []byte("# Hi\n"), body)
	require.Equal(t, "Hello World", m.Title())
	require.Equal(t, "home", m.Template())
	require.Equal(t, "true", m.Fields["draft"])
	require.Equal(t, "2024-01-02", m.Fields["date"])
	require.Equal(t, "", m.Fields["summary"])
	require.Equal(t, []string{"go", "web"}, m.Fields["tags"])
}

func TestParse_LayoutIsTemplateAlias(t *testing.T) {
	m, _, err := Parse([]byte("---\nlayout: post\n---\n"))
	require.NoError(t, err)
	require.Equal(t, "post", m.Template())
}

func TestParse_NoFrontmatter_EmptyFields(t *testing.T) {
	m, body, err := Parse([]byte("# Plain\n"))
	require.NoError(t, err)
	require.NotNil(t, m.Fields)
	require.Empty(t, m.Fields)
	require.Equal(t, "", m.Template())
	require.Equal(t, []byte("# Plain\n"), body)
}

func TestParse_Unterminated_ReturnsError(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: x\n# body\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestParse_InvalidYAML_ReturnsError(t *testing.T) {
	_, _, err := Parse([]byte("---\ntitle: [unclosed\n---\n"))
	require.Error(t, err)
}

func TestDecode_RejectsNonMapping(t *testing.T) {
	_, err := Decode([]byte("- a\n- b\n"))
	require.ErrorIs(t, err, ErrNotMapping)
}

func TestDecode_RejectsNestedMaps(t *testing.T) {
	_, err := Decode([]byte("author:\n  name: x\n"))
	require.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Decode([]byte("matrix:\n  - [1, 2]\n"))
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestDecode_EmptyAndCommentOnly(t *testing.T) {
	fields, err := Decode(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	fields, err = Decode([]byte("# just a comment\n"))
	require.NoError(t, err)
	require.Empty(t, fields)
}
