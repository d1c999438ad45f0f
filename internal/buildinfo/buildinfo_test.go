package buildinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryUsesInjectedValues(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v1.2.3", "abc123", "2024-05-01"
	require.Equal(t, "v1.2.3 (abc123 2024-05-01)", Summary())

	Version = ""
	require.True(t, strings.HasPrefix(Summary(), "dev"))
}
