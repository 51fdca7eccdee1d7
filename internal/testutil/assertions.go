package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogContains checks the captured output within a HarnessResult for a
// substring, with a readable failure message.
func AssertLogContains(t *testing.T, result *HarnessResult, substring string) {
	t.Helper()

	require.True(t,
		strings.Contains(result.LogOutput, substring),
		"expected output to contain %q, got:\n%s", substring, result.LogOutput,
	)
}
