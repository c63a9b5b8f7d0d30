package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToMarkdown(t *testing.T) {
	r, err := NewRenderer(40)
	require.NoError(t, err)

	require.Empty(t, r.ToMarkdown("   "))

	rendered := r.ToMarkdown("Hello **world**")
	require.Contains(t, rendered, "Hello")
	require.Contains(t, rendered, "world")
	require.NotContains(t, rendered, "**")
	require.False(t, strings.HasPrefix(rendered, "\n"))

	require.Equal(t, rendered, r.ToMarkdown("Hello **world**"))
	require.Len(t, r.cache, 2)
}
