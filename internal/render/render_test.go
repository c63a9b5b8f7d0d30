package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/spec"
)

func newRenderer() *Renderer {
	return New(catalog.Default(), nil)
}

func compile(t *testing.T, lines ...string) *spec.Spec {
	t.Helper()
	compiler := spec.NewCompiler()
	compiler.Push(strings.Join(lines, "\n") + "\n")
	require.Zero(t, compiler.Stats().Dropped)
	return spec.Normalize(compiler.Result())
}

func requireOrder(t *testing.T, out string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		i := strings.Index(out, part)
		require.Greater(t, i, last, "%q out of order in:\n%s", part, out)
		last = i
	}
}

func TestRenderEmpty(t *testing.T) {
	require.Equal(t, "", newRenderer().Render(nil))
	require.Equal(t, "", newRenderer().Render(spec.New()))
}

func TestRenderCard(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"card"}`,
		`{"op":"element","id":"card","type":"Card","props":{"title":"Weather"}}`,
		`{"op":"element","id":"h","type":"Heading","props":{"text":"Paris","level":2}}`,
		`{"op":"element","id":"p","type":"Paragraph","props":{"text":"Sunny, 21°C"}}`,
		`{"op":"element","id":"b","type":"Button","props":{"label":"Refresh"}}`,
		`{"op":"append-child","parent":"card","child":"h"}`,
		`{"op":"append-child","parent":"card","child":"p"}`,
		`{"op":"append-child","parent":"card","child":"b"}`,
	)
	out := newRenderer().Render(s)
	require.Contains(t, out, "╭")
	require.Contains(t, out, "╯")
	requireOrder(t, out, "Weather", "Paris", "Sunny, 21°C", "[ Refresh ]")
}

func TestRenderHeadingLevels(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"c"}`,
		`{"op":"element","id":"c","type":"Column","children":["a","b"]}`,
		`{"op":"element","id":"a","type":"Heading","props":{"text":"Title"}}`,
		`{"op":"element","id":"b","type":"Heading","props":{"text":"Subtitle","level":3}}`,
	)
	out := newRenderer().Render(s)
	requireOrder(t, out, "TITLE", "Subtitle")
}

func TestRenderSkipsUnknownAndDangling(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"c"}`,
		`{"op":"element","id":"c","type":"Column","children":["x","ghost","p"]}`,
		`{"op":"element","id":"x","type":"Carousel","props":{"text":"hidden"}}`,
		`{"op":"element","id":"p","type":"Paragraph","props":{"text":"shown"}}`,
	)
	out := newRenderer().Render(s)
	require.Equal(t, "shown", strings.TrimSpace(out))
}

func TestRenderUnknownRoot(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"x"}`,
		`{"op":"element","id":"x","type":"Carousel"}`,
	)
	require.Equal(t, "", newRenderer().Render(s))
}

func TestRenderCycle(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"a"}`,
		`{"op":"element","id":"a","type":"Column","children":["p","b"]}`,
		`{"op":"element","id":"b","type":"Column","children":["a","q"]}`,
		`{"op":"element","id":"p","type":"Paragraph","props":{"text":"outer"}}`,
		`{"op":"element","id":"q","type":"Paragraph","props":{"text":"inner"}}`,
	)
	out := newRenderer().Render(s)
	require.Equal(t, 1, strings.Count(out, "outer"))
	require.Equal(t, 1, strings.Count(out, "inner"))
}

func TestRenderRepeatedChild(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"c"}`,
		`{"op":"element","id":"c","type":"Column","children":["p","p"]}`,
		`{"op":"element","id":"p","type":"Paragraph","props":{"text":"again"}}`,
	)
	require.Equal(t, 2, strings.Count(newRenderer().Render(s), "again"))
}

func TestRenderColumnGap(t *testing.T) {
	s := compile(t,
		`{"op":"root","id":"c"}`,
		`{"op":"element","id":"c","type":"Column","props":{"gap":2},"children":["a","b"]}`,
		`{"op":"element","id":"a","type":"Paragraph","props":{"text":"one"}}`,
		`{"op":"element","id":"b","type":"Paragraph","props":{"text":"two"}}`,
	)
	require.Equal(t, "one\n\n\ntwo", newRenderer().Render(s))
}

func TestRenderMaxDepth(t *testing.T) {
	lines := []string{`{"op":"root","id":"n0"}`}
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf(`{"op":"element","id":"n%d","type":"Column","children":["n%d"]}`, i, i+1))
	}
	lines = append(lines, `{"op":"element","id":"n40","type":"Paragraph","props":{"text":"deep"}}`)
	s := compile(t, lines...)

	require.NotContains(t, newRenderer().Render(s), "deep")
	require.Contains(t, newRenderer().WithMaxDepth(64).Render(s), "deep")
}

func TestStringProp(t *testing.T) {
	props := map[string]any{"s": "x", "n": 3.0, "b": true}
	require.Equal(t, "x", stringProp(props, "s"))
	require.Equal(t, "3", stringProp(props, "n"))
	require.Equal(t, "true", stringProp(props, "b"))
	require.Equal(t, "", stringProp(props, "missing"))
	require.Equal(t, "", stringProp(nil, "missing"))
	require.Equal(t, 3.0, numberProp(props, "n"))
	require.Equal(t, 0.0, numberProp(props, "s"))
}
