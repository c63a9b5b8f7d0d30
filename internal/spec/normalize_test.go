package spec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestNormalizeUnchanged checks a clean spec comes back as the same pointer.
func TestNormalizeUnchanged(t *testing.T) {
	s := cardSpec()
	require.Same(t, s, Normalize(s))

	empty := New()
	require.Same(t, empty, Normalize(empty))

	require.Nil(t, Normalize(nil))
}

// TestNormalizeFillsProps checks nil props become empty maps without touching the input.
func TestNormalizeFillsProps(t *testing.T) {
	input := &Spec{
		Root: "r",
		Elements: map[string]*Element{
			"r": {Type: "Column", Props: map[string]any{"gap": 2.0}, Children: []string{"x"}},
			"x": {Type: "Paragraph", Children: []string{}},
		},
		State: map[string]any{"k": "v"},
	}
	original := input.Clone()

	normalized := Normalize(input)
	require.NotSame(t, input, normalized)
	require.Empty(t, cmp.Diff(original, input))

	require.Equal(t, map[string]any{}, normalized.Elements["x"].Props)
	require.Equal(t, "Paragraph", normalized.Elements["x"].Type)
	require.Same(t, input.Elements["r"], normalized.Elements["r"])
	require.Equal(t, "r", normalized.Root)
	require.Equal(t, input.State, normalized.State)

	require.Same(t, normalized, Normalize(normalized))
}

// TestNormalizeDecodedSpec checks a stored spec with odd props normalizes cleanly.
func TestNormalizeDecodedSpec(t *testing.T) {
	var s Spec
	err := json.Unmarshal([]byte(`{
		"root": "r",
		"elements": {
			"r": {"type": "Column", "children": ["a", "b"]},
			"a": {"type": "Paragraph", "props": null, "children": []},
			"b": {"type": "Button", "props": "oops", "children": []},
			"x": null
		}
	}`), &s)
	require.NoError(t, err)
	require.Nil(t, s.Elements["b"].Props)
	require.Nil(t, s.Elements["x"])

	normalized := Normalize(&s)
	for id, element := range normalized.Elements {
		require.NotNil(t, element.Props, id)
		require.Empty(t, element.Props, id)
	}
	require.Equal(t, []string{"a", "b"}, normalized.Elements["r"].Children)
	require.Equal(t, &Element{Props: map[string]any{}, Children: []string{}}, normalized.Elements["x"])
	require.Nil(t, s.Elements["x"])
	require.Same(t, normalized, Normalize(normalized))
}

// TestNormalizeCompilerOutput checks a props:null upsert is repaired after compiling.
func TestNormalizeCompilerOutput(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push("{\"op\":\"element\",\"id\":\"x\",\"type\":\"Card\",\"props\":null}\n")
	result := compiler.Result()
	require.Nil(t, result.Elements["x"].Props)
	require.Equal(t, map[string]any{}, Normalize(result).Elements["x"].Props)
}
