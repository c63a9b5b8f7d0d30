package spec

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const cardStream = `{"op":"root","id":"r"}
{"op":"element","id":"r","type":"Column","props":{}}
{"op":"element","id":"c1","type":"Paragraph","props":{"text":"Hi"}}
{"op":"append-child","parent":"r","child":"c1"}
`

func cardSpec() *Spec {
	return &Spec{
		Root: "r",
		Elements: map[string]*Element{
			"r":  {Type: "Column", Props: map[string]any{}, Children: []string{"c1"}},
			"c1": {Type: "Paragraph", Props: map[string]any{"text": "Hi"}, Children: []string{}},
		},
		State: map[string]any{},
	}
}

// TestCompilerChunkedCard streams a card across awkward chunk boundaries.
func TestCompilerChunkedCard(t *testing.T) {
	compiler := NewCompiler()

	require.Equal(t, 1, compiler.Push("{\"op\":\"root\",\"id\":\"r\"}\n"))
	require.Equal(t, "r", compiler.Result().Root)

	require.Equal(t, 1, compiler.Push("{\"op\":\"element\",\"id\":\"r\",\"type\":\"Column\",\"props\":{}}\n{\"op\":\"element\",\"id\":\"c1\""))
	partial := compiler.Result()
	require.Contains(t, partial.Elements, "r")
	require.NotContains(t, partial.Elements, "c1")

	require.Equal(t, 2, compiler.Push(",\"type\":\"Paragraph\",\"props\":{\"text\":\"Hi\"}}\n{\"op\":\"append-child\",\"parent\":\"r\",\"child\":\"c1\"}\n"))
	require.Empty(t, cmp.Diff(cardSpec(), compiler.Result()))
	require.Equal(t, Stats{Lines: 4, Applied: 4}, compiler.Stats())
	require.Equal(t, 0, compiler.Pending())
}

// TestCompilerDropsMalformedLine checks one bad line does not stop the stream.
func TestCompilerDropsMalformedLine(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push("{\"op\":\"root\",\"id\":\"r\"}\n{\"op\":\"element\",\"id\":\n{\"op\":\"element\",\"id\":\"r\",\"type\":\"Column\"}\n")

	result := compiler.Result()
	require.Equal(t, "r", result.Root)
	require.Equal(t, "Column", result.Elements["r"].Type)
	require.Equal(t, Stats{Lines: 3, Applied: 2, Dropped: 1}, compiler.Stats())
}

// TestCompilerIgnoresNoise checks prose, blank lines and empty chunks change nothing.
func TestCompilerIgnoresNoise(t *testing.T) {
	compiler := NewCompiler()
	require.Equal(t, 0, compiler.Push(""))
	require.Equal(t, 0, compiler.Push("Sure, here is your card:\n\n   \n"))
	require.Equal(t, 0, compiler.Push("{\"op\":\"teleport\",\"id\":\"x\"}\n[1,2]\n"))

	require.Empty(t, cmp.Diff(New(), compiler.Result()))
	require.Equal(t, Stats{Lines: 3, Dropped: 3}, compiler.Stats())
}

// TestCompilerCRLF checks carriage returns before the newline are stripped.
func TestCompilerCRLF(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push(strings.ReplaceAll(cardStream, "\n", "\r\n"))
	require.Empty(t, cmp.Diff(cardSpec(), compiler.Result()))
}

// TestCompilerSplitRune checks a multi-byte rune split across chunks survives.
func TestCompilerSplitRune(t *testing.T) {
	line := "{\"op\":\"element\",\"id\":\"p\",\"props\":{\"text\":\"héllo 世界\"}}\n"
	cut := strings.Index(line, "é") + 1

	compiler := NewCompiler()
	require.Equal(t, 0, compiler.Push(line[:cut]))
	require.Equal(t, 1, compiler.Push(line[cut:]))
	require.Equal(t, "héllo 世界", compiler.Result().Elements["p"].Props["text"])
}

// TestCompilerByteAtATime feeds the stream one byte per push.
func TestCompilerByteAtATime(t *testing.T) {
	compiler := NewCompiler()
	applied := 0
	for i := 0; i < len(cardStream); i++ {
		applied += compiler.Push(cardStream[i : i+1])
	}
	require.Equal(t, 4, applied)
	require.Empty(t, cmp.Diff(cardSpec(), compiler.Result()))
}

// TestCompilerResultDoesNotConsume checks Result leaves the partial line buffered.
func TestCompilerResultDoesNotConsume(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push("{\"op\":\"root\",")
	require.Equal(t, "", compiler.Result().Root)
	require.Equal(t, 13, compiler.Pending())

	compiler.Push("\"id\":\"r\"}\n")
	require.Equal(t, "r", compiler.Result().Root)
}

// TestCompilerFlush checks an unterminated trailing line is applied on Flush only.
func TestCompilerFlush(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push("{\"op\":\"root\",\"id\":\"r\"}")
	require.Equal(t, "", compiler.Result().Root)

	require.Equal(t, 1, compiler.Flush())
	require.Equal(t, "r", compiler.Result().Root)
	require.Equal(t, 0, compiler.Pending())
	require.Equal(t, 0, compiler.Flush())

	compiler.Push("not json")
	require.Equal(t, 0, compiler.Flush())
	require.Equal(t, 1, compiler.Stats().Dropped)
}

// TestCompilerReset checks Reset discards the tree, the buffer and the counters.
func TestCompilerReset(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push(cardStream)
	compiler.Push("{\"op\":\"root\"")
	compiler.Reset()

	require.Empty(t, cmp.Diff(New(), compiler.Result()))
	require.Equal(t, 0, compiler.Pending())
	require.Equal(t, Stats{}, compiler.Stats())

	compiler.Push(",\"id\":\"x\"}\n")
	require.Equal(t, "", compiler.Result().Root)
}

// TestCompilerMaxLineSize checks an oversized line is dropped up to its newline.
func TestCompilerMaxLineSize(t *testing.T) {
	compiler := NewCompiler(WithMaxLineSize(24))
	compiler.Push("{\"op\":\"element\",\"id\":\"big\"")
	require.Equal(t, 0, compiler.Pending())

	compiler.Push(",\"type\":\"Card\"}")
	require.Equal(t, 0, compiler.Pending())

	require.Equal(t, 1, compiler.Push("}\n{\"op\":\"root\",\"id\":\"r\"}\n"))
	result := compiler.Result()
	require.Equal(t, "r", result.Root)
	require.NotContains(t, result.Elements, "big")
	require.Equal(t, Stats{Lines: 2, Applied: 1, Dropped: 1}, compiler.Stats())
}

// TestCompilerMaxLineSizeIgnoresChunking checks a long line is dropped both
// when it arrives whole and when its newline comes in a later chunk.
func TestCompilerMaxLineSizeIgnoresChunking(t *testing.T) {
	line := `{"op":"element","id":"big","type":"Paragraph","props":{"text":"` + strings.Repeat("x", 40) + `"}}`

	whole := NewCompiler(WithMaxLineSize(64))
	require.Equal(t, 0, whole.Push(line+"\n"))

	split := NewCompiler(WithMaxLineSize(64))
	require.Equal(t, 0, split.Push(line))
	require.Equal(t, 0, split.Push("\n"))

	for _, compiler := range []*Compiler{whole, split} {
		require.NotContains(t, compiler.Result().Elements, "big")
		require.Equal(t, Stats{Lines: 1, Dropped: 1}, compiler.Stats())
		require.Equal(t, 1, compiler.Push(`{"op":"root","id":"r"}`+"\n"))
	}

	unbounded := NewCompiler(WithMaxLineSize(-1))
	require.Equal(t, 1, unbounded.Push(line+"\n"))
	require.Contains(t, unbounded.Result().Elements, "big")
}

// TestCompilerWrite checks the io.Writer path behaves like Push.
func TestCompilerWrite(t *testing.T) {
	compiler := NewCompiler()
	n, err := io.Copy(compiler, strings.NewReader(cardStream))
	require.NoError(t, err)
	require.Equal(t, int64(len(cardStream)), n)
	require.Empty(t, cmp.Diff(cardSpec(), compiler.Result()))
}

// TestCompilerLogsDroppedLines checks dropped lines are reported at debug level.
func TestCompilerLogsDroppedLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	compiler := NewCompiler(WithLogger(logger))
	compiler.Push("oops\n")
	require.Contains(t, buf.String(), "dropping spec line")
	require.Contains(t, buf.String(), "oops")
}

// TestCompilerResultIsSnapshot checks later pushes do not alter an earlier result.
func TestCompilerResultIsSnapshot(t *testing.T) {
	compiler := NewCompiler()
	compiler.Push("{\"op\":\"append-child\",\"parent\":\"r\",\"child\":\"a\"}\n")
	before := compiler.Result()
	for i := 0; i < 3; i++ {
		compiler.Push(fmt.Sprintf("{\"op\":\"append-child\",\"parent\":\"r\",\"child\":\"n%d\"}\n", i))
	}
	require.Equal(t, []string{"a"}, before.Elements["r"].Children)
	require.Len(t, compiler.Result().Elements["r"].Children, 4)
}
