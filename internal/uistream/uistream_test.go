package uistream

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type collector struct {
	events []Event
}

func (c *collector) Send(event Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *collector) types() []string {
	types := make([]string, 0, len(c.events))
	for _, event := range c.events {
		types = append(types, event.Type)
	}
	return types
}

func (c *collector) text() string {
	var sb strings.Builder
	for _, event := range c.events {
		if event.Type == EventTextDelta {
			sb.WriteString(event.Delta)
		}
	}
	return sb.String()
}

func (c *collector) patches() []string {
	var patches []string
	for _, event := range c.events {
		if patch, ok := event.Patch(); ok {
			patches = append(patches, string(patch))
		}
	}
	return patches
}

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)
	spec, err := SpecEvent([]byte(`{ "op": "root", "id": "r" }`))
	require.NoError(t, err)

	events := []Event{
		{Type: EventStart, MessageID: "m1"},
		{Type: EventTextStart, ID: "t"},
		{Type: EventTextDelta, ID: "t", Delta: "Hello\nworld"},
		spec,
		{Type: EventTextEnd, ID: "t"},
		{Type: EventFinish, FinishReason: "stop", MessageMetadata: &Metadata{Model: "m", PromptTokens: 3, Cost: "0.01"}},
	}
	for _, event := range events {
		require.NoError(t, writer.Send(event))
	}
	require.NoError(t, writer.Done())
	require.Contains(t, buf.String(), `data: {"type":"data-spec","data":{"type":"patch","patch":{"op":"root","id":"r"}}}`+"\n\n")
	require.True(t, strings.HasSuffix(buf.String(), "data: [DONE]\n\n"))

	reader := NewReader(&buf)
	for _, want := range events {
		got, err := reader.Recv()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err = reader.Recv()
	require.Equal(t, io.EOF, err)
}

func TestReaderTolerance(t *testing.T) {
	input := ": keep-alive\r\n\r\n" +
		"event: message\r\n" +
		"data: {\"type\":\"text-delta\",\r\n" +
		"data: \"delta\":\"hi\"}\r\n\r\n" +
		"id: 7\n" +
		"data: {\"type\":\"finish\"}"
	reader := NewReader(strings.NewReader(input))

	event, err := reader.Recv()
	require.NoError(t, err)
	require.Equal(t, Event{Type: EventTextDelta, Delta: "hi"}, event)

	event, err = reader.Recv()
	require.NoError(t, err)
	require.Equal(t, EventFinish, event.Type)

	_, err = reader.Recv()
	require.Equal(t, io.EOF, err)
}

func TestReaderRejectsGarbage(t *testing.T) {
	reader := NewReader(strings.NewReader("data: {nope\n\n"))
	_, err := reader.Recv()
	require.Error(t, err)
	require.NotEqual(t, io.EOF, err)
}

func TestWriterFlushes(t *testing.T) {
	recorder := httptest.NewRecorder()
	writer := NewWriter(recorder)
	require.NoError(t, writer.Send(Event{Type: EventStart}))
	require.True(t, recorder.Flushed)
}

func TestEventPatch(t *testing.T) {
	_, ok := Event{Type: EventTextDelta}.Patch()
	require.False(t, ok)
	_, ok = Event{Type: EventSpec, Data: []byte(`{"type":"other","patch":{}}`)}.Patch()
	require.False(t, ok)
	_, ok = Event{Type: EventSpec, Data: []byte(`{"type":"patch"}`)}.Patch()
	require.False(t, ok)
	patch, ok := Event{Type: EventSpec, Data: []byte(`{"type":"patch","patch":{"op":"root","id":"r"}}`)}.Patch()
	require.True(t, ok)
	require.JSONEq(t, `{"op":"root","id":"r"}`, string(patch))

	_, err := SpecEvent([]byte(`{"op":`))
	require.Error(t, err)
}

func TestPipeSplitsTextAndPatches(t *testing.T) {
	sink := &collector{}
	pipe := NewPipe(sink)
	deltas := []string{
		"Here is ",
		"your card:\n{\"op\":\"ro",
		"ot\",\"id\":\"r\"}\n",
		"{\"op\":\"element\",\"id\":\"r\",\"type\":\"Card\"}\nDone",
		".",
	}
	for _, delta := range deltas {
		require.NoError(t, pipe.Write(delta))
	}
	require.NoError(t, pipe.Close())

	require.Equal(t, "Here is your card:\nDone.", sink.text())
	require.Equal(t, []string{
		`{"op":"root","id":"r"}`,
		`{"op":"element","id":"r","type":"Card"}`,
	}, sink.patches())
	require.Equal(t, 2, pipe.Patches())
	require.Equal(t, EventTextStart, sink.events[0].Type)
	require.Equal(t, EventTextEnd, sink.events[len(sink.events)-1].Type)
}

func TestPipeStreamsProseEagerly(t *testing.T) {
	sink := &collector{}
	pipe := NewPipe(sink)
	require.NoError(t, pipe.Write("Hel"))
	require.Equal(t, []string{EventTextStart, EventTextDelta}, sink.types())
	require.NoError(t, pipe.Write("lo"))
	require.Equal(t, "Hello", sink.text())
}

func TestPipeHoldsCandidateLines(t *testing.T) {
	sink := &collector{}
	pipe := NewPipe(sink)
	require.NoError(t, pipe.Write("  {\"op\":"))
	require.Empty(t, sink.events)

	require.NoError(t, pipe.Write("\"state\",\"id\":\"x\",\"value\":1}\n"))
	require.Equal(t, []string{EventSpec}, sink.types())
}

func TestPipeBraceTextIsText(t *testing.T) {
	sink := &collector{}
	pipe := NewPipe(sink)
	require.NoError(t, pipe.Write("{not a patch}\n{\"id\":\"x\"}\n\n"))
	require.NoError(t, pipe.Close())
	require.Equal(t, "{not a patch}\n{\"id\":\"x\"}\n\n", sink.text())
	require.Empty(t, sink.patches())
}

func TestPipeCloseFlushesTrailingPatch(t *testing.T) {
	sink := &collector{}
	pipe := NewPipe(sink)
	require.NoError(t, pipe.Write("{\"op\":\"root\",\"id\":\"r\"}"))
	require.Empty(t, sink.events)
	require.NoError(t, pipe.Close())
	require.Equal(t, []string{EventSpec}, sink.types())
}
