package message

import (
	"github.com/pkg/errors"

	"github.com/malonaz/specchat/internal/spec"
	"github.com/malonaz/specchat/internal/uistream"
)

// Assembler builds an assistant message from stream events as they arrive.
// It is not safe for concurrent use.
type Assembler struct {
	compiler     *spec.Compiler
	parts        []Part
	metadata     *uistream.Metadata
	finishReason string
	err          error
}

// NewAssembler returns an empty assembler. Options configure its spec compiler.
func NewAssembler(opts ...spec.Option) *Assembler {
	return &Assembler{compiler: spec.NewCompiler(opts...)}
}

// Add consumes one event and reports whether the spec changed.
func (a *Assembler) Add(event uistream.Event) bool {
	switch event.Type {
	case uistream.EventTextDelta:
		if n := len(a.parts); n > 0 && a.parts[n-1].Type == TextPartType {
			a.parts[n-1].Text += event.Delta
		} else {
			a.parts = append(a.parts, TextPart(event.Delta))
		}

	case uistream.EventSpec:
		patch, ok := event.Patch()
		if !ok {
			return false
		}
		patch = compact(patch)
		a.parts = append(a.parts, SpecPart(patch))
		return a.compiler.Push(string(patch)+"\n") > 0

	case uistream.EventFinish:
		a.finishReason = event.FinishReason
		a.metadata = event.MessageMetadata

	case uistream.EventError:
		a.err = errors.New(event.ErrorText)
	}
	return false
}

// Result returns the text and spec so far.
func (a *Assembler) Result() *Result {
	var text string
	for _, part := range a.parts {
		if part.Type == TextPartType {
			text += part.Text
		}
	}
	return newResult(text, a.compiler.Result())
}

// Message returns the assembled message.
func (a *Assembler) Message(id string) *Message {
	return &Message{
		ID:    id,
		Role:  RoleAssistant,
		Parts: append([]Part(nil), a.parts...),
	}
}

// Metadata returns the finish metadata, if the stream finished.
func (a *Assembler) Metadata() *uistream.Metadata {
	return a.metadata
}

// FinishReason returns the reason reported by the finish event.
func (a *Assembler) FinishReason() string {
	return a.finishReason
}

// Err returns the error reported by the stream, if any.
func (a *Assembler) Err() error {
	return a.err
}

// Stats returns the compiler counters.
func (a *Assembler) Stats() spec.Stats {
	return a.compiler.Stats()
}
