package uistream

import (
	"strings"

	"github.com/google/uuid"

	"github.com/malonaz/specchat/internal/spec"
)

// Pipe splits streamed model text into text deltas and spec patch events.
//
// A line whose first non-blank byte is '{' is held back until its newline
// arrives; it becomes a data-spec event if it looks like a patch and text
// otherwise. Any other line streams as text as soon as it is known not to be
// a patch.
type Pipe struct {
	sink     Sink
	textID   string
	textOpen bool
	// pending holds the start of a line that may still turn out to be a patch.
	pending strings.Builder
	// inText is set once the current line is known to be text.
	inText bool
	patches int
}

// NewPipe returns a pipe emitting to sink.
func NewPipe(sink Sink) *Pipe {
	return &Pipe{sink: sink, textID: uuid.NewString()}
}

// Write consumes one text delta.
func (p *Pipe) Write(delta string) error {
	for delta != "" {
		segment, rest, terminated := strings.Cut(delta, "\n")
		delta = rest
		if err := p.segment(segment, terminated); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipe) segment(segment string, terminated bool) error {
	if p.inText {
		if terminated {
			segment += "\n"
			p.inText = false
		}
		return p.text(segment)
	}

	p.pending.WriteString(segment)
	line := p.pending.String()
	trimmed := strings.TrimLeft(line, " \t\r")
	if trimmed != "" && trimmed[0] != '{' {
		p.pending.Reset()
		if terminated {
			return p.text(line + "\n")
		}
		p.inText = true
		return p.text(line)
	}
	if !terminated {
		return nil
	}
	p.pending.Reset()
	return p.line(line, true)
}

// line emits a complete candidate line.
func (p *Pipe) line(line string, terminated bool) error {
	if spec.LooksLikePatch([]byte(line)) {
		event, err := SpecEvent([]byte(line))
		if err != nil {
			return err
		}
		p.patches++
		return p.sink.Send(event)
	}
	if terminated {
		line += "\n"
	}
	return p.text(line)
}

func (p *Pipe) text(delta string) error {
	if delta == "" {
		return nil
	}
	if !p.textOpen {
		if err := p.sink.Send(Event{Type: EventTextStart, ID: p.textID}); err != nil {
			return err
		}
		p.textOpen = true
	}
	return p.sink.Send(Event{Type: EventTextDelta, ID: p.textID, Delta: delta})
}

// Close flushes a trailing unterminated line and ends the text part.
func (p *Pipe) Close() error {
	if !p.inText && p.pending.Len() > 0 {
		line := p.pending.String()
		p.pending.Reset()
		if strings.TrimSpace(line) != "" {
			if err := p.line(line, false); err != nil {
				return err
			}
		}
	}
	p.inText = false
	if !p.textOpen {
		return nil
	}
	p.textOpen = false
	return p.sink.Send(Event{Type: EventTextEnd, ID: p.textID})
}

// Patches returns the number of patch events emitted.
func (p *Pipe) Patches() int {
	return p.patches
}
