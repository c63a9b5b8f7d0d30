// Package message turns chat message parts into display text and a compiled spec.
package message

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/malonaz/specchat/internal/spec"
	"github.com/malonaz/specchat/internal/uistream"
)

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TextPartType is the type of a plain text part.
const TextPartType = "text"

// Part is one piece of a message.
type Part struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is a chat message as exchanged with the gateway.
type Message struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Type: TextPartType, Text: text}
}

// SpecPart returns a data-spec part carrying one patch.
func SpecPart(patch json.RawMessage) Part {
	data, _ := json.Marshal(uistream.SpecData{Type: uistream.PatchDataType, Patch: patch})
	return Part{Type: uistream.SpecDataPartType, Data: data}
}

// Result is what a message shows.
type Result struct {
	// Spec is normalized, or nil when HasSpec is false.
	Spec    *spec.Spec
	Text    string
	HasSpec bool
}

// Extract concatenates the text parts and compiles the spec parts.
// Invalid patches are ignored.
func Extract(parts []Part) *Result {
	var text strings.Builder
	compiler := spec.NewCompiler()
	for _, part := range parts {
		switch part.Type {
		case TextPartType:
			text.WriteString(part.Text)
		case uistream.SpecDataPartType:
			if patch, ok := uistream.DecodeSpecData(part.Data); ok {
				compiler.Push(string(compact(patch)) + "\n")
			}
		}
	}
	return newResult(text.String(), compiler.Result())
}

func newResult(text string, s *spec.Spec) *Result {
	result := &Result{Text: strings.TrimSpace(text)}
	if len(s.Elements) > 0 {
		result.Spec = spec.Normalize(s)
		result.HasSpec = true
	}
	return result
}

// ModelContent returns the message as plain text for a model: text parts as
// they are and each patch on its own line.
func (m *Message) ModelContent() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		switch part.Type {
		case TextPartType:
			sb.WriteString(part.Text)
		case uistream.SpecDataPartType:
			patch, ok := uistream.DecodeSpecData(part.Data)
			if !ok {
				continue
			}
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString("\n")
			}
			sb.Write(compact(patch))
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

// SpecParts re-encodes a spec as the patches that rebuild it: the root first,
// then every element by id, then state by key.
func SpecParts(s *spec.Spec) []Part {
	if s == nil {
		return nil
	}
	var parts []Part
	add := func(patch map[string]any) {
		payload, err := json.Marshal(patch)
		if err != nil {
			return
		}
		parts = append(parts, SpecPart(payload))
	}
	if s.Root != "" {
		add(map[string]any{"op": string(spec.OpRoot), "id": s.Root})
	}
	for _, id := range slices.Sorted(maps.Keys(s.Elements)) {
		element := s.Elements[id]
		if element == nil {
			continue
		}
		props := element.Props
		if props == nil {
			props = map[string]any{}
		}
		children := element.Children
		if children == nil {
			children = []string{}
		}
		add(map[string]any{
			"op":       string(spec.OpElement),
			"id":       id,
			"type":     element.Type,
			"props":    props,
			"children": children,
		})
	}
	for _, key := range slices.Sorted(maps.Keys(s.State)) {
		add(map[string]any{"op": string(spec.OpState), "id": key, "value": s.State[key]})
	}
	return parts
}

func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
