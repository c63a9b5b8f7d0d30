// Package uistream implements the UI message stream spoken between the chat
// gateway and its clients: JSON events framed as server-sent events.
package uistream

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Event types.
const (
	EventStart     = "start"
	EventTextStart = "text-start"
	EventTextDelta = "text-delta"
	EventTextEnd   = "text-end"
	EventSpec      = "data-spec"
	EventFinish    = "finish"
	EventError     = "error"
)

// SpecDataPartType is the message part type carrying spec patches.
const SpecDataPartType = EventSpec

// PatchDataType marks a spec data payload holding one patch.
const PatchDataType = "patch"

// Event is one message stream event.
type Event struct {
	Type         string          `json:"type"`
	ID           string          `json:"id,omitempty"`
	MessageID    string          `json:"messageId,omitempty"`
	Delta        string          `json:"delta,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	ErrorText    string          `json:"errorText,omitempty"`
	FinishReason string          `json:"finishReason,omitempty"`
	// Only set on finish events.
	MessageMetadata *Metadata `json:"messageMetadata,omitempty"`
}

// Metadata describes a finished assistant message.
type Metadata struct {
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"promptTokens,omitempty"`
	CompletionTokens int    `json:"completionTokens,omitempty"`
	// Decimal USD amount.
	Cost string `json:"cost,omitempty"`
}

// SpecData is the payload of a data-spec event.
type SpecData struct {
	Type  string          `json:"type"`
	Patch json.RawMessage `json:"patch"`
}

// SpecEvent wraps one patch line into a data-spec event. The line is compacted.
func SpecEvent(line []byte) (Event, error) {
	var patch bytes.Buffer
	if err := json.Compact(&patch, bytes.TrimSpace(line)); err != nil {
		return Event{}, errors.Wrap(err, "compacting patch")
	}
	data, err := json.Marshal(SpecData{Type: PatchDataType, Patch: patch.Bytes()})
	if err != nil {
		return Event{}, errors.Wrap(err, "marshaling spec data")
	}
	return Event{Type: EventSpec, Data: data}, nil
}

// Patch returns the patch carried by a data-spec event.
func (e Event) Patch() (json.RawMessage, bool) {
	if e.Type != EventSpec {
		return nil, false
	}
	return DecodeSpecData(e.Data)
}

// DecodeSpecData returns the patch held in a data-spec payload, if it is one.
func DecodeSpecData(data []byte) (json.RawMessage, bool) {
	var specData SpecData
	if err := json.Unmarshal(data, &specData); err != nil {
		return nil, false
	}
	if specData.Type != PatchDataType || len(specData.Patch) == 0 {
		return nil, false
	}
	return specData.Patch, true
}
