// Package spec incrementally compiles streamed JSON-Lines patches into a UI spec.
//
// A Spec is a flat map of elements addressed by id plus a root id and an
// optional state map. Patches arrive one per line, interleaved with arbitrary
// chunk boundaries, and are applied as soon as their line terminates.
package spec

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Spec is the UI description reconstructed from a patch stream.
type Spec struct {
	// Root is the id of the top-level element. Empty means unset.
	Root string `json:"root"`
	// Elements maps element id to element.
	Elements map[string]*Element `json:"elements"`
	// State holds initial values for bound components, keyed by state path.
	State map[string]any `json:"state,omitempty"`
}

// Element is one node of a Spec.
type Element struct {
	// Type names a component kind. It is not validated here.
	Type string `json:"type"`
	// Props holds the component properties. Nil means the stored value was
	// absent, null or not an object; Normalize replaces it with an empty map.
	Props map[string]any `json:"props"`
	// Children lists child element ids in render order.
	Children []string `json:"children"`
}

// New returns an empty spec.
func New() *Spec {
	return &Spec{
		Elements: map[string]*Element{},
		State:    map[string]any{},
	}
}

// Element returns the element with the given id.
func (s *Spec) Element(id string) (*Element, bool) {
	if s == nil {
		return nil, false
	}
	element, ok := s.Elements[id]
	return element, ok
}

// Clone returns a copy of the spec that shares no maps or slices with s.
// Prop and state values are copied shallowly.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	clone := &Spec{
		Root:     s.Root,
		Elements: make(map[string]*Element, len(s.Elements)),
		State:    maps.Clone(s.State),
	}
	if clone.State == nil {
		clone.State = map[string]any{}
	}
	for id, element := range s.Elements {
		clone.Elements[id] = element.clone()
	}
	return clone
}

func (e *Element) clone() *Element {
	if e == nil {
		return nil
	}
	children := slices.Clone(e.Children)
	if children == nil {
		children = []string{}
	}
	return &Element{
		Type:     e.Type,
		Props:    maps.Clone(e.Props),
		Children: children,
	}
}

// UnmarshalJSON decodes an element, tolerating a props value that is not an
// object. Such a value is stored as nil.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string          `json:"type"`
		Props    json.RawMessage `json:"props"`
		Children []string        `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Type = raw.Type
	e.Children = raw.Children
	e.Props = decodeProps(raw.Props)
	return nil
}

// decodeProps returns the props object held in raw, or nil if raw is absent,
// null or any other JSON kind.
func decodeProps(raw json.RawMessage) map[string]any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	props := map[string]any{}
	if err := json.Unmarshal(trimmed, &props); err != nil {
		return nil
	}
	return props
}
