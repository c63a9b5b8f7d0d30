package spec

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Op is the verb carried by a patch line.
type Op string

const (
	// OpRoot sets the root element id.
	OpRoot Op = "root"
	// OpElement creates or merges an element.
	OpElement Op = "element"
	// OpAppendChild appends a child id to an element's children.
	OpAppendChild Op = "append-child"
	// OpState sets one state key.
	OpState Op = "state"
	// OpRemove deletes an element and every reference to it.
	OpRemove Op = "remove"
)

var (
	// ErrNotObject is returned for lines that are valid JSON but not an object.
	ErrNotObject = errors.New("patch is not a JSON object")
	// ErrUnknownOp is returned for objects whose op is missing or not recognized.
	ErrUnknownOp = errors.New("unknown patch op")
	// ErrMissingField is returned when a required field is absent or empty.
	ErrMissingField = errors.New("missing patch field")
)

// Patch is one decoded mutation. The set of implementations is closed.
type Patch interface {
	// Op returns the verb of the patch.
	Op() Op
	isPatch()
}

// SetRoot replaces the root id.
type SetRoot struct {
	ID string
}

// UpsertElement creates the element if needed and merges the given fields.
type UpsertElement struct {
	ID string
	// Type is applied only when HasType is set.
	Type    string
	HasType bool
	// Props is merged only when HasProps is set. A nil Props with HasProps set
	// means the line carried null or a non-object value.
	Props    map[string]any
	HasProps bool
	// Children replaces the children list only when HasChildren is set.
	Children    []string
	HasChildren bool
}

// AppendChild appends Child to the children of Parent.
type AppendChild struct {
	Parent string
	Child  string
}

// SetState sets State[Key] to Value.
type SetState struct {
	Key   string
	Value any
}

// RemoveElement deletes an element and prunes it from children lists.
type RemoveElement struct {
	ID string
}

// Unrecognized stands in for a line that could not be decoded.
type Unrecognized struct {
	Raw string
	Err error
}

func (SetRoot) Op() Op       { return OpRoot }
func (UpsertElement) Op() Op { return OpElement }
func (AppendChild) Op() Op   { return OpAppendChild }
func (SetState) Op() Op      { return OpState }
func (RemoveElement) Op() Op { return OpRemove }
func (Unrecognized) Op() Op  { return "" }

func (SetRoot) isPatch()       {}
func (UpsertElement) isPatch() {}
func (AppendChild) isPatch()   {}
func (SetState) isPatch()      {}
func (RemoveElement) isPatch() {}
func (Unrecognized) isPatch()  {}

// fields holds the members of a patch object. Keys are matched exactly, so
// "OP" or "Id" are not mistaken for "op" or "id".
type fields map[string]json.RawMessage

// present reports whether key is set to something other than null.
func (f fields) present(key string) bool {
	raw, ok := f[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// optional decodes an optional string member. Absent and null give "".
func (f fields) optional(key string) (string, error) {
	if !f.present(key) {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(f[key], &value); err != nil {
		return "", errors.Wrapf(err, "decoding %s", key)
	}
	return value, nil
}

// required decodes a string member that must be set and non-empty.
func (f fields) required(key string) (string, error) {
	value, err := f.optional(key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", errors.Wrap(ErrMissingField, key)
	}
	return value, nil
}

// DecodePatch decodes one JSON line into a Patch.
//
// On failure it returns an Unrecognized patch and a non-nil error. It never
// panics, whatever the input.
func DecodePatch(line []byte) (Patch, error) {
	patch, err := decodePatch(bytes.TrimSpace(line))
	if err != nil {
		return Unrecognized{Raw: string(line), Err: err}, err
	}
	return patch, nil
}

func decodePatch(line []byte) (Patch, error) {
	if len(line) == 0 || line[0] != '{' {
		if !json.Valid(line) {
			return nil, errors.New("invalid JSON")
		}
		return nil, ErrNotObject
	}
	var f fields
	if err := json.Unmarshal(line, &f); err != nil {
		return nil, errors.Wrap(err, "decoding patch")
	}
	op, err := f.optional("op")
	if err != nil {
		return nil, err
	}

	switch Op(op) {
	case OpRoot:
		id, err := f.required("id")
		if err != nil {
			return nil, err
		}
		return SetRoot{ID: id}, nil

	case OpElement:
		id, err := f.required("id")
		if err != nil {
			return nil, err
		}
		upsert := UpsertElement{ID: id}
		if f.present("type") {
			if upsert.Type, err = f.optional("type"); err != nil {
				return nil, err
			}
			upsert.HasType = true
		}
		if props, ok := f["props"]; ok {
			upsert.Props = decodeProps(props)
			upsert.HasProps = true
		}
		if f.present("children") {
			var children []string
			if err := json.Unmarshal(f["children"], &children); err != nil {
				return nil, errors.Wrap(err, "decoding children")
			}
			upsert.Children = children
			upsert.HasChildren = true
		}
		return upsert, nil

	case OpAppendChild:
		parent, err := f.required("parent")
		if err != nil {
			return nil, err
		}
		child, err := f.required("child")
		if err != nil {
			return nil, err
		}
		return AppendChild{Parent: parent, Child: child}, nil

	case OpState:
		id, err := f.required("id")
		if err != nil {
			return nil, err
		}
		var value any
		if f.present("value") {
			if err := json.Unmarshal(f["value"], &value); err != nil {
				return nil, errors.Wrap(err, "decoding value")
			}
		}
		return SetState{Key: id, Value: value}, nil

	case OpRemove:
		id, err := f.required("id")
		if err != nil {
			return nil, err
		}
		return RemoveElement{ID: id}, nil

	default:
		return nil, errors.Wrapf(ErrUnknownOp, "op %q", op)
	}
}

// LooksLikePatch reports whether line is a JSON object with a non-empty
// string op. Unknown ops still count, so they reach the decoder and are
// dropped there rather than leaking into the text stream.
func LooksLikePatch(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return false
	}
	var f fields
	if err := json.Unmarshal(line, &f); err != nil {
		return false
	}
	op, err := f.optional("op")
	return err == nil && op != ""
}
