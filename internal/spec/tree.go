package spec

import (
	"maps"
	"slices"
)

// Tree accumulates patches into a Spec.
//
// A Tree is not safe for concurrent use. Snapshots it returns are independent
// copies and may be read while the tree keeps changing.
type Tree struct {
	spec *Spec
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{spec: New()}
}

// Apply mutates the tree according to patch and reports whether the patch
// was one the tree acts on. Unrecognized patches are ignored.
func (t *Tree) Apply(patch Patch) bool {
	switch p := patch.(type) {
	case SetRoot:
		t.spec.Root = p.ID

	case UpsertElement:
		element := t.ensure(p.ID)
		if p.HasType {
			element.Type = p.Type
		}
		if p.HasProps {
			switch {
			case p.Props == nil:
				element.Props = nil
			case element.Props == nil:
				element.Props = maps.Clone(p.Props)
			default:
				maps.Copy(element.Props, p.Props)
			}
		}
		if p.HasChildren {
			element.Children = slices.Clone(p.Children)
			if element.Children == nil {
				element.Children = []string{}
			}
		}

	case AppendChild:
		parent := t.ensure(p.Parent)
		parent.Children = append(parent.Children, p.Child)

	case SetState:
		t.spec.State[p.Key] = p.Value

	case RemoveElement:
		delete(t.spec.Elements, p.ID)
		for _, element := range t.spec.Elements {
			element.Children = slices.DeleteFunc(element.Children, func(id string) bool {
				return id == p.ID
			})
		}

	default:
		return false
	}
	return true
}

// ensure returns the element with the given id, creating an empty one if
// it does not exist yet.
func (t *Tree) ensure(id string) *Element {
	if element, ok := t.spec.Elements[id]; ok {
		return element
	}
	element := &Element{
		Props:    map[string]any{},
		Children: []string{},
	}
	t.spec.Elements[id] = element
	return element
}

// Snapshot returns a copy of the current spec.
func (t *Tree) Snapshot() *Spec {
	return t.spec.Clone()
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	return len(t.spec.Elements)
}
