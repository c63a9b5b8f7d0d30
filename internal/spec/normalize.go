package spec

// Normalize ensures every element has a non-nil props map. A nil element,
// as decoded from a null entry, becomes an empty one.
//
// It returns s itself when no element needs fixing. Otherwise it returns a new
// Spec with a new element map; s is never modified.
func Normalize(s *Spec) *Spec {
	if s == nil || s.Elements == nil {
		return s
	}
	var elements map[string]*Element
	for id, element := range s.Elements {
		if element != nil && element.Props != nil {
			continue
		}
		if elements == nil {
			elements = make(map[string]*Element, len(s.Elements))
			for id, element := range s.Elements {
				elements[id] = element
			}
		}
		if element == nil {
			elements[id] = &Element{Props: map[string]any{}, Children: []string{}}
			continue
		}
		elements[id] = &Element{
			Type:     element.Type,
			Props:    map[string]any{},
			Children: element.Children,
		}
	}
	if elements == nil {
		return s
	}
	return &Spec{
		Root:     s.Root,
		Elements: elements,
		State:    s.State,
	}
}
