package domain

// ParseResult is the outcome of scanning one input.
// Diagrams are ordered by the position of their closing marker.
type ParseResult struct {
	Source      string       `json:"source,omitempty" yaml:"source,omitempty"`
	Diagrams    []*Diagram   `json:"diagrams" yaml:"diagrams"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Diagram returns the first diagram with the given name.
func (r *ParseResult) Diagram(name string) (*Diagram, bool) {
	for _, d := range r.Diagrams {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
