package domain

import "sort"

// Transition is one row of a state's event table.
// Target is nil for inner events, Condition and Action are nil when absent.
type Transition struct {
	Source    string  `json:"source" yaml:"source"`
	Target    *string `json:"target" yaml:"target"`
	Event     string  `json:"event" yaml:"event"`
	Condition *string `json:"condition" yaml:"condition"`
	Action    *string `json:"action" yaml:"action"`
}

// IsInner reports whether the transition is handled without a state change.
func (t Transition) IsInner() bool {
	return t.Target == nil
}

// StateActions holds the ordered entry and exit actions of each state.
// Duplicates are retained.
type StateActions struct {
	Entry map[string][]string `json:"entry" yaml:"entry"`
	Exit  map[string][]string `json:"exit" yaml:"exit"`
}

// Diagram is the finalized structural model of one diagram.
// It is read-only once returned by the compiler.
type Diagram struct {
	Name          string                  `json:"name" yaml:"name"`
	States        []string                `json:"states" yaml:"states"`
	StateParents  map[string]string       `json:"state_parents" yaml:"state_parents"`
	StateChildren map[string][]string     `json:"state_children" yaml:"state_children"`
	Depth         map[int][]string        `json:"depth" yaml:"depth"`
	IsLeafState   map[string]bool         `json:"is_leaf_state" yaml:"is_leaf_state"`
	Inits         map[string]string       `json:"inits" yaml:"inits"`
	// Events is keyed by source state. A transition written from the initial
	// pseudostate ("A <- [*] : ev") is keyed by InitialMarker, which is never
	// a member of States.
	Events        map[string][]Transition `json:"events" yaml:"events"`
	StateActions  StateActions            `json:"state_actions" yaml:"state_actions"`
	AllEvents     []string                `json:"allEvents" yaml:"allEvents"`
	AllActions    []string                `json:"allActions" yaml:"allActions"`
	AllConditions []string                `json:"allConditions" yaml:"allConditions"`
}

// Parent returns the owning composite of state, or RootState.
func (d *Diagram) Parent(state string) (string, bool) {
	p, ok := d.StateParents[state]
	return p, ok
}

// Children returns the direct children of state (RootState included).
func (d *Diagram) Children(state string) []string {
	return d.StateChildren[state]
}

// IsComposite reports whether state has at least one child.
func (d *Diagram) IsComposite(state string) bool {
	leaf, ok := d.IsLeafState[state]
	return ok && !leaf
}

// DepthOf returns the number of parent links from state to RootState.
func (d *Diagram) DepthOf(state string) (int, bool) {
	for depth, states := range d.Depth {
		i := sort.SearchStrings(states, state)
		if i < len(states) && states[i] == state {
			return depth, true
		}
	}
	return 0, false
}

// MaxDepth returns the deepest level present, or -1 for an empty diagram.
func (d *Diagram) MaxDepth() int {
	max := -1
	for depth := range d.Depth {
		if depth > max {
			max = depth
		}
	}
	return max
}

// Transitions flattens Events in sorted source order, keeping per-source order.
func (d *Diagram) Transitions() []Transition {
	sources := make([]string, 0, len(d.Events))
	for s := range d.Events {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var out []Transition
	for _, s := range sources {
		out = append(out, d.Events[s]...)
	}
	return out
}
