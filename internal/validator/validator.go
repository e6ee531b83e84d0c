// Package validator checks extracted models for structural smells that the
// parser accepts but a state machine runtime would trip over.
package validator

import (
	"fmt"
	"sort"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// FindingKind names the category of a finding.
type FindingKind string

const (
	// FindingUnreachable marks a state no transition path enters from the top initial state.
	FindingUnreachable FindingKind = "unreachable_state"
	// FindingMissingInit marks a composite without an initial transition.
	FindingMissingInit FindingKind = "missing_init"
)

// Finding is one validation warning.
type Finding struct {
	Kind    FindingKind
	Diagram string
	State   string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Diagram, f.Kind, f.Message)
}

// ValidateResult validates every diagram of r.
func ValidateResult(r *domain.ParseResult) []Finding {
	var out []Finding
	for _, d := range r.Diagrams {
		out = append(out, ValidateDiagram(d)...)
	}
	return out
}

// ValidateDiagram reports composites without an initial transition and
// states unreachable from the top-level initial transition. Reachability is
// only checked when the diagram declares one.
func ValidateDiagram(d *domain.Diagram) []Finding {
	var out []Finding

	composites := append([]string{domain.RootState}, d.States...)
	for _, s := range composites {
		if !d.IsComposite(s) {
			continue
		}
		if _, ok := d.Inits[s]; !ok {
			out = append(out, Finding{
				Kind:    FindingMissingInit,
				Diagram: d.Name,
				State:   s,
				Message: fmt.Sprintf("composite '%s' has no initial transition", s),
			})
		}
	}

	if reached, ok := reachable(d); ok {
		for _, s := range d.States {
			if !reached[s] {
				out = append(out, Finding{
					Kind:    FindingUnreachable,
					Diagram: d.Name,
					State:   s,
					Message: fmt.Sprintf("state '%s' is unreachable", s),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].State < out[j].State
	})
	return out
}

// reachable crawls the model from the top initial state. Entering a state
// activates its ancestors and follows initial transitions down; a state
// handles the events of its ancestors too, so those are followed from any
// active state.
func reachable(d *domain.Diagram) (map[string]bool, bool) {
	var queue []string
	if init, ok := d.Inits[domain.RootState]; ok {
		queue = append(queue, init)
	}
	for _, t := range d.Events[domain.InitialMarker] {
		if t.Target != nil {
			queue = append(queue, *t.Target)
		}
	}
	if len(queue) == 0 {
		return nil, false
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == domain.InitialMarker || current == domain.RootState || visited[current] {
			continue
		}
		visited[current] = true

		if parent, ok := d.Parent(current); ok {
			queue = append(queue, parent)
		}
		if init, ok := d.Inits[current]; ok {
			queue = append(queue, init)
		}
		for _, t := range d.Events[current] {
			if t.Target != nil && !visited[*t.Target] {
				queue = append(queue, *t.Target)
			}
		}
	}
	return visited, true
}
