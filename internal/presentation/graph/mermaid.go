package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 for one diagram.
// Composite states become nested blocks, initial transitions become [*] edges,
// and entry/exit actions plus inner events are attached as notes.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(d *domain.Diagram, overlay *GraphOverlay) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "---\ntitle: %s\n---\n", d.Name)
	sb.WriteString("stateDiagram-v2\n")

	writeContainer(&sb, d, domain.RootState, 1)

	for _, t := range d.Transitions() {
		if t.IsInner() || t.Source == domain.InitialMarker {
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s", sanitizeMermaidID(t.Source), sanitizeMermaidID(*t.Target))
		if label := transitionLabel(t); label != "" {
			fmt.Fprintf(&sb, " : %s", label)
		}
		sb.WriteString("\n")
	}

	for _, s := range d.States {
		writeNote(&sb, d, s)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited\n", safeID)
			}
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

// writeContainer emits the initial edge and the owned children of container.
// Children that another composite owns are skipped so each state is declared once.
func writeContainer(sb *strings.Builder, d *domain.Diagram, container string, level int) {
	indent := strings.Repeat("    ", level)

	if init, ok := d.Inits[container]; ok {
		fmt.Fprintf(sb, "%s[*] --> %s\n", indent, sanitizeMermaidID(init))
	}

	for _, child := range d.Children(container) {
		if parent, _ := d.Parent(child); parent != container {
			continue
		}
		id := sanitizeMermaidID(child)
		if !d.IsComposite(child) {
			fmt.Fprintf(sb, "%s%s\n", indent, id)
			continue
		}
		fmt.Fprintf(sb, "%sstate %s {\n", indent, id)
		writeContainer(sb, d, child, level+1)
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}

func writeNote(sb *strings.Builder, d *domain.Diagram, state string) {
	var lines []string
	for _, a := range d.StateActions.Entry[state] {
		lines = append(lines, "entry / "+a)
	}
	for _, a := range d.StateActions.Exit[state] {
		lines = append(lines, "exit / "+a)
	}
	for _, t := range d.Events[state] {
		if t.IsInner() {
			lines = append(lines, transitionLabel(t))
		}
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(sb, "    note right of %s\n", sanitizeMermaidID(state))
	for _, l := range lines {
		fmt.Fprintf(sb, "        %s\n", l)
	}
	sb.WriteString("    end note\n")
}

func transitionLabel(t domain.Transition) string {
	label := t.Event
	if t.Condition != nil {
		label += " [" + *t.Condition + "]"
	}
	if t.Action != nil {
		label += " / " + *t.Action
	}
	return label
}

func sanitizeMermaidID(id string) string {
	if id == domain.InitialMarker {
		return id
	}
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
