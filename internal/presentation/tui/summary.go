package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// Summary renders one diagram as a Markdown report: a state table, the
// transition table, entry/exit actions and the vocabularies.
func Summary(d *domain.Diagram) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Name)

	if init, ok := d.Inits[domain.RootState]; ok {
		fmt.Fprintf(&sb, "Initial state: `%s`\n\n", init)
	}

	sb.WriteString("## States\n\n")
	if len(d.States) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| State | Depth | Parent | Kind | Initial child |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for depth := 0; depth <= d.MaxDepth(); depth++ {
			for _, s := range d.Depth[depth] {
				parent, _ := d.Parent(s)
				kind := "leaf"
				if d.IsComposite(s) {
					kind = "composite"
				}
				fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n", s, depth, parent, kind, dash(d.Inits[s]))
			}
		}
		sb.WriteString("\n")
	}

	transitions := d.Transitions()
	sb.WriteString("## Transitions\n\n")
	if len(transitions) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| Source | Event | Guard | Action | Target |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, t := range transitions {
			target := "_(inner)_"
			if t.Target != nil {
				target = *t.Target
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", t.Source, t.Event, dashPtr(t.Condition), dashPtr(t.Action), target)
		}
		sb.WriteString("\n")
	}

	if len(d.StateActions.Entry)+len(d.StateActions.Exit) > 0 {
		sb.WriteString("## State actions\n\n")
		for _, s := range d.States {
			if a := d.StateActions.Entry[s]; len(a) > 0 {
				fmt.Fprintf(&sb, "- `%s` entry: %s\n", s, strings.Join(a, ", "))
			}
			if a := d.StateActions.Exit[s]; len(a) > 0 {
				fmt.Fprintf(&sb, "- `%s` exit: %s\n", s, strings.Join(a, ", "))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Vocabulary\n\n")
	fmt.Fprintf(&sb, "- Events: %s\n", list(d.AllEvents))
	fmt.Fprintf(&sb, "- Actions: %s\n", list(d.AllActions))
	fmt.Fprintf(&sb, "- Conditions: %s\n", list(d.AllConditions))

	return sb.String()
}

// ResultSummary concatenates the summaries of every diagram and lists diagnostics.
func ResultSummary(r *domain.ParseResult) string {
	var sb strings.Builder
	for i, d := range r.Diagrams {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(Summary(d))
	}
	if len(r.Diagrams) == 0 {
		sb.WriteString("_No diagrams found._\n")
	}
	if len(r.Diagnostics) > 0 {
		sb.WriteString("\n## Diagnostics\n\n")
		for _, diag := range r.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", diag)
		}
	}
	return sb.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dashPtr(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func list(items []string) string {
	if len(items) == 0 {
		return "_none_"
	}
	return strings.Join(items, ", ")
}
