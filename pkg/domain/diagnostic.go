package domain

import "fmt"

// DiagnosticKind classifies non-fatal parser observations.
type DiagnosticKind string

const (
	// DiagnosticUnparsedLine marks a line inside a diagram that matched no line kind.
	DiagnosticUnparsedLine DiagnosticKind = "UnparsedLine"
	// DiagnosticUnclosedComposite marks a diagram end reached with composites still open.
	DiagnosticUnclosedComposite DiagnosticKind = "UnclosedComposite"
	// DiagnosticUnterminatedDiagram marks input that ended inside a diagram which was dropped.
	DiagnosticUnterminatedDiagram DiagnosticKind = "UnterminatedDiagram"
)

// Diagnostic is reported and skipped; parsing continues.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind" yaml:"kind"`
	Source string         `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int            `json:"line" yaml:"line"`
	Text   string         `json:"text" yaml:"text"`
}

func (d Diagnostic) String() string {
	if d.Source != "" {
		return fmt.Sprintf("%s:%d: %s: %s", d.Source, d.Line, d.Kind, d.Text)
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Text)
}
