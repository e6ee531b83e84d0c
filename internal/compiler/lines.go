package compiler

import (
	"regexp"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// LineKind names the variant a line was classified as.
type LineKind int

const (
	KindBlank LineKind = iota
	KindStart
	KindEnd
	KindTransition
	KindInit
	KindState
	KindClose
	KindStateAction
	KindInnerEvent
	KindUnknown
)

var kindNames = [...]string{
	KindBlank:       "blank",
	KindStart:       "start",
	KindEnd:         "end",
	KindTransition:  "transition",
	KindInit:        "init",
	KindState:       "state",
	KindClose:       "close",
	KindStateAction: "state_action",
	KindInnerEvent:  "inner_event",
	KindUnknown:     "unknown",
}

func (k LineKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Line is a classified input line. The set of implementations is closed:
// only the variants in this file satisfy it.
type Line interface {
	Kind() LineKind
	sealed()
}

// BlankLine is an empty line.
type BlankLine struct{}

// StartLine opens a diagram. Title is the normalized title, nil when absent.
type StartLine struct {
	Title *string
}

// EndLine closes the active diagram.
type EndLine struct{}

// TransitionLine is an event with an explicit target. Source and Target are
// already in logical order; Reversed records that a left arrow was used.
type TransitionLine struct {
	Source    string
	Target    string
	Event     string
	Condition *string
	Action    *string
	Reversed  bool
}

// InitLine designates the initial state of the enclosing composite.
type InitLine struct {
	Target string
}

// StateLine declares a state; Composite is set when it opens a block.
type StateLine struct {
	Name      string
	Composite bool
}

// CloseLine closes the innermost composite block.
type CloseLine struct{}

// StateActionLine registers an entry or exit action.
type StateActionLine struct {
	State  string
	Phase  domain.Phase
	Action *string
}

// InnerEventLine is an event handled by State without a state change.
type InnerEventLine struct {
	State     string
	Event     string
	Condition *string
	Action    *string
}

// UnknownLine matched no line kind.
type UnknownLine struct{}

func (BlankLine) Kind() LineKind       { return KindBlank }
func (StartLine) Kind() LineKind       { return KindStart }
func (EndLine) Kind() LineKind         { return KindEnd }
func (TransitionLine) Kind() LineKind  { return KindTransition }
func (InitLine) Kind() LineKind        { return KindInit }
func (StateLine) Kind() LineKind       { return KindState }
func (CloseLine) Kind() LineKind       { return KindClose }
func (StateActionLine) Kind() LineKind { return KindStateAction }
func (InnerEventLine) Kind() LineKind  { return KindInnerEvent }
func (UnknownLine) Kind() LineKind     { return KindUnknown }

func (BlankLine) sealed()       {}
func (StartLine) sealed()       {}
func (EndLine) sealed()         {}
func (TransitionLine) sealed()  {}
func (InitLine) sealed()        {}
func (StateLine) sealed()       {}
func (CloseLine) sealed()       {}
func (StateActionLine) sealed() {}
func (InnerEventLine) sealed()  {}
func (UnknownLine) sealed()     {}

// Patterns are prefix matches against a trimmed line, like the notation's
// reference parser: trailing text after a recognised construct is ignored.
var (
	startRe = regexp.MustCompile(`^@startuml(?:\s+(.*))?$`)
	endRe   = regexp.MustCompile(`^@enduml`)

	// src ARROW dst : event [cond] / action
	transitionRe = regexp.MustCompile(
		`^(\w+) +(<-\w*-*|-*\w*->) +(\w+|\[\*\]) *: *(\w(?:[\w ]*\w)?)(?: +\[([\w ]+)\])?(?: */ *([\w ]+))?`)

	// dst <- [*]   |   [*] -> dst
	initRe = regexp.MustCompile(`^(?:(\w+) +<-\w*-* +\[\*\]|\[\*\] +-*\w*-> +(\w+))`)

	// state NAME | state "long" as NAME | state NAME as "long", optional
	// ": description", optional {
	stateRe = regexp.MustCompile(`^state +(?:"[^"]*"|(\w+))(?: +as +(?:"[^"]*"|(\w+)))?(?: *:[^{]*)?(?: *(\{))?`)

	closeRe = regexp.MustCompile(`^\}`)

	// NAME : ... entry|exit / action
	stateActionRe = regexp.MustCompile(`^(\w+) *: *[\w ]*?((?i:entry|exit)) */ *([\w ]+)`)

	// NAME : event [cond] / action
	innerEventRe = regexp.MustCompile(`^(\w+) *: *(\w[\w ]*?)(?: +\[([\w ]+)\])? */ *([\w ]+)`)
)

// Classify assigns a line kind to one trimmed line. The first matching
// pattern wins, in the order start, end, transition, init, state, close,
// state action, inner event.
func Classify(text string) Line {
	text = strings.TrimSpace(text)
	if text == "" {
		return BlankLine{}
	}

	if m := startRe.FindStringSubmatch(text); m != nil {
		return StartLine{Title: Normalize(m[1])}
	}
	if endRe.MatchString(text) {
		return EndLine{}
	}
	if m := transitionRe.FindStringSubmatch(text); m != nil {
		return newTransitionLine(m)
	}
	if m := initRe.FindStringSubmatch(text); m != nil {
		target := m[1]
		if target == "" {
			target = m[2]
		}
		return InitLine{Target: target}
	}
	if m := stateRe.FindStringSubmatch(text); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		// A quoted long name without an alias has no usable identifier.
		if name != "" {
			return StateLine{Name: name, Composite: m[3] != ""}
		}
	}
	if closeRe.MatchString(text) {
		return CloseLine{}
	}
	if m := stateActionRe.FindStringSubmatch(text); m != nil {
		return StateActionLine{
			State:  m[1],
			Phase:  domain.Phase(strings.ToLower(m[2])),
			Action: Normalize(m[3]),
		}
	}
	if m := innerEventRe.FindStringSubmatch(text); m != nil {
		return InnerEventLine{
			State:     m[1],
			Event:     deref(Normalize(m[2])),
			Condition: Normalize(m[3]),
			Action:    Normalize(m[4]),
		}
	}
	return UnknownLine{}
}

func newTransitionLine(m []string) TransitionLine {
	t := TransitionLine{
		Source:    m[1],
		Target:    m[3],
		Event:     deref(Normalize(m[4])),
		Condition: Normalize(m[5]),
		Action:    Normalize(m[6]),
	}
	if strings.HasPrefix(m[2], "<-") {
		t.Source, t.Target = t.Target, t.Source
		t.Reversed = true
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
