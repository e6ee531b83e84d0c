package compiler

import (
	"testing"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Line
	}{
		{"blank", "   ", BlankLine{}},
		{"start with title", "@startuml my diagram", StartLine{Title: ptr("my_diagram")}},
		{"start without title", "@startuml", StartLine{}},
		{"end", "@enduml", EndLine{}},

		{"transition", "A -> B : ev", TransitionLine{Source: "A", Target: "B", Event: "ev"}},
		{"transition single char event", "A -> B : e", TransitionLine{Source: "A", Target: "B", Event: "e"}},
		{"transition full", "A --> B : ev [c] / act",
			TransitionLine{Source: "A", Target: "B", Event: "ev", Condition: ptr("c"), Action: ptr("act")}},
		{"transition multi word", "A -> B : name [a condition] / an action",
			TransitionLine{Source: "A", Target: "B", Event: "name", Condition: ptr("a_condition"), Action: ptr("an_action")}},
		{"transition left arrow", "B <-- A : ev / do it",
			TransitionLine{Source: "A", Target: "B", Event: "ev", Action: ptr("do_it"), Reversed: true}},
		{"transition direction word", "A -down-> B : ev", TransitionLine{Source: "A", Target: "B", Event: "ev"}},
		{"transition to final", "A -> [*] : done", TransitionLine{Source: "A", Target: "[*]", Event: "done"}},

		{"init right", "[*] -> A", InitLine{Target: "A"}},
		{"init long arrow", "[*] --> A", InitLine{Target: "A"}},
		{"init left", "A <- [*]", InitLine{Target: "A"}},

		{"state", "state A", StateLine{Name: "A"}},
		{"state composite", "state A {", StateLine{Name: "A", Composite: true}},
		{"state alias composite", `state "Long name" as A {`, StateLine{Name: "A", Composite: true}},
		{"state short as long", `state A as "Long name"`, StateLine{Name: "A"}},
		{"state description", `state A : some description`, StateLine{Name: "A"}},
		{"state description composite", `state A : some desc {`, StateLine{Name: "A", Composite: true}},
		{"state alias description composite", `state "Long" as A : desc {`, StateLine{Name: "A", Composite: true}},
		{"state short as long description composite", `state A as "Long" : desc {`, StateLine{Name: "A", Composite: true}},
		{"state long name only", `state "Only long"`, UnknownLine{}},

		{"close", "}", CloseLine{}},

		{"entry action", "A : entry / start", StateActionLine{State: "A", Phase: domain.PhaseEntry, Action: ptr("start")}},
		{"exit action with words", "A : on Exit / stop it", StateActionLine{State: "A", Phase: domain.PhaseExit, Action: ptr("stop_it")}},

		{"inner event", "A : tick [ready] / count",
			InnerEventLine{State: "A", Event: "tick", Condition: ptr("ready"), Action: ptr("count")}},
		{"inner event without condition", "A : do work / count it",
			InnerEventLine{State: "A", Event: "do_work", Action: ptr("count_it")}},
		{"inner event named like exit", "A : exit_handler / x",
			InnerEventLine{State: "A", Event: "exit_handler", Action: ptr("x")}},

		{"unknown", "class Foo {", UnknownLine{}},
		{"final without event", "A -> [*]", UnknownLine{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestClassify_ArrowDirectionsAgree(t *testing.T) {
	right := Classify("A -> B : ev [c] / act").(TransitionLine)
	left := Classify("B <- A : ev [c] / act").(TransitionLine)

	assert.False(t, right.Reversed)
	assert.True(t, left.Reversed)

	left.Reversed = false
	assert.Equal(t, right, left)
}

func TestLineKind_String(t *testing.T) {
	assert.Equal(t, "transition", KindTransition.String())
	assert.Equal(t, "state_action", KindStateAction.String())
	assert.Equal(t, "invalid", LineKind(99).String())
}
