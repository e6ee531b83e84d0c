package domain

import "fmt"

// UnterminatedPolicy decides what happens when input ends inside a diagram.
type UnterminatedPolicy string

const (
	// UnterminatedDrop discards the partial diagram and reports a diagnostic.
	UnterminatedDrop UnterminatedPolicy = "drop"
	// UnterminatedEmit finalizes the partial diagram as if @enduml had been seen.
	UnterminatedEmit UnterminatedPolicy = "emit"
	// UnterminatedFail aborts with ErrUnterminatedDiagram.
	UnterminatedFail UnterminatedPolicy = "fail"
)

// InitPolicy decides how repeated initial transitions for one composite resolve.
type InitPolicy string

const (
	InitLastWins  InitPolicy = "last"
	InitFirstWins InitPolicy = "first"
	// InitConflictError fails with ErrDuplicateInit on a second, different target.
	InitConflictError InitPolicy = "error"
)

// HierarchyPolicy decides how states referenced from several composites are owned.
type HierarchyPolicy string

const (
	// HierarchyTolerant reparents once from RootState and lets child sets overlap.
	HierarchyTolerant HierarchyPolicy = "tolerant"
	// HierarchyStrict keeps exactly one parent per state and fails with ErrParentConflict.
	HierarchyStrict HierarchyPolicy = "strict"
)

// ParseUnterminatedPolicy validates a policy name. Empty selects the default.
func ParseUnterminatedPolicy(s string) (UnterminatedPolicy, error) {
	switch p := UnterminatedPolicy(s); p {
	case "":
		return UnterminatedDrop, nil
	case UnterminatedDrop, UnterminatedEmit, UnterminatedFail:
		return p, nil
	}
	return "", fmt.Errorf("unknown unterminated policy %q (want drop, emit or fail)", s)
}

// ParseInitPolicy validates a policy name. Empty selects the default.
func ParseInitPolicy(s string) (InitPolicy, error) {
	switch p := InitPolicy(s); p {
	case "":
		return InitLastWins, nil
	case InitLastWins, InitFirstWins, InitConflictError:
		return p, nil
	}
	return "", fmt.Errorf("unknown duplicate init policy %q (want last, first or error)", s)
}

// ParseHierarchyPolicy validates a policy name. Empty selects the default.
func ParseHierarchyPolicy(s string) (HierarchyPolicy, error) {
	switch p := HierarchyPolicy(s); p {
	case "":
		return HierarchyTolerant, nil
	case HierarchyTolerant, HierarchyStrict:
		return p, nil
	}
	return "", fmt.Errorf("unknown hierarchy policy %q (want tolerant or strict)", s)
}
