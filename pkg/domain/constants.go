package domain

const (
	// RootState is the synthetic ancestor of every top-level state.
	// It is never listed in Diagram.States but appears in IsLeafState,
	// StateChildren and as a key of Inits.
	RootState = "Top"

	// InitialMarker is the pseudostate used by initial (and final) transitions.
	InitialMarker = "[*]"
)

// Phase selects the entry or exit action list of a state.
type Phase string

const (
	PhaseEntry Phase = "entry"
	PhaseExit  Phase = "exit"
)
