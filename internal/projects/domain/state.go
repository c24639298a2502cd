package domain

// GenerationState is the per-section lifecycle value.
//
//	EMPTY -> GENERATING -> GENERATED -> REFINING -> REFINED -> REFINING ...
//
// GENERATING and REFINING are in-flight; the others are stable.
type GenerationState string

const (
	StateEmpty      GenerationState = "EMPTY"
	StateGenerating GenerationState = "GENERATING"
	StateGenerated  GenerationState = "GENERATED"
	StateRefining   GenerationState = "REFINING"
	StateRefined    GenerationState = "REFINED"
)

func (s GenerationState) Valid() bool {
	switch s {
	case StateEmpty, StateGenerating, StateGenerated, StateRefining, StateRefined:
		return true
	}
	return false
}

// Transient reports whether a generation or refinement call is in flight.
func (s GenerationState) Transient() bool {
	return s == StateGenerating || s == StateRefining
}

// HasContent reports whether sections in this state carry content.
func (s GenerationState) HasContent() bool {
	return s != StateEmpty && s != StateGenerating
}

// GenerateFrom lists the states generate() may start from.
var GenerateFrom = []GenerationState{StateEmpty}

// RefineFrom lists the states refine() may start from.
var RefineFrom = []GenerationState{StateGenerated, StateRefined}

// StateIn reports whether s is one of states.
func StateIn(s GenerationState, states []GenerationState) bool {
	for _, c := range states {
		if s == c {
			return true
		}
	}
	return false
}
