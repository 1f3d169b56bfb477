package engine

import "fmt"

// State tracks a run through its lifecycle.
type State string

const (
	StateStart        State = "start"
	StateLoaded       State = "loaded"
	StateClassified   State = "classified"
	StateLimitApplied State = "limit-applied"
	StatePlanned      State = "planned"
	StateReconciled   State = "reconciled"
	StatePersisted    State = "persisted"
	StateAborted      State = "aborted"
)

// forward lists the single legal forward edge out of each non-terminal
// state. Every non-terminal state may additionally abort.
var forward = map[State]State{
	StateStart:        StateLoaded,
	StateLoaded:       StateClassified,
	StateClassified:   StateLimitApplied,
	StateLimitApplied: StatePlanned,
	StatePlanned:      StateReconciled,
	StateReconciled:   StatePersisted,
}

// Terminal reports whether no transition may leave s.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateAborted
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateAborted {
		return true
	}
	return forward[s] == next
}

// Transition validates a state change and returns the new state.
func Transition(from, to State) (State, error) {
	if !from.CanTransition(to) {
		return from, &StateTransitionError{From: from, To: to}
	}
	return to, nil
}

// StateTransitionError reports an attempt to move a run through an
// edge the lifecycle does not have. It indicates a sequencing bug in
// the caller, not a recoverable condition.
type StateTransitionError struct {
	From State
	To   State
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("illegal run state transition %s -> %s", e.From, e.To)
}
