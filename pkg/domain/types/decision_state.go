package types

import "fmt"

// DecisionState represents the state of one per-community approval
// negotiation. The state is monotonic: once it leaves
// DecisionStateAwaitingResponse it never returns to it.
type DecisionState string

const (
	DecisionStateAwaitingResponse DecisionState = "awaiting_response"
	DecisionStateApproved         DecisionState = "approved"
	DecisionStateDenied           DecisionState = "denied"
	DecisionStateTimedOut         DecisionState = "timed_out"
	DecisionStateCancelled        DecisionState = "cancelled"
	DecisionStateActionSucceeded  DecisionState = "action_succeeded"
	DecisionStateActionFailed     DecisionState = "action_failed"
)

// AllDecisionStates returns all valid decision states
func AllDecisionStates() []DecisionState {
	return []DecisionState{
		DecisionStateAwaitingResponse,
		DecisionStateApproved,
		DecisionStateDenied,
		DecisionStateTimedOut,
		DecisionStateCancelled,
		DecisionStateActionSucceeded,
		DecisionStateActionFailed,
	}
}

// IsValid checks if the decision state is valid
func (s DecisionState) IsValid() bool {
	switch s {
	case DecisionStateAwaitingResponse,
		DecisionStateApproved,
		DecisionStateDenied,
		DecisionStateTimedOut,
		DecisionStateCancelled,
		DecisionStateActionSucceeded,
		DecisionStateActionFailed:
		return true
	default:
		return false
	}
}

// Resolved reports whether the negotiation finished, i.e. the state has left
// awaiting_response. A resolved decision never accepts further input.
func (s DecisionState) Resolved() bool {
	return s != DecisionStateAwaitingResponse && s != ""
}

// IsTerminal reports whether the decision needs no further processing.
// Approved decisions are resolved but not terminal: the removal action still
// has to run and produce action_succeeded or action_failed.
func (s DecisionState) IsTerminal() bool {
	switch s {
	case DecisionStateDenied,
		DecisionStateTimedOut,
		DecisionStateCancelled,
		DecisionStateActionSucceeded,
		DecisionStateActionFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision state
func (s DecisionState) String() string {
	return string(s)
}

// ParseDecisionState parses a string into a DecisionState
func ParseDecisionState(s string) (DecisionState, error) {
	state := DecisionState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid decision state: %s", s)
	}
	return state, nil
}
