package model

import (
	"time"

	"github.com/fedmod/ostracon/pkg/domain/types"
)

// CommunityDecision tracks one owner's approval negotiation. It is owned by
// its RemovalRequest and never shared between requests.
type CommunityDecision struct {
	CommunityID   types.CommunityID   `json:"communityId"`
	OwnerID       types.UserID        `json:"ownerId"`
	State         types.DecisionState `json:"state"`
	Deadline      time.Time           `json:"deadline"`
	RemindersSent int                 `json:"remindersSent"`
	FailureReason string              `json:"failureReason,omitempty"`
}

// NewCommunityDecision starts a negotiation for one community
func NewCommunityDecision(communityID types.CommunityID, ownerID types.UserID, deadline time.Time) *CommunityDecision {
	return &CommunityDecision{
		CommunityID: communityID,
		OwnerID:     ownerID,
		State:       types.DecisionStateAwaitingResponse,
		Deadline:    deadline,
	}
}

// Resolve moves the decision out of awaiting_response. It enforces the
// monotonic state invariant: a decision that already resolved rejects any
// late input and Resolve returns false.
func (d *CommunityDecision) Resolve(state types.DecisionState) bool {
	if d.State.Resolved() {
		return false
	}
	d.State = state
	return true
}

// RecordActionResult finalizes an approved decision with the removal action
// outcome. It is a no-op unless the decision is in the approved state.
func (d *CommunityDecision) RecordActionResult(succeeded bool, reason string) bool {
	if d.State != types.DecisionStateApproved {
		return false
	}
	if succeeded {
		d.State = types.DecisionStateActionSucceeded
	} else {
		d.State = types.DecisionStateActionFailed
		d.FailureReason = reason
	}
	return true
}
