package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Auxiliary identifier keys. The keys are opaque to the orchestrator; they
// are carried through to the registry unchanged.
const (
	AuxProfileName = "profile_name"
	AuxProfileUUID = "profile_uuid"
)

// Target is the person subject to a removal request
type Target struct {
	ID          types.UserID `json:"id"`
	DisplayName string       `json:"displayName"`
}

// RemovalRequest is the unit of work: one flagged user plus the per-community
// approval outcomes. The struct is the persisted record; field tags define
// the durable JSON schema.
type RemovalRequest struct {
	ID           types.RequestID      `json:"id"`
	Target       Target               `json:"target"`
	Reason       string               `json:"reason"`
	AuxiliaryIDs map[string]string    `json:"auxiliaryIdentifiers,omitempty"`
	Status       types.RequestStatus  `json:"status"`
	Outcomes     []*CommunityDecision `json:"communityOutcomes"`
	CreatedAt    time.Time            `json:"createdAt"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
}

// NewRequestID generates a time-ordered request ID
func NewRequestID() types.RequestID {
	return types.RequestID(uuid.Must(uuid.NewV7()).String())
}

// Validate checks structural validity of the request
func (r *RemovalRequest) Validate() error {
	if r.Target.ID == "" {
		return goerr.New("target user ID is required")
	}
	if r.Target.DisplayName == "" {
		return goerr.New("target display name is required")
	}
	if r.Reason == "" {
		return goerr.New("reason is required")
	}
	if !r.Status.IsValid() {
		return goerr.New("invalid request status", goerr.V("status", r.Status))
	}
	return nil
}

// SetAuxiliaryID records an auxiliary identifier on the request
func (r *RemovalRequest) SetAuxiliaryID(key, value string) {
	if r.AuxiliaryIDs == nil {
		r.AuxiliaryIDs = make(map[string]string)
	}
	r.AuxiliaryIDs[key] = value
}

// Outcome returns the decision for the given community, or nil
func (r *RemovalRequest) Outcome(id types.CommunityID) *CommunityDecision {
	for _, o := range r.Outcomes {
		if o.CommunityID == id {
			return o
		}
	}
	return nil
}

// AllOutcomesTerminal reports whether every community decision reached a
// terminal state. A request may become completed only once this holds.
func (r *RemovalRequest) AllOutcomesTerminal() bool {
	for _, o := range r.Outcomes {
		if !o.State.IsTerminal() {
			return false
		}
	}
	return true
}

// ApprovedOutcomes returns the decisions awaiting removal action
func (r *RemovalRequest) ApprovedOutcomes() []*CommunityDecision {
	var approved []*CommunityDecision
	for _, o := range r.Outcomes {
		if o.State == types.DecisionStateApproved {
			approved = append(approved, o)
		}
	}
	return approved
}

// Clone returns a deep copy of the request
func (r *RemovalRequest) Clone() *RemovalRequest {
	clone := &RemovalRequest{
		ID:        r.ID,
		Target:    r.Target,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	if r.AuxiliaryIDs != nil {
		clone.AuxiliaryIDs = make(map[string]string, len(r.AuxiliaryIDs))
		for k, v := range r.AuxiliaryIDs {
			clone.AuxiliaryIDs[k] = v
		}
	}
	if r.Outcomes != nil {
		clone.Outcomes = make([]*CommunityDecision, len(r.Outcomes))
		for i, o := range r.Outcomes {
			copied := *o
			clone.Outcomes[i] = &copied
		}
	}
	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return clone
}
