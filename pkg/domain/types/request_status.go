package types

import "fmt"

// RequestStatus represents the lifecycle status of a removal request
type RequestStatus string

const (
	RequestStatusDraft      RequestStatus = "draft"
	RequestStatusConfirmed  RequestStatus = "confirmed"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// AllRequestStatuses returns all valid request statuses
func AllRequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusDraft,
		RequestStatusConfirmed,
		RequestStatusInProgress,
		RequestStatusCompleted,
		RequestStatusCancelled,
	}
}

// IsValid checks if the request status is valid
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusDraft,
		RequestStatusConfirmed,
		RequestStatusInProgress,
		RequestStatusCompleted,
		RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the request still needs orchestration. Active
// requests are reconstructed from the store at startup.
func (s RequestStatus) IsActive() bool {
	return s == RequestStatusConfirmed || s == RequestStatusInProgress
}

// IsTerminal reports whether the request reached a final status
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// String returns the string representation of the request status
func (s RequestStatus) String() string {
	return string(s)
}

// ParseRequestStatus parses a string into a RequestStatus
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid request status: %s", s)
	}
	return status, nil
}
