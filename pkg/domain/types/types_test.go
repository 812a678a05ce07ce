package types_test

import (
	"testing"

	"github.com/fedmod/ostracon/pkg/domain/types"
)

func TestRequestStatus(t *testing.T) {
	t.Run("all statuses are valid", func(t *testing.T) {
		for _, s := range types.AllRequestStatuses() {
			if !s.IsValid() {
				t.Errorf("status %s should be valid", s)
			}
		}
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		if types.RequestStatus("pending").IsValid() {
			t.Error("unknown status should be invalid")
		}
	})

	t.Run("parse round trip", func(t *testing.T) {
		status, err := types.ParseRequestStatus("in_progress")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != types.RequestStatusInProgress {
			t.Errorf("expected %s, got %s", types.RequestStatusInProgress, status)
		}
	})

	t.Run("parse rejects unknown", func(t *testing.T) {
		if _, err := types.ParseRequestStatus("bogus"); err == nil {
			t.Error("expected error for unknown status")
		}
	})

	t.Run("active and terminal are disjoint", func(t *testing.T) {
		for _, s := range types.AllRequestStatuses() {
			if s.IsActive() && s.IsTerminal() {
				t.Errorf("status %s cannot be both active and terminal", s)
			}
		}
	})

	t.Run("confirmed and in_progress are active", func(t *testing.T) {
		if !types.RequestStatusConfirmed.IsActive() {
			t.Error("confirmed should be active")
		}
		if !types.RequestStatusInProgress.IsActive() {
			t.Error("in_progress should be active")
		}
		if types.RequestStatusDraft.IsActive() {
			t.Error("draft should not be active")
		}
	})
}

func TestDecisionState(t *testing.T) {
	t.Run("awaiting_response is neither resolved nor terminal", func(t *testing.T) {
		s := types.DecisionStateAwaitingResponse
		if s.Resolved() {
			t.Error("awaiting_response should not be resolved")
		}
		if s.IsTerminal() {
			t.Error("awaiting_response should not be terminal")
		}
	})

	t.Run("approved is resolved but not terminal", func(t *testing.T) {
		s := types.DecisionStateApproved
		if !s.Resolved() {
			t.Error("approved should be resolved")
		}
		if s.IsTerminal() {
			t.Error("approved should not be terminal before the action runs")
		}
	})

	t.Run("terminal states are resolved", func(t *testing.T) {
		for _, s := range types.AllDecisionStates() {
			if s.IsTerminal() && !s.Resolved() {
				t.Errorf("terminal state %s must be resolved", s)
			}
		}
	})

	t.Run("parse rejects unknown", func(t *testing.T) {
		if _, err := types.ParseDecisionState("maybe"); err == nil {
			t.Error("expected error for unknown state")
		}
	})
}

func TestRemoveField(t *testing.T) {
	t.Run("valid fields", func(t *testing.T) {
		for _, s := range []string{"user_id", "profile_uuid"} {
			field, err := types.ParseRemoveField(s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if field.String() != s {
				t.Errorf("expected %s, got %s", s, field)
			}
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		if _, err := types.ParseRemoveField("email"); err == nil {
			t.Error("expected error for unknown field")
		}
	})
}
