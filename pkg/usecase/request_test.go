package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

func TestConfirmRequest(t *testing.T) {
	e := newEnv(t, time.Hour, time.Hour)

	draft := &model.RemovalRequest{
		Target: model.Target{ID: targetUser, DisplayName: "JohnDoe"},
		Reason: "harassment",
		Status: types.RequestStatusDraft,
	}
	req, err := e.uc.ConfirmRequest(context.Background(), draft)
	gt.NoError(t, err).Required()

	gt.Bool(t, req.ID != "").True()
	gt.Value(t, req.Status).Equal(types.RequestStatusConfirmed)
	gt.Bool(t, req.CreatedAt.IsZero()).False()

	// The draft itself is untouched
	gt.Value(t, draft.Status).Equal(types.RequestStatusDraft)

	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.RequestStatusConfirmed)

	active, err := e.uc.ListActiveRequests(context.Background())
	gt.NoError(t, err).Required()
	gt.Array(t, active).Length(1)
}

func TestConfirmRequestRejectsNonDraft(t *testing.T) {
	e := newEnv(t, time.Hour, time.Hour)

	_, err := e.uc.ConfirmRequest(context.Background(), &model.RemovalRequest{
		Target: model.Target{ID: targetUser, DisplayName: "JohnDoe"},
		Reason: "harassment",
		Status: types.RequestStatusConfirmed,
	})
	gt.Error(t, err)
}

func TestConfirmRequestRejectsInvalidDraft(t *testing.T) {
	e := newEnv(t, time.Hour, time.Hour)

	_, err := e.uc.ConfirmRequest(context.Background(), &model.RemovalRequest{
		Target: model.Target{ID: targetUser},
		Status: types.RequestStatusDraft,
	})
	gt.Error(t, err)
}
