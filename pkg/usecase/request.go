package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
)

// ConfirmRequest promotes a parsed draft into a confirmed, persisted request.
// The returned request carries its assigned ID; orchestration starts on the
// next sweep.
func (uc *UseCases) ConfirmRequest(ctx context.Context, draft *model.RemovalRequest) (*model.RemovalRequest, error) {
	if draft == nil || draft.Status != types.RequestStatusDraft {
		return nil, goerr.Wrap(ErrNotDraft, "only drafts can be confirmed")
	}
	if err := draft.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid removal request")
	}

	req := draft.Clone()
	req.ID = model.NewRequestID()
	req.Status = types.RequestStatusConfirmed
	req.CreatedAt = time.Now().UTC()

	if err := uc.store.Put(ctx, req); err != nil {
		return nil, goerr.Wrap(err, "failed to save removal request", goerr.V("requestID", req.ID))
	}
	return req, nil
}

// GetRequest retrieves a request by ID
func (uc *UseCases) GetRequest(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	return uc.store.Get(ctx, id)
}

// ListActiveRequests returns every confirmed or in_progress request
func (uc *UseCases) ListActiveRequests(ctx context.Context) ([]*model.RemovalRequest, error) {
	return uc.store.ListActive(ctx)
}

// CancelRequest stops a request. A live run in this process is cancelled
// cooperatively and finalizes itself; otherwise the stored record is
// finalized directly. Cancelling an already terminal request is a no-op.
func (uc *UseCases) CancelRequest(ctx context.Context, id types.RequestID) error {
	uc.mu.Lock()
	cancel := uc.active[id]
	uc.mu.Unlock()
	if cancel != nil {
		cancel(errRunCancelled)
		return nil
	}

	req, err := uc.store.Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load removal request", goerr.V("requestID", id))
	}
	if req.Status.IsTerminal() {
		return nil
	}
	uc.finalizeCancelled(ctx, req, nil)
	return nil
}

// finalizeCancelled marks every non-terminal outcome and the request itself
// as cancelled and persists the result. No removal actions run for a
// cancelled request. notified lists the outcomes whose owners already saw a
// prompt and should receive a cancellation notice.
func (uc *UseCases) finalizeCancelled(ctx context.Context, req *model.RemovalRequest, notified []*model.CommunityDecision) {
	for _, o := range req.Outcomes {
		if !o.State.IsTerminal() {
			o.State = types.DecisionStateCancelled
		}
	}
	req.Status = types.RequestStatusCancelled

	if err := uc.store.Put(ctx, req); err != nil {
		errutil.Handle(ctx, err, "failed to persist cancelled request")
	}

	if uc.gateway != nil {
		for _, o := range notified {
			if ok, err := uc.gateway.Notify(ctx, o.OwnerID, ownerCancellationNotice(req, uc.communityName(o.CommunityID))); err != nil || !ok {
				// best effort; the request is cancelled either way
				continue
			}
		}
	}
	uc.announce(ctx, cancellationSummary(req))
}
