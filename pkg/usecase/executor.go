package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// applyApproved performs the removal action for every approved decision and
// records per-community success or failure. An action failure never stops
// the remaining removals. The result is persisted after each action so a
// crash mid-batch resumes with only the unapplied approvals.
func (uc *UseCases) applyApproved(ctx context.Context, req *model.RemovalRequest, mu *sync.Mutex, persist func(context.Context)) error {
	for _, d := range req.ApprovedOutcomes() {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "removal actions interrupted", goerr.V("requestID", req.ID))
		}

		logger := logging.From(ctx).With("community", d.CommunityID)
		if uc.actions == nil {
			mu.Lock()
			d.RecordActionResult(false, "no community actions configured")
			persist(ctx)
			mu.Unlock()
			logger.Warn("removal approved but no community actions configured")
			continue
		}

		err := uc.actions.Remove(ctx, d.CommunityID, req.Target.ID, req.Reason)
		mu.Lock()
		if err != nil {
			d.RecordActionResult(false, err.Error())
		} else {
			d.RecordActionResult(true, "")
		}
		persist(ctx)
		mu.Unlock()

		if err != nil {
			errutil.Handle(ctx, err, "failed to remove target from community")
		} else {
			logger.Info("target removed from community")
		}
	}
	return nil
}
