package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// Sweep starts orchestration for every active request that is not already
// running in this process. Confirmed requests are claimed and started;
// in_progress requests left behind by a crash are resumed with their
// persisted deadlines and reminder counts. The runs are launched as
// goroutines bound to ctx; Sweep itself returns immediately.
func (uc *UseCases) Sweep(ctx context.Context) error {
	reqs, err := uc.store.ListActive(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list active removal requests")
	}

	for _, req := range reqs {
		if !uc.reserve(req.ID) {
			continue
		}
		go func(id types.RequestID) {
			defer uc.release(id)
			defer func() {
				if r := recover(); r != nil {
					logging.From(ctx).Error("panic in removal request run", "requestID", id, "panic", r)
				}
			}()
			if err := uc.run(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
				errutil.Handle(ctx, err, "removal request run failed")
			}
		}(req.ID)
	}
	return nil
}

// StartRun claims the request and drives it synchronously to a terminal
// status. Serve mode uses Sweep instead; this is the one-shot entry point.
func (uc *UseCases) StartRun(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	if !uc.reserve(id) {
		return nil, goerr.Wrap(errRunSuperseded, "run already active", goerr.V("requestID", id))
	}
	defer uc.release(id)

	req, err := uc.store.Claim(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to claim removal request", goerr.V("requestID", id))
	}
	return uc.execute(ctx, req)
}

// run claims or resumes a single request. The caller holds the reservation.
func (uc *UseCases) run(ctx context.Context, id types.RequestID) error {
	req, err := uc.store.Claim(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, interfaces.ErrAlreadyClaimed):
		// Orphaned in_progress request; resume from the persisted record
		req, err = uc.store.Get(ctx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to load request for resume", goerr.V("requestID", id))
		}
	case errors.Is(err, interfaces.ErrNotClaimable):
		// Finished or cancelled between listing and claiming
		return nil
	default:
		return goerr.Wrap(err, "failed to claim removal request", goerr.V("requestID", id))
	}

	_, err = uc.execute(ctx, req)
	return err
}

// execute drives a claimed request through negotiation, actions, registry
// update and completion. On shutdown it returns with the request still
// in_progress so a later sweep resumes it.
func (uc *UseCases) execute(ctx context.Context, req *model.RemovalRequest) (*model.RemovalRequest, error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	uc.setCancel(req.ID, cancel)

	logger := logging.From(ctx).With("requestID", req.ID, "target", req.Target.ID)
	runCtx = logging.With(runCtx, logger)
	bgCtx := logging.With(context.WithoutCancel(ctx), logger)

	// Fresh claims have no outcomes yet: discover which communities the
	// target belongs to and open one negotiation per community.
	if len(req.Outcomes) == 0 {
		deadline := time.Now().UTC().Add(uc.deadline)
		for _, c := range uc.federation.Communities() {
			if !uc.memberOf(runCtx, c.ID, req.Target.ID) {
				continue
			}
			req.Outcomes = append(req.Outcomes, model.NewCommunityDecision(c.ID, c.OwnerID, deadline))
		}
		if err := uc.store.Put(runCtx, req); err != nil {
			return nil, goerr.Wrap(err, "failed to persist negotiation plan", goerr.V("requestID", req.ID))
		}
		logger.Info("negotiations opened", "communities", len(req.Outcomes), "deadline", deadline)
	} else {
		logger.Info("resuming negotiations", "communities", len(req.Outcomes))
	}

	var mu sync.Mutex
	persist := func(ctx context.Context) {
		// callers hold mu
		if err := uc.store.Put(ctx, req.Clone()); err != nil {
			errutil.Handle(ctx, err, "failed to persist removal request")
		}
	}

	var prompted []*model.CommunityDecision
	var g errgroup.Group
	for _, d := range req.Outcomes {
		if d.State.Resolved() {
			continue
		}
		prompted = append(prompted, d)
		d := d
		g.Go(func() error {
			uc.negotiateOne(runCtx, req, d, &mu, persist)
			return nil
		})
	}
	_ = g.Wait()

	if errors.Is(context.Cause(runCtx), errRunCancelled) {
		uc.finalizeCancelled(bgCtx, req, prompted)
		logger.Info("removal request cancelled")
		return req, nil
	}
	if err := runCtx.Err(); err != nil {
		// Shutdown: the record stays in_progress for the next sweep
		return req, err
	}

	if err := uc.applyApproved(runCtx, req, &mu, persist); err != nil {
		return req, err
	}
	uc.notifyTarget(runCtx, req)
	uc.updateRegistry(runCtx, req)

	now := time.Now().UTC()
	req.Status = types.RequestStatusCompleted
	req.CompletedAt = &now
	if err := uc.store.Put(bgCtx, req); err != nil {
		return nil, goerr.Wrap(err, "failed to persist completed request", goerr.V("requestID", req.ID))
	}

	uc.announce(bgCtx, completionSummary(req, uc.communityName))
	logger.Info("removal request completed")
	return req, nil
}

// memberOf treats lookup failures as absence: a community we cannot inspect
// never enters the negotiation.
func (uc *UseCases) memberOf(ctx context.Context, community types.CommunityID, person types.UserID) bool {
	if uc.membership == nil {
		return false
	}
	ok, err := uc.membership.IsPresent(ctx, community, person)
	if err != nil {
		logging.From(ctx).Warn("membership lookup failed, treating as absent",
			"community", community, "error", err)
		return false
	}
	return ok
}

// negotiateOne drives a single owner negotiation until the decision resolves
// or ctx is done. Reminders follow the configured cadence; when a resumed
// run finds multiple reminder slots already elapsed it sends one catch-up
// reminder and clamps the counter instead of replaying the backlog.
func (uc *UseCases) negotiateOne(ctx context.Context, req *model.RemovalRequest, d *model.CommunityDecision, mu *sync.Mutex, persist func(context.Context)) {
	logger := logging.From(ctx).With("community", d.CommunityID, "owner", d.OwnerID)
	communityName := uc.communityName(d.CommunityID)

	finalize := func(state types.DecisionState) bool {
		mu.Lock()
		defer mu.Unlock()
		if !d.Resolve(state) {
			return false
		}
		persist(context.WithoutCancel(ctx))
		return true
	}

	if uc.gateway == nil {
		logger.Warn("no notification gateway configured, negotiation times out")
		finalize(types.DecisionStateTimedOut)
		return
	}

	promptCtx, stopPrompt := context.WithDeadline(ctx, d.Deadline)
	defer stopPrompt()

	type promptResult struct {
		decision types.Decision
		err      error
	}
	resCh := make(chan promptResult, 1)
	go func() {
		decision, err := uc.gateway.PresentDecision(promptCtx, d.OwnerID, ownerPrompt(req, communityName, d.Deadline))
		resCh <- promptResult{decision: decision, err: err}
	}()

	start := d.Deadline.Add(-uc.deadline)
	for {
		mu.Lock()
		sent := d.RemindersSent
		mu.Unlock()

		var reminderCh <-chan time.Time
		var reminderTimer *time.Timer
		if next := start.Add(time.Duration(sent+1) * uc.reminderInterval); next.Before(d.Deadline) {
			reminderTimer = time.NewTimer(time.Until(next))
			reminderCh = reminderTimer.C
		}

		select {
		case res := <-resCh:
			if reminderTimer != nil {
				reminderTimer.Stop()
			}
			uc.settleDecision(ctx, req, d, communityName, res.decision, res.err, finalize, logger)
			return

		case <-reminderCh:
			mu.Lock()
			elapsed := time.Since(start)
			missed := int(elapsed / uc.reminderInterval)
			if missed <= d.RemindersSent {
				missed = d.RemindersSent + 1
			}
			d.RemindersSent = missed
			persist(ctx)
			mu.Unlock()

			if ok, err := uc.gateway.Notify(ctx, d.OwnerID, ownerReminder(req, communityName, d.Deadline)); err != nil {
				logger.Warn("failed to send reminder", "error", err)
			} else if !ok {
				logger.Warn("reminder undeliverable")
			}

		case <-ctx.Done():
			if reminderTimer != nil {
				reminderTimer.Stop()
			}
			// Cancellation and shutdown are finalized by the caller
			return
		}
	}
}

// settleDecision maps a prompt result onto the decision state
func (uc *UseCases) settleDecision(ctx context.Context, req *model.RemovalRequest, d *model.CommunityDecision, communityName string, decision types.Decision, promptErr error, finalize func(types.DecisionState) bool, logger *slog.Logger) {
	notify := func(text string) {
		if ok, err := uc.gateway.Notify(ctx, d.OwnerID, text); err != nil {
			logger.Warn("failed to notify owner", "error", err)
		} else if !ok {
			logger.Warn("owner notification undeliverable")
		}
	}

	switch {
	case promptErr == nil:
		switch decision {
		case types.DecisionApprove:
			if finalize(types.DecisionStateApproved) {
				logger.Info("owner approved removal")
				notify(ownerAcknowledgement(req, communityName, true))
			}
		case types.DecisionDeny:
			if finalize(types.DecisionStateDenied) {
				logger.Info("owner denied removal")
				notify(ownerAcknowledgement(req, communityName, false))
			}
		default:
			if finalize(types.DecisionStateTimedOut) {
				notify(ownerTimeoutNotice(req, communityName))
			}
		}

	case errors.Is(promptErr, context.DeadlineExceeded):
		if finalize(types.DecisionStateTimedOut) {
			logger.Info("negotiation deadline reached")
			notify(ownerTimeoutNotice(req, communityName))
		}

	case errors.Is(promptErr, context.Canceled):
		// Run cancelled or shutting down; the caller finalizes

	default:
		// The owner never saw an affordance, so no consent exists
		logger.Warn("decision prompt undeliverable, treating as no response", "error", promptErr)
		finalize(types.DecisionStateTimedOut)
	}
}

// notifyTarget tells the person the outcome once all negotiations resolved.
// Nothing is sent when no community was involved.
func (uc *UseCases) notifyTarget(ctx context.Context, req *model.RemovalRequest) {
	if uc.gateway == nil || len(req.Outcomes) == 0 {
		return
	}

	var removedFrom []string
	for _, o := range req.Outcomes {
		if o.State == types.DecisionStateActionSucceeded {
			removedFrom = append(removedFrom, uc.communityName(o.CommunityID))
		}
	}

	if ok, err := uc.gateway.Notify(ctx, req.Target.ID, targetNotice(req, removedFrom)); err != nil {
		logging.From(ctx).Warn("failed to notify target", "error", err)
	} else if !ok {
		logging.From(ctx).Warn("target notification undeliverable")
	}
}

// updateRegistry upserts the registry entry exactly once per request.
// Registry failures are reported but never fail the request.
func (uc *UseCases) updateRegistry(ctx context.Context, req *model.RemovalRequest) {
	if uc.registry == nil {
		return
	}
	created, err := uc.registry.Upsert(ctx, req.Target, req.Reason, req.AuxiliaryIDs)
	if err != nil {
		errutil.Handle(ctx, err, "failed to update registry")
		return
	}
	logging.From(ctx).Info("registry updated", "created", created)
}

// announce posts to the federation log channel when one is configured
func (uc *UseCases) announce(ctx context.Context, text string) {
	if uc.gateway == nil {
		return
	}
	channelID := uc.federation.LogChannelID()
	if channelID == "" {
		return
	}
	if err := uc.gateway.Announce(ctx, channelID, text); err != nil {
		logging.From(ctx).Warn("failed to post announcement", "error", err)
	}
}
