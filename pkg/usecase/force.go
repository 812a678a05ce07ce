package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// ForceResult reports what a forced removal did
type ForceResult struct {
	RegistryUpdated bool
	RemovedFrom     []types.CommunityID
	Failed          map[types.CommunityID]string
}

// ForceRemoval blacklists a target immediately, skipping owner negotiation.
// The registry is updated first; when kick is set the target is also removed
// from every federation community they belong to. Per-community failures are
// collected, not fatal.
func (uc *UseCases) ForceRemoval(ctx context.Context, target model.Target, reason string, auxiliaryIDs map[string]string, kick bool) (*ForceResult, error) {
	if target.ID == "" || reason == "" {
		return nil, goerr.New("target ID and reason are required")
	}

	logger := logging.From(ctx).With("target", target.ID)
	result := &ForceResult{Failed: make(map[types.CommunityID]string)}

	if uc.registry != nil {
		created, err := uc.registry.Upsert(ctx, target, reason, auxiliaryIDs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to update registry", goerr.V("target", target.ID))
		}
		result.RegistryUpdated = true
		logger.Info("registry updated by forced removal", "created", created)
	}

	if kick && uc.actions != nil {
		for _, c := range uc.federation.Communities() {
			if !uc.memberOf(ctx, c.ID, target.ID) {
				continue
			}
			if err := uc.actions.Remove(ctx, c.ID, target.ID, reason); err != nil {
				result.Failed[c.ID] = err.Error()
				logger.Warn("forced removal failed", "community", c.ID, "error", err)
				continue
			}
			result.RemovedFrom = append(result.RemovedFrom, c.ID)
			logger.Info("target force-removed", "community", c.ID)
		}
	}

	uc.announce(ctx, forceSummary(target, reason, result, uc.communityName))
	return result, nil
}
