package usecase

import (
	"context"
	"fmt"

	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// HandleMemberJoined checks a newly joined person against the registry and
// removes them when an entry exists. A registry lookup failure is reported
// and the join is left alone; the gatekeeper never removes anyone it cannot
// verify.
func (uc *UseCases) HandleMemberJoined(ctx context.Context, community types.CommunityID, person types.UserID) error {
	if uc.registry == nil {
		return nil
	}

	logger := logging.From(ctx).With("community", community, "person", person)

	entry, err := uc.registry.Check(ctx, person)
	if err != nil {
		errutil.Handle(ctx, err, "registry check failed for joining member")
		return nil
	}
	if entry == nil {
		return nil
	}

	logger.Info("blacklisted member joined", "reason", entry.Reason)

	if uc.actions != nil {
		if err := uc.actions.Remove(ctx, community, person, entry.Reason); err != nil {
			errutil.Handle(ctx, err, "failed to remove blacklisted member")
			uc.announce(ctx, fmt.Sprintf(
				"Blacklisted user *%s* (`%s`) joined %s but could not be removed.",
				entry.DisplayName, person, uc.communityName(community)))
			return nil
		}
	}

	uc.announce(ctx, fmt.Sprintf(
		"Blacklisted user *%s* (`%s`) joined %s and was removed.\nReason: %s",
		entry.DisplayName, person, uc.communityName(community), entry.Reason))
	return nil
}
