package interfaces

import (
	"context"

	"github.com/fedmod/ostracon/pkg/domain/types"
)

// NotificationGateway delivers messages and decision affordances to people.
// Delivery is best-effort: a false return with nil error means the message
// could not reach the person (e.g. blocked DMs) and the caller should carry
// on without it.
type NotificationGateway interface {
	// Notify sends a plain message to a person
	Notify(ctx context.Context, person types.UserID, text string) (bool, error)

	// PresentDecision shows a person a message with a binary decision
	// affordance and blocks until they decide or ctx is done. The
	// context error is returned on timeout or cancellation; the caller
	// decides how to finalize.
	PresentDecision(ctx context.Context, person types.UserID, text string) (types.Decision, error)

	// Announce posts a message to a shared channel (operator log)
	Announce(ctx context.Context, channelID string, text string) error
}

// MembershipLookup answers whether a person is present in a community
type MembershipLookup interface {
	IsPresent(ctx context.Context, community types.CommunityID, person types.UserID) (bool, error)
}

// CommunityActions performs the side-effecting removal in one community
type CommunityActions interface {
	Remove(ctx context.Context, community types.CommunityID, person types.UserID, reason string) error
}

// IdentityResolver resolves an auxiliary-system name into its opaque
// identifier. An empty result with nil error means the name is unknown.
type IdentityResolver interface {
	ResolveUUID(ctx context.Context, name string) (string, error)
}
