package interfaces

import (
	"context"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// RegistryClient talks to the external blacklist registry. Its failures are
// reported but never block the negotiation or removal pipeline; registry
// consistency is secondary to community safety actions. Callers may retry on
// transport failure.
type RegistryClient interface {
	// Upsert adds or updates the registry entry for a target
	Upsert(ctx context.Context, target model.Target, reason string, auxiliaryIDs map[string]string) (bool, error)

	// Remove deletes an entry by identifier and field
	Remove(ctx context.Context, identifier string, field types.RemoveField) (bool, error)

	// Check looks up a target; nil entry means not blacklisted
	Check(ctx context.Context, target types.UserID) (*model.BlacklistEntry, error)
}
