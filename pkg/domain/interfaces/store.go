package interfaces

import (
	"context"
	"errors"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Store errors shared by all backends
var (
	ErrRequestNotFound = errors.New("removal request not found")
	// ErrAlreadyClaimed is returned by Claim when the request is already
	// in_progress. It guards against a second orchestrator run for the
	// same request.
	ErrAlreadyClaimed = errors.New("removal request already claimed")
	// ErrNotClaimable is returned by Claim when the request is not in the
	// confirmed status.
	ErrNotClaimable = errors.New("removal request is not claimable")
	// ErrCorruptRecord is returned when a persisted record cannot be
	// decoded. The record is quarantined, not silently dropped.
	ErrCorruptRecord = errors.New("removal request record is corrupt")
)

// RequestStore is the durable pending-request store. It is the single source
// of truth: orchestrator state must be reconstructable from it after a
// restart. Writes for different request IDs never block each other; the
// orchestrator is the only writer once a request is in_progress.
type RequestStore interface {
	// Put saves a request (upsert, last-writer-wins per ID)
	Put(ctx context.Context, req *model.RemovalRequest) error

	// Get retrieves a request by ID, ErrRequestNotFound when absent
	Get(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error)

	// Delete removes a request record
	Delete(ctx context.Context, id types.RequestID) error

	// ListActive returns every confirmed or in_progress request, so
	// negotiations can be resumed or started after a process restart
	ListActive(ctx context.Context) ([]*model.RemovalRequest, error)

	// Claim atomically transitions a confirmed request to in_progress and
	// returns the claimed request. A request that is already in_progress
	// yields ErrAlreadyClaimed; any other status yields ErrNotClaimable.
	Claim(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error)

	// Close releases backend resources
	Close() error
}
