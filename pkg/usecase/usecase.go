package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

const (
	// DefaultDeadline bounds each per-community negotiation
	DefaultDeadline = 24 * time.Hour
	// DefaultReminderInterval is the pause between owner reminders
	DefaultReminderInterval = time.Hour
)

// UseCases wires the removal-approval workflow together. The store is the
// only required dependency; missing collaborators degrade to best-effort
// no-ops so partial configurations stay usable.
type UseCases struct {
	store      interfaces.RequestStore
	federation *model.Federation

	gateway    interfaces.NotificationGateway
	membership interfaces.MembershipLookup
	actions    interfaces.CommunityActions
	registry   interfaces.RegistryClient
	resolver   interfaces.IdentityResolver

	deadline         time.Duration
	reminderInterval time.Duration

	mu     sync.Mutex
	active map[types.RequestID]context.CancelCauseFunc
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

func WithGateway(gw interfaces.NotificationGateway) Option {
	return func(uc *UseCases) {
		uc.gateway = gw
	}
}

func WithMembership(lookup interfaces.MembershipLookup) Option {
	return func(uc *UseCases) {
		uc.membership = lookup
	}
}

func WithActions(actions interfaces.CommunityActions) Option {
	return func(uc *UseCases) {
		uc.actions = actions
	}
}

func WithRegistry(client interfaces.RegistryClient) Option {
	return func(uc *UseCases) {
		uc.registry = client
	}
}

func WithResolver(resolver interfaces.IdentityResolver) Option {
	return func(uc *UseCases) {
		uc.resolver = resolver
	}
}

// WithDeadline overrides the per-community negotiation deadline
func WithDeadline(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.deadline = d
	}
}

// WithReminderInterval overrides the owner reminder cadence
func WithReminderInterval(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.reminderInterval = d
	}
}

func New(store interfaces.RequestStore, federation *model.Federation, opts ...Option) *UseCases {
	uc := &UseCases{
		store:            store,
		federation:       federation,
		deadline:         DefaultDeadline,
		reminderInterval: DefaultReminderInterval,
		active:           make(map[types.RequestID]context.CancelCauseFunc),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// IsRunning reports whether this process currently orchestrates the request
func (uc *UseCases) IsRunning(id types.RequestID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.active[id]
	return ok
}

// reserve marks the request as orchestrated by this process. It returns
// false when a run is already active.
func (uc *UseCases) reserve(id types.RequestID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.active[id]; ok {
		return false
	}
	uc.active[id] = nil
	return true
}

func (uc *UseCases) setCancel(id types.RequestID, cancel context.CancelCauseFunc) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.active[id] = cancel
}

func (uc *UseCases) release(id types.RequestID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.active, id)
}
