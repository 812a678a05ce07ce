package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Memory is an in-memory RequestStore for tests and local development
type Memory struct {
	mu       sync.RWMutex
	requests map[types.RequestID]*model.RemovalRequest
}

var _ interfaces.RequestStore = &Memory{}

func New() *Memory {
	return &Memory{
		requests: make(map[types.RequestID]*model.RemovalRequest),
	}
}

func (m *Memory) Put(ctx context.Context, req *model.RemovalRequest) error {
	if req.ID == "" {
		return goerr.New("request ID is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req.Clone()
	return nil
}

func (m *Memory) Get(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, exists := m.requests[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
	}
	return req.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id types.RequestID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[id]; !exists {
		return goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
	}
	delete(m.requests, id)
	return nil
}

func (m *Memory) ListActive(ctx context.Context) ([]*model.RemovalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*model.RemovalRequest
	for _, req := range m.requests {
		if req.Status.IsActive() {
			active = append(active, req.Clone())
		}
	}
	return active, nil
}

func (m *Memory) Claim(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, exists := m.requests[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
	}

	switch req.Status {
	case types.RequestStatusConfirmed:
		req.Status = types.RequestStatusInProgress
		return req.Clone(), nil
	case types.RequestStatusInProgress:
		return nil, goerr.Wrap(interfaces.ErrAlreadyClaimed, "request is in progress", goerr.V("id", id))
	default:
		return nil, goerr.Wrap(interfaces.ErrNotClaimable, "request cannot be claimed",
			goerr.V("id", id), goerr.V("status", req.Status))
	}
}

func (m *Memory) Close() error {
	return nil
}
