package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Firestore is a Firestore-backed RequestStore for multi-instance
// deployments. Claim uses a transaction so only one orchestrator run can
// take a confirmed request.
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.RequestStore = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) collection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_removal_requests"
	}
	return "removal_requests"
}

func (f *Firestore) doc(id types.RequestID) *firestore.DocumentRef {
	return f.client.Collection(f.collection()).Doc(string(id))
}

func (f *Firestore) Put(ctx context.Context, req *model.RemovalRequest) error {
	if req.ID == "" {
		return goerr.New("request ID is required")
	}

	if _, err := f.doc(req.ID).Set(ctx, req); err != nil {
		return goerr.Wrap(err, "failed to save request", goerr.V("id", req.ID))
	}
	return nil
}

func (f *Firestore) Get(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	doc, err := f.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get request", goerr.V("id", id))
	}

	var req model.RemovalRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, goerr.Wrap(interfaces.ErrCorruptRecord, "failed to decode request",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return &req, nil
}

func (f *Firestore) Delete(ctx context.Context, id types.RequestID) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	if _, err := f.doc(id).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete request", goerr.V("id", id))
	}
	return nil
}

func (f *Firestore) ListActive(ctx context.Context) ([]*model.RemovalRequest, error) {
	iter := f.client.Collection(f.collection()).
		Where("Status", "in", []string{
			types.RequestStatusConfirmed.String(),
			types.RequestStatusInProgress.String(),
		}).
		Documents(ctx)
	defer iter.Stop()

	var active []*model.RemovalRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate requests")
		}

		var req model.RemovalRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, goerr.Wrap(interfaces.ErrCorruptRecord, "failed to decode request",
				goerr.V("doc", doc.Ref.ID), goerr.V("cause", err.Error()))
		}
		active = append(active, &req)
	}
	return active, nil
}

func (f *Firestore) Claim(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	var claimed *model.RemovalRequest

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(f.doc(id))
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get request", goerr.V("id", id))
		}

		var req model.RemovalRequest
		if err := doc.DataTo(&req); err != nil {
			return goerr.Wrap(interfaces.ErrCorruptRecord, "failed to decode request", goerr.V("id", id))
		}

		switch req.Status {
		case types.RequestStatusConfirmed:
			req.Status = types.RequestStatusInProgress
			claimed = &req
			return tx.Set(f.doc(id), &req)
		case types.RequestStatusInProgress:
			return goerr.Wrap(interfaces.ErrAlreadyClaimed, "request is in progress", goerr.V("id", id))
		default:
			return goerr.Wrap(interfaces.ErrNotClaimable, "request cannot be claimed",
				goerr.V("id", id), goerr.V("status", req.Status))
		}
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
