package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/repository/firestore"
	"github.com/fedmod/ostracon/pkg/repository/localfile"
	"github.com/fedmod/ostracon/pkg/repository/memory"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// Repository holds CLI flags for the request store backend
type Repository struct {
	backend    string
	dir        string
	projectID  string
	databaseID string
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Request store backend (localfile, firestore or memory)",
			Category:    "Store",
			Value:       "localfile",
			Sources:     cli.EnvVars("OSTRACON_STORE_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "store-dir",
			Usage:       "Directory for the localfile backend",
			Category:    "Store",
			Value:       "./data/requests",
			Sources:     cli.EnvVars("OSTRACON_STORE_DIR"),
			Destination: &r.dir,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Store",
			Sources:     cli.EnvVars("OSTRACON_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Store",
			Sources:     cli.EnvVars("OSTRACON_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes the request store for the configured backend. The
// caller is responsible for calling Close() on the returned store.
func (r *Repository) Configure(ctx context.Context) (interfaces.RequestStore, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		store, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore store")
		}
		logging.Default().Info("Using Firestore request store",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return store, nil

	case "localfile":
		store, err := localfile.New(r.dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize localfile store")
		}
		logging.Default().Info("Using localfile request store", "dir", r.dir)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory request store (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", r.backend))
	}
}
