package localfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

const (
	recordSuffix     = ".json"
	quarantineSuffix = ".corrupt"
)

// LocalFile persists each request as one JSON file named by request ID.
// Writes go to a temporary file in the same directory and are renamed into
// place, so a crash mid-write never leaves a partially written record.
// Writers are serialized per request ID; a write for one request never
// blocks a write for another.
type LocalFile struct {
	dir string

	mu    sync.Mutex
	locks map[types.RequestID]*sync.Mutex
}

var _ interfaces.RequestStore = &LocalFile{}

// New opens (creating if needed) a directory-backed store
func New(dir string) (*LocalFile, error) {
	if dir == "" {
		return nil, goerr.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
	}

	return &LocalFile{
		dir:   dir,
		locks: make(map[types.RequestID]*sync.Mutex),
	}, nil
}

// lock returns the per-request mutex, creating it on first use
func (s *LocalFile) lock(id types.RequestID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *LocalFile) path(id types.RequestID) string {
	return filepath.Join(s.dir, string(id)+recordSuffix)
}

func (s *LocalFile) Put(ctx context.Context, req *model.RemovalRequest) error {
	if req.ID == "" {
		return goerr.New("request ID is required")
	}

	l := s.lock(req.ID)
	l.Lock()
	defer l.Unlock()

	return s.write(req)
}

// write marshals the record and atomically replaces the file. Callers must
// hold the per-request lock.
func (s *LocalFile) write(req *model.RemovalRequest) error {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode request", goerr.V("id", req.ID))
	}

	tmp, err := os.CreateTemp(s.dir, string(req.ID)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("dir", s.dir))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write record", goerr.V("id", req.ID))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close temp file", goerr.V("id", req.ID))
	}

	if err := os.Rename(tmpName, s.path(req.ID)); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to replace record", goerr.V("id", req.ID))
	}
	return nil
}

// read loads and decodes one record. A record that cannot be decoded is
// quarantined (renamed aside) and surfaced as ErrCorruptRecord so the
// operator notices; it is never silently dropped.
func (s *LocalFile) read(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	path := s.path(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to read record", goerr.V("id", id))
	}

	var req model.RemovalRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.quarantine(ctx, id, err)
		return nil, goerr.Wrap(interfaces.ErrCorruptRecord, "failed to decode record",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return &req, nil
}

func (s *LocalFile) quarantine(ctx context.Context, id types.RequestID, cause error) {
	path := s.path(id)
	logging.From(ctx).Error("quarantining corrupt request record",
		"id", id,
		"path", path,
		"error", cause.Error(),
	)
	if err := os.Rename(path, path+quarantineSuffix); err != nil {
		logging.From(ctx).Error("failed to quarantine corrupt record",
			"id", id, "error", err.Error())
	}
}

func (s *LocalFile) Get(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	return s.read(ctx, id)
}

func (s *LocalFile) Delete(ctx context.Context, id types.RequestID) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(interfaces.ErrRequestNotFound, "no such request", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete record", goerr.V("id", id))
	}
	return nil
}

func (s *LocalFile) ListActive(ctx context.Context) ([]*model.RemovalRequest, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read store directory", goerr.V("dir", s.dir))
	}

	var active []*model.RemovalRequest
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordSuffix) {
			continue
		}
		id := types.RequestID(strings.TrimSuffix(name, recordSuffix))

		req, err := s.Get(ctx, id)
		if err != nil {
			// Corrupt records have been quarantined; keep loading the rest
			if errors.Is(err, interfaces.ErrCorruptRecord) || errors.Is(err, interfaces.ErrRequestNotFound) {
				continue
			}
			return nil, err
		}

		if req.Status.IsActive() {
			active = append(active, req)
		}
	}
	return active, nil
}

func (s *LocalFile) Claim(ctx context.Context, id types.RequestID) (*model.RemovalRequest, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	req, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case types.RequestStatusConfirmed:
		req.Status = types.RequestStatusInProgress
		if err := s.write(req); err != nil {
			return nil, err
		}
		return req, nil
	case types.RequestStatusInProgress:
		return nil, goerr.Wrap(interfaces.ErrAlreadyClaimed, "request is in progress", goerr.V("id", id))
	default:
		return nil, goerr.Wrap(interfaces.ErrNotClaimable,
			fmt.Sprintf("request cannot be claimed in status %s", req.Status), goerr.V("id", id))
	}
}

func (s *LocalFile) Close() error {
	return nil
}
