package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/usecase"
	"github.com/fedmod/ostracon/pkg/utils/errutil"
)

// handleSubmitRequest parses a free-text submission and confirms it. A parse
// failure returns 422 with the missing fields and the expected template so
// the submitter can retry.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode request body"), http.StatusBadRequest)
		return
	}

	draft, err := s.uc.ParseRequest(ctx, body.Text)
	if err != nil {
		var parseErr *usecase.ParseError
		if errors.As(err, &parseErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    parseErr.Error(),
				"missing":  parseErr.Missing,
				"template": parseErr.Template(),
			})
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	req, err := s.uc.ConfirmRequest(ctx, draft)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqs, err := s.uc.ListActiveRequests(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.RequestID(chi.URLParam(r, "requestID"))

	req, err := s.uc.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRequestNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.RequestID(chi.URLParam(r, "requestID"))

	if err := s.uc.CancelRequest(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrRequestNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
