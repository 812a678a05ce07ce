package registry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/service/registry"
)

func TestUpsert(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := registry.New(srv.URL, registry.WithAPIKey("sekrit"))
	gt.NoError(t, err).Required()

	ok, err := client.Upsert(context.Background(),
		model.Target{ID: "U100", DisplayName: "JohnDoe"},
		"griefing",
		map[string]string{model.AuxProfileUUID: "550e8400"},
	)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).True()

	gt.Value(t, gotPath).Equal("/blacklist/add")
	gt.Value(t, gotKey).Equal("sekrit")
	gt.Value(t, gotBody["targetId"]).Equal("U100")
	gt.Value(t, gotBody["displayName"]).Equal("JohnDoe")
	gt.Value(t, gotBody["reason"]).Equal("griefing")
}

func TestUpsertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := registry.New(srv.URL)
	gt.NoError(t, err).Required()

	ok, err := client.Upsert(context.Background(), model.Target{ID: "U100", DisplayName: "x"}, "r", nil)
	gt.Error(t, err)
	gt.Bool(t, ok).False()
}

func TestRemove(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/blacklist/remove")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := registry.New(srv.URL)
	gt.NoError(t, err).Required()

	ok, err := client.Remove(context.Background(), "550e8400", types.RemoveFieldProfileUUID)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).True()
	gt.Value(t, gotBody["identifier"]).Equal("550e8400")
	gt.Value(t, gotBody["field"]).Equal("profile_uuid")
}

func TestRemoveRejectsInvalidField(t *testing.T) {
	client, err := registry.New("http://registry.invalid")
	gt.NoError(t, err).Required()

	_, err = client.Remove(context.Background(), "x", types.RemoveField("email"))
	gt.Error(t, err)
}

func TestCheck(t *testing.T) {
	t.Run("known target", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/check/U100")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(model.BlacklistEntry{
				TargetID:    "U100",
				DisplayName: "JohnDoe",
				Reason:      "griefing",
			})
		}))
		defer srv.Close()

		client, err := registry.New(srv.URL)
		gt.NoError(t, err).Required()

		entry, err := client.Check(context.Background(), "U100")
		gt.NoError(t, err).Required()
		gt.Value(t, entry).NotNil()
		gt.Value(t, entry.Reason).Equal("griefing")
	})

	t.Run("unknown target with empty object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}")) //nolint:errcheck
		}))
		defer srv.Close()

		client, err := registry.New(srv.URL)
		gt.NoError(t, err).Required()

		entry, err := client.Check(context.Background(), "U999")
		gt.NoError(t, err).Required()
		gt.Value(t, entry).Nil()
	})

	t.Run("unknown target with 404", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client, err := registry.New(srv.URL)
		gt.NoError(t, err).Required()

		entry, err := client.Check(context.Background(), "U999")
		gt.NoError(t, err).Required()
		gt.Value(t, entry).Nil()
	})
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := registry.New("")
	gt.Error(t, err)
}
