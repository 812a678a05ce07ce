package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/utils/safe"
)

const defaultTimeout = 10 * time.Second

// client implements interfaces.RegistryClient over the registry's HTTP API.
// The client itself does not retry; callers may retry on transport failure.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIKey sets the X-API-Key header value
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a registry client for the given base URL
func New(baseURL string, opts ...Option) (interfaces.RegistryClient, error) {
	if baseURL == "" {
		return nil, goerr.New("registry base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid registry base URL", goerr.V("baseURL", baseURL))
	}

	c := &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type upsertPayload struct {
	TargetID     string            `json:"targetId"`
	DisplayName  string            `json:"displayName"`
	Reason       string            `json:"reason"`
	AuxiliaryIDs map[string]string `json:"auxiliaryIdentifiers,omitempty"`
}

type removePayload struct {
	Identifier string `json:"identifier"`
	Field      string `json:"field"`
}

func (c *client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "registry request failed", goerr.V("path", path))
	}
	return resp, nil
}

func (c *client) Upsert(ctx context.Context, target model.Target, reason string, auxiliaryIDs map[string]string) (bool, error) {
	resp, err := c.post(ctx, "/blacklist/add", upsertPayload{
		TargetID:     string(target.ID),
		DisplayName:  target.DisplayName,
		Reason:       reason,
		AuxiliaryIDs: auxiliaryIDs,
	})
	if err != nil {
		return false, err
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, goerr.New("registry rejected upsert",
			goerr.V("status", resp.StatusCode), goerr.V("target", target.ID))
	}
	return true, nil
}

func (c *client) Remove(ctx context.Context, identifier string, field types.RemoveField) (bool, error) {
	if !field.IsValid() {
		return false, goerr.New("invalid remove field", goerr.V("field", field))
	}

	resp, err := c.post(ctx, "/blacklist/remove", removePayload{
		Identifier: identifier,
		Field:      field.String(),
	})
	if err != nil {
		return false, err
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, goerr.New("registry rejected removal",
			goerr.V("status", resp.StatusCode), goerr.V("identifier", identifier), goerr.V("field", field))
	}
	return true, nil
}

func (c *client) Check(ctx context.Context, target types.UserID) (*model.BlacklistEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check/"+url.PathEscape(string(target)), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("target", target))
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "registry request failed", goerr.V("target", target))
	}
	defer safe.Close(ctx, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to body decoding
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	default:
		return nil, goerr.New("registry check failed",
			goerr.V("status", resp.StatusCode), goerr.V("target", target))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read registry response", goerr.V("target", target))
	}

	// Registries answer an empty object or empty body for unknown targets
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		return nil, nil
	}

	var entry model.BlacklistEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode registry entry", goerr.V("target", target))
	}
	return &entry, nil
}
