package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/utils/safe"
)

const defaultTimeout = 5 * time.Second

// client resolves auxiliary game-profile names into their UUIDs via a
// Mojang-style profile API: GET {base}/users/profiles/minecraft/{name}
// answers {"id": "...", "name": "..."} or 404/204 for unknown names.
type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a profile resolver for the given API base URL
func New(baseURL string, opts ...Option) (interfaces.IdentityResolver, error) {
	if baseURL == "" {
		return nil, goerr.New("profile API base URL is required")
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

func (c *client) ResolveUUID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	endpoint := c.baseURL + "/users/profiles/minecraft/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build request", goerr.V("name", name))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "profile lookup failed", goerr.V("name", name))
	}
	defer safe.Close(ctx, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to body decoding
	case http.StatusNotFound, http.StatusNoContent:
		return "", nil
	default:
		return "", goerr.New("profile API error",
			goerr.V("status", resp.StatusCode), goerr.V("name", name))
	}

	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", goerr.Wrap(err, "failed to decode profile response", goerr.V("name", name))
	}
	return body.ID, nil
}
