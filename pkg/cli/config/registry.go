package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/service/profile"
	"github.com/fedmod/ostracon/pkg/service/registry"
)

// Registry holds CLI flags for the blacklist registry and the auxiliary
// profile resolver
type Registry struct {
	baseURL        string
	apiKey         string
	profileBaseURL string
}

func (x *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-url",
			Usage:       "Base URL of the blacklist registry API",
			Category:    "Registry",
			Sources:     cli.EnvVars("OSTRACON_REGISTRY_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "registry-api-key",
			Usage:       "API key for the blacklist registry",
			Category:    "Registry",
			Sources:     cli.EnvVars("OSTRACON_REGISTRY_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "profile-api-url",
			Usage:       "Base URL of the profile resolution API",
			Category:    "Registry",
			Sources:     cli.EnvVars("OSTRACON_PROFILE_API_URL"),
			Destination: &x.profileBaseURL,
		},
	}
}

func (x Registry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.baseURL),
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("profile-url", x.profileBaseURL),
	)
}

// Configure creates the registry client, or nil when no URL is configured
func (x *Registry) Configure() (interfaces.RegistryClient, error) {
	if x.baseURL == "" {
		return nil, nil
	}

	var opts []registry.Option
	if x.apiKey != "" {
		opts = append(opts, registry.WithAPIKey(x.apiKey))
	}
	return registry.New(x.baseURL, opts...)
}

// ConfigureResolver creates the profile resolver, or nil when unset
func (x *Registry) ConfigureResolver() (interfaces.IdentityResolver, error) {
	if x.profileBaseURL == "" {
		return nil, nil
	}
	return profile.New(x.profileBaseURL)
}
