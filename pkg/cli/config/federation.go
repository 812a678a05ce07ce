package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// Federation holds the CLI flag for the community roster file
type Federation struct {
	configPath string
}

// federationFile is the TOML shape of the roster file:
//
//	log_channel = "C0LOG"
//
//	[[community]]
//	id = "C012345"
//	name = "Alpha"
//	owner = "U012345"
type federationFile struct {
	LogChannel  string            `toml:"log_channel"`
	Communities []communityConfig `toml:"community"`
}

type communityConfig struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Owner string `toml:"owner"`
}

func (x *Federation) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "federation-config",
			Usage:       "Path to the community roster TOML file",
			Category:    "Federation",
			Sources:     cli.EnvVars("OSTRACON_FEDERATION_CONFIG"),
			Destination: &x.configPath,
		},
	}
}

// Configure loads and validates the community roster. An unset path yields
// an empty federation, which is valid for one-shot registry commands.
func (x *Federation) Configure() (*model.Federation, error) {
	if x.configPath == "" {
		return model.NewFederation(nil, "")
	}

	data, err := os.ReadFile(x.configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read federation config", goerr.V("path", x.configPath))
	}

	var file federationFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse federation config", goerr.V("path", x.configPath))
	}

	communities := make([]model.Community, len(file.Communities))
	for i, c := range file.Communities {
		communities[i] = model.Community{
			ID:      types.CommunityID(c.ID),
			Name:    c.Name,
			OwnerID: types.UserID(c.Owner),
		}
	}

	federation, err := model.NewFederation(communities, file.LogChannel)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid federation config", goerr.V("path", x.configPath))
	}
	return federation, nil
}
