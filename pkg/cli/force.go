package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/cli/config"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/repository/memory"
	"github.com/fedmod/ostracon/pkg/usecase"
)

// cmdForce blacklists a target immediately, without owner negotiation
func cmdForce() *cli.Command {
	var userID string
	var displayName string
	var reason string
	var profileName string
	var profileUUID string
	var kick bool
	var slackCfg config.Slack
	var registryCfg config.Registry
	var federationCfg config.Federation

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Target user ID",
			Required:    true,
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "display-name",
			Usage:       "Target display name",
			Required:    true,
			Destination: &displayName,
		},
		&cli.StringFlag{
			Name:        "reason",
			Usage:       "Reason for the removal",
			Required:    true,
			Destination: &reason,
		},
		&cli.StringFlag{
			Name:        "profile-name",
			Usage:       "Auxiliary profile name",
			Destination: &profileName,
		},
		&cli.StringFlag{
			Name:        "profile-uuid",
			Usage:       "Auxiliary profile UUID",
			Destination: &profileUUID,
		},
		&cli.BoolFlag{
			Name:        "kick",
			Usage:       "Also remove the target from every community they belong to",
			Destination: &kick,
		},
	}
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, federationCfg.Flags()...)

	return &cli.Command{
		Name:  "force",
		Usage: "Blacklist a target immediately, skipping owner negotiation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			federation, err := federationCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load federation config")
			}

			registryClient, err := registryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize registry client")
			}
			if registryClient == nil {
				return goerr.New("registry-url is required for forced removal")
			}

			opts := []usecase.Option{usecase.WithRegistry(registryClient)}
			if kick {
				gateway, err := slackCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to initialize slack gateway")
				}
				if gateway == nil {
					return goerr.New("slack-bot-token is required with --kick")
				}
				opts = append(opts,
					usecase.WithGateway(gateway),
					usecase.WithMembership(gateway),
					usecase.WithActions(gateway),
				)
			}

			uc := usecase.New(memory.New(), federation, opts...)

			auxiliaryIDs := map[string]string{}
			if profileName != "" {
				auxiliaryIDs[model.AuxProfileName] = profileName
			}
			if profileUUID != "" {
				auxiliaryIDs[model.AuxProfileUUID] = profileUUID
			}

			result, err := uc.ForceRemoval(ctx,
				model.Target{ID: types.UserID(userID), DisplayName: displayName},
				reason, auxiliaryIDs, kick)
			if err != nil {
				return err
			}

			fmt.Printf("Registry updated: %v\n", result.RegistryUpdated)
			for _, id := range result.RemovedFrom {
				fmt.Printf("Removed from %s\n", id)
			}
			for id, msg := range result.Failed {
				fmt.Printf("Removal from %s failed: %s\n", id, msg)
			}
			return nil
		},
	}
}
