package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/cli/config"
	"github.com/fedmod/ostracon/pkg/domain/interfaces"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

func cmdRegistry() *cli.Command {
	var registryCfg config.Registry

	mustClient := func() (interfaces.RegistryClient, error) {
		client, err := registryCfg.Configure()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize registry client")
		}
		if client == nil {
			return nil, goerr.New("registry-url is required")
		}
		return client, nil
	}

	return &cli.Command{
		Name:  "registry",
		Usage: "Query and maintain the blacklist registry",
		Flags: registryCfg.Flags(),
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Look up a user in the registry",
				ArgsUsage: "<user-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("user ID argument is required")
					}
					client, err := mustClient()
					if err != nil {
						return err
					}

					entry, err := client.Check(ctx, types.UserID(c.Args().First()))
					if err != nil {
						return err
					}
					if entry == nil {
						fmt.Println("not blacklisted")
						return nil
					}
					fmt.Printf("blacklisted: %s (%s)\nreason: %s\n", entry.DisplayName, entry.TargetID, entry.Reason)
					for key, value := range entry.AuxiliaryIDs {
						fmt.Printf("%s: %s\n", key, value)
					}
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a registry entry by identifier",
				ArgsUsage: "<identifier>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "field",
						Usage: "Identifier field (user_id or profile_uuid)",
						Value: string(types.RemoveFieldUserID),
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("identifier argument is required")
					}
					field, err := types.ParseRemoveField(c.String("field"))
					if err != nil {
						return err
					}
					client, err := mustClient()
					if err != nil {
						return err
					}

					removed, err := client.Remove(ctx, c.Args().First(), field)
					if err != nil {
						return err
					}
					if removed {
						fmt.Println("entry removed")
					} else {
						fmt.Println("no matching entry")
					}
					return nil
				},
			},
			{
				Name:  "ping",
				Usage: "Verify the registry is reachable",
				Action: func(ctx context.Context, c *cli.Command) error {
					client, err := mustClient()
					if err != nil {
						return err
					}

					if _, err := client.Check(ctx, types.UserID("healthcheck")); err != nil {
						return goerr.Wrap(err, "registry is not reachable")
					}
					fmt.Println("registry is reachable")
					return nil
				},
			},
		},
	}
}
