package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/cli/config"
	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/usecase"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

func cmdRequest() *cli.Command {
	var repoCfg config.Repository
	var registryCfg config.Registry
	var federationCfg config.Federation

	flags := append(repoCfg.Flags(), registryCfg.Flags()...)
	flags = append(flags, federationCfg.Flags()...)

	newUseCases := func(ctx context.Context) (*usecase.UseCases, func(), error) {
		federation, err := federationCfg.Configure()
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to load federation config")
		}
		store, err := repoCfg.Configure(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize request store")
		}
		closer := func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close request store", "error", err.Error())
			}
		}

		var opts []usecase.Option
		resolver, err := registryCfg.ConfigureResolver()
		if err != nil {
			closer()
			return nil, nil, err
		}
		if resolver != nil {
			opts = append(opts, usecase.WithResolver(resolver))
		}
		return usecase.New(store, federation, opts...), closer, nil
	}

	return &cli.Command{
		Name:  "request",
		Usage: "Manage removal requests",
		Flags: flags,
		Commands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "Submit a removal request (reads the labeled text from stdin)",
				ArgsUsage: " ",
				Action: func(ctx context.Context, c *cli.Command) error {
					text, err := io.ReadAll(os.Stdin)
					if err != nil {
						return goerr.Wrap(err, "failed to read request text")
					}

					uc, closer, err := newUseCases(ctx)
					if err != nil {
						return err
					}
					defer closer()

					draft, err := uc.ParseRequest(ctx, string(text))
					if err != nil {
						var parseErr *usecase.ParseError
						if errors.As(err, &parseErr) {
							fmt.Fprintf(os.Stderr, "%s\n\nExpected format:\n%s\n", parseErr.Error(), parseErr.Template())
						}
						return err
					}

					req, err := uc.ConfirmRequest(ctx, draft)
					if err != nil {
						return err
					}

					fmt.Printf("Request %s confirmed for %s (%s)\n", req.ID, req.Target.DisplayName, req.Target.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List active removal requests",
				Action: func(ctx context.Context, c *cli.Command) error {
					uc, closer, err := newUseCases(ctx)
					if err != nil {
						return err
					}
					defer closer()

					reqs, err := uc.ListActiveRequests(ctx)
					if err != nil {
						return err
					}
					for _, req := range reqs {
						fmt.Printf("%s\t%s\t%s (%s)\t%d communities\n",
							req.ID, req.Status, req.Target.DisplayName, req.Target.ID, len(req.Outcomes))
					}
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Show one removal request",
				ArgsUsage: "<request-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("request ID argument is required")
					}

					uc, closer, err := newUseCases(ctx)
					if err != nil {
						return err
					}
					defer closer()

					req, err := uc.GetRequest(ctx, types.RequestID(c.Args().First()))
					if err != nil {
						return err
					}
					printRequest(req)
					return nil
				},
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a removal request",
				ArgsUsage: "<request-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("request ID argument is required")
					}

					uc, closer, err := newUseCases(ctx)
					if err != nil {
						return err
					}
					defer closer()

					id := types.RequestID(c.Args().First())
					if err := uc.CancelRequest(ctx, id); err != nil {
						return err
					}
					fmt.Printf("Request %s cancelled\n", id)
					return nil
				},
			},
		},
	}
}

func printRequest(req *model.RemovalRequest) {
	fmt.Printf("ID:      %s\n", req.ID)
	fmt.Printf("Target:  %s (%s)\n", req.Target.DisplayName, req.Target.ID)
	fmt.Printf("Reason:  %s\n", req.Reason)
	fmt.Printf("Status:  %s\n", req.Status)
	fmt.Printf("Created: %s\n", req.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	for _, o := range req.Outcomes {
		fmt.Printf("  %s\towner=%s\t%s", o.CommunityID, o.OwnerID, o.State)
		if o.FailureReason != "" {
			fmt.Printf("\t(%s)", o.FailureReason)
		}
		fmt.Println()
	}
}
