package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/cli/config"
	httpctrl "github.com/fedmod/ostracon/pkg/controller/http"
	"github.com/fedmod/ostracon/pkg/service/worker"
	"github.com/fedmod/ostracon/pkg/usecase"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var registryCfg config.Registry
	var workflowCfg config.Workflow
	var federationCfg config.Federation

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("OSTRACON_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, workflowCfg.Flags()...)
	flags = append(flags, federationCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and request orchestration",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := workflowCfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid workflow configuration")
			}

			federation, err := federationCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load federation config")
			}
			logging.Default().Info("Federation loaded",
				"communities", len(federation.Communities()),
				"log_channel", federation.LogChannelID(),
			)

			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize request store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Default().Error("failed to close request store", "error", err.Error())
				}
			}()

			gateway, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack gateway")
			}

			registryClient, err := registryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize registry client")
			}
			resolver, err := registryCfg.ConfigureResolver()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize profile resolver")
			}

			ucOpts := []usecase.Option{
				usecase.WithDeadline(workflowCfg.Deadline()),
				usecase.WithReminderInterval(workflowCfg.ReminderInterval()),
			}
			if gateway != nil {
				ucOpts = append(ucOpts,
					usecase.WithGateway(gateway),
					usecase.WithMembership(gateway),
					usecase.WithActions(gateway),
				)
				logging.Default().Info("Slack gateway enabled")
			} else {
				logging.Default().Warn("Slack bot token not configured, negotiations will time out")
			}
			if registryClient != nil {
				ucOpts = append(ucOpts, usecase.WithRegistry(registryClient))
				logging.Default().Info("Registry client enabled", "registry", registryCfg)
			}
			if resolver != nil {
				ucOpts = append(ucOpts, usecase.WithResolver(resolver))
			}

			uc := usecase.New(store, federation, ucOpts...)

			// Orchestration runs are bound to runCtx so shutdown stops
			// them with their state persisted for the next start
			runCtx, cancelRuns := context.WithCancel(ctx)
			defer cancelRuns()

			sweeper := worker.NewRequestSweeper(uc, workflowCfg.SweepInterval())
			if err := sweeper.Start(runCtx); err != nil {
				return goerr.Wrap(err, "failed to start request sweeper")
			}

			var httpOpts []httpctrl.Options
			if gateway != nil && slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhooks(
					httpctrl.NewSlackEventHandler(uc),
					httpctrl.NewSlackInteractionHandler(gateway),
					slackCfg.SigningSecret(),
				))
				logging.Default().Info("Slack webhook endpoints enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				sweeper.Stop()
				cancelRuns()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
