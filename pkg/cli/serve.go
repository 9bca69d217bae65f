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

	"github.com/petroops-lab/derrick/pkg/cli/config"
	httpctrl "github.com/petroops-lab/derrick/pkg/controller/http"
	"github.com/petroops-lab/derrick/pkg/service/fanout"
	"github.com/petroops-lab/derrick/pkg/service/realtime"
	"github.com/petroops-lab/derrick/pkg/usecase"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
	"github.com/petroops-lab/derrick/pkg/utils/safe"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var workspaceCfg config.Workspace
	var repoCfg config.Repository
	var cacheCfg config.Cache
	var slackCfg config.Slack
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DERRICK_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, workspaceCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := workspaceCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load workspace configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			cacheStore, err := cacheCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize cache")
			}
			if cacheStore != nil {
				defer safe.Close(ctx, cacheStore)
			}

			flushSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize sentry")
			}
			defer flushSentry()

			hub := realtime.NewHub()

			fanoutOpts := []fanout.Option{
				fanout.WithPublisher(hub),
			}
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Slack bridge")
			}
			if slackSvc != nil {
				fanoutOpts = append(fanoutOpts, fanout.WithSlack(slackSvc))
			}

			ucOpts := []usecase.Option{
				usecase.WithFanout(fanout.New(repo.Notification(), fanoutOpts...)),
			}
			if cacheStore != nil {
				ucOpts = append(ucOpts, usecase.WithQueryCache(
					usecase.NewQueryCache(cacheStore, usecase.WithCacheTTL(cacheCfg.TTL()))))
			}
			if appCfg != nil {
				ucOpts = append(ucOpts, usecase.WithCategories(appCfg.CategoryIDs()))
				logging.Default().Info("Workspace categories enforced",
					"count", len(appCfg.Categories))
			}

			uc := usecase.New(repo, ucOpts...)

			httpHandler := httpctrl.New(uc, httpctrl.WithRealtimeHub(hub))
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
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
