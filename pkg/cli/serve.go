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

	"github.com/NofaBC/TechSupport-AI/pkg/cli/config"
	httpctrl "github.com/NofaBC/TechSupport-AI/pkg/controller/http"
	"github.com/NofaBC/TechSupport-AI/pkg/service/visual"
	"github.com/NofaBC/TechSupport-AI/pkg/usecase"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var visualBaseURL string
	var geminiCfg config.Gemini
	var repoCfg config.Repository
	var playbookCfg config.Playbook
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TECHSUPPORT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "visual-base-url",
			Usage:       "Base URL for visual session join links",
			Sources:     cli.EnvVars("TECHSUPPORT_VISUAL_BASE_URL"),
			Destination: &visualBaseURL,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, playbookCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			registry, err := playbookCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load playbooks")
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifier")
			}

			ucOpts := []usecase.Option{
				usecase.WithPlaybookRegistry(registry),
				usecase.WithNotifier(notifier),
				usecase.WithModelID(geminiCfg.Model()),
			}
			if visualBaseURL != "" {
				ucOpts = append(ucOpts, usecase.WithVisualSessions(visual.New(visual.WithBaseURL(visualBaseURL))))
			}

			uc, err := usecase.New(repo, llm, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, repo),
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
