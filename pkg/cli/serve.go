package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	cliv3 "github.com/urfave/cli/v3"

	"github.com/haven-lab/lifeline/pkg/cli/config"
	httpctrl "github.com/haven-lab/lifeline/pkg/controller/http"
	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/service/detect"
	"github.com/haven-lab/lifeline/pkg/service/worker"
	"github.com/haven-lab/lifeline/pkg/usecase"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

func cmdServe() *cliv3.Command {
	var addr string
	var sweepInterval time.Duration
	var sweepCron string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var taxonomyCfg config.Taxonomy

	flags := []cliv3.Flag{
		&cliv3.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cliv3.EnvVars("LIFELINE_ADDR"),
			Destination: &addr,
		},
		&cliv3.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval of the background follow-up sweep",
			Value:       worker.DefaultSweepInterval,
			Sources:     cliv3.EnvVars("LIFELINE_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
		&cliv3.StringFlag{
			Name:        "sweep-cron",
			Usage:       "Cron expression for the follow-up sweep (overrides --sweep-interval)",
			Sources:     cliv3.EnvVars("LIFELINE_SWEEP_CRON"),
			Destination: &sweepCron,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, taxonomyCfg.Flags()...)

	return &cliv3.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the orchestration server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cliv3.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, notifier, err := buildUseCases(repo, &slackCfg, &taxonomyCfg)
			if err != nil {
				return err
			}

			// Follow-up sweep: either the ticker worker or a cron
			// schedule, never both
			var sweepWorker *worker.FollowUpWorker
			var sweepCronRunner *cron.Cron
			if sweepCron != "" {
				sweepWorker = worker.New(repo, notifier)
				sweepCronRunner = cron.New()
				if _, err := sweepCronRunner.AddFunc(sweepCron, func() {
					if _, err := sweepWorker.Sweep(ctx); err != nil {
						logging.Default().Error("Follow-up sweep failed (will retry next schedule)",
							"error", err.Error())
					}
				}); err != nil {
					return goerr.Wrap(err, "invalid sweep cron expression", goerr.V("cron", sweepCron))
				}
				sweepCronRunner.Start()
				logging.Default().Info("Follow-up sweep scheduled", "cron", sweepCron)
			} else {
				sweepWorker = worker.New(repo, notifier, worker.WithInterval(sweepInterval))
				if err := sweepWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start follow-up worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
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

				if sweepCronRunner != nil {
					<-sweepCronRunner.Stop().Done()
				} else {
					sweepWorker.Stop()
				}

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

// buildUseCases assembles the usecase aggregate from the shared config
// structs
func buildUseCases(repo interfaces.Repository, slackCfg *config.Slack, taxonomyCfg *config.Taxonomy) (*usecase.UseCases, interfaces.Notifier, error) {
	notifier, err := slackCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure slack notifier")
	}

	taxonomy, err := taxonomyCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load taxonomy")
	}

	opts := []usecase.Option{}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}
	if taxonomy != nil {
		opts = append(opts, usecase.WithDetector(detect.New(detect.WithTaxonomy(taxonomy))))
	}

	return usecase.New(repo, opts...), notifier, nil
}
