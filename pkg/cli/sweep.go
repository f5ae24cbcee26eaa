package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	cliv3 "github.com/urfave/cli/v3"

	"github.com/haven-lab/lifeline/pkg/cli/config"
	"github.com/haven-lab/lifeline/pkg/service/worker"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

func cmdSweep() *cliv3.Command {
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := repoCfg.Flags()
	flags = append(flags, slackCfg.Flags()...)

	return &cliv3.Command{
		Name:  "sweep",
		Usage: "Run one follow-up sweep and exit (for external schedulers)",
		Flags: flags,
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

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}

			count, err := worker.New(repo, notifier).Sweep(ctx)
			if err != nil {
				return goerr.Wrap(err, "follow-up sweep failed")
			}

			logging.Default().Info("Follow-up sweep finished", "processed", count)
			return nil
		},
	}
}
