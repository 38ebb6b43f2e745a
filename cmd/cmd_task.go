package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/internal/config"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

// NewTaskCommand runs single units of work synchronously, e.g. from an external scheduler.
func NewTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Run a single BCMR task",
	}

	var disableWatch bool
	watchRegistryCmd := &cobra.Command{
		Use:   "watch-registry <txid>",
		Short: "Flag the registry announced in a transaction to be re-resolved by the watch job",
		Args:  cobra.ExactArgs(1),
		RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, args []string) error {
			return p.SetRegistryWatch(ctx, args[0], !disableWatch)
		}),
	}
	watchRegistryCmd.Flags().BoolVar(&disableWatch, "disable", false, "Stop watching the registry")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "process-tx <txid>",
			Short: "Process a confirmed transaction and its missing ancestors",
			Args:  cobra.ExactArgs(1),
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, args []string) error {
				return p.ProcessTransactionByTxid(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "mempool <hex>",
			Short: "Resolve the registry announced in a serialized unconfirmed transaction",
			Args:  cobra.ExactArgs(1),
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, args []string) error {
				return p.ProcessMempoolTransaction(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "retrace <category>",
			Short: "Catch up the authchain of a token category through the spend-lookup service",
			Args:  cobra.ExactArgs(1),
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, args []string) error {
				_, err := p.RetraceAuthchain(ctx, args[0])
				return err
			}),
		},
		&cobra.Command{
			Use:   "backfill",
			Short: "Fill missing block heights and timestamps",
			Args:  cobra.NoArgs,
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, _ []string) error {
				return p.Backfill(ctx)
			}),
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Re-resolve every watched registry",
			Args:  cobra.NoArgs,
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, _ []string) error {
				return p.Watch(ctx, nil)
			}),
		},
		&cobra.Command{
			Use:   "resolve-metadata [registry-id]",
			Short: "Project one registry, or every pending registry, into token metadata",
			Args:  cobra.MaximumNArgs(1),
			RunE: taskRunner(func(ctx context.Context, p *bcmr.Pipeline, args []string) error {
				if len(args) == 0 {
					return p.ResolveMetadata(ctx, nil)
				}
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.Wrapf(errs.InvalidArgument, "invalid registry id %q", args[0])
				}
				return p.ResolveMetadata(ctx, &id)
			}),
		},
		watchRegistryCmd,
	)
	return cmd
}

func taskRunner(task func(ctx context.Context, p *bcmr.Pipeline, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conf := config.Load()
		if !conf.Network.IsSupported() {
			return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithContext(ctx, slogx.Stringer("network", conf.Network), slogx.String("task", cmd.Name()))

		injector := newInjector(ctx, conf)
		pipeline, cleanup, err := bcmr.NewTaskPipeline(injector)
		if err != nil {
			return errors.Wrap(err, "can't init BCMR pipeline")
		}
		defer func() {
			if err := cleanup(context.Background()); err != nil {
				logger.ErrorContext(ctx, "Failed to clean up", err)
			}
			if err := injector.Shutdown(); err != nil {
				logger.ErrorContext(ctx, "Failed while shutting down", err)
			}
		}()

		if err := task(ctx, pipeline, args); err != nil {
			return errors.Wrapf(err, "task %s failed", cmd.Name())
		}
		logger.InfoContext(ctx, "Task finished")
		return nil
	}
}
