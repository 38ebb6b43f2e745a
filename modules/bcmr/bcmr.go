package bcmr

import (
	"context"
	"strings"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/datasources"
	"github.com/gaze-network/bcmr-indexer/core/indexer"
	"github.com/gaze-network/bcmr-indexer/internal/config"
	"github.com/gaze-network/bcmr-indexer/internal/postgres"
	bcmrapi "github.com/gaze-network/bcmr-indexer/modules/bcmr/api"
	bcmrdatagateway "github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/fetcher"
	bcmrpostgres "github.com/gaze-network/bcmr-indexer/modules/bcmr/repository/postgres"
	bcmrusecase "github.com/gaze-network/bcmr-indexer/modules/bcmr/usecase"
	"github.com/gaze-network/bcmr-indexer/pkg/httpclient"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/webhook"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

// dependencies are the collaborators of the pipeline built from the configuration.
type dependencies struct {
	bcmrDg       bcmrdatagateway.BCMRDataGateway
	node         *datasources.BCHNode
	fetcher      fetcher.DocumentFetcher
	spendLookup  fetcher.SpendLookup
	hook         TokenIdentityHook
	cleanupFuncs []func(context.Context) error
}

func newDependencies(injector do.Injector) (*dependencies, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.BCMR

	deps := &dependencies{}
	switch strings.ToLower(moduleConf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for indexer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		deps.cleanupFuncs = append(deps.cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		deps.bcmrDg = bcmrpostgres.NewRepository(pg)
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for indexer is not supported", moduleConf.Database)
	}

	rpcClient := do.MustInvoke[*rpcclient.Client](injector)
	deps.node = datasources.NewBCHNode(rpcClient)

	httpConfig := httpclient.Config{Timeout: moduleConf.FetchTimeout}
	documentFetcher, err := fetcher.NewHTTPFetcher(fetcher.Config{
		IPFSGateway: moduleConf.IPFSGateway,
		HTTP:        httpConfig,
		RateLimit:   moduleConf.FetchRateLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create document fetcher")
	}
	deps.fetcher = documentFetcher

	if moduleConf.SpenderLookupURL != "" {
		spendLookup, err := fetcher.NewHTTPSpendLookup(moduleConf.SpenderLookupURL, httpConfig)
		if err != nil {
			return nil, errors.Wrap(err, "can't create spend lookup")
		}
		deps.spendLookup = spendLookup
	}

	if moduleConf.Webhook.URL != "" {
		client, err := webhook.New(moduleConf.Webhook)
		if err != nil {
			return nil, errors.Wrap(err, "can't create webhook client")
		}
		deps.hook = NewWebhookHook(client)
	}
	return deps, nil
}

func (d *dependencies) pipelineOptions() []PipelineOption {
	opts := make([]PipelineOption, 0)
	if d.spendLookup != nil {
		opts = append(opts, WithSpendLookup(d.spendLookup))
	}
	if d.hook != nil {
		opts = append(opts, WithTokenIdentityHook(d.hook))
	}
	return opts
}

// NewTaskPipeline creates a pipeline running every unit of work inline, for one-off tasks.
// The returned cleanup function releases its resources.
func NewTaskPipeline(injector do.Injector) (*Pipeline, func(context.Context) error, error) {
	deps, err := newDependencies(injector)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	pipeline := NewPipeline(deps.bcmrDg, deps.node, deps.fetcher, deps.pipelineOptions()...)
	return pipeline, newCleanup(deps.cleanupFuncs), nil
}

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.BCMR

	deps, err := newDependencies(injector)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	worker := NewWorker(deps.bcmrDg, deps.node, deps.fetcher, WorkerConfig{
		Network:          conf.Network,
		Workers:          moduleConf.Workers,
		MaxTaskAttempts:  moduleConf.MaxTaskAttempts,
		BackfillInterval: moduleConf.BackfillInterval,
		WatchInterval:    moduleConf.WatchInterval,
	}, deps.pipelineOptions()...)
	worker.cleanupFuncs = deps.cleanupFuncs

	if err := worker.processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	if !moduleConf.DisableBlockPolling {
		startHeight := lo.Ternary(moduleConf.StartBlockHeight > 0, moduleConf.StartBlockHeight, conf.Network.ActivationHeight())
		worker.indexer = indexer.New(worker.processor, deps.node, startHeight)
	}

	// Mount API
	apiHandlers := lo.Uniq(moduleConf.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			bcmrUsecase := bcmrusecase.New(deps.bcmrDg)
			bcmrHTTPHandler := bcmrapi.NewHTTPHandler(conf.Network, bcmrUsecase)
			if err := bcmrHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount BCMR API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	return worker, nil
}

func newCleanup(cleanupFuncs []func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var errList []error
		for _, cleanup := range cleanupFuncs {
			if err := cleanup(ctx); err != nil {
				errList = append(errList, err)
			}
		}
		return errors.WithStack(errors.Join(errList...))
	}
}
