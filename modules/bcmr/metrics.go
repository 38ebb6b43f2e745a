package bcmr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_transactions_processed_total",
		Help: "Transactions applied to the authchain by result",
	}, []string{"result"})

	identityOutputsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_identity_outputs_created_total",
		Help: "Identity outputs created by kind",
	}, []string{"kind"})

	tokenIdentityChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_token_identity_changes_total",
		Help: "Token identities observed in transactions by change kind",
	}, []string{"kind"})

	registryResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_registry_resolutions_total",
		Help: "Registry resolution attempts by result",
	}, []string{"result"})

	documentFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bcmr_document_fetch_duration_seconds",
		Help:    "Registry document fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"kind"})

	metadataProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_metadata_projected_total",
		Help: "Token metadata snapshots written by type",
	}, []string{"type"})

	taskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcmr_task_failures_total",
		Help: "Tasks that exhausted every attempt by queue",
	}, []string{"queue"})
)
