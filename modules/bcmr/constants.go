package bcmr

const (
	Version = "v0.1.0"

	// DBVersion is the schema version the module expects, it must match the latest migration.
	DBVersion = 2

	// AncestorDepth bounds how many ancestors are fetched to recover a missed authbase or genesis.
	AncestorDepth = 2

	// backfillBatchSize is the number of rows each backfill round loads per table.
	backfillBatchSize = 500

	// backfillConcurrency is the number of node lookups run in parallel by the backfill job.
	backfillConcurrency = 8
)

// Task queue names.
const (
	QueueProcessTx            = "process_tx"
	QueueResolveMetadata      = "resolve_metadata"
	QueueWatchRegistryChanges = "watch_registry_changes"
	QueueMempool              = "mempool"
	QueuePeriodic             = "periodic"
)
