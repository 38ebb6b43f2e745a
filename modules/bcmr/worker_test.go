package bcmr

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWorker(t *testing.T, s *pipelineSuite) *Worker {
	t.Helper()
	w := NewWorker(s.dg, s.node, s.fetcher, WorkerConfig{
		Network:         common.NetworkMainnet,
		Workers:         2,
		MaxTaskAttempts: 1,
	}, WithSpendLookup(s.spendLookup), WithTokenIdentityHook(s.hook))

	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background())
	}()
	t.Cleanup(func() {
		assert.NoError(t, w.ShutdownWithTimeout(5*time.Second))
		assert.NoError(t, <-done)
	})
	return w
}

func TestWorkerProcessesBlocks(t *testing.T) {
	ctx := context.Background()
	body := registryDocument(category)
	announcement := announcementScript(registry.ContentHash(body), "example.com/bcmr.json")

	s := newPipelineSuite(authbaseTx())
	s.fetcher.serve("https://example.com/bcmr.json", 200, body)
	w := startWorker(t, s)

	block := &types.Block{
		BlockHeader: types.BlockHeader{Hash: blockHashGenesis, Height: 800000, Time: 1685577600},
		Tx:          []*types.Transaction{genesisTx(&announcement)},
	}
	require.NoError(t, w.processor.Process(ctx, []*types.Block{block}))

	// identity outputs are written before the block is recorded
	genesis, err := s.dg.GetIdentityOutput(ctx, txidGenesis)
	require.NoError(t, err)
	assert.True(t, genesis.Genesis)
	current, err := w.processor.CurrentBlock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 800000, current.Height)

	// metadata is generated on its own queue
	assert.Eventually(t, func() bool { return s.dg.tokenMetadataCount() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Pipeline().SetRegistryWatch(ctx, txidGenesis, true))
	require.NoError(t, w.runPeriodicJob(ctx, jobWatch))
	assert.Eventually(t, func() bool { return s.dg.tokenMetadataCount() == 4 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.runPeriodicJob(ctx, jobBackfill))
	assert.ErrorIs(t, w.runPeriodicJob(ctx, "unknown"), errs.Unsupported)
}

func TestWorkerMempoolQueue(t *testing.T) {
	ctx := context.Background()
	body := registryDocument(category)
	announcement := announcementScript(registry.ContentHash(body), "example.com/bcmr.json")

	s := newPipelineSuite()
	s.fetcher.serve("https://example.com/bcmr.json", 200, body)
	s.node.decoded["0200"] = genesisTx(&announcement)
	w := startWorker(t, s)

	require.NoError(t, w.EnqueueMempoolTransaction(ctx, "0200"))
	assert.Eventually(t, func() bool { return s.dg.registryCount() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWorkerShutdownWithoutRun(t *testing.T) {
	s := newPipelineSuite()
	w := NewWorker(s.dg, s.node, s.fetcher, WorkerConfig{Network: common.NetworkMainnet})

	var cleaned int
	w.cleanupFuncs = []func(context.Context) error{
		func(ctx context.Context) error {
			cleaned++
			return nil
		},
	}
	require.NoError(t, w.Shutdown())
	require.NoError(t, w.Shutdown())
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, "bcmr", w.Type())

	assert.Error(t, w.EnqueueMempoolTransaction(context.Background(), "0200"))
}
