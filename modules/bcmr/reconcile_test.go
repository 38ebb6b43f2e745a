package bcmr

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetraceAuthchainHeadReached(t *testing.T) {
	ctx := context.Background()
	s := newPipelineSuite(authbaseTx())
	require.NoError(t, s.pipeline.ProcessTransaction(ctx, genesisTx(nil)))
	ingested := len(s.dg.rawTxs)

	processed, err := s.pipeline.RetraceAuthchain(ctx, category)
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, []string{txidGenesis}, s.spendLookup.lookups)
	assert.Len(t, s.dg.rawTxs, ingested)
}

func TestRetraceAuthchainFollowsSpends(t *testing.T) {
	ctx := context.Background()
	s := newPipelineSuite(authbaseTx(), transferTx())
	require.NoError(t, s.pipeline.ProcessTransaction(ctx, genesisTx(nil)))
	s.spendLookup.spends[txidGenesis] = txidTransfer

	processed, err := s.pipeline.RetraceAuthchain(ctx, category)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{txidGenesis, txidTransfer}, s.spendLookup.lookups)

	head, err := s.dg.GetAuthchainHead(ctx, category)
	require.NoError(t, err)
	assert.Equal(t, txidTransfer, head.Txid)

	// resumes from the recorded spender
	s.spendLookup.lookups = nil
	processed, err = s.pipeline.RetraceAuthchain(ctx, category)
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, []string{txidTransfer}, s.spendLookup.lookups)
}

func TestRetraceAuthchainErrors(t *testing.T) {
	ctx := context.Background()

	s := newPipelineSuite()
	_, err := s.pipeline.RetraceAuthchain(ctx, category)
	assert.ErrorIs(t, err, errs.NotFound)

	withoutLookup := NewPipeline(s.dg, s.node, s.fetcher)
	_, err = withoutLookup.RetraceAuthchain(ctx, category)
	assert.ErrorIs(t, err, errs.Unsupported)
}

func TestBackfillIdentityOutputs(t *testing.T) {
	ctx := context.Background()
	s := newPipelineSuite(authbaseTx())
	delete(s.node.heights, blockHashGenesis)

	require.NoError(t, s.pipeline.ProcessTransaction(ctx, genesisTx(nil)))
	genesis, err := s.dg.GetIdentityOutput(ctx, txidGenesis)
	require.NoError(t, err)
	require.Nil(t, genesis.BlockHeight)
	require.NotNil(t, genesis.Timestamp)
	timestamp := *genesis.Timestamp

	s.node.txs[txidGenesis] = genesisTx(nil)
	s.node.heights[blockHashGenesis] = 800000

	for i := 0; i < 2; i++ {
		require.NoError(t, s.pipeline.Backfill(ctx))

		genesis, err = s.dg.GetIdentityOutput(ctx, txidGenesis)
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(int64(800000)), genesis.BlockHeight)
		assert.Equal(t, timestamp, *genesis.Timestamp)
	}

	// the node has no block details of the authbase
	authbase, err := s.dg.GetIdentityOutput(ctx, txidAuthbase)
	require.NoError(t, err)
	assert.Nil(t, authbase.BlockHeight)
	assert.Nil(t, authbase.Timestamp)
}

func TestBackfillRegistryAndTokenDates(t *testing.T) {
	ctx := context.Background()
	body := registryDocument(category)
	announcement := announcementScript(registry.ContentHash(body), "example.com/bcmr.json")

	s := newPipelineSuite(genesisTx(&announcement))
	s.fetcher.serve("https://example.com/bcmr.json", 200, body)

	unconfirmed := genesisTx(&announcement)
	unconfirmed.BlockHash = ""
	unconfirmed.BlockTime = 0
	s.node.decoded["0200"] = unconfirmed
	require.NoError(t, s.pipeline.ProcessMempoolTransaction(ctx, "0200"))

	reg, err := s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)
	require.Nil(t, reg.DateCreated)
	require.Len(t, s.dg.tokens, 2)

	require.NoError(t, s.pipeline.Backfill(ctx))

	expected := time.Unix(1685577600, 0).UTC()
	reg, err = s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)
	assert.Equal(t, lo.ToPtr(expected), reg.DateCreated)
	for _, token := range s.dg.tokens {
		assert.Equal(t, lo.ToPtr(expected), token.DateCreated)
	}
	assert.Equal(t, 1, s.node.calls(txidGenesis))
}

func TestWatchRegistryUnchanged(t *testing.T) {
	ctx := context.Background()
	body := registryDocument(category)
	announcement := announcementScript(registry.ContentHash(body), "example.com/bcmr.json")

	s := newPipelineSuite(authbaseTx())
	s.fetcher.serve("https://example.com/bcmr.json", 200, body)
	require.NoError(t, s.pipeline.ProcessTransaction(ctx, genesisTx(&announcement)))
	require.NoError(t, s.pipeline.SetRegistryWatch(ctx, txidGenesis, true))
	before, err := s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)

	require.NoError(t, s.pipeline.Watch(ctx, nil))

	after, err := s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)
	assert.Equal(t, before.Contents, after.Contents)
	assert.Equal(t, before.ValidityChecks, after.ValidityChecks)
	// metadata regenerated from the same document
	assert.Len(t, s.dg.tokenMetadata, 4)
}

func TestWatchRegistryChanged(t *testing.T) {
	ctx := context.Background()
	body := registryDocument(category)
	announcement := announcementScript(registry.ContentHash(body), "example.com/bcmr.json")

	s := newPipelineSuite(authbaseTx())
	s.fetcher.serve("https://example.com/bcmr.json", 200, body)
	require.NoError(t, s.pipeline.ProcessTransaction(ctx, genesisTx(&announcement)))
	require.NoError(t, s.pipeline.SetRegistryWatch(ctx, txidGenesis, true))

	revised := []byte(strings.Replace(string(body), "New Name", "Revised Name", 1))
	s.fetcher.serve("https://example.com/bcmr.json", 200, revised)

	reg, err := s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)
	require.NoError(t, s.pipeline.WatchRegistry(ctx, reg.ID))

	reg, err = s.dg.GetRegistryByTxid(ctx, txidGenesis)
	require.NoError(t, err)
	assert.JSONEq(t, string(revised), string(reg.Contents))
	// the revision no longer matches the on-chain hash
	assert.False(t, reg.ValidityChecks.HashMatch)
	assert.True(t, reg.ValidityChecks.SchemaValid)
	assert.NotNil(t, reg.GeneratedMetadataAt)
	assert.Len(t, s.dg.tokenMetadata, 2)
}

func TestWatchDispatch(t *testing.T) {
	ctx := context.Background()
	s := newPipelineSuite()
	watched := createVerifiedRegistry(t, s.dg, txidGenesis, registryDocument(category))
	createVerifiedRegistry(t, s.dg, txidTransfer, registryDocument(category))
	require.NoError(t, s.pipeline.SetRegistryWatch(ctx, txidGenesis, true))

	var dispatched []int64
	require.NoError(t, s.pipeline.Watch(ctx, func(ctx context.Context, registryID int64) error {
		dispatched = append(dispatched, registryID)
		return nil
	}))
	assert.Equal(t, []int64{watched.ID}, dispatched)

	require.NoError(t, s.pipeline.SetRegistryWatch(ctx, txidGenesis, false))
	dispatched = nil
	require.NoError(t, s.pipeline.Watch(ctx, func(ctx context.Context, registryID int64) error {
		dispatched = append(dispatched, registryID)
		return nil
	}))
	assert.Empty(t, dispatched)

	failure := errors.New("queue closed")
	require.NoError(t, s.pipeline.SetRegistryWatch(ctx, txidGenesis, true))
	err := s.pipeline.Watch(ctx, func(ctx context.Context, registryID int64) error { return failure })
	assert.ErrorIs(t, err, failure)
}

func TestSetRegistryWatchUnknown(t *testing.T) {
	s := newPipelineSuite()
	err := s.pipeline.SetRegistryWatch(context.Background(), txidGenesis, true)
	assert.ErrorIs(t, err, errs.NotFound)
}
