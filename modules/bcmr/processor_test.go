package bcmr

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu         sync.Mutex
	dispatched []*types.Transaction
	waits      int
}

func (d *recordingDispatcher) dispatch(ctx context.Context, tx *types.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, tx)
	return nil
}

func (d *recordingDispatcher) wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits++
}

func (d *recordingDispatcher) txids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lo.Map(d.dispatched, func(tx *types.Transaction, _ int) string { return tx.Txid })
}

func TestProcessorVerifyStates(t *testing.T) {
	ctx := context.Background()
	dg := newMemoryDataGateway()
	p := NewProcessor(dg, common.NetworkMainnet, nil, nil)

	require.NoError(t, p.VerifyStates(ctx))

	require.NoError(t, dg.CreateIndexerState(ctx, entity.IndexerState{Network: common.NetworkMainnet, DBVersion: DBVersion}))
	require.NoError(t, p.VerifyStates(ctx))

	require.NoError(t, dg.CreateIndexerState(ctx, entity.IndexerState{Network: common.NetworkChipnet, DBVersion: DBVersion}))
	assert.ErrorIs(t, p.VerifyStates(ctx), errs.ConflictSetting)

	require.NoError(t, dg.CreateIndexerState(ctx, entity.IndexerState{Network: common.NetworkMainnet, DBVersion: DBVersion + 1}))
	assert.ErrorIs(t, p.VerifyStates(ctx), errs.ConflictSetting)
}

func TestProcessorProcess(t *testing.T) {
	ctx := context.Background()
	dg := newMemoryDataGateway()
	_, err := dg.CreateIdentityOutput(ctx, &entity.IdentityOutput{Txid: txidFunding, Identities: []string{category}})
	require.NoError(t, err)

	announcement := announcementScript(strings.Repeat("00", 32), "example.com/bcmr.json")
	var (
		unrelated = &types.Transaction{
			Txid: strings.Repeat("e1", 32),
			Vin:  []*types.TxIn{{Txid: strings.Repeat("e0", 32), Vout: 0}},
			Vout: []*types.TxOut{{N: 0, ScriptPubKey: p2pkhScript("bitcoincash:qunrelated")}},
		}
		spendsKnown = &types.Transaction{
			Txid: strings.Repeat("e2", 32),
			Vin:  []*types.TxIn{{Txid: txidFunding, Vout: 0}},
			Vout: []*types.TxOut{{N: 0, ScriptPubKey: p2pkhScript("bitcoincash:qnext")}},
		}
		// spends output 1 of a known identity output, which carries no authority
		spendsOtherOutput = &types.Transaction{
			Txid: strings.Repeat("e3", 32),
			Vin:  []*types.TxIn{{Txid: txidFunding, Vout: 1}},
			Vout: []*types.TxOut{{N: 0, ScriptPubKey: p2pkhScript("bitcoincash:qother")}},
		}
		announces = &types.Transaction{
			Txid: strings.Repeat("e4", 32),
			Vin:  []*types.TxIn{{Txid: strings.Repeat("e5", 32), Vout: 2}},
			Vout: []*types.TxOut{{N: 0, ScriptPubKey: announcement}},
		}
	)
	block := &types.Block{
		BlockHeader: types.BlockHeader{Hash: blockHashGenesis, Height: 800000, Time: 1685577600},
		Tx: []*types.Transaction{
			{Txid: strings.Repeat("e6", 32), Vin: []*types.TxIn{{Coinbase: "03"}}, Vout: []*types.TxOut{{N: 0, ScriptPubKey: p2pkhScript("bitcoincash:qminer")}}},
			unrelated,
			genesisTx(nil),
			transferTx(), // spends the genesis selected earlier in the block
			spendsKnown,
			spendsOtherOutput,
			announces,
		},
	}

	d := &recordingDispatcher{}
	p := NewProcessor(dg, common.NetworkMainnet, d.dispatch, d.wait)
	require.NoError(t, p.Process(ctx, []*types.Block{block}))

	assert.Equal(t, []string{txidGenesis, txidTransfer, spendsKnown.Txid, announces.Txid}, d.txids())
	assert.Equal(t, 1, d.waits)
	for _, tx := range d.dispatched {
		assert.Equal(t, blockHashGenesis, tx.BlockHash)
		assert.EqualValues(t, 1685577600, tx.BlockTime)
	}

	current, err := p.CurrentBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.BlockHeader{Hash: blockHashGenesis, Height: 800000}, current)

	state, err := dg.GetLatestIndexerState(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.NetworkMainnet, state.Network)
	assert.EqualValues(t, DBVersion, state.DBVersion)
}

func TestProcessorProcessEmpty(t *testing.T) {
	dg := newMemoryDataGateway()
	d := &recordingDispatcher{}
	p := NewProcessor(dg, common.NetworkMainnet, d.dispatch, d.wait)

	require.NoError(t, p.Process(context.Background(), nil))
	assert.Zero(t, d.waits)

	_, err := p.CurrentBlock(context.Background())
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestProcessorProcessDispatchFailure(t *testing.T) {
	ctx := context.Background()
	dg := newMemoryDataGateway()
	failure := errors.New("queue closed")
	p := NewProcessor(dg, common.NetworkMainnet, func(ctx context.Context, tx *types.Transaction) error {
		return failure
	}, nil)

	block := &types.Block{BlockHeader: types.BlockHeader{Hash: blockHashGenesis, Height: 800000}, Tx: []*types.Transaction{genesisTx(nil)}}
	assert.ErrorIs(t, p.Process(ctx, []*types.Block{block}), failure)
	assert.Empty(t, dg.states)
}

func TestProcessorProcessWaitCanceled(t *testing.T) {
	dg := newMemoryDataGateway()
	blocked := make(chan struct{})
	defer close(blocked)

	d := &recordingDispatcher{}
	p := NewProcessor(dg, common.NetworkMainnet, d.dispatch, func() { <-blocked })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := &types.Block{BlockHeader: types.BlockHeader{Hash: blockHashGenesis, Height: 800000}, Tx: []*types.Transaction{genesisTx(nil)}}
	assert.ErrorIs(t, p.Process(ctx, []*types.Block{block}), context.Canceled)
	assert.Empty(t, dg.states)
}
