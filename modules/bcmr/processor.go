package bcmr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/indexer"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/cashtokens"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

var _ indexer.Processor = (*Processor)(nil)

// Processor selects the transactions of confirmed blocks that can affect an authchain or a registry
// and dispatches them for processing.
type Processor struct {
	bcmrDg  datagateway.BCMRDataGateway
	network common.Network

	// dispatch hands a transaction over for processing, wait blocks until dispatched transactions are done.
	dispatch func(ctx context.Context, tx *types.Transaction) error
	wait     func()
}

func NewProcessor(bcmrDg datagateway.BCMRDataGateway, network common.Network, dispatch func(ctx context.Context, tx *types.Transaction) error, wait func()) *Processor {
	return &Processor{
		bcmrDg:   bcmrDg,
		network:  network,
		dispatch: dispatch,
		wait:     wait,
	}
}

func (p *Processor) Name() string {
	return "BCMR"
}

// VerifyStates ensures the database was indexed by a compatible version on the same network.
func (p *Processor) VerifyStates(ctx context.Context) error {
	state, err := p.bcmrDg.GetLatestIndexerState(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil
		}
		return errors.Wrap(err, "failed to get latest indexer state")
	}
	if state.DBVersion != DBVersion {
		return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please upgrade to version %d", state.DBVersion, DBVersion)
	}
	if state.Network != p.network {
		return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest indexed network is %s, configured network is %s. If you want to change the network, please reset the database", state.Network, p.network)
	}
	return nil
}

func (p *Processor) CurrentBlock(ctx context.Context) (types.BlockHeader, error) {
	state, err := p.bcmrDg.GetLatestIndexerState(ctx)
	if err != nil {
		return types.BlockHeader{}, errors.WithStack(err)
	}
	return types.BlockHeader{
		Hash:   state.LastBlockHash,
		Height: state.LastBlockHeight,
	}, nil
}

func (p *Processor) Process(ctx context.Context, blocks []*types.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	var dispatched int
	for _, block := range blocks {
		txs, err := p.selectTransactions(ctx, block)
		if err != nil {
			return errors.Wrapf(err, "failed to select transactions of block %d", block.Height)
		}
		for _, tx := range txs {
			if err := p.dispatch(ctx, tx); err != nil {
				return errors.Wrapf(err, "failed to dispatch transaction %s", tx.Txid)
			}
		}
		dispatched += len(txs)
	}
	if err := p.waitDispatched(ctx); err != nil {
		return errors.WithStack(err)
	}

	last := blocks[len(blocks)-1]
	if err := p.bcmrDg.CreateIndexerState(ctx, entity.IndexerState{
		LastBlockHeight: last.Height,
		LastBlockHash:   last.Hash,
		Network:         p.network,
		DBVersion:       DBVersion,
	}); err != nil {
		return errors.Wrap(err, "failed to record indexer state")
	}
	logger.DebugContext(ctx, "Dispatched block transactions", slogx.Int("total", dispatched))
	return nil
}

// selectTransactions returns the transactions carrying tokens or an announcement, and the ones spending
// output 0 of a known identity output or of a transaction selected earlier in the block.
func (p *Processor) selectTransactions(ctx context.Context, block *types.Block) ([]*types.Transaction, error) {
	parentTxids := lo.Uniq(lo.FlatMap(block.Tx, func(tx *types.Transaction, _ int) []string {
		if tx.IsCoinbase() {
			return nil
		}
		return lo.FilterMap(tx.Vin, func(in *types.TxIn, _ int) (string, bool) {
			return in.Txid, in.Vout == 0
		})
	}))
	known := make(map[string]bool)
	if len(parentTxids) > 0 {
		outputs, err := p.bcmrDg.GetUnspentIdentityOutputs(ctx, parentTxids)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get unspent identity outputs")
		}
		for _, output := range outputs {
			known[output.Txid] = true
		}
	}

	selected := make([]*types.Transaction, 0)
	for _, tx := range block.Tx {
		if tx.IsCoinbase() {
			continue
		}
		if !p.relevant(tx, known) {
			continue
		}
		tx.BlockHash = block.Hash
		tx.BlockTime = block.Time
		known[tx.Txid] = true
		selected = append(selected, tx)
	}
	return selected, nil
}

func (p *Processor) relevant(tx *types.Transaction, known map[string]bool) bool {
	for _, in := range tx.Vin {
		if in.Vout == 0 && known[in.Txid] {
			return true
		}
		if in.Prevout != nil && in.Prevout.TokenData != nil {
			return true
		}
	}
	for _, out := range tx.Vout {
		if out.TokenData != nil {
			return true
		}
	}
	return cashtokens.Classify(tx).Announcement != nil
}

func (p *Processor) waitDispatched(ctx context.Context) error {
	if p.wait == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wait()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (p *Processor) Shutdown(ctx context.Context) error {
	return nil
}
