package bcmr

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/datagateway"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/entity"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/fetcher"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/gaze-network/bcmr-indexer/pkg/btcclient"
	"github.com/samber/lo"
)

var _ datagateway.BCMRDataGatewayWithTx = (*memoryDataGateway)(nil)

type memoryStore struct {
	mu sync.Mutex

	outputs       map[string]*entity.IdentityOutput
	tokens        []*entity.Token
	registries    []*entity.Registry
	tokenMetadata []*entity.TokenMetadata
	rawTxs        map[string]*types.Transaction
	applied       map[string]bool
	states        []entity.IndexerState

	// beforeMarkSpent runs before an identity output is marked spent, outside of the lock.
	beforeMarkSpent func(txid string)
}

// memoryDataGateway is an in-memory data gateway. Writes made through a transaction are visible at once
// and undone in reverse order on Rollback.
type memoryDataGateway struct {
	*memoryStore

	tx   bool
	undo []func()
}

func newMemoryDataGateway() *memoryDataGateway {
	return &memoryDataGateway{memoryStore: &memoryStore{
		outputs: make(map[string]*entity.IdentityOutput),
		rawTxs:  make(map[string]*types.Transaction),
		applied: make(map[string]bool),
	}}
}

func (m *memoryDataGateway) BeginBCMRTx(ctx context.Context) (datagateway.BCMRDataGatewayWithTx, error) {
	return &memoryDataGateway{memoryStore: m.memoryStore, tx: true}, nil
}

func (m *memoryDataGateway) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	return nil
}

func (m *memoryDataGateway) Rollback(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.undo) - 1; i >= 0; i-- {
		m.undo[i]()
	}
	m.undo = nil
	return nil
}

// record keeps the undo of a write made through a transaction. Callers hold the lock.
func (m *memoryDataGateway) record(undo func()) {
	if m.tx {
		m.undo = append(m.undo, undo)
	}
}

func copyOutput(o *entity.IdentityOutput) *entity.IdentityOutput {
	c := *o
	c.Identities = append([]string(nil), o.Identities...)
	return &c
}

func (m *memoryDataGateway) GetIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[txid]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return copyOutput(o), nil
}

func (m *memoryDataGateway) GetUnspentIdentityOutputs(ctx context.Context, txids []string) ([]*entity.IdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*entity.IdentityOutput, 0)
	for _, txid := range lo.Uniq(txids) {
		if o, ok := m.outputs[txid]; ok && !o.Spent {
			result = append(result, copyOutput(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Txid < result[j].Txid })
	return result, nil
}

func (m *memoryDataGateway) GetGenesisIdentityOutput(ctx context.Context, txid string) (*entity.IdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[txid]
	if !ok || !o.Genesis {
		return nil, errors.WithStack(errs.NotFound)
	}
	return copyOutput(o), nil
}

func (m *memoryDataGateway) GetAuthchainHead(ctx context.Context, category string) (*entity.IdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.outputs {
		if !o.Spent && o.HasIdentity(category) {
			return copyOutput(o), nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (m *memoryDataGateway) GetIdentityOutputsMissingBlockInfo(ctx context.Context, limit int32) ([]*entity.IdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*entity.IdentityOutput, 0)
	for _, o := range m.outputs {
		if o.BlockHeight == nil || o.Timestamp == nil {
			result = append(result, copyOutput(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Txid < result[j].Txid })
	return lo.Subset(result, 0, uint(limit)), nil
}

func (m *memoryDataGateway) CreateIdentityOutput(ctx context.Context, output *entity.IdentityOutput) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.outputs[output.Txid]; ok {
		return false, nil
	}
	stored := copyOutput(output)
	stored.Spent = false
	stored.SpenderTxid = nil
	m.outputs[output.Txid] = stored
	m.record(func() { delete(m.outputs, output.Txid) })
	return true, nil
}

func (m *memoryDataGateway) MarkIdentityOutputSpent(ctx context.Context, txid, spenderTxid string) (bool, error) {
	if hook := m.beforeMarkSpent; hook != nil {
		hook(txid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[txid]
	if !ok || o.Spent {
		return false, nil
	}
	o.Spent = true
	o.SpenderTxid = lo.ToPtr(spenderTxid)
	m.record(func() {
		o.Spent = false
		o.SpenderTxid = nil
	})
	return true, nil
}

func (m *memoryDataGateway) FillIdentityOutputBlockInfo(ctx context.Context, txid string, blockHeight *int64, timestamp *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[txid]
	if !ok {
		return nil
	}
	prevHeight, prevTimestamp := o.BlockHeight, o.Timestamp
	m.record(func() { o.BlockHeight, o.Timestamp = prevHeight, prevTimestamp })
	if o.BlockHeight == nil {
		o.BlockHeight = blockHeight
	}
	if o.Timestamp == nil {
		o.Timestamp = timestamp
	}
	return nil
}

func (m *memoryDataGateway) GetEarliestToken(ctx context.Context, category string) (*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := lo.Find(m.tokens, func(t *entity.Token) bool { return t.Category == category })
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return lo.ToPtr(*token), nil
}

func (m *memoryDataGateway) GetToken(ctx context.Context, category, commitment, capability string) (*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := lo.Find(m.tokens, func(t *entity.Token) bool {
		return t.Category == category && t.Commitment == commitment && t.Capability == capability
	})
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return lo.ToPtr(*token), nil
}

func (m *memoryDataGateway) GetTokenByID(ctx context.Context, id int64) (*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := lo.Find(m.tokens, func(t *entity.Token) bool { return t.ID == id })
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return lo.ToPtr(*token), nil
}

func (m *memoryDataGateway) GetTokensMissingDate(ctx context.Context, limit int32) ([]*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := lo.Filter(m.tokens, func(t *entity.Token, _ int) bool { return t.DateCreated == nil })
	return lo.Map(lo.Subset(result, 0, uint(limit)), func(t *entity.Token, _ int) *entity.Token { return lo.ToPtr(*t) }), nil
}

func (m *memoryDataGateway) UpsertToken(ctx context.Context, token *entity.Token) (*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := lo.Find(m.tokens, func(t *entity.Token) bool {
		return t.Category == token.Category && t.Commitment == token.Commitment && t.Capability == token.Capability
	})
	if ok {
		if existing.DateCreated == nil && token.DateCreated != nil {
			existing.DateCreated = token.DateCreated
			m.record(func() { existing.DateCreated = nil })
		}
		return lo.ToPtr(*existing), nil
	}
	stored := *token
	stored.ID = int64(len(m.tokens) + 1)
	m.tokens = append(m.tokens, &stored)
	m.record(func() { m.tokens = lo.Without(m.tokens, &stored) })
	return lo.ToPtr(stored), nil
}

func (m *memoryDataGateway) FillTokenDateCreated(ctx context.Context, id int64, dateCreated time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.ID == id && t.DateCreated == nil {
			t.DateCreated = lo.ToPtr(dateCreated)
			m.record(func() { t.DateCreated = nil })
		}
	}
	return nil
}

func (m *memoryDataGateway) findRegistry(match func(r *entity.Registry) bool) (*entity.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := lo.Find(m.registries, match)
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return lo.ToPtr(*reg), nil
}

func (m *memoryDataGateway) GetRegistryByTxid(ctx context.Context, txid string) (*entity.Registry, error) {
	return m.findRegistry(func(r *entity.Registry) bool { return r.Txid == txid })
}

func (m *memoryDataGateway) GetRegistryByID(ctx context.Context, id int64) (*entity.Registry, error) {
	return m.findRegistry(func(r *entity.Registry) bool { return r.ID == id })
}

func (m *memoryDataGateway) filterRegistries(match func(r *entity.Registry) bool) []*entity.Registry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.FilterMap(m.registries, func(r *entity.Registry, _ int) (*entity.Registry, bool) {
		return lo.ToPtr(*r), match(r)
	})
}

func (m *memoryDataGateway) GetRegistriesPendingMetadata(ctx context.Context) ([]*entity.Registry, error) {
	return m.filterRegistries(func(r *entity.Registry) bool { return r.GeneratedMetadataAt == nil }), nil
}

func (m *memoryDataGateway) GetWatchedRegistries(ctx context.Context) ([]*entity.Registry, error) {
	return m.filterRegistries(func(r *entity.Registry) bool { return r.WatchForChanges }), nil
}

func (m *memoryDataGateway) GetRegistriesMissingDate(ctx context.Context, limit int32) ([]*entity.Registry, error) {
	result := m.filterRegistries(func(r *entity.Registry) bool { return r.DateCreated == nil })
	return lo.Subset(result, 0, uint(limit)), nil
}

func (m *memoryDataGateway) GetLatestVerifiedRegistry(ctx context.Context, category string) (*entity.Registry, error) {
	matches := m.filterRegistries(func(r *entity.Registry) bool {
		if !r.ValidityChecks.HashMatch || len(r.Contents) == 0 {
			return false
		}
		var doc struct {
			RegistryIdentity any                        `json:"registryIdentity"`
			Identities       map[string]json.RawMessage `json:"identities"`
		}
		if err := json.Unmarshal(r.Contents, &doc); err != nil {
			return false
		}
		_, described := doc.Identities[category]
		return doc.RegistryIdentity == category || described
	})
	if len(matches) == 0 {
		return nil, errors.WithStack(errs.NotFound)
	}
	return matches[len(matches)-1], nil
}

func (m *memoryDataGateway) CreateRegistry(ctx context.Context, reg *entity.Registry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lo.ContainsBy(m.registries, func(r *entity.Registry) bool { return r.Txid == reg.Txid }) {
		return false, nil
	}
	stored := *reg
	stored.ID = int64(len(m.registries) + 1)
	m.registries = append(m.registries, &stored)
	m.record(func() { m.registries = lo.Without(m.registries, &stored) })
	return true, nil
}

func (m *memoryDataGateway) updateRegistry(match func(r *entity.Registry) bool, update func(r *entity.Registry)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated bool
	for _, r := range m.registries {
		if match(r) {
			previous := *r
			update(r)
			m.record(func() { *r = previous })
			updated = true
		}
	}
	return updated
}

func (m *memoryDataGateway) UpdateRegistryDocument(ctx context.Context, reg *entity.Registry) error {
	m.updateRegistry(func(r *entity.Registry) bool { return r.ID == reg.ID }, func(r *entity.Registry) {
		r.Contents = reg.Contents
		r.ValidityChecks = reg.ValidityChecks
		r.RequestStatus = reg.RequestStatus
		r.GeneratedMetadataAt = nil
	})
	return nil
}

func (m *memoryDataGateway) SetRegistryGeneratedMetadataAt(ctx context.Context, id int64, generatedAt time.Time) error {
	m.updateRegistry(func(r *entity.Registry) bool { return r.ID == id }, func(r *entity.Registry) {
		r.GeneratedMetadataAt = lo.ToPtr(generatedAt)
	})
	return nil
}

func (m *memoryDataGateway) SetRegistryPublisher(ctx context.Context, txid, publisherTxid string) (bool, error) {
	return m.updateRegistry(func(r *entity.Registry) bool { return r.Txid == txid && r.PublisherTxid == nil }, func(r *entity.Registry) {
		r.PublisherTxid = lo.ToPtr(publisherTxid)
	}), nil
}

func (m *memoryDataGateway) SetRegistryWatchForChanges(ctx context.Context, txid string, watch bool) (bool, error) {
	return m.updateRegistry(func(r *entity.Registry) bool { return r.Txid == txid }, func(r *entity.Registry) {
		r.WatchForChanges = watch
	}), nil
}

func (m *memoryDataGateway) FillRegistryDateCreated(ctx context.Context, id int64, dateCreated time.Time) error {
	m.updateRegistry(func(r *entity.Registry) bool { return r.ID == id && r.DateCreated == nil }, func(r *entity.Registry) {
		r.DateCreated = lo.ToPtr(dateCreated)
	})
	return nil
}

func (m *memoryDataGateway) GetLatestTokenMetadata(ctx context.Context, tokenID int64, metadataType entity.MetadataType) (*entity.TokenMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metadata, _, ok := lo.FindLastIndexOf(m.tokenMetadata, func(t *entity.TokenMetadata) bool {
		return t.TokenID == tokenID && t.MetadataType == metadataType
	})
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return lo.ToPtr(*metadata), nil
}

func (m *memoryDataGateway) CreateTokenMetadata(ctx context.Context, metadata *entity.TokenMetadata) (*entity.TokenMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *metadata
	stored.ID = int64(len(m.tokenMetadata) + 1)
	stored.DateCreated = time.Now()
	m.tokenMetadata = append(m.tokenMetadata, &stored)
	m.record(func() { m.tokenMetadata = lo.Without(m.tokenMetadata, &stored) })
	return lo.ToPtr(stored), nil
}

func (m *memoryDataGateway) GetRawTx(ctx context.Context, txid string) (*types.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rawTxs[txid]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return cloneTx(tx), nil
}

func (m *memoryDataGateway) CreateRawTx(ctx context.Context, tx *types.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rawTxs[tx.Txid]; !ok {
		m.rawTxs[tx.Txid] = cloneTx(tx)
		m.record(func() { delete(m.rawTxs, tx.Txid) })
	}
	return nil
}

func (m *memoryDataGateway) MarkTransactionApplied(ctx context.Context, txid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applied[txid] {
		return false, nil
	}
	m.applied[txid] = true
	m.record(func() { delete(m.applied, txid) })
	return true, nil
}

func (m *memoryDataGateway) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.states) == 0 {
		return entity.IndexerState{}, errors.WithStack(errs.NotFound)
	}
	return m.states[len(m.states)-1], nil
}

func (m *memoryDataGateway) CreateIndexerState(ctx context.Context, state entity.IndexerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
	n := len(m.states) - 1
	m.record(func() { m.states = append(m.states[:n], m.states[n+1:]...) })
	return nil
}

func cloneTx(tx *types.Transaction) *types.Transaction {
	raw, err := json.Marshal(tx)
	if err != nil {
		panic(err)
	}
	var clone types.Transaction
	if err := json.Unmarshal(raw, &clone); err != nil {
		panic(err)
	}
	return &clone
}

var _ btcclient.Contract = (*fakeNode)(nil)

type fakeNode struct {
	mu          sync.Mutex
	txs         map[string]*types.Transaction
	heights     map[string]int64
	decoded     map[string]*types.Transaction
	getRawCalls map[string]int
}

func newFakeNode(txs ...*types.Transaction) *fakeNode {
	n := &fakeNode{
		txs:         make(map[string]*types.Transaction),
		heights:     make(map[string]int64),
		decoded:     make(map[string]*types.Transaction),
		getRawCalls: make(map[string]int),
	}
	for _, tx := range txs {
		n.txs[tx.Txid] = tx
	}
	return n
}

func (n *fakeNode) GetRawTransaction(ctx context.Context, txid string) (*types.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.getRawCalls[txid]++
	tx, ok := n.txs[txid]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "transaction %s", txid)
	}
	return cloneTx(tx), nil
}

func (n *fakeNode) GetBlockHeight(ctx context.Context, blockHash string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	height, ok := n.heights[blockHash]
	if !ok {
		return 0, errors.Wrapf(errs.NotFound, "block %s", blockHash)
	}
	return height, nil
}

func (n *fakeNode) DecodeRawTransaction(ctx context.Context, rawHex string) (*types.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tx, ok := n.decoded[rawHex]
	if !ok {
		return nil, errors.Wrap(errs.InvalidArgument, "can't decode transaction")
	}
	return cloneTx(tx), nil
}

func (n *fakeNode) calls(txid string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.getRawCalls[txid]
}

var _ fetcher.DocumentFetcher = (*fakeFetcher)(nil)

// fakeFetcher answers by normalized uri, unknown locations answer 404.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*fetcher.Response
	requested []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string]*fetcher.Response)}
}

func (f *fakeFetcher) serve(uri string, status int, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[uri] = &fetcher.Response{StatusCode: status, Body: body}
}

func (f *fakeFetcher) Fetch(ctx context.Context, uri registry.URI) (*fetcher.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, uri.Normalized)
	resp, ok := f.responses[uri.Normalized]
	if !ok {
		return &fetcher.Response{StatusCode: 404}, nil
	}
	return resp, nil
}

var _ fetcher.SpendLookup = (*fakeSpendLookup)(nil)

type fakeSpendLookup struct {
	mu      sync.Mutex
	spends  map[string]string
	lookups []string
}

func newFakeSpendLookup() *fakeSpendLookup {
	return &fakeSpendLookup{spends: make(map[string]string)}
}

func (l *fakeSpendLookup) LookupSpender(ctx context.Context, txid string, index uint32) (fetcher.SpendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups = append(l.lookups, txid)
	spender, ok := l.spends[txid]
	if !ok {
		return fetcher.SpendResult{Found: true}, nil
	}
	return fetcher.SpendResult{Found: true, Spent: true, SpenderTxid: spender}, nil
}

type recordingHook struct {
	mu     sync.Mutex
	events []TokenIdentityEvent
}

func (h *recordingHook) OnTokenIdentityChanged(ctx context.Context, event TokenIdentityEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (m *memoryDataGateway) tokenMetadataCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokenMetadata)
}

func (m *memoryDataGateway) registryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registries)
}
