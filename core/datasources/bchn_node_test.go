package datasources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPCClient struct {
	mu       sync.Mutex
	handlers map[string]func(params []json.RawMessage) (json.RawMessage, error)
	calls    map[string]int
	tip      int64
}

func newFakeRPCClient() *fakeRPCClient {
	return &fakeRPCClient{
		handlers: make(map[string]func(params []json.RawMessage) (json.RawMessage, error)),
		calls:    make(map[string]int),
	}
}

func (c *fakeRPCClient) RawRequest(method string, params []json.RawMessage) (json.RawMessage, error) {
	c.mu.Lock()
	c.calls[method]++
	handler, ok := c.handlers[method]
	c.mu.Unlock()
	if !ok {
		return nil, &btcjson.RPCError{Code: btcjson.ErrRPCMethodNotFound.Code, Message: "Method not found"}
	}
	return handler(params)
}

func (c *fakeRPCClient) GetBlockCount() (int64, error) {
	return c.tip, nil
}

// GetBlockHash derives a deterministic hash from the height.
func (c *fakeRPCClient) GetBlockHash(blockHeight int64) (*chainhash.Hash, error) {
	return chainhash.NewHashFromStr(fmt.Sprintf("%064x", blockHeight))
}

func (c *fakeRPCClient) callCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

var txid = strings.Repeat("ab", 32)

func TestGetRawTransaction(t *testing.T) {
	ctx := context.Background()
	client := newFakeRPCClient()
	client.handlers["getrawtransaction"] = func(params []json.RawMessage) (json.RawMessage, error) {
		require.Len(t, params, 2)
		assert.JSONEq(t, `1`, string(params[1]))
		var requested string
		require.NoError(t, json.Unmarshal(params[0], &requested))
		if requested != txid {
			return nil, &btcjson.RPCError{Code: btcjson.ErrRPCInvalidAddressOrKey, Message: "No such mempool or blockchain transaction"}
		}
		return json.RawMessage(`{
			"txid": "` + txid + `",
			"blockhash": "00000000000000000123",
			"blocktime": 1685577600,
			"vin": [{"txid": "` + strings.Repeat("cd", 32) + `", "vout": 0, "sequence": 4294967295}],
			"vout": [{"n": 0, "value": 0.00001, "scriptPubKey": {"asm": "", "hex": "", "type": "pubkeyhash", "addresses": ["bitcoincash:qowner"]},
				"tokenData": {"category": "` + strings.Repeat("cd", 32) + `", "amount": "1000"}}]
		}`), nil
	}
	node := NewBCHNode(client)

	tx, err := node.GetRawTransaction(ctx, txid)
	require.NoError(t, err)
	assert.Equal(t, txid, tx.Txid)
	assert.True(t, tx.IsConfirmed())
	require.Len(t, tx.Vout, 1)
	require.NotNil(t, tx.Vout[0].TokenData)
	assert.Equal(t, "bitcoincash:qowner", tx.Vout[0].ScriptPubKey.FirstAddress())

	_, err = node.GetRawTransaction(ctx, strings.Repeat("ef", 32))
	assert.ErrorIs(t, err, errs.NotFound)

	_, err = node.GetRawTransaction(ctx, "not-a-txid")
	assert.ErrorIs(t, err, errs.InvalidArgument)
	assert.Equal(t, 2, client.callCount("getrawtransaction"))
}

func TestGetBlockHeight(t *testing.T) {
	client := newFakeRPCClient()
	client.handlers["getblockheader"] = func(params []json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`{"hash": "0000abc", "height": 800000, "time": 1685577600}`), nil
	}
	height, err := NewBCHNode(client).GetBlockHeight(context.Background(), "0000abc")
	require.NoError(t, err)
	assert.EqualValues(t, 800000, height)
}

func TestDecodeRawTransactionRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after failures", func(t *testing.T) {
		client := newFakeRPCClient()
		var attempts int
		client.handlers["decoderawtransaction"] = func(params []json.RawMessage) (json.RawMessage, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection refused")
			}
			return json.RawMessage(`{"txid": "` + txid + `", "vin": [], "vout": []}`), nil
		}
		tx, err := NewBCHNode(client, WithDecodeRetry(5, 0)).DecodeRawTransaction(ctx, "0200")
		require.NoError(t, err)
		assert.Equal(t, txid, tx.Txid)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up at the attempt cap", func(t *testing.T) {
		client := newFakeRPCClient()
		failure := errors.New("connection refused")
		client.handlers["decoderawtransaction"] = func(params []json.RawMessage) (json.RawMessage, error) {
			return nil, failure
		}
		_, err := NewBCHNode(client, WithDecodeRetry(4, 0)).DecodeRawTransaction(ctx, "0200")
		assert.ErrorIs(t, err, failure)
		assert.Equal(t, 4, client.callCount("decoderawtransaction"))
	})

	t.Run("stops when canceled", func(t *testing.T) {
		client := newFakeRPCClient()
		client.handlers["decoderawtransaction"] = func(params []json.RawMessage) (json.RawMessage, error) {
			return nil, errors.New("connection refused")
		}
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewBCHNode(client).DecodeRawTransaction(ctx, "0200")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, client.callCount("decoderawtransaction"))
	})
}

func TestFetchBlocks(t *testing.T) {
	ctx := context.Background()
	client := newFakeRPCClient()
	client.tip = 120
	client.handlers["getblock"] = func(params []json.RawMessage) (json.RawMessage, error) {
		var hash string
		require.NoError(t, json.Unmarshal(params[0], &hash))
		return json.RawMessage(`{"hash": "` + hash + `", "time": 1685577600, "tx": [{"txid": "` + txid + `", "vin": [{"coinbase": "03"}], "vout": []}]}`), nil
	}
	node := NewBCHNode(client)

	tip, err := node.LatestHeight(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 120, tip)

	blocks, err := node.FetchBlocks(ctx, 100, 119)
	require.NoError(t, err)
	require.Len(t, blocks, 20)
	for i, block := range blocks {
		assert.EqualValues(t, 100+i, block.Height)
		expected, err := client.GetBlockHash(int64(100 + i))
		require.NoError(t, err)
		assert.Equal(t, expected.String(), block.Hash)
		require.Len(t, block.Tx, 1)
		assert.True(t, block.Tx[0].IsCoinbase())
	}

	blocks, err = node.FetchBlocks(ctx, 10, 9)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestFetchBlocksError(t *testing.T) {
	client := newFakeRPCClient()
	_, err := NewBCHNode(client).FetchBlocks(context.Background(), 1, 3)
	assert.Error(t, err)
}
