package fetcher

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/pkg/httpclient"
)

// SpendResult is the answer of the spend-lookup service for one output.
type SpendResult struct {
	Found       bool
	Spent       bool
	SpenderTxid string
}

// SpendLookup answers which transaction spent an output.
type SpendLookup interface {
	LookupSpender(ctx context.Context, txid string, index uint32) (SpendResult, error)
}

var _ SpendLookup = (*HTTPSpendLookup)(nil)

// HTTPSpendLookup posts {txid, index} to a spender endpoint and reads {tx_found, spent, spender}.
type HTTPSpendLookup struct {
	client *httpclient.Client
}

func NewHTTPSpendLookup(url string, config httpclient.Config) (*HTTPSpendLookup, error) {
	client, err := httpclient.New(url, config)
	if err != nil {
		return nil, errors.Wrap(err, "can't create spend lookup client")
	}
	return &HTTPSpendLookup{client: client}, nil
}

type spenderRequest struct {
	Txid  string `json:"txid"`
	Index uint32 `json:"index"`
}

type spenderResponse struct {
	TxFound bool   `json:"tx_found"`
	Spent   bool   `json:"spent"`
	Spender string `json:"spender"`
}

// LookupSpender returns a not-found result for any non-200 answer.
func (l *HTTPSpendLookup) LookupSpender(ctx context.Context, txid string, index uint32) (SpendResult, error) {
	body, err := json.Marshal(spenderRequest{Txid: txid, Index: index})
	if err != nil {
		return SpendResult{}, errors.WithStack(err)
	}
	resp, err := l.client.Post(ctx, "", httpclient.RequestOptions{Body: body})
	if err != nil {
		return SpendResult{}, errors.Wrapf(err, "failed to lookup spender of %s:%d", txid, index)
	}
	if resp.StatusCode() != http.StatusOK {
		return SpendResult{}, nil
	}

	var data spenderResponse
	if err := resp.UnmarshalBody(&data); err != nil {
		return SpendResult{}, errors.Wrap(err, "invalid spend lookup response")
	}
	return SpendResult{
		Found:       data.TxFound,
		Spent:       data.Spent,
		SpenderTxid: data.Spender,
	}, nil
}
