// Package fetcher downloads registry documents over HTTPS or through an IPFS gateway,
// and queries the spend-lookup service used by authchain retrace.
package fetcher

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/internal/registry"
	"github.com/gaze-network/bcmr-indexer/pkg/httpclient"
	"golang.org/x/time/rate"
)

// Response is the outcome of one document request.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the request returned HTTP 200.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// DocumentFetcher fetches a registry document from one location.
type DocumentFetcher interface {
	Fetch(ctx context.Context, uri registry.URI) (*Response, error)
}

type Config struct {
	IPFSGateway string
	HTTP        httpclient.Config

	// RateLimit is the maximum requests per second, zero disables the limit.
	RateLimit float64
}

var _ DocumentFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches https:// documents directly and ipfs:// documents as <gateway>/ipfs/<path>.
type HTTPFetcher struct {
	direct  *httpclient.Client
	gateway *httpclient.Client
	limiter *rate.Limiter
}

func NewHTTPFetcher(config Config) (*HTTPFetcher, error) {
	if config.IPFSGateway == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "ipfs gateway is required")
	}
	direct, err := httpclient.New("", config.HTTP)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	gateway, err := httpclient.New(config.IPFSGateway, config.HTTP)
	if err != nil {
		return nil, errors.Wrap(err, "can't create ipfs gateway client")
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return &HTTPFetcher{
		direct:  direct,
		gateway: gateway,
		limiter: limiter,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri registry.URI) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	var (
		resp *httpclient.HttpResponse
		err  error
	)
	switch uri.Kind {
	case registry.URIKindHTTPS:
		resp, err = f.direct.GetURL(ctx, uri.Normalized, httpclient.RequestOptions{})
	case registry.URIKindIPFS:
		resp, err = f.gateway.Get(ctx, "/ipfs/"+uri.IPFSPath(), httpclient.RequestOptions{})
	default:
		return nil, errors.Wrapf(errs.Unsupported, "uri kind %q", uri.Kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", uri.Normalized)
	}

	body, err := resp.RawBody()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       body,
	}, nil
}
