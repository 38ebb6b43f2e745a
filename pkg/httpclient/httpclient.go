package httpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
)

type Config struct {
	// Enable debug mode
	Debug bool

	// Default headers
	Headers map[string]string

	// Timeout for a whole request, including redirects. Default is 30s.
	Timeout time.Duration

	// MaxRedirects is the number of redirects to follow. Default is 5.
	MaxRedirects int
}

type Client struct {
	baseURL *url.URL
	client  *fasthttp.Client
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	if len(cf.Headers) == 0 {
		cf.Headers = make(map[string]string)
	}
	cf.Timeout = utils.Default(cf.Timeout, DefaultTimeout)
	cf.MaxRedirects = utils.Default(cf.MaxRedirects, DefaultMaxRedirects)
	return &Client{
		baseURL: parsedBaseURL,
		client: &fasthttp.Client{
			Name:         "bcmr-indexer",
			ReadTimeout:  cf.Timeout,
			WriteTimeout: cf.Timeout,
		},
		Config: cf,
	}, nil
}

type RequestOptions struct {
	path     string
	method   string
	url      *url.URL
	Body     []byte
	Query    url.Values
	Header   map[string]string
	FormData url.Values
}

type HttpResponse struct {
	URL string
	fasthttp.Response
}

// RawBody returns the uncompressed response body.
func (r *HttpResponse) RawBody() ([]byte, error) {
	body, err := r.BodyUncompressed()
	if err != nil {
		return nil, errors.Wrapf(err, "can't uncompress body from %v", r.URL)
	}
	return body, nil
}

func (r *HttpResponse) UnmarshalBody(out any) error {
	body, err := r.RawBody()
	if err != nil {
		return errors.WithStack(err)
	}
	contentType := strings.ToLower(string(r.Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrapf(err, "can't unmarshal json body from %s, %q", r.URL, string(body))
		}
		return nil
	case strings.HasPrefix(contentType, "text/plain"):
		return errors.Errorf("can't unmarshal plain text %q", string(body))
	default:
		return errors.Errorf("unsupported content type: %s, contents: %v", r.Header.ContentType(), string(body))
	}
}

func (h *Client) request(ctx context.Context, reqOptions RequestOptions) (*HttpResponse, error) {
	start := time.Now()
	req := fasthttp.AcquireRequest()
	req.Header.SetMethod(reqOptions.method)
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range reqOptions.Header {
		req.Header.Set(k, v)
	}

	parsedUrl := h.BaseURL()
	if reqOptions.url != nil {
		parsedUrl = reqOptions.url
	} else if reqOptions.path != "" {
		parsedUrl.Path = path.Join(parsedUrl.Path, reqOptions.path)
	}
	query := parsedUrl.Query()
	for k, values := range reqOptions.Query {
		for _, v := range values {
			query.Add(k, v)
		}
	}
	parsedUrl.RawQuery = query.Encode()

	url := parsedUrl.String()
	req.SetRequestURI(url)
	if reqOptions.Body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(reqOptions.Body)
	} else if reqOptions.FormData != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(reqOptions.FormData.Encode())
	}

	resp := fasthttp.AcquireResponse()
	startDo := time.Now()

	defer func() {
		if h.Debug {
			logger := logger.With(
				slog.String("method", reqOptions.method),
				slog.String("url", url),
				slog.Duration("duration", time.Since(start)),
				slog.Duration("latency", time.Since(startDo)),
				slog.Int("req_content_length", req.Header.ContentLength()),
				slog.Int("status_code", resp.StatusCode()),
				slog.String("resp_content_type", string(resp.Header.ContentType())),
				slog.Int("resp_content_length", len(resp.Body())),
			)
			logger.InfoContext(ctx, "Finished make request", slog.String("package", "httpclient"))
		}

		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()

	deadline := time.Now().Add(h.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	var err error
	if reqOptions.method == fasthttp.MethodGet {
		req.SetTimeout(time.Until(deadline))
		err = h.client.DoRedirects(req, resp, h.MaxRedirects)
	} else {
		err = h.client.DoDeadline(req, resp, deadline)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "url: %s", url)
	}

	httpResponse := HttpResponse{
		URL: url,
	}
	resp.CopyTo(&httpResponse.Response)

	return &httpResponse, nil
}

// BaseURL returns the cloned base URL of the client.
func (h *Client) BaseURL() *url.URL {
	u := *h.baseURL
	return &u
}

func (h *Client) Do(ctx context.Context, method, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	reqOptions.path = path
	reqOptions.method = method
	return h.request(ctx, reqOptions)
}

func (h *Client) Get(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	reqOptions.path = path
	reqOptions.method = fasthttp.MethodGet
	return h.request(ctx, reqOptions)
}

// GetURL sends a GET request to an absolute URL instead of a path relative to the base URL.
func (h *Client) GetURL(ctx context.Context, rawURL string, reqOptions RequestOptions) (*HttpResponse, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "can't parse url %q", rawURL)
	}
	reqOptions.url = parsedURL
	reqOptions.method = fasthttp.MethodGet
	return h.request(ctx, reqOptions)
}

func (h *Client) Post(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	reqOptions.path = path
	reqOptions.method = fasthttp.MethodPost
	return h.request(ctx, reqOptions)
}
