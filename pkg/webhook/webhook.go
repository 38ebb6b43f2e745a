// Package webhook delivers JSON events to a configured HTTP endpoint.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/gaze-network/bcmr-indexer/pkg/httpclient"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
)

type Config struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

type Client struct {
	httpClient *httpclient.Client
}

func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "webhook url is required")
	}
	httpClient, err := httpclient.New(config.URL, httpclient.Config{
		Headers: config.Headers,
		Timeout: config.Timeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &Client{httpClient: httpClient}, nil
}

// Send posts the payload as JSON. A response status of 400 or above is an error.
func (c *Client) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := c.httpClient.Post(ctx, "", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		return errors.Errorf("webhook responded with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	logger.DebugContext(ctx, "webhook delivered", slog.Any("payload", payload))
	return nil
}
