package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if received["fail"] == true {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL, Headers: map[string]string{"X-Token": "secret"}})
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), map[string]any{"kind": "genesis"}))
	assert.Equal(t, map[string]any{"kind": "genesis"}, received)

	assert.Error(t, client.Send(context.Background(), map[string]any{"fail": true}))
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, errs.InvalidArgument)
}
