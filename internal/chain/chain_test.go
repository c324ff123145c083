package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-monitor/internal/config"
)

func TestDialSendsAPIKey(t *testing.T) {
	var (
		mu      sync.Mutex
		gotAuth string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()

		var req struct {
			ID json.RawMessage `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x1"}`, req.ID)
	}))
	defer server.Close()

	client, err := Dial(context.Background(), config.ChainConfig{
		RpcEndpoint: server.URL,
		ApiKey:      "secret",
	}, time.Second)
	require.NoError(t, err)
	defer client.Close()

	id, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), id)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestDialWithoutAPIKey(t *testing.T) {
	var (
		mu      sync.Mutex
		gotAuth string
		seen    bool
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		seen = true
		mu.Unlock()

		var req struct {
			ID json.RawMessage `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x1"}`, req.ID)
	}))
	defer server.Close()

	client, err := Dial(context.Background(), config.ChainConfig{RpcEndpoint: server.URL}, time.Second)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ChainID(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, seen)
	assert.Empty(t, gotAuth)
}
