package chain

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"liquidity-monitor/internal/config"
)

// authTransport adds API key authentication to chain RPC requests
type authTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	return t.base.RoundTrip(req)
}

// Dial connects to the configured chain RPC endpoint with the given HTTP
// timeout and the API key attached to every request.
func Dial(ctx context.Context, cfg config.ChainConfig, timeout time.Duration) (*ethclient.Client, error) {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:   http.DefaultTransport,
			apiKey: cfg.ApiKey,
		},
	}

	rpcClient, err := gethrpc.DialOptions(ctx, cfg.RpcEndpoint, gethrpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(rpcClient), nil
}
