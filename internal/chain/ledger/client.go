// Package ledger tracks transactions and discovers CF-20 activity on a Cellframe-style ledger
// exposed through its node's JSON-RPC dialect.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/ybbus/jsonrpc/v3"
)

// Client is the node surface the tracker and discoverer use. Every method is scoped
// to the network the client was dialed for.
type Client interface {
	TxHistory(ctx context.Context, q HistoryQuery) ([]HistoryItem, error)
	Mempool(ctx context.Context) ([]HistoryItem, error)
	MempoolCheck(ctx context.Context, hash string) (bool, error)
	TokenInfo(ctx context.Context, token string) (*TokenInfo, error)
	TokenList(ctx context.Context) ([]string, error)
}

// HistoryQuery selects transactions by hash or address. Zero fields are omitted.
type HistoryQuery struct {
	Hash    string
	Address string
	Token   string
	Limit   int
}

// JSONRPCClient speaks the node dialect: JSON-RPC 2.0 with a single object of named params.
type JSONRPCClient struct {
	network string
	rpc     jsonrpc.RPCClient
}

// NewJSONRPCClient builds a client for url bound to network.
func NewJSONRPCClient(url, network string, httpClient *http.Client) *JSONRPCClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &JSONRPCClient{
		network: network,
		rpc: jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
			HTTPClient: httpClient,
		}),
	}
}

// Dialer returns an rpc.Dialer producing JSON-RPC clients for network.
func Dialer(network string, httpClient *http.Client) rpc.Dialer[Client] {
	return func(_ context.Context, endpoint rpc.EndpointConfig) (Client, error) {
		if network == "" {
			return nil, errors.New("ledger network is required")
		}
		return NewJSONRPCClient(endpoint.URL, network, httpClient), nil
	}
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	params["net"] = c.network

	var raw json.RawMessage
	if err := c.rpc.CallFor(ctx, &raw, method, params); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return raw, nil
}

func (c *JSONRPCClient) TxHistory(ctx context.Context, q HistoryQuery) ([]HistoryItem, error) {
	params := map[string]any{}
	if q.Hash != "" {
		params["tx"] = q.Hash
	}
	if q.Address != "" {
		params["addr"] = q.Address
	}
	if q.Token != "" {
		params["token"] = q.Token
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}

	raw, err := c.call(ctx, "tx_history", params)
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

func (c *JSONRPCClient) Mempool(ctx context.Context) ([]HistoryItem, error) {
	raw, err := c.call(ctx, "mempool", map[string]any{})
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

func (c *JSONRPCClient) MempoolCheck(ctx context.Context, hash string) (bool, error) {
	raw, err := c.call(ctx, "mempool_check", map[string]any{"tx": hash})
	if err != nil {
		return false, err
	}
	return decodeMempoolCheck(raw)
}

func (c *JSONRPCClient) TokenInfo(ctx context.Context, token string) (*TokenInfo, error) {
	raw, err := c.call(ctx, "token_info", map[string]any{"token": token})
	if err != nil {
		return nil, err
	}
	return decodeTokenInfo(raw)
}

func (c *JSONRPCClient) TokenList(ctx context.Context) ([]string, error) {
	raw, err := c.call(ctx, "token_list", map[string]any{})
	if err != nil {
		return nil, err
	}
	return decodeTokenList(raw)
}
