// Package utxo tracks transactions and follows new blocks on bitcoind-compatible nodes.
package utxo

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	observed "github.com/goodnatureofminers/txconfirm-backend/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
)

// Client is the node surface used here. The btcd client takes no context; the invoker's
// attempt timeout bounds each call instead.
type Client interface {
	GetRawTransactionVerbose(txHash *chainhash.Hash) (*btcjson.TxRawResult, error)
	GetBlockCount() (int64, error)
	GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
	GetBlockVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockVerboseResult, error)
	GetBlockVerboseTx(blockHash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error)
}

// Credentials authenticate against the node's RPC server.
type Credentials struct {
	User     string
	Password string
}

// Dialer returns an rpc.Dialer producing instrumented HTTP POST clients.
func Dialer(creds Credentials, metrics observed.RPCMetrics) rpc.Dialer[Client] {
	return func(_ context.Context, endpoint rpc.EndpointConfig) (Client, error) {
		client, err := newRPCClient(endpoint.URL, creds)
		if err != nil {
			return nil, err
		}
		return observed.NewObservedClient(client, metrics), nil
	}
}

// Close shuts down a client produced by Dialer.
func Close(c Client) {
	if closer, ok := c.(*observed.ObservedClient); ok {
		closer.Shutdown()
	}
}

func newRPCClient(rawURL string, creds Credentials) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("rpc url scheme %q not supported", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	user, pass := creds.User, creds.Password
	if parsed.User != nil {
		user = parsed.User.Username()
		if p, ok := parsed.User.Password(); ok {
			pass = p
		}
	}

	cfg := &rpcclient.ConnConfig{
		Host:         parsed.Host + parsed.Path,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   parsed.Scheme == "http",
	}
	return rpcclient.New(cfg, nil)
}

// isNotFound reports the node's "no information available about transaction" error.
func isNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCNoTxInfo
}
