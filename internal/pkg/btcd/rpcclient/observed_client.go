// Package rpcclient wraps the btcd RPC client with per-call metrics.
package rpcclient

import (
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
)

// RPCMetrics receives one observation per node call.
type RPCMetrics interface {
	Observe(operation string, err error, started time.Time)
}

// ObservedClient exposes the node calls the UTXO tracker and discoverer use.
type ObservedClient struct {
	client  *rpcclient.Client
	metrics RPCMetrics
}

func NewObservedClient(client *rpcclient.Client, metrics RPCMetrics) *ObservedClient {
	return &ObservedClient{client: client, metrics: metrics}
}

func timed[T any](m RPCMetrics, op string, call func() (T, error)) (T, error) {
	started := time.Now()
	res, err := call()
	m.Observe(op, err, started)
	return res, err
}

func (c *ObservedClient) GetRawTransactionVerbose(hash *chainhash.Hash) (*btcjson.TxRawResult, error) {
	return timed(c.metrics, "get_raw_transaction_verbose", func() (*btcjson.TxRawResult, error) {
		return c.client.GetRawTransactionVerbose(hash)
	})
}

func (c *ObservedClient) GetBlockCount() (int64, error) {
	return timed(c.metrics, "get_block_count", c.client.GetBlockCount)
}

func (c *ObservedClient) GetBlockHash(height int64) (*chainhash.Hash, error) {
	return timed(c.metrics, "get_block_hash", func() (*chainhash.Hash, error) {
		return c.client.GetBlockHash(height)
	})
}

func (c *ObservedClient) GetBlockVerbose(hash *chainhash.Hash) (*btcjson.GetBlockVerboseResult, error) {
	return timed(c.metrics, "get_block_verbose", func() (*btcjson.GetBlockVerboseResult, error) {
		return c.client.GetBlockVerbose(hash)
	})
}

func (c *ObservedClient) GetBlockVerboseTx(hash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error) {
	return timed(c.metrics, "get_block_verbose_tx", func() (*btcjson.GetBlockVerboseTxResult, error) {
		return c.client.GetBlockVerboseTx(hash)
	})
}

// Shutdown stops the client and waits for in-flight requests.
func (c *ObservedClient) Shutdown() {
	c.client.Shutdown()
	c.client.WaitForShutdown()
}
