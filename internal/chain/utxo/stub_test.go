package utxo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	mu        sync.Mutex
	txs       map[string]*btcjson.TxRawResult
	blocks    map[string]*btcjson.GetBlockVerboseResult
	blockTxs  map[string][]btcjson.TxRawResult
	count     int64
	txErr     error
	failAbove int64
}

func newStubClient() *stubClient {
	return &stubClient{
		txs:       map[string]*btcjson.TxRawResult{},
		blocks:    map[string]*btcjson.GetBlockVerboseResult{},
		blockTxs:  map[string][]btcjson.TxRawResult{},
		failAbove: -1,
	}
}

func (s *stubClient) GetRawTransactionVerbose(txHash *chainhash.Hash) (*btcjson.TxRawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txErr != nil {
		return nil, s.txErr
	}
	tx, ok := s.txs[txHash.String()]
	if !ok {
		return nil, &btcjson.RPCError{Code: btcjson.ErrRPCNoTxInfo, Message: "No such mempool or blockchain transaction"}
	}
	return tx, nil
}

func (s *stubClient) GetBlockCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

func (s *stubClient) GetBlockHash(height int64) (*chainhash.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAbove >= 0 && height > s.failAbove {
		return nil, errors.New("connection reset")
	}
	return blockHash(height), nil
}

func (s *stubClient) GetBlockVerbose(hash *chainhash.Hash) (*btcjson.GetBlockVerboseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.blocks[hash.String()]; ok {
		return b, nil
	}
	return nil, &btcjson.RPCError{Code: btcjson.ErrRPCBlockNotFound, Message: "Block not found"}
}

func (s *stubClient) GetBlockVerboseTx(hash *chainhash.Hash) (*btcjson.GetBlockVerboseTxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[hash.String()]
	if !ok {
		return nil, &btcjson.RPCError{Code: btcjson.ErrRPCBlockNotFound, Message: "Block not found"}
	}
	return &btcjson.GetBlockVerboseTxResult{Hash: b.Hash, Height: b.Height, Tx: s.blockTxs[b.Hash]}, nil
}

// addBlockTxs registers a block at height carrying full transactions.
func (s *stubClient) addBlockTxs(height int64, txs ...btcjson.TxRawResult) string {
	txids := make([]string, 0, len(txs))
	for _, tx := range txs {
		txids = append(txids, tx.Txid)
	}
	hash := s.addBlock(height, txids...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockTxs[hash] = txs
	return hash
}

// addBlock registers a block at height with the given transaction ids.
func (s *stubClient) addBlock(height int64, txids ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := blockHash(height).String()
	s.blocks[hash] = &btcjson.GetBlockVerboseResult{Hash: hash, Height: height, Tx: txids}
	return hash
}

func blockHash(height int64) *chainhash.Hash {
	h := chainhash.DoubleHashH([]byte(fmt.Sprintf("block-%d", height)))
	return &h
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(model.Chain, string, string, error, time.Time) {}
func (noopMetrics) ObserveCircuit(model.Chain, string, rpc.CircuitState)         {}

func newStubInvoker(t *testing.T, client Client) *rpc.Invoker[Client] {
	t.Helper()
	inv, err := rpc.NewInvoker(rpc.Config[Client]{
		Chain:     model.Bitcoin,
		Endpoints: []rpc.EndpointConfig{{URL: "http://stub", Name: "stub"}},
		Dial: func(context.Context, rpc.EndpointConfig) (Client, error) {
			return client, nil
		},
		Options: rpc.Options{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, AttemptTimeout: time.Second},
	}, noopMetrics{}, zap.NewNop())
	require.NoError(t, err)
	return inv
}
