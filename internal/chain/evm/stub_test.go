package evm

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTx struct {
	tx      *types.Transaction
	pending bool
}

type stubClient struct {
	mu           sync.Mutex
	txs          map[common.Hash]stubTx
	receipts     map[common.Hash]*types.Receipt
	head         uint64
	gasPrice     *big.Int
	blocks       map[uint64]*types.Block
	pendingBlock *types.Block
	pendingErr   error
	blockErr     error
	txErr        error
	blockCalls   []uint64
}

func newStubClient() *stubClient {
	return &stubClient{
		txs:      map[common.Hash]stubTx{},
		receipts: map[common.Hash]*types.Receipt{},
		blocks:   map[uint64]*types.Block{},
		gasPrice: big.NewInt(1),
	}
}

func (s *stubClient) TransactionByHash(_ context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txErr != nil {
		return nil, false, s.txErr
	}
	tx, ok := s.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx.tx, tx.pending, nil
}

func (s *stubClient) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (s *stubClient) BlockNumber(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head, nil
}

func (s *stubClient) SuggestGasPrice(context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gasPrice, nil
}

func (s *stubClient) BlockByNumber(_ context.Context, number *big.Int) (*types.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if number.Sign() < 0 {
		if s.pendingErr != nil {
			return nil, s.pendingErr
		}
		return s.pendingBlock, nil
	}
	if s.blockErr != nil {
		return nil, s.blockErr
	}
	n := number.Uint64()
	s.blockCalls = append(s.blockCalls, n)
	if b, ok := s.blocks[n]; ok {
		return b, nil
	}
	return newBlock(n), nil
}

func (s *stubClient) set(fn func(s *stubClient)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(model.Chain, string, string, error, time.Time) {}
func (noopMetrics) ObserveCircuit(model.Chain, string, rpc.CircuitState)         {}

func newStubInvoker(t *testing.T, client Client) *rpc.Invoker[Client] {
	t.Helper()
	inv, err := rpc.NewInvoker(rpc.Config[Client]{
		Chain:     model.Ethereum,
		Endpoints: []rpc.EndpointConfig{{URL: "http://stub", Name: "stub"}},
		Dial: func(context.Context, rpc.EndpointConfig) (Client, error) {
			return client, nil
		},
		Options: rpc.Options{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, AttemptTimeout: time.Second},
	}, noopMetrics{}, zap.NewNop())
	require.NoError(t, err)
	return inv
}

func newBlock(n uint64, txs ...*types.Transaction) *types.Block {
	return types.NewBlockWithHeader(&types.Header{Number: new(big.Int).SetUint64(n)}).
		WithBody(types.Body{Transactions: txs})
}
