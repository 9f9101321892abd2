package ledger

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	mu         sync.Mutex
	mempool    map[string]bool
	history    []HistoryItem
	pool       []HistoryItem
	tokens     map[string]*TokenInfo
	tokenList  []string
	checkErr   error
	historyErr error
	poolErr    error
	queries    []HistoryQuery
	infoCalls  int
}

func newStubClient() *stubClient {
	return &stubClient{
		mempool: map[string]bool{},
		tokens:  map[string]*TokenInfo{},
	}
}

func (s *stubClient) TxHistory(_ context.Context, q HistoryQuery) ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if q.Hash == "" {
		return s.history, nil
	}
	var out []HistoryItem
	for _, it := range s.history {
		if strings.EqualFold(it.Hash, q.Hash) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubClient) Mempool(context.Context) ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool, s.poolErr
}

func (s *stubClient) MempoolCheck(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.mempool[hash], nil
}

func (s *stubClient) TokenInfo(_ context.Context, token string) (*TokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoCalls++
	return s.tokens[token], nil
}

func (s *stubClient) TokenList(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenList, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(model.Chain, string, string, error, time.Time) {}
func (noopMetrics) ObserveCircuit(model.Chain, string, rpc.CircuitState)         {}

func newStubInvoker(t *testing.T, client Client) *rpc.Invoker[Client] {
	t.Helper()
	inv, err := rpc.NewInvoker(rpc.Config[Client]{
		Chain:     model.Cellframe,
		Endpoints: []rpc.EndpointConfig{{URL: "http://stub", Name: "stub"}},
		Dial: func(context.Context, rpc.EndpointConfig) (Client, error) {
			return client, nil
		},
		Options: rpc.Options{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, AttemptTimeout: time.Second},
	}, noopMetrics{}, zap.NewNop())
	require.NoError(t, err)
	return inv
}

func height(n uint64) *uint64 {
	return &n
}
