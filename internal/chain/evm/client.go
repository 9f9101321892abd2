// Package evm tracks transactions and discovers token activity on EVM-compatible chains.
package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
)

// Client is the subset of ethclient.Client the tracker and discoverer use.
type Client interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
}

// Dial connects an ethclient to one endpoint.
func Dial(ctx context.Context, endpoint rpc.EndpointConfig) (Client, error) {
	return ethclient.DialContext(ctx, endpoint.URL)
}

// Close releases a client produced by Dial.
func Close(c Client) {
	if closer, ok := c.(*ethclient.Client); ok {
		closer.Close()
	}
}
