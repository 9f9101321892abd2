package evm

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const erc20JSON = `[{
  "type": "function",
  "name": "transfer",
  "stateMutability": "nonpayable",
  "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}],
  "outputs": [{"name": "", "type": "bool"}]
}]`

// erc20 is the part of the ERC-20 interface the discoverer decodes.
var erc20 = mustParseABI(erc20JSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse erc20 abi: %v", err))
	}
	return parsed
}

// DecodeTransfer extracts recipient and raw amount from ERC-20 transfer calldata.
func DecodeTransfer(data []byte) (common.Address, *big.Int, bool) {
	method := erc20.Methods["transfer"]
	if len(data) < len(method.ID) || !bytes.Equal(data[:len(method.ID)], method.ID) {
		return common.Address{}, nil, false
	}
	values, err := method.Inputs.Unpack(data[len(method.ID):])
	if err != nil || len(values) != 2 {
		return common.Address{}, nil, false
	}
	to, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, false
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, false
	}
	return to, amount, true
}

// ScaleAmount converts a raw token amount to whole units.
func ScaleAmount(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// WeiToGwei converts a wei value to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	return ScaleAmount(wei, 9)
}
