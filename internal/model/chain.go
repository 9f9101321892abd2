// Package model defines domain models for transaction confirmation tracking.
package model

import "fmt"

type Chain string
type ChainKind string

const (
	Ethereum  Chain = "ethereum"
	BSC       Chain = "bsc"
	Cellframe Chain = "cellframe"
	Bitcoin   Chain = "bitcoin"
)

const (
	EVM    ChainKind = "evm"
	Ledger ChainKind = "ledger"
	UTXO   ChainKind = "utxo"
)

// Kind reports the RPC dialect a known chain speaks.
func (c Chain) Kind() (ChainKind, error) {
	switch c {
	case Ethereum, BSC:
		return EVM, nil
	case Cellframe:
		return Ledger, nil
	case Bitcoin:
		return UTXO, nil
	default:
		return "", fmt.Errorf("unknown chain %q", string(c))
	}
}

// ParseChain validates a chain name.
func ParseChain(s string) (Chain, error) {
	c := Chain(s)
	if _, err := c.Kind(); err != nil {
		return "", err
	}
	return c, nil
}
