// Package validate checks and normalizes transaction hashes and addresses per chain.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

var (
	// ErrInvalidHash is wrapped by every hash rejection.
	ErrInvalidHash = errors.New("invalid transaction hash")
	// ErrInvalidAddress is wrapped by every address rejection.
	ErrInvalidAddress = errors.New("invalid address")

	ledgerHash    = regexp.MustCompile(`^0x[0-9A-Fa-f]{64}$`)
	ledgerAddress = regexp.MustCompile(`^[A-Za-z0-9_-]{20,100}$`)
)

// Hash validates hash for chain and returns its canonical form: lowercase for EVM
// chains, uppercase hex after 0x for the ledger, lowercase for UTXO txids.
func Hash(chain model.Chain, hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	kind, err := chain.Kind()
	if err != nil {
		return "", err
	}

	switch kind {
	case model.EVM:
		b, err := hexutil.Decode(hash)
		if err != nil || len(b) != common.HashLength {
			return "", fmt.Errorf("%w: %s expects 0x and 64 hex digits", ErrInvalidHash, chain)
		}
		return common.BytesToHash(b).Hex(), nil
	case model.Ledger:
		if !ledgerHash.MatchString(hash) {
			return "", fmt.Errorf("%w: %s expects 0x and 64 hex digits", ErrInvalidHash, chain)
		}
		return "0x" + strings.ToUpper(hash[2:]), nil
	default:
		if len(hash) != chainhash.MaxHashStringSize {
			return "", fmt.Errorf("%w: %s expects 64 hex digits", ErrInvalidHash, chain)
		}
		h, err := chainhash.NewHashFromStr(hash)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		return h.String(), nil
	}
}

// Address validates addr for chain. UTXO addresses must belong to params.
func Address(chain model.Chain, addr string, params *chaincfg.Params) error {
	kind, err := chain.Kind()
	if err != nil {
		return err
	}

	switch kind {
	case model.EVM:
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, addr, chain)
		}
	case model.Ledger:
		if !ledgerAddress.MatchString(addr) {
			return fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, addr, chain)
		}
	default:
		if params == nil {
			params = &chaincfg.MainNetParams
		}
		decoded, err := btcutil.DecodeAddress(addr, params)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		if !decoded.IsForNet(params) {
			return fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, addr, params.Name)
		}
	}
	return nil
}

// NetParams maps a bitcoin network name to its parameters.
func NetParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "", "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported bitcoin network %q", network)
	}
}
