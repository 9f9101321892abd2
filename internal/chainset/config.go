// Package chainset builds the per-chain invokers, trackers and watchers from configuration.
package chainset

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
)

// RPCOptions are the resilience settings shared by every chain.
type RPCOptions struct {
	FailureThreshold  int           `long:"failure-threshold" env:"FAILURE_THRESHOLD" default:"5" description:"consecutive failures that open an endpoint circuit"`
	Cooldown          time.Duration `long:"cooldown" env:"COOLDOWN" default:"60s" description:"time an open circuit waits before a probe"`
	MaxRetries        int           `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"attempts per endpoint before failing over"`
	BaseBackoff       time.Duration `long:"base-backoff" env:"BASE_BACKOFF" default:"1s" description:"first retry delay, doubled per attempt"`
	MaxBackoff        time.Duration `long:"max-backoff" env:"MAX_BACKOFF" default:"10s" description:"retry delay cap"`
	AttemptTimeout    time.Duration `long:"attempt-timeout" env:"ATTEMPT_TIMEOUT" default:"30s" description:"deadline of a single rpc attempt"`
	RequestsPerSecond float64       `long:"rps" env:"RPS" default:"0" description:"per-endpoint request rate, 0 disables"`
}

func (o RPCOptions) options() rpc.Options {
	return rpc.Options{
		FailureThreshold:  o.FailureThreshold,
		Cooldown:          o.Cooldown,
		MaxRetries:        o.MaxRetries,
		BaseBackoff:       o.BaseBackoff,
		MaxBackoff:        o.MaxBackoff,
		AttemptTimeout:    o.AttemptTimeout,
		RequestsPerSecond: o.RequestsPerSecond,
	}
}

// ChainOptions are common to every chain. A chain without endpoints is disabled.
type ChainOptions struct {
	Endpoints    []string      `long:"rpc" env:"RPC" env-delim:"," description:"rpc endpoints in priority order, optionally name=url"`
	Required     uint64        `long:"required-confirmations" env:"REQUIRED_CONFIRMATIONS" description:"confirmations treated as final (chain default when 0)"`
	PollInterval time.Duration `long:"poll-interval" env:"POLL_INTERVAL" description:"watcher poll interval (chain default when 0)"`
	NoWatch      bool          `long:"no-watch" env:"NO_WATCH" description:"track statuses only, without the chain watcher"`
}

// EVMOptions configure an EVM chain.
type EVMOptions struct {
	ChainOptions
	Contract         string `long:"contract" env:"CONTRACT" description:"token contract to follow (chain default when empty, 'none' disables)"`
	TokenSymbol      string `long:"token-symbol" env:"TOKEN_SYMBOL" default:"CELL" description:"symbol attached to transfer events"`
	TokenDecimals    int32  `long:"token-decimals" env:"TOKEN_DECIMALS" default:"18" description:"token decimals"`
	MaxBlocksPerTick uint64 `long:"max-blocks-per-tick" env:"MAX_BLOCKS_PER_TICK" description:"block scan cap per tick"`
	MaxPending       int    `long:"max-pending" env:"MAX_PENDING" description:"pending transfers reported per tick"`
}

// LedgerOptions configure a Cellframe-style ledger.
type LedgerOptions struct {
	ChainOptions
	Network      string `long:"network" env:"NETWORK" default:"backbone" description:"ledger network name"`
	Address      string `long:"address" env:"ADDRESS" description:"wallet address whose history is followed (network-wide when empty)"`
	Token        string `long:"token" env:"TOKEN" default:"CELL" description:"token ticker filter, empty follows every token"`
	HistoryLimit int    `long:"history-limit" env:"HISTORY_LIMIT" description:"history entries read per tick"`
}

// UTXOOptions configure a bitcoind-compatible chain.
type UTXOOptions struct {
	ChainOptions
	User             string   `long:"rpc-user" env:"RPC_USER" description:"node rpc user"`
	Password         string   `long:"rpc-password" env:"RPC_PASSWORD" description:"node rpc password"`
	MaxBlocksPerTick uint64   `long:"max-blocks-per-tick" env:"MAX_BLOCKS_PER_TICK" description:"blocks reported per tick"`
	Network          string   `long:"network" env:"NETWORK" default:"mainnet" description:"bitcoin network of watched addresses (mainnet, testnet, regtest, signet)"`
	Addresses        []string `long:"address" env:"ADDRESSES" env-delim:"," description:"addresses whose incoming payments are reported"`
	ZMQAddr          string   `long:"zmq-addr" env:"ZMQ_ADDR" description:"zmq hashblock publisher waking the watcher"`
}

// Config holds every supported chain.
type Config struct {
	RPC       RPCOptions    `group:"RPC resilience" namespace:"rpc" env-namespace:"RPC"`
	Ethereum  EVMOptions    `group:"Ethereum" namespace:"ethereum" env-namespace:"ETHEREUM"`
	BSC       EVMOptions    `group:"BSC" namespace:"bsc" env-namespace:"BSC"`
	Cellframe LedgerOptions `group:"Cellframe" namespace:"cellframe" env-namespace:"CELLFRAME"`
	Bitcoin   UTXOOptions   `group:"Bitcoin" namespace:"bitcoin" env-namespace:"BITCOIN"`
}

// ParseEndpoints turns "url" or "name=url" entries into endpoint configs prioritized by position.
func ParseEndpoints(chain model.Chain, raw []string) ([]rpc.EndpointConfig, error) {
	out := make([]rpc.EndpointConfig, 0, len(raw))
	for i, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, url := fmt.Sprintf("%s-%d", chain, i), entry
		if before, after, ok := strings.Cut(entry, "="); ok && !strings.Contains(before, "://") {
			name, url = strings.TrimSpace(before), strings.TrimSpace(after)
		}
		if url == "" || !strings.Contains(url, "://") {
			return nil, fmt.Errorf("%s: endpoint %q is not a url", chain, entry)
		}
		out = append(out, rpc.EndpointConfig{URL: url, Name: name, Priority: i})
	}
	return out, nil
}
