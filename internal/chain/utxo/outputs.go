package utxo

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const satoshiExp = -8

// outputAddresses extracts the addresses an output pays to, decoding the script
// itself when the node did not report them.
func outputAddresses(vout btcjson.Vout, params *chaincfg.Params) ([]string, error) {
	if vout.ScriptPubKey.Address != "" {
		return []string{vout.ScriptPubKey.Address}, nil
	}
	if len(vout.ScriptPubKey.Addresses) > 0 {
		return vout.ScriptPubKey.Addresses, nil
	}
	if vout.ScriptPubKey.Hex == "" {
		return nil, nil
	}

	script, err := hex.DecodeString(vout.ScriptPubKey.Hex)
	if err != nil {
		return nil, err
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, params)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.EncodeAddress())
	}
	return out, nil
}

// outputAmount converts the node's float BTC value into an exact satoshi-based decimal.
func outputAmount(value float64) (decimal.Decimal, error) {
	amount, err := btcutil.NewAmount(value)
	if err != nil {
		return decimal.Zero, err
	}
	if amount < 0 {
		return decimal.Zero, fmt.Errorf("negative value %f", value)
	}
	return decimal.New(int64(amount), satoshiExp), nil
}

// payments returns one transfer event per transaction paying a watched address. The
// amount sums every watched output of the transaction; To is the first one paid.
func (d *Discoverer) payments(height uint64, blockHash string, txs []btcjson.TxRawResult, observed time.Time) []model.Event {
	var events []model.Event
	for _, tx := range txs {
		var (
			to    string
			total decimal.Decimal
		)
		for idx, vout := range tx.Vout {
			addrs, err := outputAddresses(vout, d.params)
			if err != nil {
				d.logger.Debug("undecodable output script", zap.String("tx", tx.Txid), zap.Int("vout", idx), zap.Error(err))
				continue
			}
			addr, ok := d.watchedOf(addrs)
			if !ok {
				continue
			}
			amount, err := outputAmount(vout.Value)
			if err != nil {
				d.logger.Warn("invalid output value", zap.String("tx", tx.Txid), zap.Int("vout", idx), zap.Error(err))
				continue
			}
			if to == "" {
				to = addr
			}
			total = total.Add(amount)
		}
		if to == "" {
			continue
		}
		events = append(events, model.Event{
			Chain:       d.invoker.Chain(),
			Kind:        model.EventTransfer,
			TxHash:      tx.Txid,
			BlockHeight: height,
			BlockHash:   blockHash,
			To:          to,
			Token:       nativeSymbol,
			Amount:      total,
			Status:      "mined",
			ObservedAt:  observed,
		})
	}
	return events
}

func (d *Discoverer) watchedOf(addrs []string) (string, bool) {
	for _, a := range addrs {
		if _, ok := d.watched[a]; ok {
			return a, true
		}
	}
	return "", false
}
