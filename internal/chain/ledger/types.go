package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// HistoryItem is one transaction as reported by tx_history or mempool.
// The node omits fields freely; absent numbers decode as zero and absent heights as nil.
type HistoryItem struct {
	Hash          string
	Status        string
	Confirmations uint64
	Block         *uint64
	From          string
	To            string
	Token         string
	Amount        decimal.Decimal
}

// TokenInfo describes a token known to the network.
type TokenInfo struct {
	Ticker   string
	Decimals int32
	Supply   decimal.Decimal
}

func (h *HistoryItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	h.Hash = firstString(fields, "hash", "tx_hash", "tx")
	h.Status = strings.ToLower(firstString(fields, "status", "tx_status"))
	h.From = firstString(fields, "from", "addr_from", "sender")
	h.To = firstString(fields, "to", "addr_to", "recipient")
	h.Token = firstString(fields, "token", "ticker")
	h.Confirmations, _ = firstUint(fields, "confirmations", "confirms")
	if block, ok := firstUint(fields, "block", "block_num", "block_height"); ok {
		h.Block = &block
	}
	h.Amount = firstDecimal(fields, "value", "amount", "coins")
	return nil
}

func (t *TokenInfo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	t.Ticker = firstString(fields, "ticker", "token", "name")
	if d, ok := firstUint(fields, "decimals"); ok {
		t.Decimals = int32(min(d, 255))
	}
	t.Supply = firstDecimal(fields, "total_supply", "supply")
	return nil
}

// decodeItems accepts a list, a {"list": [...]} wrapper, a single object or null.
func decodeItems(raw json.RawMessage) ([]HistoryItem, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case isNull(raw):
		return nil, nil
	case raw[0] == '[':
		var items []HistoryItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	case raw[0] == '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		if len(wrapper) == 0 {
			return nil, nil
		}
		for _, key := range []string{"list", "history", "transactions"} {
			if inner, ok := wrapper[key]; ok {
				return decodeItems(inner)
			}
		}
		var item HistoryItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		return []HistoryItem{item}, nil
	default:
		return nil, fmt.Errorf("unexpected result %s", truncate(raw))
	}
}

// decodeMempoolCheck accepts a bare boolean or an object carrying an in_mempool flag.
func decodeMempoolCheck(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return false, nil
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false, fmt.Errorf("unexpected mempool_check result %s", truncate(raw))
	}
	for _, key := range []string{"in_mempool", "found", "present"} {
		if v, ok := fields[key]; ok {
			_ = json.Unmarshal(v, &flag)
			return flag, nil
		}
	}
	return false, nil
}

func decodeTokenInfo(raw json.RawMessage) (*TokenInfo, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) || bytes.Equal(raw, []byte("{}")) {
		return nil, nil
	}
	var info TokenInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode token_info: %w", err)
	}
	return &info, nil
}

// decodeTokenList accepts a list of tickers, a list of token objects or a {"tokens": [...]} wrapper.
func decodeTokenList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}
	if raw[0] == '{' {
		var wrapper struct {
			Tokens json.RawMessage `json:"tokens"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("decode token_list: %w", err)
		}
		if wrapper.Tokens == nil {
			return nil, nil
		}
		return decodeTokenList(wrapper.Tokens)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode token_list: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		var ticker string
		if err := json.Unmarshal(e, &ticker); err == nil {
			out = append(out, ticker)
			continue
		}
		var info TokenInfo
		if err := json.Unmarshal(e, &info); err == nil && info.Ticker != "" {
			out = append(out, info.Ticker)
		}
	}
	return out, nil
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstUint reads a non-negative integer given either as a JSON number or a numeric string.
func firstUint(fields map[string]json.RawMessage, keys ...string) (uint64, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || isNull(v) {
			continue
		}
		s := strings.Trim(string(bytes.TrimSpace(v)), `"`)
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func firstDecimal(fields map[string]json.RawMessage, keys ...string) decimal.Decimal {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || isNull(v) {
			continue
		}
		s := strings.Trim(string(bytes.TrimSpace(v)), `"`)
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func truncate(raw json.RawMessage) string {
	const limit = 64
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
