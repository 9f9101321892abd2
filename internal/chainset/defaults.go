package chainset

import (
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

// Defaults are the per-chain fallbacks for unset options.
type Defaults struct {
	Required     uint64
	PollInterval time.Duration
	Contract     string
}

// cellToken is the CELL token contract, deployed at the same address on Ethereum and BSC.
const cellToken = "0x26c8afbbfe1ebaca03c2bb082e69d0476bffe099"

var chainDefaults = map[model.Chain]Defaults{
	model.Ethereum:  {Required: 12, PollInterval: 60 * time.Second, Contract: cellToken},
	model.BSC:       {Required: 15, PollInterval: 60 * time.Second, Contract: cellToken},
	model.Cellframe: {Required: 5, PollInterval: 120 * time.Second},
	model.Bitcoin:   {Required: 3, PollInterval: 120 * time.Second},
}

// DefaultsFor returns the fallbacks of chain.
func DefaultsFor(chain model.Chain) Defaults {
	return chainDefaults[chain]
}

func (o ChainOptions) resolve(chain model.Chain) ChainOptions {
	d := DefaultsFor(chain)
	if o.Required == 0 {
		o.Required = d.Required
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	return o
}
