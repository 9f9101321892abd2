package evm

const (
	defaultMaxBlocksPerTick = 20
	defaultRescanWindow     = 5
	defaultMaxPending       = 100
	defaultTokenDecimals    = 18
)
