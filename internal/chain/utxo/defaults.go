package utxo

const (
	defaultMaxBlocksPerTick = 6
	defaultRescanWindow     = 2

	nativeSymbol = "BTC"
)
