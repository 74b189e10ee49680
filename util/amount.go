package util

// SatoshisPerCoin is the integer scale between the display denomination and
// the base unit all transaction values are denominated in.
const SatoshisPerCoin = 100_000_000

// CoinsToSatoshis converts a whole-coin amount to base units.
func CoinsToSatoshis(coins uint64) uint64 {
	return coins * SatoshisPerCoin
}
