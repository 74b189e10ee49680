// Package coins tracks the unspent outputs a transaction engine signs and
// validates against. Records are per transaction: every output of a tx
// lives in one Coins entry, spent slots are nil.
package coins

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Coins is everything known about the outputs of one transaction.
type Coins struct {
	Outputs  []*bt.Output // nil marks a spent slot
	Height   uint32
	Coinbase bool
}

// NewCoinsFromTx records all outputs of tx as unspent.
func NewCoinsFromTx(tx *bt.Tx, height uint32, coinbase bool) *Coins {
	outputs := make([]*bt.Output, len(tx.Outputs))
	copy(outputs, tx.Outputs)

	return &Coins{
		Outputs:  outputs,
		Height:   height,
		Coinbase: coinbase,
	}
}

// IsAvailable reports whether output vout exists and is unspent.
func (c *Coins) IsAvailable(vout uint32) bool {
	return c != nil && vout < uint32(len(c.Outputs)) && c.Outputs[vout] != nil
}

// Output returns output vout, or nil when spent or out of range.
func (c *Coins) Output(vout uint32) *bt.Output {
	if !c.IsAvailable(vout) {
		return nil
	}

	return c.Outputs[vout]
}

// Spend marks output vout spent. Reports false when it was not available.
func (c *Coins) Spend(vout uint32) bool {
	if !c.IsAvailable(vout) {
		return false
	}

	c.Outputs[vout] = nil

	return true
}

// Pruned reports whether every output has been spent.
func (c *Coins) Pruned() bool {
	for _, out := range c.Outputs {
		if out != nil {
			return false
		}
	}

	return true
}

func (c *Coins) Clone() *Coins {
	outputs := make([]*bt.Output, len(c.Outputs))

	for i, out := range c.Outputs {
		if out == nil {
			continue
		}

		script := make([]byte, len(*out.LockingScript))
		copy(script, *out.LockingScript)
		ls := bscriptFromBytes(script)

		outputs[i] = &bt.Output{
			Satoshis:      out.Satoshis,
			LockingScript: ls,
		}
	}

	return &Coins{
		Outputs:  outputs,
		Height:   c.Height,
		Coinbase: c.Coinbase,
	}
}

// View is read access to a coin set.
type View interface {
	// GetCoins returns the record for txID, or a NOT_FOUND error.
	GetCoins(ctx context.Context, txID *chainhash.Hash) (*Coins, error)

	// HaveCoins reports whether txID has at least one unspent output.
	HaveCoins(ctx context.Context, txID *chainhash.Hash) (bool, error)
}

// Store is a mutable coin backend.
type Store interface {
	View

	SetCoins(ctx context.Context, txID *chainhash.Hash, c *Coins) error
	SpendCoin(ctx context.Context, txID *chainhash.Hash, vout uint32) error

	Health(ctx context.Context) error
}
