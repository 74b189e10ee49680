// Package rawtx assembles, signs and combines raw transactions against a
// layered coin view.
package rawtx

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"

	"github.com/bsv-blockchain/txforge/model"
)

// InputRef names an outpoint a built transaction will spend.
type InputRef struct {
	TxID     string
	Vout     uint32
	Sequence *uint32 // nil means final
}

// OutputSpec is one destination of a built transaction: either an address
// with an amount, or a data payload for a null-data output. Data is hex,
// optionally suffixed ":<burn-amount>" in whole coins.
type OutputSpec struct {
	Address  string
	Satoshis uint64
	Data     string
}

// PrevOut seeds the signer's coin view with an output not otherwise
// resolvable, for example one from a transaction the counterparty has not
// broadcast. RedeemScript registers the script hashing to a pay-to-script-
// hash destination.
type PrevOut struct {
	TxID         string
	Vout         uint32
	ScriptPubKey string
	RedeemScript string
	Satoshis     uint64
}

// SignRequest drives one signing pass. When PrivKeys is non-empty an
// ephemeral key store built from exactly those keys governs the pass,
// otherwise the managed wallet does. Variants are previously signed copies
// of the same transaction whose unlocking scripts are folded in.
type SignRequest struct {
	Tx          *bt.Tx
	Variants    []*bt.Tx
	PrevOuts    []PrevOut
	PrivKeys    []string // WIF
	SigHashType string   // default ALL
}

// ParseSignHex decodes one or more concatenated transactions from a single
// hex string. The first is the transaction to sign, any others are variants
// of it to merge.
func ParseSignHex(s string) (*bt.Tx, []*bt.Tx, error) {
	txs, err := model.TxsFromHex(s)
	if err != nil {
		return nil, nil, err
	}

	return txs[0], txs[1:], nil
}

// InputError records a per-input signing failure. These never abort the
// pass, they mark the result incomplete.
type InputError struct {
	InputIndex int
	Err        error
}

type SignResult struct {
	Tx       *bt.Tx
	Complete bool
	Errors   []InputError
}

// ScriptVerifier is the oracle deciding whether an input's unlocking script
// satisfies the locking script it spends.
type ScriptVerifier interface {
	VerifyInput(tx *bt.Tx, inputIdx int, prevOut *bt.Output) error
}

// Builder constructs unsigned transactions.
type Builder interface {
	Build(ctx context.Context, inputs []InputRef, outputs []OutputSpec, lockTime uint32) (*bt.Tx, error)
}

// Signer signs transactions against the coin view.
type Signer interface {
	Sign(ctx context.Context, req *SignRequest) (*SignResult, error)
}

// Combiner merges candidate unlocking scripts for one input.
type Combiner interface {
	Combine(tx *bt.Tx, inputIdx int, lockingScript, a, b *bscript.Script) *bscript.Script
}
