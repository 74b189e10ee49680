package broadcast

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/ordishs/go-utils"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/mempool"
	"github.com/bsv-blockchain/txforge/services/rawtx"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// RuleAdmitter applies local policy and consensus-shaped checks before a
// transaction may enter the pool: structure, size, output standardness,
// input availability, fee floor and script validity.
type RuleAdmitter struct {
	logger   ulogger.Logger
	settings *settings.Settings
	chain    coins.View
	pool     *mempool.Pool
	verifier rawtx.ScriptVerifier
}

func NewRuleAdmitter(logger ulogger.Logger, tSettings *settings.Settings, chain coins.View, pool *mempool.Pool, verifier rawtx.ScriptVerifier) *RuleAdmitter {
	return &RuleAdmitter{
		logger:   logger,
		settings: tSettings,
		chain:    chain,
		pool:     pool,
		verifier: verifier,
	}
}

func (r *RuleAdmitter) Admit(ctx context.Context, tx *bt.Tx, bypassFeeChecks bool) error {
	if tx == nil || len(tx.Inputs) == 0 || len(tx.Outputs) == 0 {
		return errors.NewAdmissionRejectedError("bad-txns-vin-or-vout-empty")
	}

	size := len(tx.Bytes())
	if max := r.settings.Policy.MaxTxSizePolicy; max > 0 && size > max {
		return errors.NewAdmissionRejectedError("tx-size: %d over policy limit %d", size, max)
	}

	if err := r.checkOutputs(tx); err != nil {
		return err
	}

	view := r.buildView(ctx, tx)

	var valueIn uint64

	for i, in := range tx.Inputs {
		prevOut, err := r.resolve(ctx, view, in)
		if err != nil {
			return err
		}

		valueIn += prevOut.Satoshis

		if err = r.verifier.VerifyInput(tx, i, prevOut); err != nil {
			return errors.NewAdmissionRejectedError("mandatory-script-verify-flag-failed on input %d", i, err)
		}
	}

	if !bypassFeeChecks {
		if err := r.checkFee(tx, valueIn, size); err != nil {
			return err
		}
	}

	return nil
}

func (r *RuleAdmitter) checkOutputs(tx *bt.Tx) error {
	for vout, out := range tx.Outputs {
		cls := txscript.Classify(out.LockingScript)

		switch cls.Class {
		case txscript.NonStandard:
			if !r.settings.Policy.AcceptNonStdOutputs {
				return errors.NewAdmissionRejectedError("scriptpubkey: output %d is non-standard", vout)
			}

		case txscript.NullData:
			var payload int
			for _, d := range cls.Data {
				payload += len(d)
			}

			if max := r.settings.Policy.MaxOpReturnRelay; max > 0 && payload > max {
				return errors.NewAdmissionRejectedError("datacarrier-size: output %d carries %d bytes, limit %d", vout, payload, max)
			}
		}
	}

	return nil
}

func (r *RuleAdmitter) checkFee(tx *bt.Tx, valueIn uint64, size int) error {
	var valueOut uint64
	for _, out := range tx.Outputs {
		valueOut += out.Satoshis
	}

	if valueOut > valueIn {
		return errors.NewAdmissionRejectedError("bad-txns-in-belowout: %d < %d", valueIn, valueOut)
	}

	// sat/KB floor, rounded up
	required := (r.settings.Policy.MinRelayTxFee*uint64(size) + 999) / 1000
	if valueIn-valueOut < required {
		return errors.NewAdmissionRejectedError("insufficient fee: %d of %d required", valueIn-valueOut, required)
	}

	return nil
}

// buildView snapshots the referenced coins, pool included, under the pool
// lock. Script checks then run on the snapshot.
func (r *RuleAdmitter) buildView(ctx context.Context, tx *bt.Tx) *coins.CachedView {
	view := coins.NewCachedView(coins.EmptyView{})

	var backend coins.View = coins.EmptyView{}
	if r.chain != nil {
		backend = r.chain
	}

	if r.pool != nil {
		r.pool.Lock()
		defer r.pool.Unlock()

		backend = r.pool.View(backend)
	}

	view.SetBackend(backend)

	for _, in := range tx.Inputs {
		h, err := chainhash.NewHash(in.PreviousTxID())
		if err != nil {
			continue
		}

		_, _ = view.GetCoins(ctx, h)
	}

	view.SetBackend(coins.EmptyView{})

	return view
}

func (r *RuleAdmitter) resolve(ctx context.Context, view *coins.CachedView, in *bt.Input) (*bt.Output, error) {
	h, err := chainhash.NewHash(in.PreviousTxID())
	if err != nil {
		return nil, errors.NewMissingPriorOutputError("input references unusable previous txid %s", utils.ReverseAndHexEncodeSlice(in.PreviousTxID()), err)
	}

	c, err := view.GetCoins(ctx, h)
	if err != nil || !c.IsAvailable(in.PreviousTxOutIndex) {
		return nil, errors.NewMissingPriorOutputError("previous output %s:%d not found or already spent", h.String(), in.PreviousTxOutIndex)
	}

	return c.Output(in.PreviousTxOutIndex), nil
}
