package rawtx

import (
	"bytes"
	"context"
	"time"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-bt/v2/sighash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"
	"github.com/ordishs/go-utils"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/keystore"
	"github.com/bsv-blockchain/txforge/mempool"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// TxSigner signs transactions input by input against a coin view built
// from chain state, pool state and caller-supplied previous outputs.
type TxSigner struct {
	logger   ulogger.Logger
	settings *settings.Settings
	chain    coins.View
	pool     *mempool.Pool
	wallet   keystore.Store
	combiner *SignatureCombiner
	verifier ScriptVerifier
}

func NewSigner(logger ulogger.Logger, tSettings *settings.Settings, chain coins.View, pool *mempool.Pool, wallet keystore.Store, verifier ScriptVerifier) *TxSigner {
	initPrometheusMetrics()

	return &TxSigner{
		logger:   logger,
		settings: tSettings,
		chain:    chain,
		pool:     pool,
		wallet:   wallet,
		combiner: NewCombiner(logger, tSettings, verifier),
		verifier: verifier,
	}
}

// Sign runs one signing pass. A missing prior output or unsatisfiable
// input never aborts the pass, it marks the result incomplete and is
// reported in Errors with its input index.
func (s *TxSigner) Sign(ctx context.Context, req *SignRequest) (*SignResult, error) {
	start := time.Now()
	defer func() {
		prometheusRawTxSignDuration.Observe(time.Since(start).Seconds())
	}()

	prometheusRawTxSign.Inc()

	if req == nil || req.Tx == nil {
		return nil, errors.NewInvalidArgumentError("no transaction to sign")
	}

	if len(req.Tx.Inputs) == 0 {
		return nil, errors.NewTxInvalidError("transaction has no inputs")
	}

	shf := sighash.All

	if req.SigHashType != "" {
		var err error
		if shf, err = txscript.ParseSigHashFlag(req.SigHashType); err != nil {
			return nil, err
		}
	}

	view := s.buildView(ctx, req.Tx)

	keySource, err := s.keySource(req)
	if err != nil {
		return nil, err
	}

	if err = s.seedPrevOuts(ctx, view, keySource, req); err != nil {
		return nil, err
	}

	tx := req.Tx
	complete := true

	var inputErrs []InputError

	for i, in := range tx.Inputs {
		prevOut, inputErr := s.resolvePrevOut(ctx, view, in)
		if inputErr != nil {
			inputErrs = append(inputErrs, InputError{InputIndex: i, Err: inputErr})
			complete = false

			continue
		}

		prevScript := prevOut.LockingScript

		var candidate *bscript.Script

		// an input past the last output cannot commit to "its" output
		if shf.HasWithMask(sighash.Single) && i >= len(tx.Outputs) {
			inputErrs = append(inputErrs, InputError{
				InputIndex: i,
				Err:        errors.NewIncompleteSignatureError("input %d has no matching output for SINGLE", i),
			})
			complete = false
		} else {
			var solveErr error

			candidate, solveErr = s.solve(tx, i, prevScript, shf, keySource)
			if solveErr != nil {
				inputErrs = append(inputErrs, InputError{InputIndex: i, Err: solveErr})
				complete = false
			}
		}

		// fold in whatever this pass produced, what the transaction already
		// carried, and every supplied variant
		merged := s.combiner.Combine(tx, i, prevScript, candidate, in.UnlockingScript)

		for _, variant := range req.Variants {
			if i < len(variant.Inputs) {
				merged = s.combiner.Combine(tx, i, prevScript, merged, variant.Inputs[i].UnlockingScript)
			}
		}

		tx.Inputs[i].UnlockingScript = merged

		if err := s.verifier.VerifyInput(tx, i, prevOut); err != nil {
			complete = false
		}
	}

	if !complete {
		prometheusRawTxSignIncomplete.Inc()
	}

	return &SignResult{
		Tx:       tx,
		Complete: complete,
		Errors:   inputErrs,
	}, nil
}

// buildView snapshots the coins every input references into a fresh
// overlay. When a pool is attached its coarse lock is held for exactly the
// copy window: the pool-plus-chain backend is attached, each referenced
// record is pulled into the overlay, and the backend is detached again
// before the lock is released. Signing and verification run lock-free on
// the snapshot.
func (s *TxSigner) buildView(ctx context.Context, tx *bt.Tx) *coins.CachedView {
	view := coins.NewCachedView(coins.EmptyView{})

	var backend coins.View = coins.EmptyView{}
	if s.chain != nil {
		backend = s.chain
	}

	if s.pool != nil {
		s.pool.Lock()
		defer s.pool.Unlock()

		backend = s.pool.View(backend)
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

// keySource picks the store governing this pass: an ephemeral store built
// from the explicit keys when any are supplied, the managed wallet
// otherwise.
func (s *TxSigner) keySource(req *SignRequest) (keystore.Store, error) {
	if len(req.PrivKeys) == 0 {
		if s.wallet == nil {
			return nil, errors.NewConfigurationError("no keys supplied and no wallet attached")
		}

		return s.wallet, nil
	}

	store := keystore.NewMemoryStore()

	for _, wif := range req.PrivKeys {
		priv, err := keystore.DecodeWIF(wif, s.settings.ChainCfgParams)
		if err != nil {
			return nil, err
		}

		if err = store.AddKey(priv); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// seedPrevOuts lands caller-supplied previous outputs in the overlay. A
// supplied script that contradicts a known coin fails the whole call
// before any signing happens.
func (s *TxSigner) seedPrevOuts(ctx context.Context, view *coins.CachedView, keySource keystore.Store, req *SignRequest) error {
	for _, po := range req.PrevOuts {
		h, err := chainhash.NewHashFromStr(po.TxID)
		if err != nil {
			return errors.NewInvalidFormatError("txid %q is malformed", po.TxID, err)
		}

		script, err := bscript.NewFromHexString(po.ScriptPubKey)
		if err != nil {
			return errors.NewInvalidFormatError("scriptPubKey for %s:%d is not valid hex", po.TxID, po.Vout, err)
		}

		c, err := view.GetCoins(ctx, h)
		if err != nil {
			c = &coins.Coins{Height: 1}
		} else if c.IsAvailable(po.Vout) && !bytes.Equal(*c.Output(po.Vout).LockingScript, *script) {
			return errors.NewScriptMismatchError("previous output %s:%d scriptPubKey mismatch", po.TxID, po.Vout)
		}

		for uint32(len(c.Outputs)) <= po.Vout {
			c.Outputs = append(c.Outputs, nil)
		}

		c.Outputs[po.Vout] = &bt.Output{
			Satoshis:      po.Satoshis,
			LockingScript: script,
		}

		view.AddCoins(h, c)

		// redeem scripts only accompany explicit-key signing
		if len(req.PrivKeys) > 0 && po.RedeemScript != "" {
			redeem, err := bscript.NewFromHexString(po.RedeemScript)
			if err != nil {
				return errors.NewInvalidFormatError("redeemScript for %s:%d is not valid hex", po.TxID, po.Vout, err)
			}

			if err = keySource.AddScript(redeem); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *TxSigner) resolvePrevOut(ctx context.Context, view *coins.CachedView, in *bt.Input) (*bt.Output, error) {
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

// solve produces an unlocking script candidate for input i against
// scriptCode. For pay-to-script-hash the redeem script is resolved from
// the key source and solved recursively, then pushed on the end. A partial
// multisig candidate is returned alongside its error so the caller can
// still merge it.
func (s *TxSigner) solve(tx *bt.Tx, i int, scriptCode *bscript.Script, shf sighash.Flag, keySource keystore.Store) (*bscript.Script, error) {
	cls := txscript.Classify(scriptCode)

	switch cls.Class {
	case txscript.PubKey:
		sig, err := s.signOne(tx, i, scriptCode, shf, keySource, crypto.Hash160(cls.PubKeys[0]))
		if err != nil {
			return nil, err
		}

		uls := &bscript.Script{}
		_ = uls.AppendPushData(sig)

		return uls, nil

	case txscript.PubKeyHash:
		priv, err := keySource.GetKey(cls.Hash)
		if err != nil {
			return nil, errors.NewIncompleteSignatureError("input %d: no key for destination", i, err)
		}

		sig, err := s.signWith(tx, i, scriptCode, shf, priv)
		if err != nil {
			return nil, err
		}

		uls := &bscript.Script{}
		_ = uls.AppendPushData(sig)
		_ = uls.AppendPushData(priv.PubKey().Compressed())

		return uls, nil

	case txscript.Multisig:
		return s.solveMultisig(tx, i, scriptCode, shf, keySource, cls)

	case txscript.ScriptHash:
		redeem, err := keySource.GetScript(cls.Hash)
		if err != nil {
			return nil, errors.NewIncompleteSignatureError("input %d: no redeem script for destination", i, err)
		}

		inner, solveErr := s.solve(tx, i, redeem, shf, keySource)
		if inner == nil {
			return nil, solveErr
		}

		_ = inner.AppendPushData(*redeem)

		return inner, solveErr

	default:
		return nil, errors.NewIncompleteSignatureError("input %d: cannot sign %s script", i, cls.Class.String())
	}
}

func (s *TxSigner) solveMultisig(tx *bt.Tx, i int, scriptCode *bscript.Script, shf sighash.Flag, keySource keystore.Store, cls *txscript.Classification) (*bscript.Script, error) {
	uls := &bscript.Script{}
	_ = uls.AppendOpcodes(bscript.Op0)

	signed := 0

	for _, pubKey := range cls.PubKeys {
		if signed >= cls.RequiredSigs {
			break
		}

		sig, err := s.signOne(tx, i, scriptCode, shf, keySource, crypto.Hash160(pubKey))
		if err != nil {
			continue
		}

		_ = uls.AppendPushData(sig)
		signed++
	}

	if signed < cls.RequiredSigs {
		return uls, errors.NewIncompleteSignatureError("input %d: %d of %d required signatures available", i, signed, cls.RequiredSigs)
	}

	return uls, nil
}

func (s *TxSigner) signOne(tx *bt.Tx, i int, scriptCode *bscript.Script, shf sighash.Flag, keySource keystore.Store, pubKeyHash []byte) ([]byte, error) {
	priv, err := keySource.GetKey(pubKeyHash)
	if err != nil {
		return nil, errors.NewIncompleteSignatureError("input %d: no key for destination", i, err)
	}

	return s.signWith(tx, i, scriptCode, shf, priv)
}

// signWith returns the DER signature over the legacy digest with the
// hash-type byte appended.
func (s *TxSigner) signWith(tx *bt.Tx, i int, scriptCode *bscript.Script, shf sighash.Flag, priv *bec.PrivateKey) ([]byte, error) {
	digest, err := txscript.CalcSignatureHash(tx, i, scriptCode, shf)
	if err != nil {
		return nil, err
	}

	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, errors.NewProcessingError("input %d: signing failed", i, err)
	}

	return append(sig.Serialize(), byte(shf)), nil
}
