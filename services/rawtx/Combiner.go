package rawtx

import (
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/sighash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// SignatureCombiner merges candidate unlocking scripts produced by
// independent signing passes over the same transaction. Combining is
// pairwise; folding more than two candidates left to right gives the same
// result for non-conflicting signature sets.
type SignatureCombiner struct {
	logger   ulogger.Logger
	settings *settings.Settings
	verifier ScriptVerifier
}

func NewCombiner(logger ulogger.Logger, tSettings *settings.Settings, verifier ScriptVerifier) *SignatureCombiner {
	initPrometheusMetrics()

	return &SignatureCombiner{
		logger:   logger,
		settings: tSettings,
		verifier: verifier,
	}
}

// Combine returns the most complete unlocking script for input inputIdx
// derivable from candidates a and b against lockingScript.
func (c *SignatureCombiner) Combine(tx *bt.Tx, inputIdx int, lockingScript, a, b *bscript.Script) *bscript.Script {
	prometheusRawTxCombine.Inc()

	stackA, okA := pushedOrNil(a)
	stackB, okB := pushedOrNil(b)

	if !okA || !okB {
		// non push-only candidates cannot be merged, keep the bigger one
		return biggerOf(a, b)
	}

	return c.combine(tx, inputIdx, lockingScript, stackA, stackB)
}

func (c *SignatureCombiner) combine(tx *bt.Tx, inputIdx int, lockingScript *bscript.Script, stackA, stackB [][]byte) *bscript.Script {
	cls := txscript.Classify(lockingScript)

	switch cls.Class {
	case txscript.PubKey, txscript.PubKeyHash:
		if len(stackA) == 0 || len(stackA[0]) == 0 {
			return pushAll(stackB)
		}

		if len(stackB) == 0 || len(stackB[0]) == 0 {
			return pushAll(stackA)
		}

		// both populated, prefer the one that verifies
		if c.verifies(tx, inputIdx, lockingScript, pushAll(stackA)) {
			return pushAll(stackA)
		}

		if c.verifies(tx, inputIdx, lockingScript, pushAll(stackB)) {
			return pushAll(stackB)
		}

		return pushAll(stackA)

	case txscript.Multisig:
		return c.combineMultisig(tx, inputIdx, lockingScript, cls, stackA, stackB)

	case txscript.ScriptHash:
		if len(stackA) == 0 || len(stackA[len(stackA)-1]) == 0 {
			return pushAll(stackB)
		}

		if len(stackB) == 0 || len(stackB[len(stackB)-1]) == 0 {
			return pushAll(stackA)
		}

		// the last stack item is the redeem script; merge against it and
		// push it back on
		redeemBytes := stackA[len(stackA)-1]
		redeem := bscript.Script(redeemBytes)

		result := c.combine(tx, inputIdx, &redeem, stackA[:len(stackA)-1], stackB[:len(stackB)-1])
		_ = result.AppendPushData(redeemBytes)

		return result

	default:
		return biggerOf(pushAll(stackA), pushAll(stackB))
	}
}

// combineMultisig matches every signature from either candidate to the
// public key it signs for, then rebuilds the unlocking script in key order
// up to the required count, padding what is still missing.
func (c *SignatureCombiner) combineMultisig(tx *bt.Tx, inputIdx int, lockingScript *bscript.Script, cls *txscript.Classification, stackA, stackB [][]byte) *bscript.Script {
	allSigs := make([][]byte, 0, len(stackA)+len(stackB))

	for _, stack := range [][][]byte{stackA, stackB} {
		for _, item := range stack {
			if len(item) > 0 {
				allSigs = append(allSigs, item)
			}
		}
	}

	sigs := make(map[int][]byte, len(cls.PubKeys))

	for _, sig := range allSigs {
		for k, pubKey := range cls.PubKeys {
			if _, ok := sigs[k]; ok {
				continue
			}

			if c.checkSig(tx, inputIdx, lockingScript, sig, pubKey) {
				sigs[k] = sig
				break
			}
		}
	}

	result := &bscript.Script{}
	_ = result.AppendOpcodes(bscript.Op0) // extra stack item CHECKMULTISIG pops

	have := 0

	for k := range cls.PubKeys {
		if have >= cls.RequiredSigs {
			break
		}

		if sig, ok := sigs[k]; ok {
			_ = result.AppendPushData(sig)
			have++
		}
	}

	for ; have < cls.RequiredSigs; have++ {
		_ = result.AppendOpcodes(bscript.Op0)
	}

	return result
}

// checkSig reports whether sig (DER plus trailing hash-type byte) is a
// valid signature by pubKey over the digest committing to lockingScript.
func (c *SignatureCombiner) checkSig(tx *bt.Tx, inputIdx int, lockingScript *bscript.Script, sig, pubKey []byte) bool {
	if len(sig) < 2 {
		return false
	}

	shf := sighash.Flag(sig[len(sig)-1])

	digest, err := txscript.CalcSignatureHash(tx, inputIdx, lockingScript, shf)
	if err != nil {
		return false
	}

	parsedSig, err := bec.ParseDERSignature(sig[:len(sig)-1])
	if err != nil {
		return false
	}

	parsedKey, err := bec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}

	return parsedSig.Verify(digest, parsedKey)
}

func (c *SignatureCombiner) verifies(tx *bt.Tx, inputIdx int, lockingScript, candidate *bscript.Script) bool {
	clone := tx.Clone()
	clone.Inputs[inputIdx].UnlockingScript = candidate

	return c.verifier.VerifyInput(clone, inputIdx, &bt.Output{LockingScript: lockingScript}) == nil
}

func pushedOrNil(s *bscript.Script) ([][]byte, bool) {
	if s == nil {
		return nil, true
	}

	return txscript.PushedData(s)
}

func pushAll(stack [][]byte) *bscript.Script {
	s := &bscript.Script{}

	for _, item := range stack {
		if len(item) == 0 {
			_ = s.AppendOpcodes(bscript.Op0)
		} else {
			_ = s.AppendPushData(item)
		}
	}

	return s
}

func biggerOf(a, b *bscript.Script) *bscript.Script {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	if len(*a) >= len(*b) {
		return a
	}

	return b
}
