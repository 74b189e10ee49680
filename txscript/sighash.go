package txscript

import (
	"strings"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/sighash"

	"github.com/bsv-blockchain/txforge/errors"
)

// oneHash is the digest signed when SIGHASH_SINGLE references an output
// index past the end of the outputs. Historical node behaviour which
// existing signatures depend on.
var oneHash = []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// CalcSignatureHash computes the original (pre fork-id) signature digest for
// input idx of tx, committing to prevScript as the subscript.
func CalcSignatureHash(tx *bt.Tx, idx int, prevScript *bscript.Script, shf sighash.Flag) ([]byte, error) {
	if idx < 0 || idx >= len(tx.Inputs) {
		return nil, errors.NewInvalidArgumentError("input index %d out of range, tx has %d inputs", idx, len(tx.Inputs))
	}

	// SIGHASH_SINGLE past the last output signs the one-hash directly, it
	// is the digest, not a preimage.
	if shf.HasWithMask(sighash.Single) && idx >= len(tx.Outputs) {
		return oneHash, nil
	}

	txCopy := tx.Clone()
	txCopy.Inputs[idx].PreviousTxScript = removeOpCodeSeparators(prevScript)

	// without ForkID set this takes the legacy redaction path
	digest, err := txCopy.CalcInputSignatureHash(uint32(idx), shf)
	if err != nil {
		return nil, errors.NewProcessingError("failed to compute signature digest for input %d", idx, err)
	}

	return digest, nil
}

func removeOpCodeSeparators(script *bscript.Script) *bscript.Script {
	b := []byte(*script)

	ops, err := parseOps(b)
	if err != nil {
		// unparseable scripts are committed to as-is
		out := make(bscript.Script, len(b))
		copy(out, b)

		return &out
	}

	out := &bscript.Script{}

	for _, op := range ops {
		if op.op == bscript.OpCODESEPARATOR {
			continue
		}

		if op.data != nil {
			_ = out.AppendPushData(op.data)
		} else {
			_ = out.AppendOpcodes(op.op)
		}
	}

	return out
}

// ParseSigHashFlag parses a sighash type name such as "ALL" or
// "SINGLE|ANYONECANPAY" into its flag value.
func ParseSigHashFlag(name string) (sighash.Flag, error) {
	base, anyoneCanPay := name, false

	if i := strings.IndexByte(name, '|'); i >= 0 {
		base = name[:i]

		if name[i+1:] != "ANYONECANPAY" {
			return 0, errors.NewInvalidArgumentError("unknown sighash modifier %q", name[i+1:])
		}

		anyoneCanPay = true
	}

	var shf sighash.Flag

	switch base {
	case "ALL":
		shf = sighash.All
	case "NONE":
		shf = sighash.None
	case "SINGLE":
		shf = sighash.Single
	default:
		return 0, errors.NewInvalidArgumentError("unknown sighash type %q", name)
	}

	if anyoneCanPay {
		shf |= sighash.AnyOneCanPay
	}

	return shf, nil
}
