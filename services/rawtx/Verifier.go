package rawtx

import (
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript/interpreter"
	"github.com/bsv-blockchain/go-bt/v2/bscript/interpreter/scriptflag"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// goBTVerifier runs the go-bt script engine over one input. Verification
// flags follow policy: pay-to-script-hash redemption is always accepted,
// strict signature encoding is enforced unless switched off.
type goBTVerifier struct {
	logger ulogger.Logger
	flags  scriptflag.Flag
}

func NewScriptVerifier(logger ulogger.Logger, tSettings *settings.Settings) ScriptVerifier {
	flags := scriptflag.Bip16

	if tSettings.Policy == nil || tSettings.Policy.RequireStrictDER {
		flags |= scriptflag.VerifyStrictEncoding
	}

	return &goBTVerifier{
		logger: logger,
		flags:  flags,
	}
}

func (v *goBTVerifier) VerifyInput(tx *bt.Tx, inputIdx int, prevOut *bt.Output) error {
	if inputIdx < 0 || inputIdx >= len(tx.Inputs) {
		return errors.NewInvalidArgumentError("input index %d out of range, tx has %d inputs", inputIdx, len(tx.Inputs))
	}

	if err := interpreter.NewEngine().Execute(
		interpreter.WithTx(tx, inputIdx, prevOut),
		interpreter.WithFlags(v.flags),
	); err != nil {
		return errors.NewTxInvalidError("input %d does not satisfy its locking script", inputIdx, err)
	}

	return nil
}
