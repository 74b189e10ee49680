package rawtx

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
	"github.com/bsv-blockchain/txforge/util"
)

// Assembler builds unsigned transactions from input references and output
// specs. Building is pure: nothing is registered or broadcast.
type Assembler struct {
	logger   ulogger.Logger
	settings *settings.Settings
}

func NewAssembler(logger ulogger.Logger, tSettings *settings.Settings) *Assembler {
	initPrometheusMetrics()

	return &Assembler{
		logger:   logger,
		settings: tSettings,
	}
}

func (a *Assembler) Build(_ context.Context, inputs []InputRef, outputs []OutputSpec, lockTime uint32) (*bt.Tx, error) {
	tx := bt.NewTx()
	tx.LockTime = lockTime

	for _, ref := range inputs {
		h, err := chainhash.NewHashFromStr(ref.TxID)
		if err != nil {
			return nil, errors.NewInvalidFormatError("txid %q is malformed", ref.TxID, err)
		}

		seq := uint32(bt.DefaultSequenceNumber)
		if ref.Sequence != nil {
			seq = *ref.Sequence
		}

		input := &bt.Input{
			PreviousTxOutIndex: ref.Vout,
			SequenceNumber:     seq,
			UnlockingScript:    &bscript.Script{},
		}

		if err = input.PreviousTxIDAdd(h); err != nil {
			return nil, errors.NewInvalidFormatError("txid %q is not usable", ref.TxID, err)
		}

		tx.Inputs = append(tx.Inputs, input)
	}

	seen := make(map[string]struct{}, len(outputs))

	for _, spec := range outputs {
		if spec.Data != "" {
			out, err := a.buildDataOutput(spec.Data)
			if err != nil {
				return nil, err
			}

			tx.Outputs = append(tx.Outputs, out)

			continue
		}

		if _, ok := seen[spec.Address]; ok {
			return nil, errors.NewDuplicateDestinationError("duplicated address: %s", spec.Address)
		}

		seen[spec.Address] = struct{}{}

		addr, err := txscript.NewAddressFromString(spec.Address, a.settings.ChainCfgParams)
		if err != nil {
			return nil, err
		}

		script, err := addr.LockingScript()
		if err != nil {
			return nil, err
		}

		tx.Outputs = append(tx.Outputs, &bt.Output{
			Satoshis:      spec.Satoshis,
			LockingScript: script,
		})
	}

	prometheusRawTxBuild.Inc()
	a.logger.Debugf("built unsigned tx with %d inputs, %d outputs", len(tx.Inputs), len(tx.Outputs))

	return tx, nil
}

// buildDataOutput parses "<hex>[:<burn-amount>]" into a null-data output.
// The burn amount is whole coins and defaults to zero.
func (a *Assembler) buildDataOutput(spec string) (*bt.Output, error) {
	payloadHex := spec

	var satoshis uint64

	if i := strings.IndexByte(spec, ':'); i >= 0 {
		payloadHex = spec[:i]

		burn, err := strconv.ParseUint(spec[i+1:], 10, 64)
		if err != nil {
			return nil, errors.NewInvalidFormatError("burn amount %q is malformed", spec[i+1:], err)
		}

		satoshis = util.CoinsToSatoshis(burn)
	}

	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return nil, errors.NewInvalidFormatError("data payload is not valid hex", err)
	}

	script, err := txscript.NewNullDataScript(payload)
	if err != nil {
		return nil, err
	}

	return &bt.Output{
		Satoshis:      satoshis,
		LockingScript: script,
	}, nil
}
