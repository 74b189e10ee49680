package txscript

import (
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/bscript/interpreter"
	"github.com/bsv-blockchain/go-bt/v2/bscript/interpreter/scriptflag"
	"github.com/bsv-blockchain/go-bt/v2/sighash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSpendingTx(t *testing.T, priv *bec.PrivateKey, inputs, outputs int) (*bt.Tx, *bscript.Script) {
	t.Helper()

	prevScript, err := NewP2PKHScript(crypto.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)

	tx := bt.NewTx()

	for i := 0; i < inputs; i++ {
		require.NoError(t, tx.From(
			"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
			uint32(i),
			prevScript.String(),
			50_00000000,
		))
	}

	for i := 0; i < outputs; i++ {
		require.NoError(t, tx.AddP2PKHOutputFromPubKeyBytes(priv.PubKey().Compressed(), 10_00000000))
	}

	return tx, prevScript
}

// signInput signs one P2PKH input using the legacy digest and installs the
// unlocking script.
func signInput(t *testing.T, tx *bt.Tx, idx int, prevScript *bscript.Script, priv *bec.PrivateKey, shf sighash.Flag) {
	t.Helper()

	digest, err := CalcSignatureHash(tx, idx, prevScript, shf)
	require.NoError(t, err)

	sig, err := priv.Sign(digest)
	require.NoError(t, err)

	uls := &bscript.Script{}
	require.NoError(t, uls.AppendPushData(append(sig.Serialize(), byte(shf))))
	require.NoError(t, uls.AppendPushData(priv.PubKey().Compressed()))

	tx.Inputs[idx].UnlockingScript = uls
}

// The digest is cross-checked against an independent implementation: the
// script engine recomputes it during OP_CHECKSIG, so a verified spend means
// both sides derived the same bytes.
func TestCalcSignatureHashVerifiesInEngine(t *testing.T) {
	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)

	flags := []sighash.Flag{
		sighash.All,
		sighash.None,
		sighash.Single,
		sighash.All | sighash.AnyOneCanPay,
		sighash.Single | sighash.AnyOneCanPay,
	}

	for _, shf := range flags {
		tx, prevScript := buildSpendingTx(t, priv, 2, 2)

		for i := range tx.Inputs {
			signInput(t, tx, i, prevScript, priv, shf)
		}

		for i := range tx.Inputs {
			err = interpreter.NewEngine().Execute(
				interpreter.WithTx(tx, i, &bt.Output{Satoshis: 50_00000000, LockingScript: prevScript}),
				interpreter.WithFlags(scriptflag.Bip16|scriptflag.VerifyStrictEncoding),
			)
			require.NoError(t, err, "sighash flag 0x%02x input %d", uint8(shf), i)
		}
	}
}

func TestCalcSignatureHashSingleOutOfRange(t *testing.T) {
	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)

	tx, prevScript := buildSpendingTx(t, priv, 2, 1)

	digest, err := CalcSignatureHash(tx, 1, prevScript, sighash.Single)
	require.NoError(t, err)
	assert.Equal(t, oneHash, digest)
}

func TestCalcSignatureHashIndexOutOfRange(t *testing.T) {
	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)

	tx, prevScript := buildSpendingTx(t, priv, 1, 1)

	_, err = CalcSignatureHash(tx, 5, prevScript, sighash.All)
	require.Error(t, err)
}

func TestParseSigHashFlag(t *testing.T) {
	tests := map[string]sighash.Flag{
		"ALL":                 sighash.All,
		"NONE":                sighash.None,
		"SINGLE":              sighash.Single,
		"ALL|ANYONECANPAY":    sighash.All | sighash.AnyOneCanPay,
		"NONE|ANYONECANPAY":   sighash.None | sighash.AnyOneCanPay,
		"SINGLE|ANYONECANPAY": sighash.Single | sighash.AnyOneCanPay,
	}

	for name, want := range tests {
		got, err := ParseSigHashFlag(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseSigHashFlag("ALL|NONE")
	require.Error(t, err)

	_, err = ParseSigHashFlag("FORKID")
	require.Error(t, err)
}
