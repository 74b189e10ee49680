package wallet

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

func newTestWallet(t *testing.T) *MemoryWallet {
	t.Helper()

	params, err := chaincfg.GetChainParams("regtest")
	require.NoError(t, err)

	return NewMemoryWallet(ulogger.NewVerboseTestLogger(t), &settings.Settings{ChainCfgParams: params})
}

func payTx(t *testing.T, satoshis uint64, scripts ...*bscript.Script) *bt.Tx {
	t.Helper()

	tx := bt.NewTx()

	in := &bt.Input{
		PreviousTxOutIndex: 0xFFFFFFFF,
		SequenceNumber:     0xFFFFFFFF,
		UnlockingScript:    &bscript.Script{},
	}
	require.NoError(t, in.UnlockingScript.AppendPushData([]byte{0x51}))
	require.NoError(t, in.PreviousTxIDAdd(&chainhash.Hash{}))

	tx.Inputs = append(tx.Inputs, in)

	for _, script := range scripts {
		tx.Outputs = append(tx.Outputs, &bt.Output{Satoshis: satoshis, LockingScript: script})
	}

	return tx
}

func TestFundingAddressGeneratesKey(t *testing.T) {
	w := newTestWallet(t)

	addr, err := w.FundingAddress()
	require.NoError(t, err)

	// the generated key is retrievable by the address hash
	priv, err := w.GetKey(addr.Hash160())
	require.NoError(t, err)
	assert.NotNil(t, priv)

	// stable across calls
	again, err := w.FundingAddress()
	require.NoError(t, err)
	assert.Equal(t, addr.String(), again.String())
}

func TestCreditAndListUnspent(t *testing.T) {
	ctx := context.Background()
	w := newTestWallet(t)

	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)
	require.NoError(t, w.AddKey(priv))

	other, err := bec.NewPrivateKey()
	require.NoError(t, err)

	mine, err := txscript.NewP2PKHScript(crypto.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)

	theirs, err := txscript.NewP2PKHScript(crypto.Hash160(other.PubKey().Compressed()))
	require.NoError(t, err)

	tx := payTx(t, 1500, mine, theirs, mine)
	require.NoError(t, w.Credit(tx))

	unspent, err := w.ListUnspent(ctx)
	require.NoError(t, err)
	require.Len(t, unspent, 2)

	for _, u := range unspent {
		assert.Equal(t, tx.TxID(), u.TxID.String())
		assert.Equal(t, uint64(1500), u.Satoshis)
	}

	w.Debit(tx.TxIDChainHash(), 0)

	unspent, err = w.ListUnspent(ctx)
	require.NoError(t, err)
	require.Len(t, unspent, 1)
	assert.Equal(t, uint32(2), unspent[0].Vout)
}

func TestListUnspentLargestFirst(t *testing.T) {
	ctx := context.Background()
	w := newTestWallet(t)

	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)
	require.NoError(t, w.AddKey(priv))

	mine, err := txscript.NewP2PKHScript(crypto.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)

	require.NoError(t, w.Credit(payTx(t, 100, mine)))
	require.NoError(t, w.Credit(payTx(t, 900, mine, mine)))

	unspent, err := w.ListUnspent(ctx)
	require.NoError(t, err)
	require.Len(t, unspent, 3)
	assert.Equal(t, uint64(900), unspent[0].Satoshis)
	assert.Equal(t, uint64(100), unspent[2].Satoshis)
}
