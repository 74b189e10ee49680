package daemon

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsv-blockchain/txforge/keystore"
	"github.com/bsv-blockchain/txforge/services/rawtx"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()

	params, err := chaincfg.GetChainParams("regtest")
	require.NoError(t, err)

	storeURL, err := url.Parse("memory://")
	require.NoError(t, err)

	return &settings.Settings{
		ClientName:     "txforge-test",
		LogLevel:       "ERROR",
		ChainCfgParams: params,
		Policy: &settings.PolicySettings{
			RequireStrictDER: true,
			MaxTxSizePolicy:  100_000,
			MaxOpReturnRelay: 223,
			MinRelayTxFee:    1000,
		},
		Coins: &settings.CoinsSettings{
			StoreURL:     storeURL,
			CacheBackend: true,
		},
		Broadcast: &settings.BroadcastSettings{
			RelayWorkers:      1,
			SeenCacheTTL:      time.Minute,
			SeenCacheCapacity: 64,
		},
		Token: &settings.TokenSettings{
			FundingSatoshis: 10_000,
			CommitSatoshis:  9_000,
			FeeSatoshis:     500,
			DigestWidth:     64,
		},
	}
}

func TestNewWiresCacheBackend(t *testing.T) {
	d, err := New(testSettings(t), ulogger.WithWriter(io.Discard))
	require.NoError(t, err)

	assert.IsType(t, &coins.CachedView{}, d.Chain)

	d.Start(context.Background())
	d.Stop()
}

func TestNewWithoutCacheBackend(t *testing.T) {
	tSettings := testSettings(t)
	tSettings.Coins.CacheBackend = false

	d, err := New(tSettings, ulogger.WithWriter(io.Discard))
	require.NoError(t, err)

	assert.IsType(t, &coins.MemoryStore{}, d.Chain)

	d.Stop()
}

func TestNewKafkaWithoutHosts(t *testing.T) {
	tSettings := testSettings(t)
	tSettings.Broadcast.KafkaEnabled = true

	_, err := New(tSettings, ulogger.WithWriter(io.Discard))
	require.Error(t, err)
}

// a spend built, signed and submitted through the wired components lands
// in the pending pool, with the chain read going through the cache front.
func TestDaemonSubmitFlow(t *testing.T) {
	ctx := context.Background()
	tSettings := testSettings(t)

	d, err := New(tSettings, ulogger.WithWriter(io.Discard))
	require.NoError(t, err)
	defer d.Stop()

	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)

	lockingScript, err := txscript.NewP2PKHScript(crypto.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)

	funding := bt.NewTx()

	in := &bt.Input{
		PreviousTxOutIndex: 0xFFFFFFFF,
		SequenceNumber:     0xFFFFFFFF,
		UnlockingScript:    &bscript.Script{},
	}
	require.NoError(t, in.UnlockingScript.AppendPushData([]byte{0x01}))
	require.NoError(t, in.PreviousTxIDAdd(&chainhash.Hash{}))

	funding.Inputs = append(funding.Inputs, in)
	funding.Outputs = append(funding.Outputs, &bt.Output{Satoshis: 2_000_000, LockingScript: lockingScript})

	require.NoError(t, d.Store.SetCoins(ctx, funding.TxIDChainHash(), coins.NewCoinsFromTx(funding, 1, false)))

	addr, err := txscript.NewAddressFromPublicKey(priv.PubKey(), tSettings.ChainCfgParams)
	require.NoError(t, err)

	tx, err := d.Assembler.Build(ctx,
		[]rawtx.InputRef{{TxID: funding.TxID(), Vout: 0}},
		[]rawtx.OutputSpec{{Address: addr.String(), Satoshis: 1_000_000}}, 0)
	require.NoError(t, err)

	res, err := d.Signer.Sign(ctx, &rawtx.SignRequest{
		Tx:       tx,
		PrivKeys: []string{keystore.EncodeWIF(priv, tSettings.ChainCfgParams)},
	})
	require.NoError(t, err)
	require.True(t, res.Complete)

	hash, err := d.Pipeline.Submit(ctx, res.Tx)
	require.NoError(t, err)
	assert.True(t, d.Pool.Exists(hash))
}
