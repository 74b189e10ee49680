package token

import (
	"context"
	"encoding/hex"
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

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/keystore"
	"github.com/bsv-blockchain/txforge/mempool"
	"github.com/bsv-blockchain/txforge/services/broadcast"
	"github.com/bsv-blockchain/txforge/services/rawtx"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
	"github.com/bsv-blockchain/txforge/wallet"
)

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()

	params, err := chaincfg.GetChainParams("regtest")
	require.NoError(t, err)

	return &settings.Settings{
		ChainCfgParams: params,
		Policy: &settings.PolicySettings{
			RequireStrictDER: true,
			MaxTxSizePolicy:  100_000,
			MaxOpReturnRelay: 223,
			MinRelayTxFee:    100,
		},
		Broadcast: &settings.BroadcastSettings{
			SeenCacheTTL:      10 * time.Minute,
			SeenCacheCapacity: 1024,
		},
		Token: &settings.TokenSettings{
			FundingSatoshis: 10_000,
			CommitSatoshis:  9_000,
			FeeSatoshis:     500,
			DigestWidth:     64,
		},
	}
}

type issuerHarness struct {
	settings *settings.Settings
	wallet   *wallet.MemoryWallet
	chain    *coins.MemoryStore
	pool     *mempool.Pool
	pipeline *broadcast.Pipeline
	issuer   *TokenIssuer
}

// newHarness wires the whole engine over in-memory stores and seeds the
// wallet with one chain-backed coin.
func newHarness(t *testing.T) *issuerHarness {
	t.Helper()

	ctx := context.Background()
	tSettings := testSettings(t)
	logger := ulogger.NewVerboseTestLogger(t)

	w := wallet.NewMemoryWallet(logger, tSettings)

	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)
	require.NoError(t, w.AddKey(priv))

	lockingScript, err := txscript.NewP2PKHScript(crypto.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)

	seed := bt.NewTx()

	in := &bt.Input{
		PreviousTxOutIndex: 0xFFFFFFFF,
		SequenceNumber:     0xFFFFFFFF,
		UnlockingScript:    &bscript.Script{},
	}
	require.NoError(t, in.UnlockingScript.AppendPushData([]byte{0x01}))
	require.NoError(t, in.PreviousTxIDAdd(&chainhash.Hash{}))

	seed.Inputs = append(seed.Inputs, in)
	seed.Outputs = append(seed.Outputs, &bt.Output{Satoshis: 1_000_000, LockingScript: lockingScript})

	chain := coins.NewMemoryStore()
	require.NoError(t, chain.SetCoins(ctx, seed.TxIDChainHash(), coins.NewCoinsFromTx(seed, 1, false)))
	require.NoError(t, w.Credit(seed))

	pool := mempool.New(logger)
	verifier := rawtx.NewScriptVerifier(logger, tSettings)
	assembler := rawtx.NewAssembler(logger, tSettings)
	signer := rawtx.NewSigner(logger, tSettings, chain, pool, w, verifier)
	admitter := broadcast.NewRuleAdmitter(logger, tSettings, chain, pool, verifier)
	pipeline := broadcast.NewPipeline(logger, tSettings, chain, pool, admitter)

	t.Cleanup(pipeline.Stop)

	return &issuerHarness{
		settings: tSettings,
		wallet:   w,
		chain:    chain,
		pool:     pool,
		pipeline: pipeline,
		issuer:   NewIssuer(logger, tSettings, w, assembler, signer, pipeline),
	}
}

func destAddress(t *testing.T, tSettings *settings.Settings) string {
	t.Helper()

	priv, err := bec.NewPrivateKey()
	require.NoError(t, err)

	addr, err := txscript.NewAddressFromPublicKey(priv.PubKey(), tSettings.ChainCfgParams)
	require.NoError(t, err)

	return addr.String()
}

func TestIssueEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	content := []byte("token content under test")

	record, err := h.issuer.Issue(ctx, content, destAddress(t, h.settings))
	require.NoError(t, err)

	require.NotEmpty(t, record.TokenID)
	require.NotEmpty(t, record.PublicIdentity)
	require.NotEmpty(t, record.PrivateIdentity)

	// both transactions made it into the pool
	fundingHash, err := chainhash.NewHashFromStr(record.FundingTxID)
	require.NoError(t, err)
	require.True(t, h.pool.Exists(fundingHash))

	commitHash, err := chainhash.NewHashFromStr(record.CommitTxID)
	require.NoError(t, err)
	require.True(t, h.pool.Exists(commitHash))

	// the funding output carries exactly the reserved amount
	fundingTx, ok := h.pool.Get(fundingHash)
	require.True(t, ok)

	var reserved int
	for _, out := range fundingTx.Outputs {
		if out.Satoshis == h.settings.Token.FundingSatoshis {
			reserved++
		}
	}
	assert.Equal(t, 1, reserved)

	// the token id is the identity's signature over the content digest
	tokenID, err := hex.DecodeString(record.TokenID)
	require.NoError(t, err)

	priv, err := keystore.DecodeWIF(record.PrivateIdentity, h.settings.ChainCfgParams)
	require.NoError(t, err)

	width := h.settings.Token.DigestWidth
	input := make([]byte, width)
	copy(input, append(append([]byte{}, content...), []byte(record.FundingTxID)...))
	digest := crypto.Sha256d(input)

	sig, err := bec.ParseDERSignature(tokenID)
	require.NoError(t, err)
	assert.True(t, sig.Verify(digest, priv.PubKey()))

	assert.Equal(t, hex.EncodeToString(crypto.Sha256d(priv.PubKey().Compressed())), record.PublicIdentity)

	// the commitment carries the token id in exactly one null-data output
	commitTx, ok := h.pool.Get(commitHash)
	require.True(t, ok)

	var dataOutputs int
	for _, out := range commitTx.Outputs {
		cls := txscript.Classify(out.LockingScript)
		if cls.Class != txscript.NullData {
			continue
		}

		dataOutputs++
		require.Len(t, cls.Data, 1)
		// the payload is the raw signature, not its hex form
		assert.Equal(t, tokenID, cls.Data[0])
	}
	assert.Equal(t, 1, dataOutputs)
}

func TestIssueInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.settings.Token.FundingSatoshis = 5_000_000

	_, err := h.issuer.Issue(ctx, []byte("content"), destAddress(t, h.settings))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWorkflowAborted))
}

func TestDeriveBindsContentAndFunding(t *testing.T) {
	h := newHarness(t)

	fundingTxID := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

	id, err := h.issuer.Derive([]byte("content"), fundingTxID)
	require.NoError(t, err)

	tokenID, err := hex.DecodeString(id.TokenID)
	require.NoError(t, err)

	priv, err := keystore.DecodeWIF(id.PrivateIdentity, h.settings.ChainCfgParams)
	require.NoError(t, err)

	input := make([]byte, h.settings.Token.DigestWidth)
	copy(input, append([]byte("content"), []byte(fundingTxID)...))

	sig, err := bec.ParseDERSignature(tokenID)
	require.NoError(t, err)
	assert.True(t, sig.Verify(crypto.Sha256d(input), priv.PubKey()))

	// a different funding tx yields a different digest, so the old
	// signature cannot hold
	other := make([]byte, h.settings.Token.DigestWidth)
	copy(other, append([]byte("content"), []byte("00"+fundingTxID[2:])...))
	assert.False(t, sig.Verify(crypto.Sha256d(other), priv.PubKey()))
}

func TestFindFundingOutputNoMatch(t *testing.T) {
	h := newHarness(t)

	addr, err := h.wallet.FundingAddress()
	require.NoError(t, err)

	script, err := addr.LockingScript()
	require.NoError(t, err)

	tx := bt.NewTx()
	tx.Outputs = append(tx.Outputs, &bt.Output{Satoshis: 1, LockingScript: script})

	_, err = h.issuer.findFundingOutput(tx, addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
