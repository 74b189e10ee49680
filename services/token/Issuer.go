// Package token drives token issuance on top of the raw-transaction
// engine: two chained transactions with a content-bound identity
// derivation in between.
package token

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/keystore"
	"github.com/bsv-blockchain/txforge/services/broadcast"
	"github.com/bsv-blockchain/txforge/services/rawtx"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
	"github.com/bsv-blockchain/txforge/wallet"
)

// Identity is the ephemeral signing identity minted in the derive stage.
type Identity struct {
	TokenID         string
	PublicIdentity  string
	PrivateIdentity string
}

// TokenIssuer implements Issuer over the assembly, signing and broadcast
// capabilities of the engine.
type TokenIssuer struct {
	logger      ulogger.Logger
	settings    *settings.Settings
	wallet      wallet.Wallet
	assembler   *rawtx.Assembler
	signer      *rawtx.TxSigner
	broadcaster broadcast.Broadcaster
}

func NewIssuer(logger ulogger.Logger, tSettings *settings.Settings, w wallet.Wallet, assembler *rawtx.Assembler, signer *rawtx.TxSigner, broadcaster broadcast.Broadcaster) *TokenIssuer {
	initPrometheusMetrics()

	return &TokenIssuer{
		logger:      logger,
		settings:    tSettings,
		wallet:      w,
		assembler:   assembler,
		signer:      signer,
		broadcaster: broadcaster,
	}
}

// Issue runs the full workflow. Any stage failure aborts the whole call;
// no partial token is surfaced and no retry is attempted.
func (t *TokenIssuer) Issue(ctx context.Context, content []byte, destination string) (*Record, error) {
	prometheusTokenIssue.Inc()

	fundingTx, fundingVout, err := t.Fund(ctx)
	if err != nil {
		prometheusTokenAborted.Inc()

		return nil, errors.NewWorkflowAbortedError("fund stage failed", err)
	}

	identity, err := t.Derive(content, fundingTx.TxID())
	if err != nil {
		prometheusTokenAborted.Inc()

		return nil, errors.NewWorkflowAbortedError("derive stage failed", err)
	}

	commitTx, err := t.Commit(ctx, fundingTx, fundingVout, destination, identity.TokenID)
	if err != nil {
		prometheusTokenAborted.Inc()

		return nil, errors.NewWorkflowAbortedError("commit stage failed", err)
	}

	t.logger.Infof("issued token %s...: funding %s, commitment %s", identity.TokenID[:16], fundingTx.TxID(), commitTx.TxID())

	return &Record{
		TokenID:         identity.TokenID,
		PublicIdentity:  identity.PublicIdentity,
		PrivateIdentity: identity.PrivateIdentity,
		FundingTxID:     fundingTx.TxID(),
		CommitTxID:      commitTx.TxID(),
	}, nil
}

// Fund builds, signs and broadcasts the reservation transaction and
// returns it together with the index of the funding output. No output
// matching the reserved amount is an error, never a silent default.
func (t *TokenIssuer) Fund(ctx context.Context) (*bt.Tx, uint32, error) {
	reserve := t.settings.Token.FundingSatoshis
	needed := reserve + t.settings.Token.FeeSatoshis

	fundingAddr, err := t.wallet.FundingAddress()
	if err != nil {
		return nil, 0, err
	}

	unspent, err := t.wallet.ListUnspent(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		selected []*wallet.Unspent
		total    uint64
	)

	for _, u := range unspent {
		selected = append(selected, u)
		total += u.Satoshis

		if total >= needed {
			break
		}
	}

	if total < needed {
		return nil, 0, errors.NewProcessingError("wallet holds %d satoshis, %d needed", total, needed)
	}

	inputs := make([]rawtx.InputRef, 0, len(selected))
	for _, u := range selected {
		inputs = append(inputs, rawtx.InputRef{TxID: u.TxID.String(), Vout: u.Vout})
	}

	outputs := []rawtx.OutputSpec{{Address: fundingAddr.String(), Satoshis: reserve}}

	if change := total - needed; change > 0 {
		changeAddr, err := t.changeAddress()
		if err != nil {
			return nil, 0, err
		}

		outputs = append(outputs, rawtx.OutputSpec{Address: changeAddr.String(), Satoshis: change})
	}

	tx, err := t.assembler.Build(ctx, inputs, outputs, 0)
	if err != nil {
		return nil, 0, err
	}

	if tx, err = t.signAndSubmit(ctx, tx); err != nil {
		return nil, 0, err
	}

	for _, u := range selected {
		t.wallet.Debit(u.TxID, u.Vout)
	}

	if err = t.wallet.Credit(tx); err != nil {
		return nil, 0, err
	}

	vout, err := t.findFundingOutput(tx, fundingAddr)
	if err != nil {
		return nil, 0, err
	}

	return tx, vout, nil
}

// Derive hashes the content bound to the funding transaction id, mints a
// fresh single-use key and signs the hash. The signature is the token id.
func (t *TokenIssuer) Derive(content []byte, fundingTxID string) (*Identity, error) {
	digest := t.digest(content, fundingTxID)

	priv, err := bec.NewPrivateKey()
	if err != nil {
		return nil, errors.NewProcessingError("identity key generation failed", err)
	}

	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, errors.NewProcessingError("token signing failed", err)
	}

	return &Identity{
		TokenID:         hex.EncodeToString(sig.Serialize()),
		PublicIdentity:  hex.EncodeToString(crypto.Sha256d(priv.PubKey().Compressed())),
		PrivateIdentity: keystore.EncodeWIF(priv, t.settings.ChainCfgParams),
	}, nil
}

// Commit spends the funding output into the destination payment and a
// null-data output carrying the signature bytes the token id encodes. The
// id is already hex so it passes straight through as the data spec.
func (t *TokenIssuer) Commit(ctx context.Context, fundingTx *bt.Tx, fundingVout uint32, destination, tokenID string) (*bt.Tx, error) {
	tx, err := t.assembler.Build(ctx,
		[]rawtx.InputRef{{TxID: fundingTx.TxID(), Vout: fundingVout}},
		[]rawtx.OutputSpec{
			{Address: destination, Satoshis: t.settings.Token.CommitSatoshis},
			{Data: tokenID},
		}, 0)
	if err != nil {
		return nil, err
	}

	if tx, err = t.signAndSubmit(ctx, tx); err != nil {
		return nil, err
	}

	t.wallet.Debit(fundingTx.TxIDChainHash(), fundingVout)

	if err = t.wallet.Credit(tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// digest is sha256d over the content concatenated with the ascii funding
// txid, truncated or zero-extended to the configured width first.
func (t *TokenIssuer) digest(content []byte, fundingTxID string) []byte {
	width := t.settings.Token.DigestWidth
	if width <= 0 {
		width = 64
	}

	input := make([]byte, width)
	copy(input, append(append([]byte{}, content...), []byte(fundingTxID)...))

	return crypto.Sha256d(input)
}

func (t *TokenIssuer) signAndSubmit(ctx context.Context, tx *bt.Tx) (*bt.Tx, error) {
	res, err := t.signer.Sign(ctx, &rawtx.SignRequest{Tx: tx})
	if err != nil {
		return nil, err
	}

	if !res.Complete {
		return nil, errors.NewIncompleteSignatureError("transaction %s did not sign completely", res.Tx.TxID())
	}

	if _, err = t.broadcaster.Submit(ctx, res.Tx); err != nil {
		return nil, err
	}

	return res.Tx, nil
}

// findFundingOutput locates the reservation output by address and amount,
// skipping data outputs so a marker value can never be mistaken for it.
func (t *TokenIssuer) findFundingOutput(tx *bt.Tx, fundingAddr *txscript.Address) (uint32, error) {
	expected, err := fundingAddr.LockingScript()
	if err != nil {
		return 0, err
	}

	for vout, out := range tx.Outputs {
		if txscript.Classify(out.LockingScript).Class == txscript.NullData {
			continue
		}

		if out.Satoshis == t.settings.Token.FundingSatoshis && bytes.Equal(*out.LockingScript, *expected) {
			return uint32(vout), nil
		}
	}

	return 0, errors.NewNotFoundError("no output carries the reserved amount %d", t.settings.Token.FundingSatoshis)
}

func (t *TokenIssuer) changeAddress() (*txscript.Address, error) {
	priv, err := bec.NewPrivateKey()
	if err != nil {
		return nil, errors.NewProcessingError("change key generation failed", err)
	}

	if err = t.wallet.AddKey(priv); err != nil {
		return nil, err
	}

	return txscript.NewAddressFromPublicKey(priv.PubKey(), t.settings.ChainCfgParams)
}
