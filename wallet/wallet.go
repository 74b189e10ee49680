// Package wallet tracks spendable outputs for a set of owned keys. It is
// the key and coin source for workflows that fund and commit transactions
// on their own, without the caller handing keys in.
package wallet

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/keystore"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/txscript"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// Unspent is one wallet-owned output that has not been spent.
type Unspent struct {
	TxID          *chainhash.Hash
	Vout          uint32
	Satoshis      uint64
	LockingScript *bscript.Script
}

// Wallet is a key store that also knows which outputs it owns.
type Wallet interface {
	keystore.Store

	// FundingAddress returns an address owned by the wallet, creating a key
	// when the wallet has none.
	FundingAddress() (*txscript.Address, error)

	// ListUnspent returns the wallet's unspent outputs, largest first.
	ListUnspent(ctx context.Context) ([]*Unspent, error)

	// Credit registers the outputs of tx that pay a wallet key.
	Credit(tx *bt.Tx) error

	// Debit marks one output spent.
	Debit(txID *chainhash.Hash, vout uint32)
}

type outpoint struct {
	hash chainhash.Hash
	vout uint32
}

// MemoryWallet is an in-process Wallet.
type MemoryWallet struct {
	*keystore.MemoryStore

	logger   ulogger.Logger
	settings *settings.Settings

	mu      sync.RWMutex
	owned   map[string]struct{}
	funding *bec.PrivateKey
	coins   map[outpoint]*Unspent
}

func NewMemoryWallet(logger ulogger.Logger, tSettings *settings.Settings) *MemoryWallet {
	return &MemoryWallet{
		MemoryStore: keystore.NewMemoryStore(),
		logger:      logger,
		settings:    tSettings,
		owned:       make(map[string]struct{}),
		coins:       make(map[outpoint]*Unspent),
	}
}

func (w *MemoryWallet) AddKey(priv *bec.PrivateKey) error {
	if err := w.MemoryStore.AddKey(priv); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.owned[string(crypto.Hash160(priv.PubKey().Compressed()))] = struct{}{}

	if w.funding == nil {
		w.funding = priv
	}

	return nil
}

func (w *MemoryWallet) FundingAddress() (*txscript.Address, error) {
	w.mu.Lock()
	priv := w.funding
	w.mu.Unlock()

	if priv == nil {
		var err error
		if priv, err = bec.NewPrivateKey(); err != nil {
			return nil, errors.NewProcessingError("key generation failed", err)
		}

		if err = w.AddKey(priv); err != nil {
			return nil, err
		}
	}

	return txscript.NewAddressFromPublicKey(priv.PubKey(), w.settings.ChainCfgParams)
}

func (w *MemoryWallet) ListUnspent(_ context.Context) ([]*Unspent, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	unspent := make([]*Unspent, 0, len(w.coins))
	for _, u := range w.coins {
		unspent = append(unspent, u)
	}

	// largest first so funding selection grabs the roomiest coin
	for i := 1; i < len(unspent); i++ {
		for j := i; j > 0 && unspent[j-1].Satoshis < unspent[j].Satoshis; j-- {
			unspent[j-1], unspent[j] = unspent[j], unspent[j-1]
		}
	}

	return unspent, nil
}

// Credit scans tx for pay-to-pubkey-hash outputs whose hash the wallet
// owns and registers them as unspent.
func (w *MemoryWallet) Credit(tx *bt.Tx) error {
	h := tx.TxIDChainHash()
	if h == nil {
		return errors.NewInvalidArgumentError("transaction has no id")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for vout, out := range tx.Outputs {
		cls := txscript.Classify(out.LockingScript)
		if cls.Class != txscript.PubKeyHash {
			continue
		}

		if _, ok := w.owned[string(cls.Hash)]; !ok {
			continue
		}

		w.coins[outpoint{hash: *h, vout: uint32(vout)}] = &Unspent{
			TxID:          h,
			Vout:          uint32(vout),
			Satoshis:      out.Satoshis,
			LockingScript: out.LockingScript,
		}

		w.logger.Debugf("credited %s:%d (%d satoshis)", h.String(), vout, out.Satoshis)
	}

	return nil
}

func (w *MemoryWallet) Debit(txID *chainhash.Hash, vout uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.coins, outpoint{hash: *txID, vout: vout})
}
