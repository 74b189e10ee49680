// Package mempool holds transactions accepted for relay but not yet mined.
package mempool

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// Height recorded on coins created by pooled transactions.
const MempoolHeight = 0x7FFFFFFF

// Pool is the pending transaction set. The embedded Mutex is the pool's
// coarse lock: callers that resolve prior outputs through a pool-backed
// view hold it across the whole window so admissions cannot race the
// lookups.
type Pool struct {
	sync.Mutex

	logger ulogger.Logger

	mu  sync.RWMutex
	txs map[chainhash.Hash]*bt.Tx
}

func New(logger ulogger.Logger) *Pool {
	return &Pool{
		logger: logger,
		txs:    make(map[chainhash.Hash]*bt.Tx),
	}
}

func (p *Pool) Exists(txID *chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.txs[*txID]

	return ok
}

func (p *Pool) Get(txID *chainhash.Hash) (*bt.Tx, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tx, ok := p.txs[*txID]

	return tx, ok
}

func (p *Pool) Add(tx *bt.Tx) error {
	txID := tx.TxIDChainHash()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.txs[*txID]; ok {
		return errors.NewTxAlreadyPendingError("tx %s is already pending", txID.String())
	}

	p.txs[*txID] = tx
	p.logger.Debugf("pooled tx %s (%d pending)", txID.String(), len(p.txs))

	return nil
}

func (p *Pool) Remove(txID *chainhash.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.txs, *txID)
}

func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.txs)
}

// View overlays the pool on a base view: coins for pooled transactions
// come from the pool, everything else falls through.
func (p *Pool) View(base coins.View) coins.View {
	if base == nil {
		base = coins.EmptyView{}
	}

	return &poolView{pool: p, base: base}
}

type poolView struct {
	pool *Pool
	base coins.View
}

func (v *poolView) GetCoins(ctx context.Context, txID *chainhash.Hash) (*coins.Coins, error) {
	if tx, ok := v.pool.Get(txID); ok {
		return coins.NewCoinsFromTx(tx, MempoolHeight, false), nil
	}

	return v.base.GetCoins(ctx, txID)
}

func (v *poolView) HaveCoins(ctx context.Context, txID *chainhash.Hash) (bool, error) {
	if v.pool.Exists(txID) {
		return true, nil
	}

	return v.base.HaveCoins(ctx, txID)
}
