package coins

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"

	"github.com/bsv-blockchain/txforge/errors"
)

// MemoryStore is an in-process Store, used in tests and as the regtest
// chain backend.
type MemoryStore struct {
	mu    sync.RWMutex
	coins map[chainhash.Hash]*Coins
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		coins: make(map[chainhash.Hash]*Coins),
	}
}

func (m *MemoryStore) GetCoins(_ context.Context, txID *chainhash.Hash) (*Coins, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.coins[*txID]
	if !ok {
		return nil, errors.NewNotFoundError("no coins for %s", txID.String())
	}

	return c.Clone(), nil
}

func (m *MemoryStore) HaveCoins(_ context.Context, txID *chainhash.Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.coins[*txID]

	return ok && !c.Pruned(), nil
}

func (m *MemoryStore) SetCoins(_ context.Context, txID *chainhash.Hash, c *Coins) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.coins[*txID] = c.Clone()

	return nil
}

func (m *MemoryStore) SpendCoin(_ context.Context, txID *chainhash.Hash, vout uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coins[*txID]
	if !ok {
		return errors.NewNotFoundError("no coins for %s", txID.String())
	}

	if !c.Spend(vout) {
		return errors.NewMissingPriorOutputError("output %s:%d is spent or out of range", txID.String(), vout)
	}

	if c.Pruned() {
		delete(m.coins, *txID)
	}

	return nil
}

func (m *MemoryStore) Health(_ context.Context) error {
	return nil
}
