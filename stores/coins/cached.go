package coins

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"

	"github.com/bsv-blockchain/txforge/errors"
)

func bscriptFromBytes(b []byte) *bscript.Script {
	s := bscript.Script(b)
	return &s
}

// EmptyView is a View with no coins.
type EmptyView struct{}

func (EmptyView) GetCoins(_ context.Context, txID *chainhash.Hash) (*Coins, error) {
	return nil, errors.NewNotFoundError("no coins for %s", txID.String())
}

func (EmptyView) HaveCoins(_ context.Context, _ *chainhash.Hash) (bool, error) {
	return false, nil
}

// CachedView layers a write-through overlay on a swappable backend view.
// Records fetched from the backend are cached in the overlay, so a record
// touched while one backend is attached stays visible after the backend is
// swapped out. Spent markers applied to the overlay never reach the backend.
type CachedView struct {
	mu      sync.RWMutex
	backend View
	overlay map[chainhash.Hash]*Coins
}

func NewCachedView(backend View) *CachedView {
	if backend == nil {
		backend = EmptyView{}
	}

	return &CachedView{
		backend: backend,
		overlay: make(map[chainhash.Hash]*Coins),
	}
}

// SetBackend swaps the backing view. The overlay is kept.
func (v *CachedView) SetBackend(backend View) {
	if backend == nil {
		backend = EmptyView{}
	}

	v.mu.Lock()
	v.backend = backend
	v.mu.Unlock()
}

// AddCoins seeds the overlay directly, shadowing whatever the backend holds
// for txID.
func (v *CachedView) AddCoins(txID *chainhash.Hash, c *Coins) {
	v.mu.Lock()
	v.overlay[*txID] = c
	v.mu.Unlock()
}

// GetCoins returns the overlay record for txID, fetching and caching from
// the backend on a miss. The returned record is the cached one: mutations
// through it are visible to later calls.
func (v *CachedView) GetCoins(ctx context.Context, txID *chainhash.Hash) (*Coins, error) {
	v.mu.RLock()
	if c, ok := v.overlay[*txID]; ok {
		v.mu.RUnlock()
		return c, nil
	}

	backend := v.backend
	v.mu.RUnlock()

	c, err := backend.GetCoins(ctx, txID)
	if err != nil {
		return nil, err
	}

	c = c.Clone()

	v.mu.Lock()
	v.overlay[*txID] = c
	v.mu.Unlock()

	return c, nil
}

func (v *CachedView) HaveCoins(ctx context.Context, txID *chainhash.Hash) (bool, error) {
	c, err := v.GetCoins(ctx, txID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return !c.Pruned(), nil
}
