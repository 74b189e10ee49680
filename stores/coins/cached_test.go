package coins

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsv-blockchain/txforge/errors"
)

func testHash(t *testing.T, b byte) *chainhash.Hash {
	t.Helper()

	var raw [32]byte
	raw[0] = b

	h, err := chainhash.NewHash(raw[:])
	require.NoError(t, err)

	return h
}

func testCoins(t *testing.T, satoshis uint64, n int) *Coins {
	t.Helper()

	c := &Coins{Height: 100}

	for i := 0; i < n; i++ {
		s, err := bscript.NewFromHexString("76a914000000000000000000000000000000000000000088ac")
		require.NoError(t, err)

		c.Outputs = append(c.Outputs, &bt.Output{Satoshis: satoshis, LockingScript: s})
	}

	return c
}

func TestCachedViewMissThenHit(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryStore()
	txID := testHash(t, 1)
	require.NoError(t, backend.SetCoins(ctx, txID, testCoins(t, 5000, 2)))

	view := NewCachedView(backend)

	c, err := view.GetCoins(ctx, txID)
	require.NoError(t, err)
	assert.True(t, c.IsAvailable(0))
	assert.True(t, c.IsAvailable(1))

	// cached records survive the backend going away
	view.SetBackend(EmptyView{})

	c2, err := view.GetCoins(ctx, txID)
	require.NoError(t, err)
	assert.Same(t, c, c2)

	_, err = view.GetCoins(ctx, testHash(t, 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCachedViewOverlayIsolation(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryStore()
	txID := testHash(t, 3)
	require.NoError(t, backend.SetCoins(ctx, txID, testCoins(t, 5000, 1)))

	view := NewCachedView(backend)

	c, err := view.GetCoins(ctx, txID)
	require.NoError(t, err)
	require.True(t, c.Spend(0))

	// the spend is overlay-local
	have, err := view.HaveCoins(ctx, txID)
	require.NoError(t, err)
	assert.False(t, have)

	have, err = backend.HaveCoins(ctx, txID)
	require.NoError(t, err)
	assert.True(t, have)
}

func TestCachedViewAddCoinsShadowsBackend(t *testing.T) {
	ctx := context.Background()

	backend := NewMemoryStore()
	txID := testHash(t, 4)
	require.NoError(t, backend.SetCoins(ctx, txID, testCoins(t, 5000, 1)))

	view := NewCachedView(backend)
	view.AddCoins(txID, testCoins(t, 9000, 3))

	c, err := view.GetCoins(ctx, txID)
	require.NoError(t, err)
	require.Len(t, c.Outputs, 3)
	assert.Equal(t, uint64(9000), c.Outputs[0].Satoshis)
}

func TestCoinsSpendAndPrune(t *testing.T) {
	c := testCoins(t, 100, 2)

	assert.False(t, c.Pruned())
	assert.True(t, c.Spend(0))
	assert.False(t, c.Spend(0))
	assert.False(t, c.Spend(5))
	assert.True(t, c.Spend(1))
	assert.True(t, c.Pruned())
	assert.Nil(t, c.Output(0))
}

func TestCoinsCloneIsDeep(t *testing.T) {
	c := testCoins(t, 100, 1)
	clone := c.Clone()

	require.True(t, clone.Spend(0))
	assert.True(t, c.IsAvailable(0))

	(*c.Outputs[0].LockingScript)[0] = 0xff
	// clone already spent its only output, make a fresh one to compare scripts
	clone2 := c.Clone()
	assert.Equal(t, byte(0xff), (*clone2.Outputs[0].LockingScript)[0])
}

func TestEmptyView(t *testing.T) {
	ctx := context.Background()

	_, err := EmptyView{}.GetCoins(ctx, testHash(t, 9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	have, err := EmptyView{}.HaveCoins(ctx, testHash(t, 9))
	require.NoError(t, err)
	assert.False(t, have)
}
