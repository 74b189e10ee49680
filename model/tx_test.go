package model

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsv-blockchain/txforge/errors"
)

// genesis coinbase
const coinbaseHex = "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff4d04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f757420666f722062616e6b73ffffffff0100f2052a01000000434104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac00000000"

func TestTxFromHex(t *testing.T) {
	tx, err := TxFromHex(coinbaseHex)
	require.NoError(t, err)

	assert.Equal(t, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b", tx.TxID())
	assert.Equal(t, coinbaseHex, tx.String())
}

func TestTxFromHexMalformed(t *testing.T) {
	_, err := TxFromHex("zz00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFormat))
}

func TestTxFromBytesTrailing(t *testing.T) {
	b, err := hex.DecodeString(coinbaseHex)
	require.NoError(t, err)

	_, err = TxFromBytes(append(b, 0x00))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxDecode))
}

func TestTxsFromBytes(t *testing.T) {
	b, err := hex.DecodeString(coinbaseHex + coinbaseHex)
	require.NoError(t, err)

	txs, err := TxsFromBytes(b)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, txs[0].TxID(), txs[1].TxID())
}

func TestTxsFromBytesPartial(t *testing.T) {
	b, err := hex.DecodeString(coinbaseHex + coinbaseHex)
	require.NoError(t, err)

	_, err = TxsFromBytes(b[:len(b)-10])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxDecode))
}

func TestTxsFromBytesEmpty(t *testing.T) {
	_, err := TxsFromBytes(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxDecode))
}
