package model

import (
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2"

	"github.com/bsv-blockchain/txforge/errors"
)

// TxFromBytes decodes a single serialized transaction. The whole input must
// be consumed; trailing bytes are a decode error.
func TxFromBytes(b []byte) (*bt.Tx, error) {
	tx, used, err := bt.NewTxFromStream(b)
	if err != nil {
		return nil, errors.NewTxDecodeError("failed to decode transaction", err)
	}

	if used != len(b) {
		return nil, errors.NewTxDecodeError("transaction has %d trailing bytes", len(b)-used)
	}

	return tx, nil
}

// TxFromHex decodes a single hex-encoded transaction.
func TxFromHex(s string) (*bt.Tx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.NewInvalidFormatError("transaction hex is malformed", err)
	}

	return TxFromBytes(b)
}

// TxsFromBytes decodes one or more transactions serialized back to back.
// A partial trailing transaction fails the whole decode, nothing is returned.
func TxsFromBytes(b []byte) ([]*bt.Tx, error) {
	if len(b) == 0 {
		return nil, errors.NewTxDecodeError("empty transaction payload")
	}

	var txs []*bt.Tx

	for offset := 0; offset < len(b); {
		tx, used, err := bt.NewTxFromStream(b[offset:])
		if err != nil {
			return nil, errors.NewTxDecodeError("failed to decode transaction %d at offset %d", len(txs), offset, err)
		}

		txs = append(txs, tx)
		offset += used
	}

	return txs, nil
}

// TxsFromHex decodes a hex string holding one or more concatenated
// transactions.
func TxsFromHex(s string) ([]*bt.Tx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.NewInvalidFormatError("transaction hex is malformed", err)
	}

	return TxsFromBytes(b)
}
