package txscript

import (
	"github.com/bsv-blockchain/go-bt/v2/bscript"

	"github.com/bsv-blockchain/txforge/errors"
)

// NewP2PKHScript builds OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func NewP2PKHScript(hash160 []byte) (*bscript.Script, error) {
	if len(hash160) != 20 {
		return nil, errors.NewInvalidArgumentError("pubkey hash is %d bytes, want 20", len(hash160))
	}

	s := &bscript.Script{}
	if err := s.AppendOpcodes(bscript.OpDUP, bscript.OpHASH160); err != nil {
		return nil, err
	}

	if err := s.AppendPushData(hash160); err != nil {
		return nil, err
	}

	if err := s.AppendOpcodes(bscript.OpEQUALVERIFY, bscript.OpCHECKSIG); err != nil {
		return nil, err
	}

	return s, nil
}

// NewP2SHScript builds OP_HASH160 <hash> OP_EQUAL.
func NewP2SHScript(scriptHash []byte) (*bscript.Script, error) {
	if len(scriptHash) != 20 {
		return nil, errors.NewInvalidArgumentError("script hash is %d bytes, want 20", len(scriptHash))
	}

	s := &bscript.Script{}
	if err := s.AppendOpcodes(bscript.OpHASH160); err != nil {
		return nil, err
	}

	if err := s.AppendPushData(scriptHash); err != nil {
		return nil, err
	}

	if err := s.AppendOpcodes(bscript.OpEQUAL); err != nil {
		return nil, err
	}

	return s, nil
}

// NewMultisigScript builds <m> <pubkeys...> <n> OP_CHECKMULTISIG.
func NewMultisigScript(required int, pubKeys [][]byte) (*bscript.Script, error) {
	if required < 1 || required > len(pubKeys) || len(pubKeys) > 16 {
		return nil, errors.NewInvalidArgumentError("cannot require %d of %d signatures", required, len(pubKeys))
	}

	s := &bscript.Script{}
	if err := s.AppendOpcodes(smallIntOp(required)); err != nil {
		return nil, err
	}

	for _, pubKey := range pubKeys {
		if !isPubKeyLen(len(pubKey)) {
			return nil, errors.NewInvalidArgumentError("public key is %d bytes, want 33 or 65", len(pubKey))
		}

		if err := s.AppendPushData(pubKey); err != nil {
			return nil, err
		}
	}

	if err := s.AppendOpcodes(smallIntOp(len(pubKeys)), bscript.OpCHECKMULTISIG); err != nil {
		return nil, err
	}

	return s, nil
}

// NewNullDataScript builds OP_RETURN <data>.
func NewNullDataScript(data []byte) (*bscript.Script, error) {
	s := &bscript.Script{}
	if err := s.AppendOpcodes(bscript.OpRETURN); err != nil {
		return nil, err
	}

	if err := s.AppendPushData(data); err != nil {
		return nil, err
	}

	return s, nil
}

func smallIntOp(n int) uint8 {
	if n == 0 {
		return bscript.Op0
	}

	return bscript.Op1 + uint8(n-1)
}
