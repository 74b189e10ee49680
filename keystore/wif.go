package keystore

import (
	"github.com/bsv-blockchain/go-chaincfg"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/base58"

	"github.com/bsv-blockchain/txforge/errors"
)

// EncodeWIF encodes a private key using the network's secret key prefix. The
// trailing 0x01 marks the corresponding public key as compressed.
func EncodeWIF(priv *bec.PrivateKey, params *chaincfg.Params) string {
	return base58.CheckEncode(append(priv.Serialize(), 0x01), params.PrivateKeyID)
}

// DecodeWIF decodes a WIF string, enforcing the network prefix.
func DecodeWIF(wif string, params *chaincfg.Params) (*bec.PrivateKey, error) {
	decoded, prefix, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, errors.NewInvalidFormatError("private key is not valid base58check", err)
	}

	if prefix != params.PrivateKeyID {
		return nil, errors.NewInvalidFormatError("private key prefix %d is not valid for %s", prefix, params.Name)
	}

	switch len(decoded) {
	case 32:
	case 33:
		if decoded[32] != 0x01 {
			return nil, errors.NewInvalidFormatError("private key has malformed compression marker")
		}

		decoded = decoded[:32]
	default:
		return nil, errors.NewInvalidFormatError("private key payload is %d bytes", len(decoded))
	}

	priv, _ := bec.PrivateKeyFromBytes(decoded)

	return priv, nil
}
