package txscript

import (
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-chaincfg"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/base58"
	"github.com/libsv/go-bk/crypto"

	"github.com/bsv-blockchain/txforge/errors"
)

// Address is a base58check encoded destination, either a public key hash or
// a script hash, tagged with the network prefix it was created for.
type Address struct {
	hash   []byte
	prefix byte
	script bool
}

func NewAddressFromString(addr string, params *chaincfg.Params) (*Address, error) {
	hash, prefix, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, errors.NewInvalidDestinationError("address %q is not valid base58check", addr, err)
	}

	if len(hash) != 20 {
		return nil, errors.NewInvalidDestinationError("address %q payload is %d bytes, want 20", addr, len(hash))
	}

	switch prefix {
	case params.LegacyPubKeyHashAddrID:
		return &Address{hash: hash, prefix: prefix}, nil
	case params.LegacyScriptHashAddrID:
		return &Address{hash: hash, prefix: prefix, script: true}, nil
	default:
		return nil, errors.NewInvalidDestinationError("address %q has prefix %d, not valid for %s", addr, prefix, params.Name)
	}
}

func NewAddressFromPubKeyHash(hash []byte, params *chaincfg.Params) (*Address, error) {
	if len(hash) != 20 {
		return nil, errors.NewInvalidDestinationError("pubkey hash is %d bytes, want 20", len(hash))
	}

	return &Address{hash: hash, prefix: params.LegacyPubKeyHashAddrID}, nil
}

func NewAddressFromPublicKey(pubKey *bec.PublicKey, params *chaincfg.Params) (*Address, error) {
	return NewAddressFromPubKeyHash(crypto.Hash160(pubKey.Compressed()), params)
}

func NewAddressFromScript(script *bscript.Script, params *chaincfg.Params) (*Address, error) {
	return NewAddressFromScriptHash(crypto.Hash160([]byte(*script)), params)
}

func NewAddressFromScriptHash(hash []byte, params *chaincfg.Params) (*Address, error) {
	if len(hash) != 20 {
		return nil, errors.NewInvalidDestinationError("script hash is %d bytes, want 20", len(hash))
	}

	return &Address{hash: hash, prefix: params.LegacyScriptHashAddrID, script: true}, nil
}

func (a *Address) String() string {
	return base58.CheckEncode(a.hash, a.prefix)
}

func (a *Address) Hash160() []byte {
	return a.hash
}

func (a *Address) IsScriptHash() bool {
	return a.script
}

// LockingScript builds the standard locking script paying to this address.
func (a *Address) LockingScript() (*bscript.Script, error) {
	if a.script {
		return NewP2SHScript(a.hash)
	}

	return NewP2PKHScript(a.hash)
}

// ExtractDestinations resolves a classified locking script to the addresses
// it pays and the number of signatures it requires. Nulldata and
// nonstandard scripts have no destinations.
func ExtractDestinations(script *bscript.Script, params *chaincfg.Params) (ScriptClass, []*Address, int, error) {
	c := Classify(script)

	switch c.Class {
	case PubKeyHash:
		addr, err := NewAddressFromPubKeyHash(c.Hash, params)
		if err != nil {
			return c.Class, nil, 0, err
		}

		return c.Class, []*Address{addr}, c.RequiredSigs, nil

	case ScriptHash:
		addr, err := NewAddressFromScriptHash(c.Hash, params)
		if err != nil {
			return c.Class, nil, 0, err
		}

		return c.Class, []*Address{addr}, c.RequiredSigs, nil

	case PubKey:
		addr, err := NewAddressFromPubKeyHash(crypto.Hash160(c.PubKeys[0]), params)
		if err != nil {
			return c.Class, nil, 0, err
		}

		return c.Class, []*Address{addr}, c.RequiredSigs, nil

	case Multisig:
		addrs := make([]*Address, 0, len(c.PubKeys))

		for _, pubKey := range c.PubKeys {
			addr, err := NewAddressFromPubKeyHash(crypto.Hash160(pubKey), params)
			if err != nil {
				return c.Class, nil, 0, err
			}

			addrs = append(addrs, addr)
		}

		return c.Class, addrs, c.RequiredSigs, nil

	default:
		return c.Class, nil, 0, nil
	}
}
