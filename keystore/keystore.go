// Package keystore holds signing keys and redeem scripts, indexed the way
// locking scripts refer to them: by public key hash and by script hash.
package keystore

import (
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	bec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/libsv/go-bk/crypto"

	"github.com/bsv-blockchain/txforge/errors"
)

type Store interface {
	// HasKey reports whether a key for pubKeyHash is held.
	HasKey(pubKeyHash []byte) bool

	// GetKey returns the private key whose public key hashes to pubKeyHash.
	GetKey(pubKeyHash []byte) (*bec.PrivateKey, error)

	// GetScript returns the redeem script hashing to scriptHash.
	GetScript(scriptHash []byte) (*bscript.Script, error)

	AddKey(priv *bec.PrivateKey) error
	AddScript(script *bscript.Script) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	keys    map[string]*bec.PrivateKey
	scripts map[string]*bscript.Script
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:    make(map[string]*bec.PrivateKey),
		scripts: make(map[string]*bscript.Script),
	}
}

func (m *MemoryStore) HasKey(pubKeyHash []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.keys[string(pubKeyHash)]

	return ok
}

func (m *MemoryStore) GetKey(pubKeyHash []byte) (*bec.PrivateKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	priv, ok := m.keys[string(pubKeyHash)]
	if !ok {
		return nil, errors.NewNotFoundError("no key for pubkey hash %x", pubKeyHash)
	}

	return priv, nil
}

func (m *MemoryStore) GetScript(scriptHash []byte) (*bscript.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	script, ok := m.scripts[string(scriptHash)]
	if !ok {
		return nil, errors.NewNotFoundError("no redeem script for script hash %x", scriptHash)
	}

	return script, nil
}

func (m *MemoryStore) AddKey(priv *bec.PrivateKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[string(crypto.Hash160(priv.PubKey().Compressed()))] = priv

	return nil
}

func (m *MemoryStore) AddScript(script *bscript.Script) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scripts[string(crypto.Hash160(*script))] = script

	return nil
}
