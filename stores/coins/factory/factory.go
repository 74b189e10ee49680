// Package factory resolves a coin store URL to a concrete backend.
package factory

import (
	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/stores/coins/sql"
	"github.com/bsv-blockchain/txforge/ulogger"
)

func NewStore(logger ulogger.Logger, tSettings *settings.Settings) (coins.Store, error) {
	storeURL := tSettings.Coins.StoreURL
	if storeURL == nil {
		return nil, errors.NewConfigurationError("no coins store URL configured")
	}

	switch storeURL.Scheme {
	case "memory":
		return coins.NewMemoryStore(), nil
	case "postgres", "sqlite", "sqlitememory":
		return sql.New(logger, storeURL, tSettings)
	default:
		return nil, errors.NewConfigurationError("unknown coins store scheme: %s", storeURL.Scheme)
	}
}
