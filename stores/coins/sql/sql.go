// Package sql is a coin store on sqlite or postgres, selected by the store
// URL scheme. One row per unspent output, spending deletes the row.
package sql

import (
	"context"
	dbsql "database/sql"
	"net/url"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/ulogger"
	"github.com/bsv-blockchain/txforge/util"
	"github.com/bsv-blockchain/txforge/util/usql"
)

type Store struct {
	db     *usql.DB
	engine util.SQLEngine
	logger ulogger.Logger
}

func New(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*Store, error) {
	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageError("failed to init sql db", err)
	}

	engine := util.SQLEngine(storeURL.Scheme)

	switch engine {
	case util.Postgres:
		err = createPostgresSchema(db)
	case util.Sqlite, util.SqliteMemory:
		err = createSqliteSchema(db)
	default:
		return nil, errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		engine: engine,
		logger: logger,
	}, nil
}

func (s *Store) DB() *usql.DB {
	return s.db
}

func (s *Store) Engine() util.SQLEngine {
	return s.engine
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createPostgresSchema(db *usql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS coins (
        tx_id           BYTEA NOT NULL
        ,vout           BIGINT NOT NULL
        ,satoshis       BIGINT NOT NULL
        ,locking_script BYTEA NOT NULL
        ,height         BIGINT NOT NULL
        ,coinbase       BOOLEAN NOT NULL DEFAULT FALSE
        ,inserted_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        ,PRIMARY KEY (tx_id, vout)
      );
    `); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create coins table", err)
	}

	return nil
}

func createSqliteSchema(db *usql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS coins (
        tx_id           BLOB NOT NULL
        ,vout           INTEGER NOT NULL
        ,satoshis       INTEGER NOT NULL
        ,locking_script BLOB NOT NULL
        ,height         INTEGER NOT NULL
        ,coinbase       BOOLEAN NOT NULL DEFAULT FALSE
        ,inserted_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        ,PRIMARY KEY (tx_id, vout)
      );
    `); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create coins table", err)
	}

	return nil
}

func (s *Store) GetCoins(ctx context.Context, txID *chainhash.Hash) (*coins.Coins, error) {
	rows, err := s.db.QueryContext(ctx, `
      SELECT vout, satoshis, locking_script, height, coinbase
      FROM coins
      WHERE tx_id = $1
    `, txID.CloneBytes())
	if err != nil {
		return nil, errors.NewStorageError("failed to query coins for %s", txID.String(), err)
	}
	defer rows.Close()

	var (
		c     *coins.Coins
		found bool
	)

	for rows.Next() {
		var (
			vout     uint32
			satoshis uint64
			script   []byte
			height   uint32
			coinbase bool
		)

		if err = rows.Scan(&vout, &satoshis, &script, &height, &coinbase); err != nil {
			return nil, errors.NewStorageError("failed to scan coins row for %s", txID.String(), err)
		}

		if !found {
			c = &coins.Coins{Height: height, Coinbase: coinbase}
			found = true
		}

		for uint32(len(c.Outputs)) <= vout {
			c.Outputs = append(c.Outputs, nil)
		}

		ls := bscript.Script(script)
		c.Outputs[vout] = &bt.Output{
			Satoshis:      satoshis,
			LockingScript: &ls,
		}
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to read coins rows for %s", txID.String(), err)
	}

	if !found {
		return nil, errors.NewNotFoundError("no coins for %s", txID.String())
	}

	return c, nil
}

func (s *Store) HaveCoins(ctx context.Context, txID *chainhash.Hash) (bool, error) {
	var one int

	err := s.db.QueryRowContext(ctx, `
      SELECT 1 FROM coins WHERE tx_id = $1 LIMIT 1
    `, txID.CloneBytes()).Scan(&one)
	if err != nil {
		if errors.Is(err, dbsql.ErrNoRows) {
			return false, nil
		}

		return false, errors.NewStorageError("failed to query coins for %s", txID.String(), err)
	}

	return true, nil
}

func (s *Store) SetCoins(ctx context.Context, txID *chainhash.Hash, c *coins.Coins) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin tx", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM coins WHERE tx_id = $1`, txID.CloneBytes()); err != nil {
		return errors.NewStorageError("failed to clear coins for %s", txID.String(), err)
	}

	for vout, out := range c.Outputs {
		if out == nil {
			continue
		}

		if _, err = tx.ExecContext(ctx, `
          INSERT INTO coins (tx_id, vout, satoshis, locking_script, height, coinbase)
          VALUES ($1, $2, $3, $4, $5, $6)
        `, txID.CloneBytes(), vout, out.Satoshis, []byte(*out.LockingScript), c.Height, c.Coinbase); err != nil {
			return errors.NewStorageError("failed to insert coin %s:%d", txID.String(), vout, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit coins for %s", txID.String(), err)
	}

	return nil
}

func (s *Store) SpendCoin(ctx context.Context, txID *chainhash.Hash, vout uint32) error {
	res, err := s.db.ExecContext(ctx, `
      DELETE FROM coins WHERE tx_id = $1 AND vout = $2
    `, txID.CloneBytes(), vout)
	if err != nil {
		return errors.NewStorageError("failed to spend coin %s:%d", txID.String(), vout, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError("failed to read rows affected", err)
	}

	if affected == 0 {
		return errors.NewMissingPriorOutputError("output %s:%d is spent or unknown", txID.String(), vout)
	}

	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
