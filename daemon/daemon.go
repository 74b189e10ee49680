// Package daemon is the composition root. It builds the engine from
// settings: logger, coin store, pending pool, wallet, the raw transaction
// services and the broadcast pipeline.
package daemon

import (
	"context"
	"io"

	"github.com/bsv-blockchain/txforge/mempool"
	"github.com/bsv-blockchain/txforge/services/broadcast"
	"github.com/bsv-blockchain/txforge/services/rawtx"
	"github.com/bsv-blockchain/txforge/services/token"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/stores/coins/factory"
	"github.com/bsv-blockchain/txforge/ulogger"
	"github.com/bsv-blockchain/txforge/wallet"
)

type Daemon struct {
	Logger    ulogger.Logger
	Settings  *settings.Settings
	Store     coins.Store
	Chain     coins.View
	Pool      *mempool.Pool
	Wallet    *wallet.MemoryWallet
	Assembler *rawtx.Assembler
	Signer    *rawtx.TxSigner
	Combiner  *rawtx.SignatureCombiner
	Pipeline  *broadcast.Pipeline
	Issuer    *token.TokenIssuer
}

// New wires the full engine from tSettings. The coin store comes from the
// store URL, the chain view is fronted by the read cache when the cache
// backend is enabled and Kafka relaying is attached only when configured.
func New(tSettings *settings.Settings, options ...ulogger.Option) (*Daemon, error) {
	logger := ulogger.New(tSettings.ClientName,
		append([]ulogger.Option{ulogger.WithLevel(tSettings.LogLevel)}, options...)...)

	store, err := factory.NewStore(logger, tSettings)
	if err != nil {
		return nil, err
	}

	var chain coins.View = store
	if tSettings.Coins.CacheBackend {
		chain = coins.NewCachedView(store)
	}

	pool := mempool.New(logger)
	w := wallet.NewMemoryWallet(logger, tSettings)
	verifier := rawtx.NewScriptVerifier(logger, tSettings)
	assembler := rawtx.NewAssembler(logger, tSettings)
	signer := rawtx.NewSigner(logger, tSettings, chain, pool, w, verifier)
	combiner := rawtx.NewCombiner(logger, tSettings, verifier)
	admitter := broadcast.NewRuleAdmitter(logger, tSettings, chain, pool, verifier)

	var relayers []broadcast.Relayer

	if tSettings.Broadcast.KafkaEnabled {
		kafka, err := broadcast.NewKafkaRelayer(logger, tSettings)
		if err != nil {
			return nil, err
		}

		relayers = append(relayers, kafka)
	}

	pipeline := broadcast.NewPipeline(logger, tSettings, chain, pool, admitter, relayers...)
	issuer := token.NewIssuer(logger, tSettings, w, assembler, signer, pipeline)

	return &Daemon{
		Logger:    logger,
		Settings:  tSettings,
		Store:     store,
		Chain:     chain,
		Pool:      pool,
		Wallet:    w,
		Assembler: assembler,
		Signer:    signer,
		Combiner:  combiner,
		Pipeline:  pipeline,
		Issuer:    issuer,
	}, nil
}

// Start spawns the relay workers. Without it submissions relay inline.
func (d *Daemon) Start(ctx context.Context) {
	d.Pipeline.Start(ctx)
}

// Stop drains the pipeline and closes the coin store.
func (d *Daemon) Stop() {
	d.Pipeline.Stop()

	if closer, ok := d.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			d.Logger.Warnf("closing coin store: %v", err)
		}
	}
}
