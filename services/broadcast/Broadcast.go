// Package broadcast is the transaction submission pipeline. A submitted
// transaction is deduplicated, run through admission rules, entered into
// the pending pool and fanned out to the configured relays.
package broadcast

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/jellydator/ttlcache/v3"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/mempool"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/stores/coins"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// Pipeline implements Broadcaster. Submissions are idempotent: a
// transaction already pending or recently seen returns its hash without a
// second admission pass.
type Pipeline struct {
	logger   ulogger.Logger
	settings *settings.Settings
	chain    coins.View
	pool     *mempool.Pool
	admitter Admitter
	relayers []Relayer

	seen *ttlcache.Cache[chainhash.Hash, struct{}]

	mu      sync.Mutex
	relayCh chan *bt.Tx
	wg      sync.WaitGroup
}

func NewPipeline(logger ulogger.Logger, tSettings *settings.Settings, chain coins.View, pool *mempool.Pool, admitter Admitter, relayers ...Relayer) *Pipeline {
	initPrometheusMetrics()

	seen := ttlcache.New[chainhash.Hash, struct{}](
		ttlcache.WithTTL[chainhash.Hash, struct{}](tSettings.Broadcast.SeenCacheTTL),
		ttlcache.WithCapacity[chainhash.Hash, struct{}](uint64(tSettings.Broadcast.SeenCacheCapacity)),
		ttlcache.WithDisableTouchOnHit[chainhash.Hash, struct{}](),
	)
	go seen.Start()

	return &Pipeline{
		logger:   logger,
		settings: tSettings,
		chain:    chain,
		pool:     pool,
		admitter: admitter,
		relayers: relayers,
		seen:     seen,
	}
}

// Start spawns the relay workers. Without it Submit relays inline.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.relayCh != nil {
		return
	}

	workers := p.settings.Broadcast.RelayWorkers
	if workers <= 0 {
		workers = 1
	}

	ch := make(chan *bt.Tx, workers*4)
	p.relayCh = ch

	for i := 0; i < workers; i++ {
		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			// the local ch stays valid while Stop nils the field
			for tx := range ch {
				p.relay(ctx, tx)
			}
		}()
	}
}

func (p *Pipeline) Stop() {
	p.mu.Lock()

	if p.relayCh != nil {
		close(p.relayCh)
		p.relayCh = nil
	}

	p.mu.Unlock()

	p.wg.Wait()
	p.seen.Stop()

	for _, r := range p.relayers {
		if err := r.Close(); err != nil {
			p.logger.Warnf("closing relayer: %v", err)
		}
	}
}

func (p *Pipeline) Submit(ctx context.Context, tx *bt.Tx) (*chainhash.Hash, error) {
	prometheusBroadcastSubmit.Inc()

	if tx == nil {
		return nil, errors.NewInvalidArgumentError("no transaction to submit")
	}

	hash := tx.TxIDChainHash()
	if hash == nil {
		return nil, errors.NewInvalidArgumentError("transaction has no id")
	}

	// resubmitting what is already pending succeeds with the known hash
	if p.pool.Exists(hash) {
		prometheusBroadcastDuplicate.Inc()

		return hash, nil
	}

	if p.seen.Get(*hash) != nil {
		prometheusBroadcastDuplicate.Inc()

		return hash, nil
	}

	if p.chain != nil {
		if ok, err := p.chain.HaveCoins(ctx, hash); err != nil {
			return nil, err
		} else if ok {
			return nil, errors.NewTxAlreadyCommittedError("transaction %s already in the ledger", hash.String())
		}
	}

	if err := p.admitter.Admit(ctx, tx, p.settings.Broadcast.BypassFeeChecks); err != nil {
		prometheusBroadcastRejected.Inc()

		return nil, err
	}

	if err := p.pool.Add(tx); err != nil {
		// lost a race with a concurrent submit of the same tx
		if errors.Is(err, errors.ErrTxAlreadyPending) {
			return hash, nil
		}

		return nil, err
	}

	p.seen.Set(*hash, struct{}{}, ttlcache.DefaultTTL)

	// the send happens under the lock so Stop cannot close the channel
	// between the nil check and the send
	p.mu.Lock()
	ch := p.relayCh
	if ch != nil {
		ch <- tx
	}
	p.mu.Unlock()

	if ch == nil {
		p.relay(ctx, tx)
	}

	p.logger.Infof("accepted tx %s into the pool", hash.String())

	return hash, nil
}

func (p *Pipeline) relay(ctx context.Context, tx *bt.Tx) {
	for _, r := range p.relayers {
		if err := r.Relay(ctx, tx); err != nil {
			p.logger.Warnf("relay of %s failed: %v", tx.TxID(), err)

			continue
		}

		prometheusBroadcastRelayed.Inc()
	}
}
