package broadcast

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Admitter decides whether a transaction may enter the pending pool.
// Rejections carry the rule that fired and are surfaced to the submitter
// unchanged.
type Admitter interface {
	Admit(ctx context.Context, tx *bt.Tx, bypassFeeChecks bool) error
}

// Relayer forwards an admitted transaction to the network.
type Relayer interface {
	Relay(ctx context.Context, tx *bt.Tx) error
	Close() error
}

// Broadcaster is the submission pipeline: dedupe, admission, pool entry,
// relay fan-out.
type Broadcaster interface {
	Submit(ctx context.Context, tx *bt.Tx) (*chainhash.Hash, error)
}
