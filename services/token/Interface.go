package token

import "context"

// Record is the outcome of one issuance. Nothing here is persisted by the
// engine; the caller owns the record, the private identity included.
type Record struct {
	TokenID         string `json:"token_id"`
	PublicIdentity  string `json:"public_identity"`
	PrivateIdentity string `json:"private_identity"`
	FundingTxID     string `json:"funding_txid"`
	CommitTxID      string `json:"commitment_txid"`
}

// Issuer runs the three-stage issuance workflow: fund a reservation
// output, derive a content-bound identity, commit the token id on chain.
type Issuer interface {
	Issue(ctx context.Context, content []byte, destination string) (*Record, error)
}
