package settings

import (
	"net/url"
	"time"

	"github.com/bsv-blockchain/go-chaincfg"
)

type PolicySettings struct {
	AcceptNonStdOutputs bool
	MaxOpReturnRelay    int
	MaxTxSizePolicy     int
	RequireStrictDER    bool
	MinRelayTxFee       uint64
}

type CoinsSettings struct {
	StoreURL     *url.URL
	CacheBackend bool
}

type BroadcastSettings struct {
	KafkaEnabled      bool
	KafkaHosts        []string
	KafkaTopic        string
	RelayWorkers      int
	SeenCacheTTL      time.Duration
	SeenCacheCapacity int
	BypassFeeChecks   bool
}

type TokenSettings struct {
	FundingSatoshis uint64
	CommitSatoshis  uint64
	FeeSatoshis     uint64
	DigestWidth     int
}

type Settings struct {
	ClientName     string
	DataFolder     string
	LogLevel       string
	ChainCfgParams *chaincfg.Params
	Policy         *PolicySettings
	Coins          *CoinsSettings
	Broadcast      *BroadcastSettings
	Token          *TokenSettings
}
