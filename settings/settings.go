package settings

import (
	"time"

	"github.com/bsv-blockchain/go-chaincfg"
)

const coin = 100_000_000

func NewSettings() *Settings {
	params, err := chaincfg.GetChainParams(getString("network", "mainnet"))
	if err != nil {
		panic(err)
	}

	return &Settings{
		ClientName:     getString("clientName", "txforge"),
		DataFolder:     getString("dataFolder", "data"),
		LogLevel:       getString("logLevel", "INFO"),
		ChainCfgParams: params,
		Policy: &PolicySettings{
			AcceptNonStdOutputs: getBool("acceptnonstdoutputs", true),
			MaxOpReturnRelay:    getInt("maxopreturnrelay", 223),
			MaxTxSizePolicy:     getInt("maxtxsizepolicy", 10485760), // 10MB
			RequireStrictDER:    getBool("requirestrictder", true),
			MinRelayTxFee:       uint64(getInt("minrelaytxfee", 1000)),
		},
		Coins: &CoinsSettings{
			StoreURL:     getURL("coins_store", "sqlitememory:///coins"),
			CacheBackend: getBool("coins_cacheBackend", true),
		},
		Broadcast: &BroadcastSettings{
			KafkaEnabled:      getBool("broadcast_kafkaEnabled", false),
			KafkaHosts:        getMultiString("broadcast_kafkaHosts", "localhost:9092"),
			KafkaTopic:        getString("broadcast_kafkaTopic", "rawtx"),
			RelayWorkers:      getInt("broadcast_relayWorkers", 4),
			SeenCacheTTL:      getDuration("broadcast_seenCacheTTL", 10*time.Minute),
			SeenCacheCapacity: getInt("broadcast_seenCacheCapacity", 100_000),
			BypassFeeChecks:   getBool("broadcast_bypassFeeChecks", false),
		},
		Token: &TokenSettings{
			FundingSatoshis: uint64(getInt("token_fundingCoins", 1001)) * coin,
			CommitSatoshis:  uint64(getInt("token_commitCoins", 1000)) * coin,
			FeeSatoshis:     uint64(getInt("token_feeSatoshis", coin)),
			DigestWidth:     getInt("token_digestWidth", 64),
		},
	}
}
