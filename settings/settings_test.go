package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsDefaults(t *testing.T) {
	tSettings := NewSettings()

	require.NotNil(t, tSettings.ChainCfgParams)
	assert.Equal(t, "mainnet", tSettings.ChainCfgParams.Name)

	assert.Equal(t, "sqlitememory", tSettings.Coins.StoreURL.Scheme)

	assert.True(t, tSettings.Policy.RequireStrictDER)
	assert.Equal(t, 223, tSettings.Policy.MaxOpReturnRelay)

	// issuance amounts are whole-coin denominated
	assert.Equal(t, uint64(1001)*coin, tSettings.Token.FundingSatoshis)
	assert.Equal(t, uint64(1000)*coin, tSettings.Token.CommitSatoshis)
	assert.Equal(t, 64, tSettings.Token.DigestWidth)

	assert.Positive(t, tSettings.Broadcast.SeenCacheTTL)
	assert.Positive(t, tSettings.Broadcast.RelayWorkers)
	assert.Equal(t, []string{"localhost:9092"}, tSettings.Broadcast.KafkaHosts)
}

func TestGetMultiStringDefault(t *testing.T) {
	// an unset key returns the default, not an empty slice
	assert.Equal(t, []string{"a:9092", "b:9092"}, getMultiString("settings_test_unsetKey", "a:9092", "b:9092"))
	assert.Empty(t, getMultiString("settings_test_unsetKey"))
}
