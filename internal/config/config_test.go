package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollectionIDs(t *testing.T) {
	ids := ParseCollectionIDs(" 0xabc, 0xdef ,bogus,, 0x123")
	assert.Equal(t, []string{"0xabc", "0xdef", "0x123"}, ids)

	assert.Nil(t, ParseCollectionIDs(""))
	assert.Nil(t, ParseCollectionIDs("plain,words"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://api.reservoir.tools", cfg.Market.BaseURL)
	assert.Equal(t, 5.0, cfg.Scan.MinDiscount)
	assert.Equal(t, 10, cfg.Scan.MaxResults)
	assert.Equal(t, 70, cfg.Scan.MaxRiskScore)
	assert.True(t, cfg.Scan.IncludeRarity)
	assert.Equal(t, 3, cfg.Sweep.MaxItemsPerSweep)
	assert.Equal(t, 1.1, cfg.Sweep.GasMultiplier)
	assert.Equal(t, 50.0, cfg.Sweep.MaxGasPriceGwei)
	assert.True(t, cfg.DryRun)
}

func TestLoadParsesCheckInterval(t *testing.T) {
	write := func(body string) string {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	cfg, err := Load(write("sweep:\n  check_interval: 90s\n"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Sweep.CheckInterval.Std())

	// Raw nanoseconds still decode.
	cfg, err = Load(write("sweep:\n  check_interval: 60000000000\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Sweep.CheckInterval.Std())

	// Unset falls back to the default.
	cfg, err = Load(write("sweep:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Sweep.CheckInterval.Std())

	_, err = Load(write("sweep:\n  check_interval: soon\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	require.Error(t, cfg.Validate(), "collections are required")

	cfg.Scan.Collections = []string{"0xabc"}
	require.NoError(t, cfg.Validate())

	cfg.Sweep.Enabled = true
	require.Error(t, cfg.Validate(), "sweep caps required when enabled")

	cfg.Sweep.MaxPricePerItem = 1
	cfg.Sweep.MaxTotalSpend = 5
	require.NoError(t, cfg.Validate())

	cfg.DryRun = false
	require.Error(t, cfg.Validate(), "live mode needs a wallet")
	cfg.Wallet.Address = "0xtaker"
	require.NoError(t, cfg.Validate())
}
