package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupEnv() {
	for _, key := range []string{
		"SERVER_ADDR", "LOG_LEVEL", "SOLANA_RPC_URL", "TIP_ADDRESS",
		"MINIMUM_TIP", "RETRY_INTERVAL", "MAX_RETRIES", "STALE_AFTER",
		"SHARD_COUNT", "DATABASE_URL", "NATS_URL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	cleanupEnv()
	os.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	defer cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint64(DefaultMinimumTip), cfg.MinimumTip)
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, MaxBatchSizeHardCap, cfg.MaxBatchSize)
	assert.Equal(t, 60*time.Second, cfg.StaleAfter)
	assert.Equal(t, DefaultShardCount, cfg.ShardCount)
	assert.Empty(t, cfg.TipAddress)
}

func TestLoad_MissingSolanaRPCURL(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SOLANA_RPC_URL is required")
}

func TestLoad_InvalidDuration(t *testing.T) {
	cleanupEnv()
	os.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	os.Setenv("RETRY_INTERVAL", "not-a-duration")
	defer cleanupEnv()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRY_INTERVAL")
}

func TestLoad_MaxBatchSizeIsHardCapped(t *testing.T) {
	cleanupEnv()
	os.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	defer cleanupEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxBatchSize)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		SolanaRPCURL:  "https://example.com",
		RetryInterval: time.Second,
		StaleAfter:    time.Minute,
		MaxRetries:    3,
	}
	assert.NoError(t, cfg.Validate())

	cfg.SolanaRPCURL = ""
	assert.Error(t, cfg.Validate())
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	assert.Panics(t, func() {
		MustLoad()
	})
}
