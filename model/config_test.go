package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("Defaults enable the standard pipeline", func(t *testing.T) {
		config := DefaultConfig()

		assert.True(t, config.HyDEEnabled, "Expected HyDE on by default")
		assert.True(t, config.CommunityDetectionEnabled, "Expected community detection on by default")
		assert.True(t, config.PageRankEnabled, "Expected pagerank weighting on by default")
		assert.False(t, config.RerankingEnabled, "Expected reranking off by default")
		assert.True(t, config.SynthesisEnabled, "Expected synthesis on by default")
		assert.True(t, config.HybridEnabled, "Expected hybrid fusion on by default")
		assert.Equal(t, 0.7, config.FusionTextWeight, "Expected the default text weight")
		assert.Equal(t, 0.3, config.FusionGraphWeight, "Expected the default graph weight")
		assert.Equal(t, StrategyAutomatic, config.SearchStrategy, "Expected the automatic strategy")
		assert.Equal(t, 5000, config.MaxQueryTimeMS, "Expected the default query budget")
		assert.Equal(t, 100, config.MaxMemoryMB, "Expected the default memory budget")
		assert.Equal(t, 10, config.BatchSize, "Expected the default batch size")
	})
}

func TestConfigReset(t *testing.T) {
	t.Run("Reset restores defaults", func(t *testing.T) {
		config := DefaultConfig()
		config.RerankingEnabled = true
		config.FusionTextWeight = 0.1
		config.BatchSize = 99

		config.Reset()

		assert.Equal(t, DefaultConfig(), config, "Expected reset to restore the defaults")
	})
}

func TestConfigExportImport(t *testing.T) {
	t.Run("Round-trips through JSON", func(t *testing.T) {
		config := DefaultConfig()
		config.RerankingEnabled = true
		config.FusionTextWeight = 0.6

		exported, err := config.Export()
		require.NoError(t, err, "Expected export to succeed")

		imported, err := ImportConfig(exported)
		require.NoError(t, err, "Expected import to succeed")
		assert.Equal(t, config, imported, "Expected the round-trip to preserve the config")
	})

	t.Run("Missing fields keep defaults", func(t *testing.T) {
		imported, err := ImportConfig(`{"reranking_enabled": true}`)

		require.NoError(t, err, "Expected import to succeed")
		assert.True(t, imported.RerankingEnabled, "Expected the set field to apply")
		assert.True(t, imported.HyDEEnabled, "Expected unset fields to keep their defaults")
		assert.Equal(t, 10, imported.BatchSize, "Expected unset budgets to keep their defaults")
	})

	t.Run("Invalid JSON fails", func(t *testing.T) {
		_, err := ImportConfig(`{not json`)

		assert.Error(t, err, "Expected malformed JSON to be rejected")
	})
}
