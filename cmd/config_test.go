package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/oracles/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "oracles", configBaseName)
	assert.Equal(t, "oracles.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, ".oracles-reports", defaultReportsDir)
	assert.Equal(t, "ORACLES", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, 1000, viper.GetInt(maxStringLengthKey))
	assert.Equal(t, 10, viper.GetInt(maxArrayLengthKey))
	assert.InDelta(t, 0.01, viper.GetFloat64(floatDeltaKey), 1e-9)
	assert.InDelta(t, 0.01, viper.GetFloat64(doubleDeltaKey), 1e-9)
	assert.False(t, viper.GetBool(pureEqualsKey))
	assert.True(t, viper.GetBool(pureInspectorsKey))
	assert.Equal(t, "prefer-structural", viper.GetString(tieBreakKey))
	assert.Equal(t, 3, viper.GetInt(mutationTimeoutsKey))
	assert.Equal(t, 100, viper.GetInt(maxMutantsPerTestKey))
	assert.Equal(t, 3*time.Second, viper.GetDuration(executionTimeoutKey))
	assert.Equal(t, 10*time.Minute, viper.GetDuration(timeBudgetKey))
	assert.InDelta(t, 0.5, viper.GetFloat64(fallbackKey), 1e-9)
	assert.InDelta(t, 0.7, viper.GetFloat64(fallbackTimeKey), 1e-9)
	assert.False(t, viper.GetBool(metricsEnabledKey))
}

func TestGenerationConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := generationConfig()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultConfig().MaxMutantsPerTest, cfg.MaxMutantsPerTest)
		assert.Equal(t, domain.TieBreakPreferStructural, cfg.TieBreak)
		assert.True(t, cfg.FilterNondeterminism)
	})

	t.Run("rejects unknown tie break", func(t *testing.T) {
		viper.Set(tieBreakKey, "coin-flip")
		t.Cleanup(func() { viper.Set(tieBreakKey, string(domain.TieBreakPreferStructural)) })

		_, err := generationConfig()
		assert.Error(t, err)
	})
}

func TestObserverConfig(t *testing.T) {
	cfg, err := observerConfig()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.MaxStringLength)
	assert.Equal(t, 10, cfg.MaxArrayLength)
	assert.NotNil(t, cfg.Catalogue)
	assert.Nil(t, cfg.Purity)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger_FansOutToFileAndConsole(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	viper.Set(logConsoleKey, true)
	viper.Set(logLevelKey, "warn")
	t.Cleanup(func() {
		viper.Set(logConsoleKey, defaultLogConsole)
		viper.Set(logLevelKey, "")
	})

	logPath := filepath.Join(t.TempDir(), "oracles.log")
	configureLogger(logPath, false)

	assert.True(t, globalLogger.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, globalLogger.Enabled(context.Background(), slog.LevelInfo))

	logger := slog.Default().With("suite", "stack")
	logger.Info("quiet")
	logger.Warn("loud")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loud")
	assert.Contains(t, string(data), "suite=stack")
	assert.NotContains(t, string(data), "quiet")
}
