package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"gooze.dev/pkg/oracles/internal/domain"
	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/internal/observe"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "oracles"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName     = "output"
	timeBudgetFlagName = "time-budget"
	seedFlagName       = "seed"
	metricsFlagName    = "metrics"

	maxStringLengthKey     = "assertion.max_string_length"
	maxArrayLengthKey      = "assertion.max_array_length"
	floatDeltaKey          = "assertion.float_delta"
	doubleDeltaKey         = "assertion.double_delta"
	pureEqualsKey          = "assertion.pure_equals"
	pureInspectorsKey      = "assertion.pure_inspectors"
	tieBreakKey            = "assertion.tie_break"
	filterNondetermKey     = "assertion.filter_nondeterminism"
	mutationTimeoutsKey    = "mutation.timeouts"
	maxMutantsPerTestKey   = "mutation.max_per_test"
	executionTimeoutKey    = "execution.timeout"
	timeBudgetKey          = "generation.time_budget"
	fallbackKey            = "generation.minimization_fallback"
	fallbackTimeKey        = "generation.minimization_fallback_time"
	seedKey                = "generation.seed"
	inspectorDenyKey       = "inspector.deny"
	inspectorCacheSizeKey  = "inspector.cache_size"
	purityPackagesKey      = "purity.packages"
	metricsEnabledKey      = "metrics.enabled"
	metricsTextfileKey     = "metrics.textfile"
	defaultReportsDir      = ".oracles-reports"
	defaultExecTimeout     = 3 * time.Second
	defaultTimeBudget      = 10 * time.Minute
	defaultMetricsTextfile = ".oracles-metrics.prom"

	envPrefix = "ORACLES"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"
	logConsoleKey    = "log.console"

	defaultLogFilename   = ".oracles.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
	defaultLogConsole    = false
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}

		slog.Warn("Failed to read config file", "file", configFileName, "error", err)
	}
}

func setDefaults() {
	gen := domain.DefaultConfig()
	obs := observe.DefaultConfig()

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)

	viper.SetDefault(maxStringLengthKey, obs.MaxStringLength)
	viper.SetDefault(maxArrayLengthKey, obs.MaxArrayLength)
	viper.SetDefault(floatDeltaKey, obs.Tolerance.Float32)
	viper.SetDefault(doubleDeltaKey, obs.Tolerance.Float64)
	viper.SetDefault(pureEqualsKey, obs.PureEquals)
	viper.SetDefault(pureInspectorsKey, obs.PureInspectors)
	viper.SetDefault(tieBreakKey, string(gen.TieBreak))
	viper.SetDefault(filterNondetermKey, gen.FilterNondeterminism)
	viper.SetDefault(mutationTimeoutsKey, gen.MutationTimeouts)
	viper.SetDefault(maxMutantsPerTestKey, gen.MaxMutantsPerTest)
	viper.SetDefault(executionTimeoutKey, defaultExecTimeout)
	viper.SetDefault(timeBudgetKey, defaultTimeBudget)
	viper.SetDefault(fallbackKey, gen.MinimizationFallback)
	viper.SetDefault(fallbackTimeKey, gen.MinimizationFallbackTime)
	viper.SetDefault(seedKey, gen.Seed)
	viper.SetDefault(inspectorDenyKey, []string{})
	viper.SetDefault(inspectorCacheSizeKey, inspect.DefaultCacheSize)
	viper.SetDefault(purityPackagesKey, []string{})
	viper.SetDefault(metricsEnabledKey, false)
	viper.SetDefault(metricsTextfileKey, defaultMetricsTextfile)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
	viper.SetDefault(logConsoleKey, defaultLogConsole)
}

// generationConfig reads the generator settings.
func generationConfig() (domain.Config, error) {
	tieBreak, err := domain.ParseTieBreak(viper.GetString(tieBreakKey))
	if err != nil {
		return domain.Config{}, err
	}

	return domain.Config{
		MaxMutantsPerTest:        viper.GetInt(maxMutantsPerTestKey),
		MutationTimeouts:         viper.GetInt(mutationTimeoutsKey),
		TieBreak:                 tieBreak,
		FilterNondeterminism:     viper.GetBool(filterNondetermKey),
		MinimizationFallback:     viper.GetFloat64(fallbackKey),
		MinimizationFallbackTime: viper.GetFloat64(fallbackTimeKey),
		Seed:                     viper.GetUint64(seedKey),
	}, nil
}

// observerConfig reads the observer settings. The purity gate is attached
// by the caller.
func observerConfig() (observe.Config, error) {
	catalogue, err := inspect.NewCatalogue(viper.GetInt(inspectorCacheSizeKey), viper.GetStringSlice(inspectorDenyKey)...)
	if err != nil {
		return observe.Config{}, err
	}

	return observe.Config{
		MaxStringLength: viper.GetInt(maxStringLengthKey),
		MaxArrayLength:  viper.GetInt(maxArrayLengthKey),
		Tolerance: m.Tolerance{
			Float32: viper.GetFloat64(floatDeltaKey),
			Float64: viper.GetFloat64(doubleDeltaKey),
		},
		Catalogue:      catalogue,
		PureInspectors: viper.GetBool(pureInspectorsKey),
		PureEquals:     viper.GetBool(pureEqualsKey),
	}, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug. With
// log.console set, records are mirrored to stderr.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	var handler slog.Handler = slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	if viper.GetBool(logConsoleKey) {
		console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmlog.Level(logLevel),
			ReportTimestamp: true,
			Prefix:          configBaseName,
		})
		handler = slogmulti.Fanout(handler, console)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
