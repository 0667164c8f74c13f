// Package cmd provides the root command and CLI setup for oracles.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/oracles/internal/adapter"
	"gooze.dev/pkg/oracles/internal/controller"
	"gooze.dev/pkg/oracles/internal/domain"
	"gooze.dev/pkg/oracles/internal/purity"
)

// workflow is built on first use from the loaded configuration. Tests
// replace it with a mock.
var workflow domain.Workflow

// metricsRegistry is set when metrics.enabled is on.
var metricsRegistry *prometheus.Registry

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

var verboseFlag bool

const rootLongDescription = `Oracles generates assertions for test cases by mutation analysis.

Each registered test is executed on the original program and on every
mutant it reaches. Observed values that differ between the runs become
candidate assertions, and a minimal subset that still kills every killable
mutant is kept.

Suites are registered by the embedding program with oracle.Register
before cmd.Execute is called.`

const runLongDescription = `Generate assertions for the registered suites (default: all suites).

Reports are written as YAML to the output directory, one file per suite.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracles",
		Short: "Mutation-driven assertion generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for assertion reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// currentWorkflow returns the configured workflow, building it from the
// loaded configuration on first use.
func currentWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	genCfg, err := generationConfig()
	if err != nil {
		return nil, err
	}

	obsCfg, err := observerConfig()
	if err != nil {
		return nil, err
	}

	if packages := viper.GetStringSlice(purityPackagesKey); len(packages) > 0 {
		checker, err := loadPurityChecker(packages)
		if err != nil {
			return nil, err
		}

		obsCfg.Purity = checker
	}

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))
	if viper.GetBool(metricsEnabledKey) {
		metricsRegistry = prometheus.NewRegistry()
		ui = controller.NewMetricsUI(ui, metricsRegistry)
	}

	engine := domain.NewEngine(domain.EngineConfig{
		Generation:       genCfg,
		Observers:        obsCfg,
		ExecutionTimeout: viper.GetDuration(executionTimeoutKey),
	})

	workflow = domain.NewWorkflow(adapter.NewReportStore(), ui, engine, genCfg)

	return workflow, nil
}

func loadPurityChecker(patterns []string) (*purity.Checker, error) {
	index, err := adapter.LoadPurityFacts(".", patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load purity facts for %s: %w", strings.Join(patterns, ", "), err)
	}

	slog.Info("Loaded purity facts", "packages", patterns, "methods", index.Len())

	return purity.NewChecker(index), nil
}

// writeMetrics flushes the session metrics to the configured text file.
func writeMetrics() {
	if metricsRegistry == nil {
		return
	}

	path := viper.GetString(metricsTextfileKey)
	if err := prometheus.WriteToTextfile(path, metricsRegistry); err != nil {
		slog.Error("Failed to write metrics", "file", path, "error", err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
