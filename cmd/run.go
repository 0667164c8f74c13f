package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/oracles/internal/domain"
	m "gooze.dev/pkg/oracles/internal/model"
	"gooze.dev/pkg/oracles/pkg/oracle"
)

var (
	timeBudgetFlag string
	seedFlag       uint64
	metricsFlag    bool
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [suites...]",
		Short: "Generate assertions for registered suites",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			suites, err := oracle.Lookup(args...)
			if err != nil {
				return err
			}

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}
			defer writeMetrics()

			return wf.Generate(cmd.Context(), domain.GenerateArgs{
				Suites:     suites,
				Reports:    m.Path(viper.GetString(outputFlagName)),
				TimeBudget: viper.GetDuration(timeBudgetKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&timeBudgetFlag, timeBudgetFlagName, "t", viper.GetString(timeBudgetKey), "time budget for the whole session (e.g. 10m)")
	bindFlagToConfig(cmd.Flags().Lookup(timeBudgetFlagName), timeBudgetKey)

	cmd.Flags().Uint64Var(&seedFlag, seedFlagName, viper.GetUint64(seedKey), "seed for mutant shuffling (0 = time based)")
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), seedKey)

	cmd.Flags().BoolVar(&metricsFlag, metricsFlagName, viper.GetBool(metricsEnabledKey), "write Prometheus metrics to metrics.textfile")
	bindFlagToConfig(cmd.Flags().Lookup(metricsFlagName), metricsEnabledKey)
}
