package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/oracles/internal/domain"
	m "gooze.dev/pkg/oracles/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [suites...]",
		Short: "View previously generated assertion reports",
		Long:  "View previously generated assertion reports from a reports directory, optionally restricted to the named suites.",
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.View(cmd.Context(), domain.ViewArgs{
				Reports: m.Path(viper.GetString(outputFlagName)),
				Suites:  args,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
