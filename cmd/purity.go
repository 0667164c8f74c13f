package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"gooze.dev/pkg/oracles/internal/adapter"
	"gooze.dev/pkg/oracles/internal/purity"
)

var purityImpureFlag bool

// purityCmd represents the purity command.
var purityCmd = newPurityCmd()

func newPurityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purity [packages...]",
		Short: "List the methods considered free of side effects",
		Long: `Analyse the given packages (default: ./...) and list, per type, the methods
that may be called to produce inspector and equality assertions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"./..."}
			}

			index, err := adapter.LoadPurityFacts(".", args...)
			if err != nil {
				return err
			}

			printPurity(cmd, index, purity.NewChecker(index), purityImpureFlag)

			return nil
		},
	}

	cmd.Flags().BoolVar(&purityImpureFlag, "impure", false, "also list methods that are not pure")

	return cmd
}

func init() {
	rootCmd.AddCommand(purityCmd)
}

func printPurity(cmd *cobra.Command, index *purity.Index, checker *purity.Checker, withImpure bool) {
	for _, t := range index.Types() {
		var pure, impure []string

		for _, key := range index.DeclaredMembers(t) {
			if checker.IsPure(key) {
				pure = append(pure, key.Name)
			} else {
				impure = append(impure, key.Name)
			}
		}

		if len(pure) == 0 && !withImpure {
			continue
		}

		cmd.Printf("%s\n", t)
		cmd.Printf("  pure:   %s\n", strings.Join(pure, ", "))

		if withImpure {
			cmd.Printf("  impure: %s\n", strings.Join(impure, ", "))
		}
	}
}
