package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var (
	initMaturity string
	initBranch   string
)

var initCmd = &cobra.Command{
	Use:   "init <feature-id>",
	Short: "Create a Board for a new Feature",
	Long: `Create a Board for a new Feature at cycle 1, flow state "initialized",
with every gate not_reached and the gate profile resolved against the
starting maturity.

The feature ID can be given directly or derived from a branch name with
--from-branch (the segment after the last "/").`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initMaturity, "maturity", "development", "Starting maturity (experimental|development|stable|release-ready|sandbox)")
	initCmd.Flags().StringVar(&initBranch, "from-branch", "", "Derive the feature ID from a branch name")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	var featureID string
	switch {
	case len(args) == 1 && initBranch != "":
		return printer.Error("Conflicting arguments",
			"Give either a feature ID or --from-branch, not both.", nil)
	case len(args) == 1:
		featureID = args[0]
	case initBranch != "":
		featureID = engine.FeatureIDFromBranch(initBranch)
	default:
		return printer.Error("Missing feature ID",
			"Give a feature ID or derive one with --from-branch.", nil)
	}

	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.CreateBoard(ctx, featureID, board.Maturity(initMaturity))
		if err != nil {
			return printer.Error("Failed to create board", err.Error(), nil)
		}

		printer.Success("Board %q created\n", b.FeatureID)
		printer.Field("maturity", b.Maturity)
		printer.Field("flow_state", b.FlowState)
		printer.Field("cycle", b.Cycle)
		printer.Info("\nNext: producers submit artifacts with %q, then evaluate gates and advance.\n",
			fmt.Sprintf("flowboard artifact set %s ...", b.FeatureID))
		return nil
	})
}
