package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var promoteReason string

var promoteCmd = &cobra.Command{
	Use:   "promote <feature-id> <maturity>",
	Short: "Change the Feature's maturity",
	Long: `Change the Feature's maturity and record the change with its reason in
maturity_history.

Gating is not reinterpreted mid-cycle: the gate profile follows the new
maturity only after 'flowboard resolve'.`,
	Args: cobra.ExactArgs(2),
	RunE: runPromote,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <feature-id>",
	Short: "Re-resolve the gate profile against the current maturity",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	promoteCmd.Flags().StringVar(&promoteReason, "reason", "", "Why the maturity is changing (required)")
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.Promote(ctx, args[0], board.Maturity(args[1]), promoteReason)
		if err != nil {
			return printer.Error("Failed to change maturity", err.Error(), nil)
		}

		printer.Success("Board %q maturity is now %s\n", b.FeatureID, b.Maturity)
		if b.GateProfile != b.Maturity {
			printer.Info("Gate profile still %q; run 'flowboard resolve %s' to apply the new gating.\n",
				b.GateProfile, b.FeatureID)
		}
		return nil
	})
}

func runResolve(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.ReresolveProfile(ctx, args[0])
		if err != nil {
			return printer.Error("Failed to re-resolve profile", err.Error(), nil)
		}

		printer.Success("Board %q gates resolve against %q\n", b.FeatureID, b.GateProfile)
		return nil
	})
}
