package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate and inspect gates",
}

var gateEvalCmd = &cobra.Command{
	Use:   "eval <feature-id> <gate-name>",
	Short: "Evaluate a gate against the Board's active profile",
	Long: `Evaluate a gate and persist the outcome with its audit entry.

Evaluation is pure and idempotent over an unchanged Board; re-running a
failed gate after the producer updates its artifact is the retry path.
A blocked gate stays blocked for the rest of the cycle.`,
	Args: cobra.ExactArgs(2),
	RunE: runGateEval,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles [maturity]",
	Short: "Show the resolved gate profile table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfiles,
}

func init() {
	gateCmd.AddCommand(gateEvalCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runGateEval(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		result, b, err := eng.EvaluateGate(ctx, args[0], args[1])
		if err != nil {
			return printer.Error("Gate evaluation failed", err.Error(), nil)
		}

		switch result.Status {
		case board.GatePassed, board.GateSkipped:
			printer.Success("%s: %s\n", args[1], result.Status)
		case board.GateBlocked:
			printer.Warning("%s: %s\n", args[1], result.Status)
		default:
			printer.Warning("%s: %s\n", args[1], result.Status)
		}
		printer.Field("details", result.Details)
		printer.Field("flow_state", b.FlowState)
		return nil
	})
}

func runProfiles(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		maturities := eng.Resolver().Maturities()
		if len(args) == 1 {
			maturities = []board.Maturity{board.Maturity(args[0])}
		}

		sort.Slice(maturities, func(i, j int) bool { return maturities[i] < maturities[j] })

		for _, m := range maturities {
			profile, err := eng.Resolver().Resolve(m)
			if err != nil {
				return printer.Error("Unknown maturity", err.Error(), nil)
			}

			printer.Info("%s:\n", m)
			for _, name := range gate.Names() {
				rule, _ := profile.Rule(name)
				line := string(rule.Required)
				if rule.CoverageMin > 0 {
					line += fmt.Sprintf(", coverage_min %.2f", rule.CoverageMin)
				}
				if rule.RegressionRequired {
					line += ", regression required"
				}
				if len(rule.Checks) > 0 {
					line += fmt.Sprintf(", checks %v", rule.Checks)
				}
				printer.Field(name, line)
			}
			printer.Println()
		}
		return nil
	})
}
