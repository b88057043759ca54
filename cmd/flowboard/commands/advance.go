package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/flow"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var advanceCmd = &cobra.Command{
	Use:   "advance <feature-id> <target-state>",
	Short: "Transition the Board to a new flow state",
	Long: `Transition the Board along one edge of the flow state graph.

The edge must exist and its guarding gate must be passed or skipped.
Profile-disabled gates bypassed by the edge are recorded as skipped in
the audit trail. Advancing to "completed" archives the Board.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdvance,
}

var routeCmd = &cobra.Command{
	Use:   "route <feature-id>",
	Short: "Show the nearest open route to approved",
	Long: `Show the shortest path from the Board's current flow state to "approved"
that avoids foreclosed edges. Useful when a blocked gate strands the
Feature: the cycle must end at approved via an alternate route.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(routeCmd)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.Advance(ctx, args[0], board.FlowState(args[1]))

		var illegal *flow.IllegalTransitionError
		if errors.As(err, &illegal) {
			suggestions := []string{
				"Check gate statuses with 'flowboard show'",
			}
			if illegal.Gate != "" {
				suggestions = append(suggestions, "Evaluate the gate with 'flowboard gate eval'")
			}
			return printer.Error("Illegal transition", illegal.Error(), suggestions)
		}
		if errors.Is(err, board.ErrConflict) {
			return printer.Error("Write conflict",
				"Another session updated the board; re-run the command.", nil)
		}
		if err != nil {
			return printer.Error("Failed to advance", err.Error(), nil)
		}

		printer.Success("Board %q advanced to %s\n", b.FeatureID, b.FlowState)
		if b.FlowState == board.StateCompleted {
			printer.Info("Board archived; contents are frozen.\n")
		}
		return nil
	})
}

func runRoute(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		path, err := eng.RouteToApproved(ctx, args[0])
		if err != nil {
			return printer.Error("No open route", err.Error(),
				[]string{"End the cycle and change maturity in a later cycle"})
		}

		if path == nil {
			printer.Info("Board is already at or past approved.\n")
			return nil
		}

		parts := make([]string, len(path))
		for i, s := range path {
			parts[i] = string(s)
		}
		printer.Info("Route to approved: %s\n", strings.Join(parts, " -> "))
		return nil
	})
}
