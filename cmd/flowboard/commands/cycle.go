package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
)

var cycleReason string

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Manage Feature cycles",
}

var cycleStartCmd = &cobra.Command{
	Use:   "start <feature-id>",
	Short: "Restart the Feature from initialized",
	Long: `Increment the cycle counter and reset the Board to "initialized" with
every gate back to not_reached. Artifacts and history survive: a new
cycle is a fresh pass through the graph, not a fresh Feature.`,
	Args: cobra.ExactArgs(1),
	RunE: runCycleStart,
}

func init() {
	cycleStartCmd.Flags().StringVar(&cycleReason, "reason", "", "Why the Feature is restarting (required)")
	cycleCmd.AddCommand(cycleStartCmd)
	rootCmd.AddCommand(cycleCmd)
}

func runCycleStart(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.StartCycle(ctx, args[0], cycleReason)
		if err != nil {
			return printer.Error("Failed to start cycle", err.Error(), nil)
		}

		printer.Success("Board %q restarted at cycle %d\n", b.FeatureID, b.Cycle)
		return nil
	})
}
