package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var (
	showJSON    bool
	showRole    string
	showHistory int
)

var showCmd = &cobra.Command{
	Use:   "show <feature-id>",
	Short: "Show a Board",
	Long: `Show a Board's control fields, gate statuses, artifact slots, and the tail
of its audit trail.

With --role, only the fields readable by that producer role are shown,
mirroring the context each producer is primed with.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the full board as JSON")
	showCmd.Flags().StringVar(&showRole, "role", "", "Filter fields to a producer role's view")
	showCmd.Flags().IntVar(&showHistory, "history", 5, "Number of trailing history entries to show")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.Store().Load(ctx, args[0])
		if board.IsNotFound(err) {
			return printer.Error("Board not found",
				fmt.Sprintf("No live board %q in instance %q.", args[0], eng.Store().InstanceName()),
				[]string{"Check 'flowboard list'", "Check 'flowboard archive list'"})
		}
		if err != nil {
			return err
		}

		if showJSON {
			data, err := json.MarshalIndent(b, "", "  ")
			if err != nil {
				return err
			}
			printer.Println(string(data))
			return nil
		}

		if showRole != "" {
			return showRoleView(b, board.Role(showRole))
		}

		printer.Info("Board %s\n", b.FeatureID)
		printer.Field("maturity", b.Maturity)
		printer.Field("gate_profile", b.GateProfile)
		printer.Field("flow_state", b.FlowState)
		printer.Field("cycle", b.Cycle)

		printer.Info("\nGates:\n")
		for _, name := range gate.Names() {
			g := b.Gates[name]
			line := fmt.Sprintf("%-12s", g.Status)
			if g.Details != "" {
				line += "  " + g.Details
			}
			printer.Field(name, line)
		}

		printer.Info("\nArtifacts:\n")
		keys := make([]string, 0, len(b.Artifacts))
		for k := range b.Artifacts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			printer.Info("  (none)\n")
		}
		for _, k := range keys {
			printer.Field(k, fmt.Sprintf("%d bytes, owner %s", len(b.Artifacts[k]), board.ProducerFor(k)))
		}

		if showHistory > 0 && len(b.History) > 0 {
			printer.Info("\nHistory (last %d of %d):\n", min(showHistory, len(b.History)), len(b.History))
			start := len(b.History) - showHistory
			if start < 0 {
				start = 0
			}
			for _, entry := range b.History[start:] {
				printer.Info("  %s  %-20s %s\n",
					entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Action, entry.Details)
			}
		}

		return nil
	})
}

func showRoleView(b *board.Board, role board.Role) error {
	if !role.Known() {
		return printer.Error("Unknown role",
			fmt.Sprintf("Role %q is not in the registry.", role), nil)
	}

	printer.Info("Board %s (as %s)\n", b.FeatureID, role)
	for _, field := range role.ReadableFields() {
		switch field {
		case "feature_id":
			printer.Field(field, b.FeatureID)
		case "maturity":
			printer.Field(field, b.Maturity)
		case "gate_profile":
			printer.Field(field, b.GateProfile)
		case "flow_state":
			printer.Field(field, b.FlowState)
		case "cycle":
			printer.Field(field, b.Cycle)
		case "gates", "artifacts", "history", "maturity_history":
			// Aggregate views are orchestrator-only detail; summarized.
			printer.Field(field, fmt.Sprintf("(%s available)", field))
		default:
			// artifacts.<key> paths
			if len(field) > len("artifacts.") && field[:len("artifacts.")] == "artifacts." {
				key := field[len("artifacts."):]
				if raw, ok := b.Artifacts[key]; ok {
					printer.Field(field, string(raw))
				} else {
					printer.Field(field, "(unset)")
				}
			}
		}
	}
	return nil
}
