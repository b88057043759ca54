package commands

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var listJSON bool

type boardSummary struct {
	FeatureID string          `json:"feature_id"`
	Maturity  board.Maturity  `json:"maturity"`
	FlowState board.FlowState `json:"flow_state"`
	Cycle     int             `json:"cycle"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live Boards in this instance",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		ids, err := eng.Store().List(ctx)
		if err != nil {
			return err
		}
		sort.Strings(ids)

		summaries := make([]boardSummary, 0, len(ids))
		for _, id := range ids {
			b, err := eng.Store().Load(ctx, id)
			if board.IsNotFound(err) {
				continue // archived or destroyed between SMEMBERS and load
			}
			if err != nil {
				return err
			}
			summaries = append(summaries, boardSummary{
				FeatureID: b.FeatureID,
				Maturity:  b.Maturity,
				FlowState: b.FlowState,
				Cycle:     b.Cycle,
			})
		}

		if listJSON {
			data, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return err
			}
			printer.Println(string(data))
			return nil
		}

		if len(summaries) == 0 {
			printer.Info("No live boards in instance %q.\n", eng.Store().InstanceName())
			printer.Info("Run 'flowboard init <feature-id>' to start one.\n")
			return nil
		}

		printer.Printf("%-28s %-14s %-14s %s\n", "FEATURE", "MATURITY", "FLOW STATE", "CYCLE")
		for _, s := range summaries {
			printer.Printf("%-28s %-14s %-14s %d\n", s.FeatureID, s.Maturity, s.FlowState, s.Cycle)
		}
		return nil
	})
}
