package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var destroyYes bool

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived Boards",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived Boards",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <feature-id>",
	Short: "Show a frozen archived Board as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <feature-id>",
	Short: "Delete a sandbox Board entirely",
	Long: `Delete a Board and its audit trail. Only sandbox Features can be
destroyed; every other maturity archives through normal completion.`,
	Args: cobra.ExactArgs(1),
	RunE: runDestroy,
}

func init() {
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	destroyCmd.Flags().BoolVar(&destroyYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(destroyCmd)
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		ids, err := eng.Store().ListArchived(ctx)
		if err != nil {
			return err
		}
		sort.Strings(ids)

		if len(ids) == 0 {
			printer.Info("No archived boards in instance %q.\n", eng.Store().InstanceName())
			return nil
		}
		for _, id := range ids {
			printer.Println(id)
		}
		return nil
	})
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.Store().LoadArchived(ctx, args[0])
		if board.IsNotFound(err) {
			return printer.Error("Archived board not found",
				fmt.Sprintf("No archived board %q in instance %q.", args[0], eng.Store().InstanceName()), nil)
		}
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		printer.Println(string(data))
		return nil
	})
}

func runDestroy(cmd *cobra.Command, args []string) error {
	if !destroyYes {
		return printer.Error("Confirmation required",
			"Destroying a board deletes its audit trail permanently.",
			[]string{"Re-run with --yes to confirm"})
	}

	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		if err := eng.Destroy(ctx, args[0]); err != nil {
			return printer.Error("Failed to destroy board", err.Error(), nil)
		}

		printer.Success("Board %q destroyed\n", args[0])
		return nil
	})
}
