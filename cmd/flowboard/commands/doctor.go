package commands

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [feature-id]",
	Short: "Check Boards for consistency issues",
	Long: `Check live Boards for advisory findings: artifacts a flow state usually
implies but that are absent, and artifact payloads that fail their
declared schema. Findings are advisory: a skip-heavy profile can
legitimately jump ahead of its artifacts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		var ids []string
		if len(args) == 1 {
			ids = args
		} else {
			all, err := eng.Store().List(ctx)
			if err != nil {
				return err
			}
			ids = all
			sort.Strings(ids)
		}

		total := 0
		for _, id := range ids {
			b, err := eng.Store().Load(ctx, id)
			if board.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}

			for _, issue := range engine.CheckConsistency(b) {
				printer.Warning("%s\n", issue)
				total++
			}
		}

		if total == 0 {
			printer.Success("No consistency issues found\n")
		}
		return nil
	})
}
