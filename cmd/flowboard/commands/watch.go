package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
)

var watchFeature string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream board events for this instance",
	Long: `Subscribe to the instance's board_events channel and print each event as
it happens. Events are delivery hints, not the source of truth (that is the
committed board), so a slow terminal may miss some.

Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFeature, "feature", "", "Only show events for one feature ID")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sub, err := eng.Store().SubscribeBoardEvents(ctx)
		if err != nil {
			return err
		}
		defer sub.Close()

		printer.Info("Watching board events for instance %q (Ctrl-C to stop)...\n",
			eng.Store().InstanceName())

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-sub.Events():
				if !ok {
					return nil
				}
				if watchFeature != "" && event.FeatureID != watchFeature {
					continue
				}
				printer.Info("%s  %-22s %-14s cycle %d  %s\n",
					event.Timestamp.Format("15:04:05"), event.Action,
					event.FlowState, event.Cycle, event.FeatureID)
			case err, ok := <-sub.Errors():
				if !ok {
					return nil
				}
				printer.Warning("event error: %v\n", err)
			}
		}
	})
}
