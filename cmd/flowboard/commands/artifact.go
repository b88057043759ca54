package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowboardhq/flowboard/internal/engine"
	"github.com/flowboardhq/flowboard/internal/printer"
	"github.com/flowboardhq/flowboard/pkg/board"
)

var (
	artifactRole string
	artifactFile string
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Work with producer artifacts",
}

var artifactSetCmd = &cobra.Command{
	Use:   "set <feature-id> <artifact-key> [json-payload]",
	Short: "Record a producer's artifact payload",
	Long: `Record a producer's payload into its artifact slot.

The payload is JSON, given inline or via --file ("-" reads stdin). The
write is checked at the store boundary: the role must own the slot
(--role defaults to the slot's owning producer) and the payload must
match the slot's declared shape.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runArtifactSet,
}

func init() {
	artifactSetCmd.Flags().StringVar(&artifactRole, "role", "", "Producer role performing the write (default: the slot's owner)")
	artifactSetCmd.Flags().StringVar(&artifactFile, "file", "", "Read the payload from a file ('-' for stdin)")
	artifactCmd.AddCommand(artifactSetCmd)
	rootCmd.AddCommand(artifactCmd)
}

func runArtifactSet(cmd *cobra.Command, args []string) error {
	featureID, key := args[0], args[1]

	payload, err := readPayload(args)
	if err != nil {
		return err
	}

	role := board.Role(artifactRole)
	if artifactRole == "" {
		role = board.ProducerFor(key)
		if role == "" {
			return printer.Error("Unknown artifact key",
				fmt.Sprintf("No producer owns artifact slot %q.", key), nil)
		}
	}

	return withEngine(func(ctx context.Context, eng *engine.Engine) error {
		b, err := eng.SubmitArtifact(ctx, featureID, role, key, payload)
		if err != nil {
			return printer.Error("Failed to record artifact", err.Error(), nil)
		}

		printer.Success("Artifact %q recorded on board %q by %s\n", key, b.FeatureID, role)
		return nil
	})
}

func readPayload(args []string) (json.RawMessage, error) {
	switch {
	case len(args) == 3 && artifactFile != "":
		return nil, printer.Error("Conflicting arguments",
			"Give the payload inline or via --file, not both.", nil)
	case len(args) == 3:
		return json.RawMessage(args[2]), nil
	case artifactFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return json.RawMessage(data), nil
	case artifactFile != "":
		data, err := os.ReadFile(artifactFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return json.RawMessage(data), nil
	default:
		return nil, printer.Error("Missing payload",
			"Give the JSON payload inline or via --file.", nil)
	}
}
