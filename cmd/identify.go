package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify one probe and record attendance if applicable",
	Long: `Run a single identification: match the probe against the enrolled
gallery and, on a confident match inside a check-in or check-out window,
write one attendance event.`,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().String("image", "", "Path to a face image to embed")
	identifyCmd.Flags().String("embedding-file", "", "Path to a JSON file with the embedding vector")
}

func printOutcome(outcome attendance.Outcome) {
	switch outcome.Kind {
	case attendance.OutcomeRecorded:
		fmt.Printf("Recorded %s for %s (%s), similarity %.3f\n",
			outcome.Event.Type, outcome.DisplayName, outcome.IdentityID, outcome.Similarity)
	case attendance.OutcomeRejected:
		fmt.Printf("Recognized %s (%s, similarity %.3f) but nothing to record: %s\n",
			outcome.DisplayName, outcome.IdentityID, outcome.Similarity, outcome.Message)
	default:
		fmt.Println("No matching identity")
	}
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	probe, err := loadProbe(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	service, err := newService(cfg, backend)
	if err != nil {
		return err
	}

	outcome, err := service.Identify(ctx, probe)
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}
	printOutcome(outcome)
	return nil
}
