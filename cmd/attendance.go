package cmd

import (
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect and manage the attendance ledger",
}

var attendanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendance events, newest first",
	RunE:  runAttendanceList,
}

var attendanceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the whole attendance ledger",
	RunE:  runAttendanceClear,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceListCmd)
	attendanceCmd.AddCommand(attendanceClearCmd)

	attendanceClearCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runAttendanceList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	events, err := backend.ledger.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No attendance events recorded")
		return nil
	}

	fmt.Printf("%-25s %-20s %-30s %s\n", "TIMESTAMP", "IDENTITY", "NAME", "TYPE")
	for _, ev := range events {
		fmt.Printf("%-25s %-20s %-30s %s\n",
			ev.Timestamp.Format(time.RFC3339), ev.IdentityID, ev.DisplayName, ev.Type)
	}
	return nil
}

func runAttendanceClear(cmd *cobra.Command, args []string) error {
	if !mustGetBool(cmd, "yes") {
		fmt.Print("This wipes every attendance event. Type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	cfg := config.Load()
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.ledger.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing attendance: %w", err)
	}
	fmt.Println("Attendance ledger cleared")
	return nil
}
