package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Bulk import enrollments from a JSON file",
	Long: `Import enrollments from a JSON file holding an array of objects:
  [{"identity_id": "emp-001", "display_name": "Jana Dvořáková", "embedding": [...]}, ...]
Existing identities are skipped unless --replace is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("replace", false, "Replace already enrolled identities instead of skipping them")
}

// importEntry is one record in the bulk import file.
type importEntry struct {
	IdentityID  string    `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	Embedding   []float32 `json:"embedding"`
}

func (e *importEntry) validate() error {
	switch {
	case e.IdentityID == "":
		return errors.New("missing identity_id")
	case e.DisplayName == "":
		return errors.New("missing display_name")
	case len(e.Embedding) == 0:
		return errors.New("missing embedding")
	default:
		return nil
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}
	var entries []importEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing import file: %w", err)
	}
	if len(entries) == 0 {
		return errors.New("import file holds no entries")
	}

	cfg := config.Load()
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	replace := mustGetBool(cmd, "replace")
	ctx := cmd.Context()

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Importing enrollments"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("persons"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var imported, skipped, failed int
	for i, entry := range entries {
		_ = bar.Add(1)

		if err := entry.validate(); err != nil {
			fmt.Printf("\nEntry %d invalid: %v\n", i, err)
			failed++
			continue
		}

		enrollment := database.Enrollment{
			IdentityID:  entry.IdentityID,
			DisplayName: entry.DisplayName,
			Embedding:   entry.Embedding,
			EnrolledAt:  time.Now(),
		}
		if replace {
			err = backend.enrollments.Replace(ctx, enrollment)
		} else {
			err = backend.enrollments.Enroll(ctx, enrollment)
		}
		switch {
		case errors.Is(err, database.ErrDuplicateIdentity):
			skipped++
		case err != nil:
			fmt.Printf("\nEntry %d (%s) failed: %v\n", i, entry.IdentityID, err)
			failed++
		default:
			imported++
		}
	}

	fmt.Printf("\nImported %d, skipped %d, failed %d\n", imported, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d entries failed to import", failed)
	}
	return nil
}
