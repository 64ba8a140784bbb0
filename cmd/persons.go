package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/spf13/cobra"
)

var personsCmd = &cobra.Command{
	Use:   "persons",
	Short: "Manage the enrollment registry",
}

var personsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all enrolled persons",
	RunE:  runPersonsList,
}

var personsDeleteCmd = &cobra.Command{
	Use:   "delete [identity-id]",
	Short: "Delete a person from the registry",
	Long: `Delete a person by identity ID.
The --by-name flag deletes by display name instead. It is deprecated because
display names are not unique; it refuses to act when the normalized name
matches more than one enrollment.`,
	RunE: runPersonsDelete,
}

func init() {
	rootCmd.AddCommand(personsCmd)
	personsCmd.AddCommand(personsListCmd)
	personsCmd.AddCommand(personsDeleteCmd)

	personsDeleteCmd.Flags().String("by-name", "", "Delete by display name (deprecated, prefer the identity ID)")
}

func runPersonsList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	enrollments, err := backend.enrollments.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing persons: %w", err)
	}
	if len(enrollments) == 0 {
		fmt.Println("No persons enrolled")
		return nil
	}

	fmt.Printf("%-20s %-30s %-6s %s\n", "IDENTITY", "NAME", "DIM", "ENROLLED")
	for _, e := range enrollments {
		fmt.Printf("%-20s %-30s %-6d %s\n",
			e.IdentityID, e.DisplayName, len(e.Embedding), e.EnrolledAt.Format(time.RFC3339))
	}
	return nil
}

// displayNameFinder is implemented by stores that can search enrollments by
// normalized display name server-side.
type displayNameFinder interface {
	FindByDisplayName(ctx context.Context, name string) ([]database.Enrollment, error)
}

// findByName resolves a display name to enrollments, using the store's own
// search when available and a client-side scan otherwise.
func findByName(ctx context.Context, store database.EnrollmentStore, name string) ([]database.Enrollment, error) {
	if finder, ok := store.(displayNameFinder); ok {
		return finder.FindByDisplayName(ctx, name)
	}

	all, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	want := recognition.NormalizeDisplayName(name)
	var found []database.Enrollment
	for _, e := range all {
		if recognition.NormalizeDisplayName(e.DisplayName) == want {
			found = append(found, e)
		}
	}
	return found, nil
}

func runPersonsDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	byName := mustGetString(cmd, "by-name")

	if byName == "" && len(args) != 1 {
		return fmt.Errorf("expected exactly one identity ID argument")
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	ctx := cmd.Context()

	if byName == "" {
		id := args[0]
		if err := backend.enrollments.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting %s: %w", id, err)
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	}

	fmt.Println("Warning: --by-name is deprecated, use the identity ID instead")
	found, err := findByName(ctx, backend.enrollments, byName)
	if err != nil {
		return fmt.Errorf("searching for %q: %w", byName, err)
	}
	switch len(found) {
	case 0:
		return fmt.Errorf("no enrollment matches name %q", byName)
	case 1:
		if err := backend.enrollments.Delete(ctx, found[0].IdentityID); err != nil {
			return fmt.Errorf("deleting %s: %w", found[0].IdentityID, err)
		}
		fmt.Printf("Deleted %s (%s)\n", found[0].DisplayName, found[0].IdentityID)
		return nil
	default:
		ids := make([]string, len(found))
		for i, e := range found {
			ids[i] = e.IdentityID
		}
		return fmt.Errorf("name %q matches multiple enrollments (%s), delete by identity ID",
			byName, strings.Join(ids, ", "))
	}
}
