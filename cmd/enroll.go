package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a person into the recognition gallery",
	Long: `Enroll a person by identity ID and display name.
The face embedding comes either from an image file sent to the embedding
provider (--image) or from a JSON file holding the raw vector
(--embedding-file).`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("id", "", "Identity ID (required)")
	enrollCmd.Flags().String("name", "", "Display name (required)")
	enrollCmd.Flags().String("image", "", "Path to a face image to embed")
	enrollCmd.Flags().String("embedding-file", "", "Path to a JSON file with the embedding vector")
	enrollCmd.Flags().Bool("replace", false, "Replace an existing enrollment instead of failing")
	_ = enrollCmd.MarkFlagRequired("id")
	_ = enrollCmd.MarkFlagRequired("name")
}

// loadProbe produces an embedding vector from either the --image or the
// --embedding-file flag.
func loadProbe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) ([]float32, error) {
	imagePath := mustGetString(cmd, "image")
	embeddingPath := mustGetString(cmd, "embedding-file")

	switch {
	case imagePath != "" && embeddingPath != "":
		return nil, errors.New("--image and --embedding-file are mutually exclusive")
	case imagePath != "":
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		vector, err := newEmbedder(cfg).Embed(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("embedding image: %w", err)
		}
		return vector, nil
	case embeddingPath != "":
		data, err := os.ReadFile(embeddingPath)
		if err != nil {
			return nil, fmt.Errorf("reading embedding file: %w", err)
		}
		var vector []float32
		if err := json.Unmarshal(data, &vector); err != nil {
			return nil, fmt.Errorf("parsing embedding file: %w", err)
		}
		if len(vector) == 0 {
			return nil, errors.New("embedding file holds an empty vector")
		}
		return vector, nil
	default:
		return nil, errors.New("either --image or --embedding-file is required")
	}
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	vector, err := loadProbe(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	enrollment := database.Enrollment{
		IdentityID:  mustGetString(cmd, "id"),
		DisplayName: mustGetString(cmd, "name"),
		Embedding:   vector,
		EnrolledAt:  time.Now(),
	}

	if mustGetBool(cmd, "replace") {
		err = backend.enrollments.Replace(ctx, enrollment)
	} else {
		err = backend.enrollments.Enroll(ctx, enrollment)
	}
	if errors.Is(err, database.ErrDuplicateIdentity) {
		return fmt.Errorf("identity %s is already enrolled (use --replace to update)", enrollment.IdentityID)
	}
	if err != nil {
		return fmt.Errorf("enrolling %s: %w", enrollment.IdentityID, err)
	}

	fmt.Printf("Enrolled %s (%s) with a %d-dimensional embedding\n",
		enrollment.DisplayName, enrollment.IdentityID, len(enrollment.Embedding))
	return nil
}
