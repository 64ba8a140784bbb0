package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture [dir]",
	Short: "Run a capture session over a directory of frames",
	Long: `Feed the image files in a directory through the embedding provider as
capture frames, in file name order, until one attendance event is recorded,
the person is recognized outside any window, or the frames run out. Frames
that fail to embed (no face, face too small, provider failure) are dropped
and the session continues with the next frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
}

// fileProbeSource walks a fixed list of image files and embeds them one by one.
type fileProbeSource struct {
	embedder *embedding.Client
	files    []string
	next     int
}

func (s *fileProbeSource) Next(ctx context.Context) ([]float32, error) {
	if s.next >= len(s.files) {
		return nil, attendance.ErrCaptureDone
	}
	path := s.files[s.next]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame %s: %w", path, err)
	}
	vector, err := s.embedder.Embed(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("embedding frame %s: %w", path, err)
	}
	return vector, nil
}

// listFrames returns the image files in a directory, sorted by name.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	files, err := listFrames(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %s", args[0])
	}
	fmt.Printf("Running capture session over %d frames\n", len(files))

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	service, err := newService(cfg, backend)
	if err != nil {
		return err
	}

	source := &fileProbeSource{embedder: newEmbedder(cfg), files: files}
	outcome, state, err := service.RunSession(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("capture session failed: %w", err)
	}

	if state == attendance.SessionCommitted {
		printOutcome(outcome)
	} else if outcome.Kind == attendance.OutcomeRejected {
		printOutcome(outcome)
	} else {
		fmt.Println("Session ended without a match")
	}
	return nil
}
