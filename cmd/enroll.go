package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <student-id> <image>",
	Short: "Enroll a student's reference embedding from an image",
	Long: `Extract a face embedding from the given image and store it as the
student's reference. Re-enrolling an existing student replaces the stored
reference and invalidates the in-memory cache.`,
	Args: cobra.ExactArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	studentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid student id %q: %w", args[0], err)
	}

	imageData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.close()

	ok, err := st.service.EnrollFromImage(ctx, imageData, studentID)
	if err != nil {
		return fmt.Errorf("failed to enroll student %d: %w", studentID, err)
	}
	if !ok {
		return fmt.Errorf("no usable face found in %s", args[1])
	}

	fmt.Printf("Enrolled student %d (%s)\n", studentID, st.service.Extractor().Name())
	return nil
}
