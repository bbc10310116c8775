package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image> [image...]",
	Short: "Recognize a student from one or more frames",
	Long: `Match one or more captured frames against enrolled references. Each
frame votes independently and the identity must win a strict majority of
all frames, so passing several frames from a short burst makes the result
more robust than a single shot.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	frames := make([][]byte, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read frame %s: %w", path, err)
		}
		frames = append(frames, data)
	}

	ctx := context.Background()
	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.close()

	decision, err := st.service.Recognize(ctx, frames)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if !decision.Accepted {
		fmt.Printf("Rejected: no identity won a majority of %d frames\n", decision.Frames)
		return nil
	}

	fmt.Printf("Student %d (%d/%d frames)\n", decision.StudentID, decision.Votes, decision.Frames)
	return nil
}
