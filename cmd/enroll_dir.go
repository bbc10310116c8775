package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollDirCmd = &cobra.Command{
	Use:   "enroll-dir <directory>",
	Short: "Bulk-enroll students from a directory of images",
	Long: `Enroll every image in a directory. File names must be the student ID
with an image extension, e.g. 1042.jpg enrolls student 1042. Files that do
not follow the naming scheme are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrollDir,
}

func init() {
	rootCmd.AddCommand(enrollDirCmd)

	enrollDirCmd.Flags().Int("concurrency", 4, "Number of images to process in parallel")
}

type enrollJob struct {
	studentID int64
	path      string
}

func collectEnrollJobs(dir string) ([]enrollJob, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read directory: %w", err)
	}

	var jobs []enrollJob
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		id, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		jobs = append(jobs, enrollJob{studentID: id, path: filepath.Join(dir, name)})
	}
	return jobs, skipped, nil
}

func runEnrollDir(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	jobs, skipped, err := collectEnrollJobs(args[0])
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No enrollable images found")
		return nil
	}

	fmt.Printf("Images to enroll: %d (skipping %d without a numeric name)\n\n", len(jobs), skipped)

	ctx := context.Background()
	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.close()

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("Enrolling students"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount, noFaceCount, errorCount int
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, job := range jobs {
		wg.Add(1)
		go func(j enrollJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			imageData, err := os.ReadFile(j.path)
			if err != nil {
				mu.Lock()
				errorCount++
				mu.Unlock()
				bar.Add(1)
				return
			}

			ok, err := st.service.EnrollFromImage(ctx, imageData, j.studentID)
			mu.Lock()
			switch {
			case err != nil:
				errorCount++
			case !ok:
				noFaceCount++
			default:
				successCount++
			}
			mu.Unlock()
			bar.Add(1)
		}(job)
	}

	wg.Wait()
	bar.Finish()

	fmt.Printf("\n\nEnrolled: %d\n", successCount)
	if noFaceCount > 0 {
		fmt.Printf("No usable face: %d\n", noFaceCount)
	}
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}
	return nil
}
