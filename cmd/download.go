package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mediagrab/internal/agent"
	"mediagrab/internal/models"
	"mediagrab/internal/orchestrator"
)

var (
	downloadFormat   string
	downloadQuality  string
	downloadPlatform string
)

// downloadCmd submits a single download and polls it to a terminal state,
// exercising the exact status contract HTTP clients use.
var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a single URL and wait for it to finish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		reference := args[0]

		platform := models.Platform(downloadPlatform)
		if downloadPlatform == "" {
			detected := agent.DetectURLs(reference)
			if len(detected) == 0 {
				return fmt.Errorf("could not detect a platform from %q; pass --platform", reference)
			}
			platform = detected[0].Platform
		}

		jobID, err := appInstance.Orchestrator.Submit(orchestrator.SubmitRequest{
			Platform:  platform,
			Reference: reference,
			Format:    downloadFormat,
			Quality:   downloadQuality,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Job %s submitted (%s)\n", jobID, platform)

		lastProgress := -1
		for {
			job, err := appInstance.Orchestrator.Status(jobID)
			if err != nil {
				return fmt.Errorf("poll job %s: %w", jobID, err)
			}
			if job.Progress != lastProgress {
				fmt.Printf("  %s %d%%\n", job.Status, job.Progress)
				lastProgress = job.Progress
			}
			if job.Terminal() {
				if job.Status == models.JobStatusError {
					fmt.Printf("%s: %s\n", color.RedString("ERROR"), job.ErrorDetail)
					return fmt.Errorf("download failed")
				}
				fmt.Printf("%s: %s\n", color.GreenString("Completed"), job.Filename)
				break
			}
			time.Sleep(500 * time.Millisecond)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return appInstance.Close(ctx)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadFormat, "format", "mp3", "Output format (mp3, m4a, wav, flac, mp4)")
	downloadCmd.Flags().StringVar(&downloadQuality, "quality", "320k", "Audio quality (128k, 192k, 320k)")
	downloadCmd.Flags().StringVar(&downloadPlatform, "platform", "", "Source platform (detected from the URL when omitted)")
}
