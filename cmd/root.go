package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"mediagrab/internal/app"
	"mediagrab/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mediagrab",
	Short: "MediaGrab CLI",
	Long:  `MediaGrab downloads music and videos from YouTube, Spotify and TikTok, either as an HTTP API server or as a one-shot CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tooling and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Println("Checking yt-dlp availability...")
		if _, err := exec.LookPath("yt-dlp"); err != nil {
			return fmt.Errorf("yt-dlp not found in PATH: %w", err)
		}
		fmt.Println("yt-dlp found.")

		fmt.Printf("Downloads directory: %s\n", appInstance.Config.Downloads.Dir)
		probe := appInstance.Config.Downloads.Dir + "/.doctor"
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			return fmt.Errorf("downloads directory is not writable: %w", err)
		}
		os.Remove(probe)
		fmt.Println("Downloads directory is writable.")

		if appInstance.Config.Agent.APIKey == "" {
			fmt.Println("WARN: GROQ_API_KEY not set; the agent endpoint will reject natural-language requests.")
		} else {
			fmt.Println("Agent API key configured.")
		}
		return nil
	},
}
