package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mediagrab/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run MediaGrab as an HTTP API server",
	Long: `Starts an HTTP server exposing downloads, previews and the agent
via a RESTful API, with pollable task status for every download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default() // Includes logger and recovery middleware

		apiHandler := apihandlers.NewAPIHandler(appInstance)

		api := router.Group("/api")
		{
			api.GET("/formats", apiHandler.FormatsHandler)
			api.POST("/preview", apiHandler.PreviewHandler)
			api.POST("/download/:platform", apiHandler.DownloadHandler)
			api.GET("/tasks", apiHandler.ListTasksHandler)
			api.GET("/tasks/:id", apiHandler.TaskStatusHandler)
			api.POST("/agent/chat", apiHandler.AgentChatHandler)
			api.GET("/files/:id", apiHandler.FileHandler)
		}
		router.GET("/health", apiHandler.HealthHandler)
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))

		appInstance.Janitor.Start()

		if serveAddr == "" {
			serveAddr = appInstance.Config.Server.Addr
		}
		if servePort == "" {
			servePort = appInstance.Config.Server.Port
		}
		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		srv := &http.Server{Addr: listenAddr, Handler: router}

		go func() {
			log.Infof("Starting MediaGrab API server on http://%s", listenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to run API server: %v", err)
			}
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		<-shutdown

		log.Info("Shutdown signal received. Initiating graceful shutdown...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("HTTP server shutdown: %v", err)
		}
		if err := appInstance.Close(ctx); err != nil {
			log.Warnf("Background shutdown: %v", err)
		}

		log.Info("MediaGrab API server stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (defaults to config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (defaults to config)")
}
