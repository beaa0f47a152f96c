package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mediagrab/internal/app"
	"mediagrab/internal/models"
	"mediagrab/internal/orchestrator"
	"mediagrab/internal/store"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(app *app.App) *APIHandler {
	return &APIHandler{App: app}
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *APIHandler) FormatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": models.Formats})
}

// DownloadRequest is the JSON body to start a download.
type DownloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

// DownloadHandler starts a download job for the platform in the path and
// answers immediately with the pollable task id.
func (h *APIHandler) DownloadHandler(c *gin.Context) {
	platform, err := models.ParsePlatform(c.Param("platform"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	jobID, err := h.App.Orchestrator.Submit(orchestrator.SubmitRequest{
		Platform:  platform,
		Reference: req.URL,
		Format:    req.Format,
		Quality:   req.Quality,
	})
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		Internal(c, fmt.Sprintf("DownloadHandler: failed to submit job: %v", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": jobID,
		"status":  models.JobStatusPending,
		"message": "Download started",
	})
}

// TaskStatusHandler returns the job snapshot for polling clients.
func (h *APIHandler) TaskStatusHandler(c *gin.Context) {
	job, err := h.App.Orchestrator.Status(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "Task not found: "+c.Param("id"))
			return
		}
		Internal(c, fmt.Sprintf("TaskStatusHandler: failed to read job: %v", err))
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListTasksHandler lists all retained jobs, newest first.
func (h *APIHandler) ListTasksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.App.JobStore.List()})
}

// PreviewRequest is the JSON body for a preview lookup.
type PreviewRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// PreviewHandler answers best-effort metadata. Failures are soft: the
// response carries success=false and the client degrades gracefully.
func (h *APIHandler) PreviewHandler(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	info, err := h.App.Preview.Resolve(c.Request.Context(), platform, req.URL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"title":     info.Title,
		"artist":    info.Artist,
		"thumbnail": info.Thumbnail,
		"duration":  info.Duration,
	})
}

// ChatRequest is the JSON body for the agent endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// AgentChatHandler parses the free-text message into intentions and fans them
// out as jobs, reporting per-item outcomes.
func (h *APIHandler) AgentChatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	parsed, err := h.App.Agent.ParseIntent(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		Internal(c, "Agent request failed: "+err.Error())
		return
	}

	results := h.App.Batch.Execute(parsed.Intentions)
	c.JSON(http.StatusOK, gin.H{
		"message": parsed.Message,
		"results": results,
	})
}

// FileHandler serves a completed download as an attachment.
func (h *APIHandler) FileHandler(c *gin.Context) {
	entry, err := h.App.FileStore.Get(c.Param("id"))
	if err != nil {
		NotFound(c, "File not found: "+c.Param("id"))
		return
	}
	c.FileAttachment(entry.Path, entry.Filename)
}
