package app

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"mediagrab/internal/agent"
	"mediagrab/internal/batch"
	"mediagrab/internal/config"
	"mediagrab/internal/extractor"
	"mediagrab/internal/filestore"
	"mediagrab/internal/janitor"
	"mediagrab/internal/orchestrator"
	"mediagrab/internal/preview"
	"mediagrab/internal/store"
)

// App aggregates the wired services. It is built once in the root command and
// handed to subcommands via the command context.
type App struct {
	Config *config.Config

	JobStore   *store.JobStore
	FileStore  *filestore.Store
	Extractors *extractor.Registry

	Orchestrator *orchestrator.Orchestrator
	Preview      *preview.Resolver
	Agent        *agent.MediaAgent
	Batch        *batch.Executor
	Janitor      *janitor.Janitor
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	if err := app.initStores(); err != nil {
		return nil, err
	}
	app.initExtractors()
	app.initOrchestrator()
	app.initAgent()
	if err := app.initJanitor(); err != nil {
		return nil, err
	}

	log.Info("Application initialization complete")
	return app, nil
}

func (a *App) initStores() error {
	if err := os.MkdirAll(a.Config.Downloads.Dir, 0o755); err != nil {
		return fmt.Errorf("create downloads dir: %w", err)
	}
	a.JobStore = store.NewJobStore()
	a.FileStore = filestore.New()
	return nil
}

func (a *App) initExtractors() {
	youtube := extractor.NewYouTube(a.Config.Downloads.Dir)
	a.Extractors = extractor.NewRegistry(
		youtube,
		extractor.NewSpotify(youtube),
		extractor.NewTikTok(a.Config.Downloads.Dir),
	)
}

func (a *App) initOrchestrator() {
	a.Orchestrator = orchestrator.New(
		a.JobStore,
		a.FileStore,
		a.Extractors,
		a.Config.Worker.Concurrency,
		a.Config.Worker.Timeout,
	)
	a.Preview = preview.NewResolver(a.Extractors, a.Config.Preview.Timeout)
	a.Batch = batch.NewExecutor(a.Orchestrator)
}

func (a *App) initAgent() {
	// The YouTube adapter doubles as the agent's searcher.
	var searcher agent.Searcher
	if yt, ok := a.Extractors.Get("youtube"); ok {
		if s, ok := yt.(agent.Searcher); ok {
			searcher = s
		}
	}
	a.Agent = agent.New(
		a.Config.Agent.APIKey,
		a.Config.Agent.BaseURL,
		a.Config.Agent.Model,
		searcher,
	)
}

func (a *App) initJanitor() error {
	j, err := janitor.New(a.JobStore, a.FileStore, a.Config.Retention.TTL, a.Config.Retention.Schedule)
	if err != nil {
		return fmt.Errorf("init janitor: %w", err)
	}
	a.Janitor = j
	return nil
}

// Close shuts the background machinery down, failing any still-running jobs
// so none is left processing forever.
func (a *App) Close(ctx context.Context) error {
	if a.Janitor != nil {
		a.Janitor.Stop()
	}
	if a.Orchestrator != nil {
		return a.Orchestrator.Shutdown(ctx)
	}
	return nil
}
