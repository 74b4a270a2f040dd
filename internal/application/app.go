// Package application is the dependency-injection container: it wires
// config, infrastructure, domain services and interfaces into a
// runnable bridge.
package application

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dharti/dharti/bridge/internal/application/usecase"
	"github.com/dharti/dharti/bridge/internal/domain/repository"
	"github.com/dharti/dharti/bridge/internal/domain/service"
	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	"github.com/dharti/dharti/bridge/internal/infrastructure/catalog"
	"github.com/dharti/dharti/bridge/internal/infrastructure/config"
	"github.com/dharti/dharti/bridge/internal/infrastructure/llm"
	_ "github.com/dharti/dharti/bridge/internal/infrastructure/llm/openai" // register openai provider factory
	"github.com/dharti/dharti/bridge/internal/infrastructure/persistence"
	"github.com/dharti/dharti/bridge/internal/infrastructure/prompt"
	"github.com/dharti/dharti/bridge/internal/infrastructure/speech"
	toolpkg "github.com/dharti/dharti/bridge/internal/infrastructure/tool"
	httpServer "github.com/dharti/dharti/bridge/internal/interfaces/http"
	"github.com/dharti/dharti/bridge/pkg/safego"
)

// App holds every wired component of the bridge.
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB

	interactionRepo repository.InteractionRepository

	toolRegistry  domaintool.Registry
	toolExecutor  *toolpkg.Executor
	catalogClient *catalog.Client
	llmProvider   llm.Provider
	speechProv    speech.Provider
	promptBuilder *prompt.Builder

	processPromptUseCase *usecase.ProcessPromptUseCase

	httpServer    *httpServer.Server
	configWatcher *config.Watcher
}

// NewApp wires the full application.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.initRepositories(); err != nil {
		return nil, fmt.Errorf("init repositories: %w", err)
	}
	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}
	app.initApplicationServices()
	if err := app.initInterfaces(); err != nil {
		return nil, fmt.Errorf("init interfaces: %w", err)
	}

	return app, nil
}

// NewAppCLI wires a lightweight app for the interactive CLI: no HTTP
// server, no config watcher, in-memory audit trail.
func NewAppCLI(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	app.interactionRepo = persistence.NewMemoryInteractionRepository()

	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}
	app.initApplicationServices()

	return app, nil
}

func (app *App) initRepositories() error {
	if app.config.Database.Type == "memory" {
		app.interactionRepo = persistence.NewMemoryInteractionRepository()
		return nil
	}

	db, err := persistence.NewDBConnection(&app.config.Database)
	if err != nil {
		// The audit trail is best-effort; a broken database must not
		// keep the bridge from answering prompts.
		app.logger.Warn("Database unavailable, falling back to in-memory audit trail", zap.Error(err))
		app.interactionRepo = persistence.NewMemoryInteractionRepository()
		return nil
	}

	app.db = db
	app.interactionRepo = persistence.NewGormInteractionRepository(db)
	return nil
}

func (app *App) initInfrastructure() error {
	app.catalogClient = catalog.NewClient(
		app.config.Catalog.BaseURL,
		app.config.Catalog.Timeout,
		app.logger,
	)

	app.toolRegistry = domaintool.NewInMemoryRegistry()
	if err := toolpkg.RegisterAll(app.toolRegistry, app.catalogClient); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	app.toolExecutor = toolpkg.NewExecutor(app.toolRegistry, app.logger)

	provider, err := app.selectProvider()
	if err != nil {
		return err
	}
	app.llmProvider = provider

	if app.config.Speech.Enabled {
		app.speechProv = speech.NewHTTPProvider(
			app.config.Speech.BaseURL,
			app.config.Speech.Timeout,
			app.logger,
		)
	}

	app.promptBuilder = prompt.NewBuilder()
	return nil
}

// selectProvider picks the first configured provider that supports the
// configured model. With no providers configured, a Groq-backed
// default is built from the GROQ_API_KEY environment variable.
func (app *App) selectProvider() (llm.Provider, error) {
	model := app.config.Agent.Model

	for _, pc := range app.config.Agent.Providers {
		provider, err := llm.CreateProvider(llm.ProviderConfig{
			Name:    pc.Name,
			Type:    pc.Type,
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey,
			Models:  pc.Models,
		}, app.logger)
		if err != nil {
			app.logger.Warn("Skipping provider", zap.String("name", pc.Name), zap.Error(err))
			continue
		}
		if provider.SupportsModel(model) {
			app.logger.Info("Using model provider",
				zap.String("provider", provider.Name()),
				zap.String("model", model),
			)
			return provider, nil
		}
	}

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("no provider supports model %q and GROQ_API_KEY is not set", model)
	}

	provider, err := llm.CreateProvider(llm.ProviderConfig{
		Name:   "groq",
		Type:   "openai",
		APIKey: apiKey,
	}, app.logger)
	if err != nil {
		return nil, err
	}

	app.logger.Info("Using default Groq provider", zap.String("model", model))
	return provider, nil
}

func (app *App) initApplicationServices() {
	app.processPromptUseCase = usecase.NewProcessPromptUseCase(
		app.llmProvider,
		app.toolExecutor,
		service.NewSlotFillPolicy(app.logger),
		app.promptBuilder,
		app.interactionRepo,
		app.loopConfig(app.config),
		app.logger,
	)
}

func (app *App) initInterfaces() error {
	app.httpServer = httpServer.NewServer(
		httpServer.Config{
			Host: app.config.Bridge.Host,
			Port: app.config.Bridge.Port,
			Mode: app.config.Bridge.Mode,
		},
		app.processPromptUseCase,
		app.toolExecutor,
		app.speechProv,
		app.logger,
	)

	watcher, err := config.NewWatcher(config.LocalConfigPath(), app.onConfigReload, app.logger)
	if err != nil {
		app.logger.Warn("Config watcher unavailable", zap.Error(err))
		return nil
	}
	app.configWatcher = watcher
	return nil
}

func (app *App) loopConfig(cfg *config.Config) service.AgentLoopConfig {
	loopCfg := service.DefaultAgentLoopConfig()
	if cfg.Agent.Model != "" {
		loopCfg.Model = cfg.Agent.Model
	}
	if cfg.Agent.Temperature > 0 {
		loopCfg.Temperature = cfg.Agent.Temperature
	}
	if cfg.Agent.MaxSteps > 0 {
		loopCfg.MaxSteps = cfg.Agent.MaxSteps
	}
	if cfg.Agent.MaxRetries > 0 {
		loopCfg.MaxRetries = cfg.Agent.MaxRetries
	}
	if cfg.Agent.RetryBaseWait > 0 {
		loopCfg.RetryBaseWait = cfg.Agent.RetryBaseWait
	}
	if cfg.Agent.ToolTimeout > 0 {
		loopCfg.ToolTimeout = cfg.Agent.ToolTimeout
	}
	return loopCfg
}

// onConfigReload applies the live-safe subset of a reloaded config to
// future runs.
func (app *App) onConfigReload(cfg *config.Config) {
	app.processPromptUseCase.SetLoopConfig(app.loopConfig(cfg))
}

// ProcessPromptUseCase exposes the prompt pipeline to the CLI.
func (app *App) ProcessPromptUseCase() *usecase.ProcessPromptUseCase {
	return app.processPromptUseCase
}

// ToolExecutor exposes the tool catalog to the CLI.
func (app *App) ToolExecutor() service.ToolExecutor {
	return app.toolExecutor
}

// Run starts the HTTP server and the config watcher.
func (app *App) Run(ctx context.Context) error {
	if err := app.httpServer.Start(ctx); err != nil {
		return err
	}
	if app.configWatcher != nil {
		safego.Go(app.logger, "config-watcher", app.configWatcher.Start)
	}
	return nil
}

// Stop shuts everything down.
func (app *App) Stop(ctx context.Context) error {
	if app.configWatcher != nil {
		app.configWatcher.Stop()
	}
	if app.httpServer != nil {
		if err := app.httpServer.Stop(ctx); err != nil {
			return err
		}
	}
	if app.db != nil {
		if sqlDB, err := app.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return nil
}
